package diag

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/vmbase/pkg/viewmodel"
)

// Record describes one live view model.
type Record struct {
	// ID identifies the record; IDs sort by creation time.
	ID ulid.ULID

	// NodeID is the view model's own identifier.
	NodeID uint64

	Node    viewmodel.Node
	Type    string
	Created time.Time

	// Stack is the creating goroutine's stack, empty unless stacks are
	// captured.
	Stack string
}

// EventKind distinguishes registry events.
type EventKind string

const (
	EventCreated  EventKind = "created"
	EventDisposed EventKind = "disposed"
)

// Event is delivered to watchers on every creation and disposal.
type Event struct {
	Kind   EventKind
	Record Record
	At     time.Time
}

// TypeCount is the number of live view models of one type.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Option configures a Registry.
type Option func(*Registry)

// WithStacks enables capturing the creation stack of every view model.
func WithStacks(enabled bool) Option {
	return func(r *Registry) {
		r.stacks = enabled
	}
}

// WithMetrics registers the registry's Prometheus collectors with reg.
func WithMetrics(reg prometheus.Registerer, namespace string) Option {
	return func(r *Registry) {
		r.metrics = newMetrics(reg, namespace)
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// WithLogger sets the registry's logger.
// Default: slog.Default().With("component", "diag").
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// Registry records live view models. It implements viewmodel.Observer and is
// safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	records  map[uint64]*Record
	watchers map[int]chan Event
	nextW    int
	entropy  io.Reader

	stacks  bool
	now     func() time.Time
	metrics *metrics
	logger  *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		records:  make(map[uint64]*Record),
		watchers: make(map[int]chan Event),
		entropy:  ulid.Monotonic(rand.Reader, 0),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default().With("component", "diag")
	}
	return r
}

// Env returns a view model environment reporting to r.
func (r *Registry) Env(logger *slog.Logger) *viewmodel.Env {
	return &viewmodel.Env{Logger: logger, Observer: r}
}

// NodeCreated implements viewmodel.Observer.
func (r *Registry) NodeCreated(n viewmodel.Node) {
	now := r.now()
	rec := &Record{
		NodeID:  n.ID(),
		Node:    n,
		Type:    n.TypeName(),
		Created: now,
	}
	if r.stacks {
		rec.Stack = captureStack()
	}

	r.mu.Lock()
	rec.ID = ulid.MustNew(ulid.Timestamp(now), r.entropy)
	r.records[rec.NodeID] = rec
	r.broadcast(Event{Kind: EventCreated, Record: *rec, At: now})
	r.mu.Unlock()

	r.metrics.nodeCreated(rec.Type)
}

// NodeDisposed implements viewmodel.Observer.
func (r *Registry) NodeDisposed(n viewmodel.Node) {
	now := r.now()

	r.mu.Lock()
	rec, ok := r.records[n.ID()]
	if !ok {
		r.mu.Unlock()
		r.logger.Debug("disposed view model was never recorded", "type", n.TypeName(), "id", n.ID())
		return
	}
	delete(r.records, n.ID())
	r.broadcast(Event{Kind: EventDisposed, Record: *rec, At: now})
	r.mu.Unlock()

	r.metrics.nodeDisposed(rec.Type, now.Sub(rec.Created))
}

// broadcast must be called with mu held.
func (r *Registry) broadcast(ev Event) {
	for _, ch := range r.watchers {
		select {
		case ch <- ev:
		default:
			r.metrics.eventDropped()
		}
	}
}

// Watch streams events until ctx is done or stop is called, then closes the
// channel. Events are dropped when the channel's buffer is full. Callers must
// call stop (or cancel ctx) to release the watcher.
func (r *Registry) Watch(ctx context.Context, buffer int) (events <-chan Event, stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan Event, buffer)

	r.mu.Lock()
	id := r.nextW
	r.nextW++
	r.watchers[id] = ch
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		delete(r.watchers, id)
		close(ch)
		r.mu.Unlock()
	}()
	return ch, cancel
}

// Watchers returns the number of active watchers.
func (r *Registry) Watchers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.watchers)
}

// Count returns the number of live view models.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// All returns every live record, oldest first.
func (r *Registry) All() []Record {
	return r.filter(func(*Record) bool { return true })
}

// ByType returns the live records whose type name is typ, oldest first.
func (r *Registry) ByType(typ string) []Record {
	return r.filter(func(rec *Record) bool { return rec.Type == typ })
}

// WithItem returns the live records observing item.
// Items are compared by identity; an uncomparable item matches nothing.
func (r *Registry) WithItem(item any) []Record {
	if item == nil || !reflect.TypeOf(item).Comparable() {
		return nil
	}
	return r.filter(func(rec *Record) bool {
		v := rec.Node.ItemValue()
		if v == nil || reflect.TypeOf(v) != reflect.TypeOf(item) {
			return false
		}
		return v == item
	})
}

// OfType returns the live view models of type V, oldest first.
func OfType[V viewmodel.Node](r *Registry) []V {
	var out []V
	for _, rec := range r.All() {
		if v, ok := rec.Node.(V); ok {
			out = append(out, v)
		}
	}
	return out
}

// Types returns the live count per type, sorted by type name.
func (r *Registry) Types() []TypeCount {
	counts := make(map[string]int)
	r.mu.RLock()
	for _, rec := range r.records {
		counts[rec.Type]++
	}
	r.mu.RUnlock()

	out := make([]TypeCount, 0, len(counts))
	for typ, n := range counts {
		out = append(out, TypeCount{Type: typ, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

func (r *Registry) filter(keep func(*Record) bool) []Record {
	r.mu.RLock()
	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		if keep(rec) {
			out = append(out, *rec)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID.Compare(out[j].ID) < 0 })
	return out
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	MaxDepth:                3,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump writes every live view model with its item to w, oldest first.
func (r *Registry) Dump(w io.Writer) error {
	records := r.All()
	if _, err := fmt.Fprintf(w, "%d live view model(s)\n", len(records)); err != nil {
		return err
	}
	for _, rec := range records {
		if _, err := fmt.Fprintf(w, "\n%s %s #%d created %s\n",
			rec.ID, rec.Type, rec.NodeID, rec.Created.Format(time.RFC3339Nano)); err != nil {
			return err
		}
		if item := rec.Node.ItemValue(); item != nil {
			if _, err := io.WriteString(w, "  item: "+dumpConfig.Sdump(item)); err != nil {
				return err
			}
		}
		if rec.Stack != "" {
			if _, err := io.WriteString(w, indent(rec.Stack, "    ")); err != nil {
				return err
			}
		}
	}
	return nil
}

func captureStack() string {
	buf := make([]byte, 4096)
	for {
		n := runtime.Stack(buf, false)
		if n < len(buf) {
			return string(buf[:n])
		}
		buf = make([]byte, 2*len(buf))
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n") + "\n"
}
