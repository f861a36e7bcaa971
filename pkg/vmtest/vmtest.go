package vmtest

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/vango-dev/vmbase/pkg/diag"
	"github.com/vango-dev/vmbase/pkg/notify"
	"github.com/vango-dev/vmbase/pkg/viewmodel"
)

// Env is a view model environment whose nodes are checked for leaks when the
// test ends.
type Env struct {
	reg *diag.Registry
	env *viewmodel.Env
}

// Option configures NewEnv.
type Option func(*options)

type options struct {
	logger *slog.Logger
	stacks bool
}

// WithLogger sets the view model logger. Default: discards output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithStacks records creation stacks so leak reports show where the leaked
// view model was created.
func WithStacks() Option {
	return func(o *options) {
		o.stacks = true
	}
}

// NewEnv creates a leak-checked environment for t.
func NewEnv(t testing.TB, opts ...Option) *Env {
	t.Helper()
	o := options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	reg := diag.NewRegistry(diag.WithStacks(o.stacks), diag.WithLogger(o.logger))
	e := &Env{reg: reg, env: reg.Env(o.logger)}

	t.Cleanup(func() {
		if n := reg.Count(); n > 0 {
			var buf bytes.Buffer
			reg.Dump(&buf)
			t.Errorf("%d view model(s) not disposed:\n%s", n, truncate(buf.String(), 2000))
		}
	})
	return e
}

// Env returns the environment to pass to view model constructors.
func (e *Env) Env() *viewmodel.Env {
	return e.env
}

// Registry returns the registry tracking the environment's view models.
func (e *Env) Registry() *diag.Registry {
	return e.reg
}

// Live returns the number of view models not yet disposed.
func (e *Env) Live() int {
	return e.reg.Count()
}

// Recorder captures the property names announced on a source.
type Recorder struct {
	*notify.Func

	mu    sync.Mutex
	names []string
	src   notify.Source
}

// Record subscribes a new Recorder to src.
func Record(src notify.Source) *Recorder {
	r := &Recorder{src: src}
	r.Func = notify.NewFunc(func(property string) error {
		r.mu.Lock()
		r.names = append(r.names, property)
		r.mu.Unlock()
		return nil
	})
	src.Subscribe(r)
	return r
}

// Names returns the announced names in order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

// Count returns how many times name was announced.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, got := range r.Names() {
		if got == name {
			n++
		}
	}
	return n
}

// Reset forgets the recorded names.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.names = nil
	r.mu.Unlock()
}

// Stop unsubscribes the recorder.
func (r *Recorder) Stop() {
	r.src.Unsubscribe(r)
}

// ExpectAnnounced fails the test unless name was announced exactly n times.
func ExpectAnnounced(t testing.TB, r *Recorder, name string, n int) {
	t.Helper()
	if got := r.Count(name); got != n {
		t.Errorf("expected %q announced %d time(s), got %d (all: %v)", name, n, got, r.Names())
	}
}

// ExpectDisposed fails the test unless node is disposed.
func ExpectDisposed(t testing.TB, node viewmodel.Node) {
	t.Helper()
	if !node.IsDisposed() {
		t.Errorf("expected %s #%d to be disposed", node.TypeName(), node.ID())
	}
}

// ExpectAlive fails the test if node is disposed.
func ExpectAlive(t testing.TB, node viewmodel.Node) {
	t.Helper()
	if node.IsDisposed() {
		t.Errorf("expected %s #%d to be alive", node.TypeName(), node.ID())
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
