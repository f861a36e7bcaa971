package viewmodel

import (
	"reflect"
	"slices"
	"sync"

	vmerrors "github.com/vango-dev/vmbase/internal/errors"
)

// Table collects the dependency declarations of one view model type.
// It is filled by Declarer.DeclareDependencies and frozen into a Store.
type Table struct {
	typ        reflect.Type
	handlers   []handlerDecl
	dependents []dependentDecl
}

// handlerDecl runs fn when one of properties changes on the item (key == "")
// or on the extra connection named key.
type handlerDecl struct {
	key        string
	properties []string
	run        func(self any) error
}

// dependentDecl re-announces member when one of properties changes.
type dependentDecl struct {
	key        string
	member     string
	properties []string
}

func matches(key string, properties []string, wantKey, property string) bool {
	return key == wantKey && slices.Contains(properties, property)
}

// Type returns the view model type being declared.
func (t *Table) Type() reflect.Type {
	return t.typ
}

// OnItem runs fn whenever one of properties changes on the item.
// V must accept the declaring view model type.
func OnItem[V any](t *Table, fn func(V) error, properties ...string) {
	t.addHandler("", adapt(t, fn), properties)
}

// OnExtra runs fn whenever one of properties changes on the extra connection
// registered under key.
func OnExtra[V any](t *Table, key string, fn func(V) error, properties ...string) {
	if key == "" {
		panic(vmerrors.New("E050").WithDetailf("%s: OnExtra with empty key", t.typ))
	}
	t.addHandler(key, adapt(t, fn), properties)
}

// DependsOnItem re-announces member whenever one of properties changes on the
// item.
func (t *Table) DependsOnItem(member string, properties ...string) {
	t.addDependent("", member, properties)
}

// DependsOnExtra re-announces member whenever one of properties changes on the
// extra connection registered under key.
func (t *Table) DependsOnExtra(member, key string, properties ...string) {
	if key == "" {
		panic(vmerrors.New("E050").WithDetailf("%s: DependsOnExtra(%q) with empty key", t.typ, member))
	}
	t.addDependent(key, member, properties)
}

func (t *Table) addHandler(key string, run func(any) error, properties []string) {
	if len(properties) == 0 {
		panic(vmerrors.New("E050").WithDetailf("%s: handler without trigger properties", t.typ))
	}
	t.handlers = append(t.handlers, handlerDecl{
		key:        key,
		properties: slices.Clone(properties),
		run:        run,
	})
}

func (t *Table) addDependent(key, member string, properties []string) {
	if member == "" || len(properties) == 0 {
		panic(vmerrors.New("E050").WithDetailf("%s: dependent %q needs a member and trigger properties", t.typ, member))
	}
	t.dependents = append(t.dependents, dependentDecl{
		key:        key,
		member:     member,
		properties: slices.Clone(properties),
	})
}

func adapt[V any](t *Table, fn func(V) error) func(any) error {
	if fn == nil {
		panic(vmerrors.New("E050").WithDetailf("%s: nil handler", t.typ))
	}
	vt := reflect.TypeFor[V]()
	if t.typ == nil || !t.typ.AssignableTo(vt) {
		panic(vmerrors.New("E050").WithDetailf("handler for %s cannot receive %s", vt, t.typ))
	}
	return func(self any) error {
		return fn(self.(V))
	}
}

// Store is the frozen dependency table of one view model type.
type Store struct {
	typ        reflect.Type
	handlers   []handlerDecl
	dependents []dependentDecl
}

// Type returns the view model type this store describes.
func (s *Store) Type() reflect.Type {
	return s.typ
}

// HandlerCount returns the number of declared handlers, item and extra.
func (s *Store) HandlerCount() int {
	return len(s.handlers)
}

// Dependents returns the members re-announced when the item property changes,
// in declaration order.
func (s *Store) Dependents(property string) []string {
	return s.dependentsFor("", property)
}

// ExtraDependents returns the members re-announced when property changes on
// the extra connection key.
func (s *Store) ExtraDependents(key, property string) []string {
	return s.dependentsFor(key, property)
}

func (s *Store) dependentsFor(key, property string) []string {
	var out []string
	for _, d := range s.dependents {
		if matches(d.key, d.properties, key, property) {
			out = append(out, d.member)
		}
	}
	return out
}

func (s *Store) notify(c *core, property string) error {
	return s.run(c, "", property)
}

func (s *Store) notifyExtra(c *core, property, key string) error {
	return s.run(c, key, property)
}

// run invokes matching handlers, then re-announces matching dependents.
// Handler errors are returned as is.
func (s *Store) run(c *core, key, property string) error {
	for _, h := range s.handlers {
		if matches(h.key, h.properties, key, property) {
			if err := h.run(c.self); err != nil {
				return err
			}
		}
	}
	for _, d := range s.dependents {
		if matches(d.key, d.properties, key, property) {
			if err := c.NotifyProperty(d.member); err != nil {
				return err
			}
		}
	}
	return nil
}

// stores caches one entry per concrete view model type for the process
// lifetime.
var stores sync.Map // map[reflect.Type]*storeEntry

type storeEntry struct {
	once     sync.Once
	store    *Store
	panicked any
}

// StoreFor returns the dependency store of vm's concrete type, building it on
// first use. Concurrent first calls build it once.
func StoreFor(vm any) *Store {
	typ := reflect.TypeOf(vm)

	v, ok := stores.Load(typ)
	if !ok {
		v, _ = stores.LoadOrStore(typ, &storeEntry{})
	}
	e := v.(*storeEntry)
	e.once.Do(func() { e.build(typ, vm) })
	if e.store == nil {
		panic(e.panicked)
	}
	return e.store
}

func (e *storeEntry) build(typ reflect.Type, vm any) {
	defer func() {
		if r := recover(); r != nil {
			e.panicked = r
		}
	}()

	t := &Table{typ: typ}
	if d, ok := vm.(Declarer); ok {
		d.DeclareDependencies(t)
	}
	e.store = &Store{
		typ:        typ,
		handlers:   t.handlers,
		dependents: t.dependents,
	}
}
