package viewmodel

import (
	"errors"

	"github.com/vango-dev/vmbase/pkg/notify"
)

// person is a change-notifying domain item.
type person struct {
	notify.Emitter
	first string
	last  string
}

func (p *person) SetFirst(v string) error { return notify.Set(&p.Emitter, &p.first, v, "First") }
func (p *person) SetLast(v string) error  { return notify.Set(&p.Emitter, &p.last, v, "Last") }

// settings is a secondary source used through extra connections.
type settings struct {
	notify.Emitter
	theme string
}

func (s *settings) SetTheme(v string) error { return notify.Set(&s.Emitter, &s.theme, v, "Theme") }

type childVM struct {
	Base[*person]
	label string
}

func newChildVM(item *person, env *Env) *childVM {
	vm := &childVM{}
	vm.Init(vm, item, env)
	return vm
}

// Grandchild exercises recursive disposal.
func (vm *childVM) Grandchild() *childVM {
	return MustRegisterChild(vm, "Grandchild", func() *childVM {
		return newChildVM(nil, vm.Env())
	})
}

var errHandler = errors.New("handler failed")

type parentVM struct {
	Base[*person]

	factoryCalls int
	onFactory    func()
	calls        []string
	failName     bool
}

func newParentVM(item *person, env *Env) *parentVM {
	vm := &parentVM{}
	vm.Init(vm, item, env)
	return vm
}

func (vm *parentVM) DeclareDependencies(t *Table) {
	t.DependsOnItem("FullName", "First", "Last")
	t.DependsOnItem("Child", "Last")
	OnItem(t, (*parentVM).nameChanged, "First", "Last")
	OnItem(t, (*parentVM).firstChanged, "First")
	OnExtra(t, "settings", (*parentVM).themeChanged, "Theme")
	t.DependsOnExtra("ThemeLabel", "settings", "Theme")
}

func (vm *parentVM) nameChanged() error {
	vm.calls = append(vm.calls, "nameChanged")
	if vm.failName {
		return errHandler
	}
	return nil
}

func (vm *parentVM) firstChanged() error {
	vm.calls = append(vm.calls, "firstChanged")
	return nil
}

func (vm *parentVM) themeChanged() error {
	vm.calls = append(vm.calls, "themeChanged")
	return nil
}

func (vm *parentVM) OnItemPropertyChanged(property string) error {
	vm.calls = append(vm.calls, "hook:"+property)
	return nil
}

func (vm *parentVM) OnExtraPropertyChanged(property, key string) error {
	vm.calls = append(vm.calls, "extraHook:"+key+"."+property)
	return nil
}

func (vm *parentVM) Child() *childVM {
	return MustRegisterChild(vm, "Child", func() *childVM {
		if vm.onFactory != nil {
			vm.onFactory()
		}
		vm.factoryCalls++
		return newChildVM(vm.Item(), vm.Env())
	})
}

// recorder captures the names announced on a source.
type recorder struct {
	*notify.Func
	names []string
}

func record(src notify.Source) *recorder {
	r := &recorder{}
	r.Func = notify.NewFunc(func(p string) error {
		r.names = append(r.names, p)
		return nil
	})
	src.Subscribe(r)
	return r
}

func (r *recorder) count(name string) int {
	n := 0
	for _, got := range r.names {
		if got == name {
			n++
		}
	}
	return n
}

// trackedChild counts Dispose calls.
type trackedChild struct {
	disposed int
}

func (c *trackedChild) Dispose() { c.disposed++ }

type panicChild struct{}

func (panicChild) Dispose() { panic("boom") }
