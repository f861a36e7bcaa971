package demo

import (
	"github.com/vango-dev/vmbase/pkg/viewmodel"
)

// ParentVM owns a single ChildVM under the "Child" property.
type ParentVM struct {
	viewmodel.Base[any]
}

// NewParentVM creates a parent without an item.
func NewParentVM(env *viewmodel.Env) *ParentVM {
	vm := &ParentVM{}
	vm.Init(vm, nil, env)
	return vm
}

// Child returns the current child, creating it on first access.
func (vm *ParentVM) Child() *ChildVM {
	return viewmodel.MustRegisterChild(vm, "Child", func() *ChildVM {
		return NewChildVM(vm.Env())
	})
}

// RunNotify announces Child, replacing the current child.
func (vm *ParentVM) RunNotify() error {
	return vm.NotifyProperty("Child")
}

// ChildVM is an empty view model owned by ParentVM.
type ChildVM struct {
	viewmodel.Base[any]
}

// NewChildVM creates a child without an item.
func NewChildVM(env *viewmodel.Env) *ChildVM {
	vm := &ChildVM{}
	vm.Init(vm, nil, env)
	return vm
}
