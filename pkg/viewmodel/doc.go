// Package viewmodel provides managed view models: wrappers that observe a
// change-notifying domain item, re-announce dependent properties, and own a tree
// of child view models whose lifetime is tied to a property of the parent.
//
// # Declaring a view model
//
// A view model embeds Base and calls Init from its constructor:
//
//	type PersonVM struct {
//	    viewmodel.Base[*Person]
//	}
//
//	func NewPersonVM(p *Person, env *viewmodel.Env) *PersonVM {
//	    vm := &PersonVM{}
//	    vm.Init(vm, p, env)
//	    return vm
//	}
//
// Dependencies on item properties are declared once per type:
//
//	func (vm *PersonVM) DeclareDependencies(t *viewmodel.Table) {
//	    t.DependsOnItem("FullName", "First", "Last")
//	    viewmodel.OnItem(t, (*PersonVM).nameChanged, "First", "Last")
//	}
//
// When the item raises "First", nameChanged runs and "FullName" is announced on
// the view model's own signal.
//
// # Child view models
//
// Children are created lazily from getters and cached per property:
//
//	func (vm *PersonVM) Address() *AddressVM {
//	    return viewmodel.MustRegisterChild(vm, "Address", func() *AddressVM {
//	        return NewAddressVM(vm.Item().Address(), vm.Env())
//	    })
//	}
//
// NotifyProperty("Address") disposes the cached child, so the next read builds a
// new one. Disposing a view model disposes its whole subtree.
//
// # Threading
//
// A view model graph has a single logical owner; registration and notification
// are not synchronized. The per-type dependency store is safe for concurrent
// first use.
package viewmodel
