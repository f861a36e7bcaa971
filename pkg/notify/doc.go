// Package notify provides the "property changed" signal that view models and
// the domain items they observe are built on.
//
// A Source accepts Listeners. An Emitter is the embeddable Source
// implementation: domain types embed it and call Raise after mutating a field.
//
//	type Person struct {
//	    notify.Emitter
//	    name string
//	}
//
//	func (p *Person) SetName(name string) error {
//	    return notify.Set(&p.Emitter, &p.name, name, "Name")
//	}
//
// Listeners are identified by ID, so subscribing the same listener twice is a
// no-op and Unsubscribe does not depend on func comparison.
package notify
