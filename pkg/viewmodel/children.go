package viewmodel

import (
	"reflect"

	vmerrors "github.com/vango-dev/vmbase/internal/errors"
	"github.com/vango-dev/vmbase/pkg/notify"
)

// childEntry ties a child to the property that produced it.
// Entries are identified by handle, never by comparing children.
type childEntry struct {
	handle   uint64
	property string
	child    Disposable
}

// RegisterChildren returns the children registered under property, calling
// factory to create and register them only when the slot is empty.
//
// A slot holding children of another type than C is an error rather than a
// silently empty result.
func RegisterChildren[C Disposable](p Parent, property string, factory func() []C) ([]C, error) {
	c := p.base()
	if c.disposed.Load() {
		return nil, c.disposedError("RegisterChildren " + property)
	}

	var existing []C
	found := false
	for _, e := range c.children {
		if e.property != property {
			continue
		}
		found = true
		child, ok := e.child.(C)
		if !ok {
			return nil, vmerrors.New("E003").
				WithDetailf("%s.%s holds %T, requested %s", c.typeName, property, e.child, reflect.TypeFor[C]()).
				Wrap(ErrChildTypeMismatch)
		}
		existing = append(existing, child)
	}
	if found {
		return existing, nil
	}

	created := factory()
	for _, child := range created {
		c.children = append(c.children, childEntry{
			handle:   notify.NextID(),
			property: property,
			child:    child,
		})
	}
	return created, nil
}

// RegisterChild is RegisterChildren for a single child.
func RegisterChild[C Disposable](p Parent, property string, factory func() C) (C, error) {
	children, err := RegisterChildren(p, property, func() []C {
		return []C{factory()}
	})
	if err != nil {
		var zero C
		return zero, err
	}
	return children[0], nil
}

// MustRegisterChild is RegisterChild for getters; it panics on error.
func MustRegisterChild[C Disposable](p Parent, property string, factory func() C) C {
	child, err := RegisterChild(p, property, factory)
	if err != nil {
		panic(err)
	}
	return child
}

// MustRegisterChildren is RegisterChildren for getters; it panics on error.
func MustRegisterChildren[C Disposable](p Parent, property string, factory func() []C) []C {
	children, err := RegisterChildren(p, property, factory)
	if err != nil {
		panic(err)
	}
	return children
}

// DisposeChildren disposes and forgets the children registered under property.
func (c *core) DisposeChildren(property string) {
	var stale []childEntry
	kept := make([]childEntry, 0, len(c.children))
	for _, e := range c.children {
		if e.property == property {
			stale = append(stale, e)
		} else {
			kept = append(kept, e)
		}
	}
	if len(stale) == 0 {
		return
	}

	c.children = kept
	for _, e := range stale {
		c.disposeChild(e)
	}
	c.log().Debug("children invalidated", "property", property, "count", len(stale))
}

// Children returns the children currently registered under property.
func (c *core) Children(property string) []Disposable {
	var out []Disposable
	for _, e := range c.children {
		if e.property == property {
			out = append(out, e.child)
		}
	}
	return out
}

// ChildCount returns the number of registered children across all properties.
func (c *core) ChildCount() int {
	return len(c.children)
}
