package notify

import (
	"reflect"
	"sync"
)

// Emitter is an embeddable Source.
// The zero value is ready to use.
type Emitter struct {
	subs  []Listener
	subMu sync.RWMutex // guards subs
}

// Subscribe adds a listener. A listener whose ID is already subscribed is
// ignored.
func (e *Emitter) Subscribe(l Listener) {
	if l == nil {
		return
	}

	e.subMu.Lock()
	defer e.subMu.Unlock()

	lid := l.ID()
	for _, existing := range e.subs {
		if existing.ID() == lid {
			return
		}
	}

	e.subs = append(e.subs, l)
}

// Unsubscribe removes a listener. Order of remaining listeners is preserved.
func (e *Emitter) Unsubscribe(l Listener) {
	if l == nil {
		return
	}

	e.subMu.Lock()
	defer e.subMu.Unlock()

	lid := l.ID()
	for i, existing := range e.subs {
		if existing.ID() == lid {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			return
		}
	}
}

// Len returns the number of subscribed listeners.
func (e *Emitter) Len() int {
	e.subMu.RLock()
	defer e.subMu.RUnlock()
	return len(e.subs)
}

// Raise notifies every listener that property changed, in subscription order.
// Listeners may subscribe or unsubscribe while being notified: ones added
// during the dispatch are not called, ones removed before their turn are
// skipped. The first listener error stops the dispatch and is returned
// unchanged.
func (e *Emitter) Raise(property string) error {
	e.subMu.RLock()
	subs := make([]Listener, len(e.subs))
	copy(subs, e.subs)
	e.subMu.RUnlock()

	for _, sub := range subs {
		if !e.subscribed(sub.ID()) {
			continue
		}
		if err := sub.PropertyChanged(property); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) subscribed(id uint64) bool {
	e.subMu.RLock()
	defer e.subMu.RUnlock()
	for _, l := range e.subs {
		if l.ID() == id {
			return true
		}
	}
	return false
}

// Set stores value into *field and raises property when the value changed.
// Equality uses == for comparable types and reflect.DeepEqual otherwise.
func Set[T any](e *Emitter, field *T, value T, property string) error {
	if equals(*field, value) {
		return nil
	}
	*field = value
	return e.Raise(property)
}

func equals[T any](a, b T) bool {
	av, bv := any(a), any(b)
	if t := reflect.TypeOf(av); t != nil && t.Comparable() {
		return av == bv
	}
	return reflect.DeepEqual(av, bv)
}
