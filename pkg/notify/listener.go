package notify

import "sync/atomic"

// Listener receives property changed notifications from a Source.
type Listener interface {
	// PropertyChanged is called after the named property of the source changed.
	// A returned error aborts the dispatch and is returned from Raise.
	PropertyChanged(property string) error

	// ID returns a unique identifier for this listener.
	// Used for deduplication and removal.
	ID() uint64
}

// Source is anything that emits property changed notifications.
type Source interface {
	Subscribe(l Listener)
	Unsubscribe(l Listener)
}

// globalIDCounter is the source of unique listener IDs.
var globalIDCounter uint64

// NextID returns the next unique listener ID.
// IDs are monotonically increasing and never reused.
func NextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}

// Func adapts a function to the Listener interface.
type Func struct {
	id uint64
	fn func(property string) error
}

// NewFunc returns a Listener calling fn with a fresh ID.
func NewFunc(fn func(property string) error) *Func {
	return &Func{id: NextID(), fn: fn}
}

// PropertyChanged implements Listener.
func (f *Func) PropertyChanged(property string) error {
	return f.fn(property)
}

// ID implements Listener.
func (f *Func) ID() uint64 {
	return f.id
}
