package viewmodel

import (
	"errors"

	vmerrors "github.com/vango-dev/vmbase/internal/errors"
)

// Sentinel errors. Returned errors are coded *errors.Error values wrapping
// these, so callers test with errors.Is.
var (
	// ErrDisposed is returned when a disposed view model is asked to register
	// children, notify, or handle a change.
	ErrDisposed = errors.New("viewmodel: disposed")

	// ErrDuplicateConnection is returned when the same source is connected
	// twice to one view model.
	ErrDuplicateConnection = errors.New("viewmodel: duplicate extra connection")

	// ErrUncomparableSource is returned when an extra connection source cannot
	// be used as an identity key.
	ErrUncomparableSource = errors.New("viewmodel: uncomparable source")

	// ErrChildTypeMismatch is returned when a property slot already holds
	// children of a different type than requested.
	ErrChildTypeMismatch = errors.New("viewmodel: child type mismatch")
)

func (c *core) disposedError(op string) error {
	return vmerrors.New("E001").
		WithDetailf("%s on disposed %s", op, c.typeName).
		Wrap(ErrDisposed)
}
