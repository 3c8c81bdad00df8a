package engine

import (
	"errors"
	"fmt"
)

var ErrNilHandler = errors.New("job has no handler")

// PanicError carries a value recovered from a job handler.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// IsPanic reports whether err came from a recovered panic.
func IsPanic(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}
