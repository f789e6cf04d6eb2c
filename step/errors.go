package step

import (
	"errors"
	"fmt"
)

// WriteError is returned when a writer rejects a chunk.
type WriteError struct {
	Cause error
	Items int
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %d items: %v", e.Items, e.Cause)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}

func AsWriteError(err error) (*WriteError, bool) {
	var we *WriteError
	if errors.As(err, &we) {
		return we, true
	}
	return nil, false
}
