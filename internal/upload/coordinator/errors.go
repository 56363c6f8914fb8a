package coordinator

import (
	"errors"
	"fmt"
)

var (
	ErrTooManyFiles = errors.New("too many files")
	ErrBatchFailed  = errors.New("upload batch failed")
)

// TooManyFilesError is returned when a batch would push the gallery past its
// limit. Remaining is how many more images the gallery can take.
type TooManyFilesError struct {
	Remaining int
}

func (e *TooManyFilesError) Error() string {
	return fmt.Sprintf("too many files: %d more allowed", e.Remaining)
}

func (e *TooManyFilesError) Is(target error) bool { return target == ErrTooManyFiles }

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("pipeline panic: %v", e.value)
}
