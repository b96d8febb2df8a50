package vector

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch is returned when a vector's length differs from the
	// index dimension, or when a batch has different numbers of vectors and IDs.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrCorruptIndex is returned by LoadOrCreate when the persisted index is
	// inconsistent. The file is left in place for the operator.
	ErrCorruptIndex = errors.New("corrupt index")

	// ErrPersistence is returned when the index could not be written to disk.
	// The in-memory state has been rolled back when this is returned from Add.
	ErrPersistence = errors.New("index persistence failed")

	// ErrInvalidK is returned when top-k is not positive.
	ErrInvalidK = errors.New("k must be positive")
)

// DimensionError reports a vector whose length differs from the index dimension.
type DimensionError struct {
	Expected int
	Actual   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Is reports ErrDimensionMismatch as a match so callers can use errors.Is.
func (e *DimensionError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptIndex, fmt.Sprintf(format, args...))
}
