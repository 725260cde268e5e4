package index

import (
	"errors"
	"fmt"

	"github.com/hupe1980/annie/persistence"
	"github.com/hupe1980/annie/vectorstore"
)

var (
	// ErrInvalidParameter is returned for bad construction arguments.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDimensionMismatch is returned when a vector has the wrong length.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrEmptyIndex is returned when searching an index without live entries.
	ErrEmptyIndex = errors.New("index is empty")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrNotFound is returned when a persisted index does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCorruptFormat is returned for malformed persisted data.
	ErrCorruptFormat = persistence.ErrCorruptFormat
)

// DimensionMismatchError reports the expected and actual vector length.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Unwrap makes the error match ErrDimensionMismatch.
func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }

// StoreError maps vector store validation errors onto the index taxonomy.
func StoreError(err error) error {
	if err == nil {
		return nil
	}
	var de *vectorstore.DimensionError
	if errors.As(err, &de) {
		return fmt.Errorf("vector %d: %w", de.Index, &DimensionMismatchError{Expected: de.Expected, Actual: de.Actual})
	}
	if errors.Is(err, vectorstore.ErrLengthMismatch) || errors.Is(err, vectorstore.ErrInvalidDimension) || errors.Is(err, vectorstore.ErrFull) {
		return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	return err
}

// ValidateSearch checks the arguments common to every search.
func ValidateSearch(s *vectorstore.Store, query []float32, k int) error {
	if k <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	if s.IsEmpty() {
		return ErrEmptyIndex
	}
	if len(query) != s.Dimension() {
		return &DimensionMismatchError{Expected: s.Dimension(), Actual: len(query)}
	}
	return nil
}
