package annie

import (
	"errors"
	"fmt"

	"github.com/hupe1980/annie/blobstore"
	"github.com/hupe1980/annie/index"
)

var (
	// ErrInvalidParameter is returned for bad construction arguments.
	ErrInvalidParameter = index.ErrInvalidParameter

	// ErrDimensionMismatch is returned when a vector or query has the wrong length.
	// The concrete error is a *DimensionMismatchError.
	ErrDimensionMismatch = index.ErrDimensionMismatch

	// ErrEmptyIndex is returned when searching an index without live entries.
	ErrEmptyIndex = index.ErrEmptyIndex

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = index.ErrInvalidK

	// ErrNotFound is returned when a persisted index does not exist.
	ErrNotFound = index.ErrNotFound

	// ErrCorruptFormat is returned for malformed persisted data.
	ErrCorruptFormat = index.ErrCorruptFormat
)

// DimensionMismatchError reports the expected and actual vector length.
type DimensionMismatchError = index.DimensionMismatchError

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Not found unification.
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if errors.Is(err, blobstore.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	return err
}
