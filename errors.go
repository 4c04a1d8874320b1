package lshgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/lshgo/hash"
	"github.com/hupe1980/lshgo/metric"
	"github.com/hupe1980/lshgo/store"
)

var (
	// ErrStorageExhausted is returned when the entry store cannot grow:
	// growth was requested under persistent storage, or the memory budget
	// denied the allocation. The failing insert leaves the index unchanged.
	ErrStorageExhausted = errors.New("lshgo: storage exhausted")

	// ErrClosed is returned by operations on a closed index.
	ErrClosed = errors.New("lshgo: index closed")

	// ErrHandleNotFound is returned when a handle does not address an entry.
	ErrHandleNotFound = errors.New("lshgo: handle not found")

	// ErrNotFound is returned by QueryBuilder.First when no result matches.
	ErrNotFound = errors.New("lshgo: not found")
)

// ErrInvalidConfiguration indicates a malformed parameter at construction.
// The index is not created.
type ErrInvalidConfiguration struct {
	Parameter string
	Reason    string
}

func (e *ErrInvalidConfiguration) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Parameter, e.Reason)
}

// ErrDimensionMismatch indicates an embedding whose length disagrees with
// the index width. The offending call fails and index state is unchanged.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// translateError maps subpackage errors onto the root error surface so that
// callers program against a single set of types.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *hash.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}

	if errors.Is(err, metric.ErrSizeMismatch) || errors.Is(err, store.ErrWrongDimension) {
		return &ErrDimensionMismatch{cause: err}
	}

	if errors.Is(err, store.ErrStorageExhausted) {
		return fmt.Errorf("%w: %w", ErrStorageExhausted, err)
	}

	if errors.Is(err, store.ErrHandleNotFound) {
		return fmt.Errorf("%w: %w", ErrHandleNotFound, err)
	}

	if errors.Is(err, store.ErrClosed) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}

	return err
}
