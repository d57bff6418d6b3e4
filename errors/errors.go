// Package errors defines all exported error sentinels for the keyedstore library.
//
// This is the single source of truth for error values. Both the top-level
// keyedstore package and the commands import from here, so errors.Is checks
// work across package boundaries.
package errors

import (
	"errors"
	"fmt"
)

// Construction errors
var (
	ErrInvalidCapacity   = errors.New("keyedstore: capacity must be at least 1")
	ErrAllocationFailure = errors.New("keyedstore: bucket array could not be allocated")
	ErrNilRelease        = errors.New("keyedstore: release function is nil")
)

// Put rejections. Every specific rejection wraps ErrRejected, so callers that
// only care whether the value was stored can test for ErrRejected alone.
var (
	ErrRejected       = errors.New("keyedstore: put rejected")
	ErrNilValue       = fmt.Errorf("%w: nil value", ErrRejected)
	ErrStoreFull      = fmt.Errorf("%w: store is at capacity", ErrRejected)
	ErrStoreDestroyed = fmt.Errorf("%w: store is destroyed", ErrRejected)
)

// Hash function lookup
var (
	ErrUnknownHashFunc = errors.New("keyedstore: unknown hash function")
)
