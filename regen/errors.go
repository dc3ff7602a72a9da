package regen

import (
	"errors"
	"fmt"
)

// ErrUnknownTarget is returned for a target key that was never registered.
var ErrUnknownTarget = errors.New("unknown target")

// BackendError wraps a failed generation call.
type BackendError struct {
	Provider string
	Err      error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// EmptyGenerationError means the backend answered with no usable text.
type EmptyGenerationError struct {
	Provider string
}

func (e *EmptyGenerationError) Error() string {
	return fmt.Sprintf("no response generated from %s", e.Provider)
}

// PersistenceError means an output artifact could not be written.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to save %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
