package component

import "errors"

// ErrDisposed is matched by every DisposedError via errors.Is.
var ErrDisposed = errors.New("operation on disposed object")

// DisposedError reports use of a component after it was disposed.
type DisposedError struct {
	// Component is the name of the disposed component.
	Component string
}

// NewDisposedError creates a DisposedError for the named component.
func NewDisposedError(component string) *DisposedError {
	return &DisposedError{Component: component}
}

// Error implements the error interface.
func (e *DisposedError) Error() string {
	if e.Component == "" {
		return ErrDisposed.Error()
	}
	return ErrDisposed.Error() + ": " + e.Component
}

// Is allows errors.Is to match DisposedError with ErrDisposed.
func (e *DisposedError) Is(target error) bool {
	return target == ErrDisposed
}
