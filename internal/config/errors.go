package config

import (
	"errors"
	"fmt"
)

var (
	// ErrSettingNotFound is returned for a dotted path with no value in any layer.
	ErrSettingNotFound = errors.New("setting not found")

	// ErrTypeMismatch is returned when a value cannot be read as the requested type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrValidationFailed matches every *ValidationError.
	ErrValidationFailed = errors.New("validation failed")

	// ErrInvalidPath is returned by Set for an empty or malformed dotted path.
	ErrInvalidPath = errors.New("invalid setting path")

	// ErrNoFile is returned by Watch when the config has no backing file.
	ErrNoFile = errors.New("no config file to watch")
)

func notFound(path string) error {
	return fmt.Errorf("%s: %w", path, ErrSettingNotFound)
}

// ValidationError reports a decoded setting that buttonkit cannot run with,
// e.g. a non-positive button.holdInterval.
type ValidationError struct {
	Path    string
	Message string
	Value   any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s (got %v)", e.Path, e.Message, e.Value)
}

// Is matches ErrValidationFailed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// TypeError is returned by the typed getters when the stored value has the
// wrong type, e.g. a TOML string under button.holdInterval.
type TypeError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: want %s, have %s", e.Path, e.Expected, e.Actual)
}

// Is matches ErrTypeMismatch.
func (e *TypeError) Is(target error) bool {
	return target == ErrTypeMismatch
}
