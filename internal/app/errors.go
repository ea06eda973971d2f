package app

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is returned by Run while another Run is active.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrUnknownDriver indicates driver.kind names no known driver.
	ErrUnknownDriver = errors.New("unknown driver")
)

// InitError reports which component failed during bootstrap.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// DriverError wraps a failure of the button driver, e.g. a GPIO pin that
// could not be configured once Run started.
type DriverError struct {
	Driver string // driver.kind, "gpio" or "term"
	Op     string
	Err    error
}

func newDriverError(driver, op string, err error) *DriverError {
	return &DriverError{Driver: driver, Op: op, Err: err}
}

func (e *DriverError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Driver + " driver"
	if e.Op != "" {
		msg += " " + e.Op
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *DriverError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
