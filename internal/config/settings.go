package config

import (
	"errors"
	"strings"
	"time"

	"github.com/dshills/buttonkit/internal/logging"
)

// Driver kinds accepted by driver.kind.
const (
	DriverGPIO = "gpio"
	DriverTerm = "term"
)

// Settings is the typed view of the merged configuration.
type Settings struct {
	Button   ButtonSettings
	Dispatch DispatchSettings
	Logging  LoggingSettings
	Driver   DriverSettings
	GPIO     GPIOSettings
	Script   ScriptSettings
}

// ButtonSettings configures the button itself.
type ButtonSettings struct {
	Name         string
	Tag          string
	HoldInterval time.Duration
}

// DispatchSettings configures the notification queue.
// QueueSize 0 means unbounded.
type DispatchSettings struct {
	QueueSize int
}

// LoggingSettings configures the logger.
type LoggingSettings struct {
	Level string
}

// DriverSettings selects the input driver.
type DriverSettings struct {
	Kind string
}

// GPIOSettings configures the GPIO driver.
type GPIOSettings struct {
	Pin         string
	ActiveLow   bool
	Pull        string
	PollTimeout time.Duration
}

// ScriptSettings configures the optional Lua listener script.
type ScriptSettings struct {
	Path string
}

// Settings decodes the merged configuration and validates it.
func (c *Config) Settings() (Settings, error) {
	var (
		s    Settings
		errs []error
	)
	str := func(path string, dst *string) {
		v, err := c.GetString(path)
		if err != nil {
			errs = append(errs, err)
			return
		}
		*dst = v
	}
	dur := func(path string, dst *time.Duration) {
		v, err := c.GetDuration(path)
		if err != nil {
			errs = append(errs, err)
			return
		}
		*dst = v
	}

	str("button.name", &s.Button.Name)
	str("button.tag", &s.Button.Tag)
	dur("button.holdInterval", &s.Button.HoldInterval)
	if n, err := c.GetInt("dispatch.queueSize"); err != nil {
		errs = append(errs, err)
	} else {
		s.Dispatch.QueueSize = n
	}
	str("logging.level", &s.Logging.Level)
	str("driver.kind", &s.Driver.Kind)
	str("gpio.pin", &s.GPIO.Pin)
	if b, err := c.GetBool("gpio.activeLow"); err != nil {
		errs = append(errs, err)
	} else {
		s.GPIO.ActiveLow = b
	}
	str("gpio.pull", &s.GPIO.Pull)
	dur("gpio.pollTimeout", &s.GPIO.PollTimeout)
	str("script.path", &s.Script.Path)

	if len(errs) > 0 {
		return s, errors.Join(errs...)
	}
	return s, s.Validate()
}

// Validate checks value ranges and enumerations.
func (s Settings) Validate() error {
	var errs []error
	if s.Button.HoldInterval <= 0 {
		errs = append(errs, &ValidationError{Path: "button.holdInterval", Message: "must be positive", Value: s.Button.HoldInterval})
	}
	if s.Dispatch.QueueSize < 0 {
		errs = append(errs, &ValidationError{Path: "dispatch.queueSize", Message: "must not be negative", Value: s.Dispatch.QueueSize})
	}
	if !logging.ValidLevel(s.Logging.Level) {
		errs = append(errs, &ValidationError{Path: "logging.level", Message: "unknown level", Value: s.Logging.Level})
	}
	switch strings.ToLower(s.Driver.Kind) {
	case DriverGPIO, DriverTerm:
	default:
		errs = append(errs, &ValidationError{Path: "driver.kind", Message: "must be gpio or term", Value: s.Driver.Kind})
	}
	switch strings.ToLower(s.GPIO.Pull) {
	case "up", "down", "none", "float":
	default:
		errs = append(errs, &ValidationError{Path: "gpio.pull", Message: "must be up, down or none", Value: s.GPIO.Pull})
	}
	if s.GPIO.PollTimeout <= 0 {
		errs = append(errs, &ValidationError{Path: "gpio.pollTimeout", Message: "must be positive", Value: s.GPIO.PollTimeout})
	}
	return errors.Join(errs...)
}
