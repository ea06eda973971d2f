// Package app wires configuration, logging, a button driver and optional Lua
// listeners into a running buttonkit process, and manages their lifecycle.
package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/host/v3"

	"github.com/dshills/buttonkit/internal/button"
	"github.com/dshills/buttonkit/internal/config"
	gpiodriver "github.com/dshills/buttonkit/internal/driver/gpio"
	"github.com/dshills/buttonkit/internal/driver/term"
	"github.com/dshills/buttonkit/internal/event"
	"github.com/dshills/buttonkit/internal/event/dispatch"
	"github.com/dshills/buttonkit/internal/logging"
	"github.com/dshills/buttonkit/internal/script"
)

// Driver is a button that reads its state from some input source.
type Driver interface {
	button.Button
	Name() string
	On(name event.Name, listener button.Listener) error
	Run(ctx context.Context) error
	SetHoldInterval(d time.Duration)
	Stats() dispatch.Stats
}

// Options configures the application. Non-zero fields override the
// corresponding config settings.
type Options struct {
	// ConfigPath is the path to the TOML configuration file.
	ConfigPath string

	// Driver selects the input driver (gpio or term).
	Driver string

	// Pin is the GPIO pin name for the gpio driver.
	Pin string

	// Hold is the hold notification interval.
	Hold time.Duration

	// ScriptPath is a Lua listener script to load.
	ScriptPath string

	// LogLevel sets the logging verbosity.
	LogLevel string

	// LogOutput receives log output. Defaults to stderr.
	LogOutput io.Writer

	// Watch reloads the config file when it changes.
	Watch bool

	// Screen replaces the process terminal for the term driver.
	Screen tcell.Screen

	// PinIn replaces the registry lookup of Pin for the gpio driver.
	PinIn gpio.PinIn
}

// Application is the central coordinator for the buttonkit components.
type Application struct {
	opts Options

	config   *config.Config
	settings config.Settings
	logger   *logging.Logger
	driver   Driver
	closeFn  func() error
	script   *script.Script
	metrics  *Metrics

	running  atomic.Bool
	mu       sync.Mutex
	cancel   context.CancelFunc
	shutdown sync.Once
}

// New creates an Application and bootstraps all components.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:    opts,
		metrics: NewMetrics(),
	}
	if err := app.bootstrap(); err != nil {
		app.Shutdown()
		return nil, err
	}
	return app, nil
}

// bootstrap initializes components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Config
	app.config = config.New(
		config.WithFile(app.opts.ConfigPath),
		config.WithReloadErrorHandler(app.reloadFailed),
	)
	if err := app.config.Load(context.Background()); err != nil {
		return &InitError{Component: "config", Err: err}
	}
	app.applyOverrides()

	settings, err := app.config.Settings()
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	app.settings = settings

	// 2. Logging
	app.logger = logging.New(logging.Config{
		Level:  logging.ParseLevel(settings.Logging.Level),
		Output: app.opts.LogOutput,
		Prefix: "buttonkit",
	})
	logging.SetDefault(app.logger)

	// 3. Driver
	if err := app.openDriver(); err != nil {
		return &InitError{Component: "driver", Err: err}
	}
	if err := app.metrics.Attach(app.driver); err != nil {
		return &InitError{Component: "metrics", Err: err}
	}
	if err := app.attachLogging(); err != nil {
		return &InitError{Component: "logging", Err: err}
	}

	// 4. Script
	if settings.Script.Path != "" {
		s, err := script.LoadFile(settings.Script.Path, app.logger)
		if err != nil {
			return &InitError{Component: "script", Err: err}
		}
		app.script = s
		if err := s.Attach(app.driver); err != nil {
			return &InitError{Component: "script", Err: err}
		}
	}

	// 5. Live reload
	app.config.OnChange(app.applySettings)
	if app.opts.Watch && app.opts.ConfigPath != "" {
		if err := app.config.Watch(); err != nil {
			return &InitError{Component: "config watcher", Err: err}
		}
	}

	return nil
}

// applyOverrides layers the command-line options above the config file.
func (app *Application) applyOverrides() {
	set := func(path string, v any) {
		_ = app.config.Set(path, v)
	}
	if app.opts.Driver != "" {
		set("driver.kind", app.opts.Driver)
	}
	if app.opts.Pin != "" {
		set("gpio.pin", app.opts.Pin)
	}
	if app.opts.Hold > 0 {
		set("button.holdInterval", app.opts.Hold)
	}
	if app.opts.ScriptPath != "" {
		set("script.path", app.opts.ScriptPath)
	}
	if app.opts.LogLevel != "" {
		set("logging.level", app.opts.LogLevel)
	}
}

func (app *Application) buttonOptions() []button.Option {
	s := app.settings.Button
	return []button.Option{
		button.WithName(s.Name),
		button.WithTag(s.Tag),
		button.WithHoldInterval(s.HoldInterval),
		button.WithQueueLimit(app.settings.Dispatch.QueueSize),
		button.WithLogger(app.logger),
	}
}

func (app *Application) openDriver() error {
	switch strings.ToLower(app.settings.Driver.Kind) {
	case config.DriverGPIO:
		pull, err := gpiodriver.ParsePull(app.settings.GPIO.Pull)
		if err != nil {
			return err
		}
		opts := gpiodriver.Options{
			ActiveLow:   app.settings.GPIO.ActiveLow,
			Pull:        pull,
			PollTimeout: app.settings.GPIO.PollTimeout,
			Button:      app.buttonOptions(),
		}

		var b *gpiodriver.Button
		if app.opts.PinIn != nil {
			b = gpiodriver.New(app.opts.PinIn, opts)
		} else {
			if _, err := host.Init(); err != nil {
				return newDriverError(config.DriverGPIO, "host init", err)
			}
			if b, err = gpiodriver.Open(app.settings.GPIO.Pin, opts); err != nil {
				return err
			}
		}
		app.driver = b
		app.closeFn = b.Close
		return nil

	case config.DriverTerm:
		var (
			b   *term.Button
			err error
		)
		if app.opts.Screen != nil {
			b = term.New(app.opts.Screen, app.buttonOptions()...)
		} else if b, err = term.Open(app.buttonOptions()...); err != nil {
			return err
		}
		app.driver = b
		app.closeFn = func() error {
			b.Close()
			return nil
		}
		return nil

	default:
		return ErrUnknownDriver
	}
}

// attachLogging logs each notification. Hold notifications repeat, so they
// are logged at debug.
func (app *Application) attachLogging() error {
	log := app.logger.WithComponent("events")
	for _, name := range button.Names() {
		name := name
		err := app.driver.On(name, func(evt button.Event) {
			l := log.WithFields(map[string]any{"event": name.String(), "id": evt.ID(), "source": evt.Source()})
			if name == button.ButtonHold {
				l.Debug("%s", name)
				return
			}
			l.Info("%s", name)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// applySettings applies the settings that can change at runtime.
func (app *Application) applySettings(s config.Settings) {
	app.mu.Lock()
	app.settings = s
	app.mu.Unlock()

	app.logger.SetLevel(logging.ParseLevel(s.Logging.Level))
	if app.driver != nil {
		app.driver.SetHoldInterval(s.Button.HoldInterval)
	}
	app.logger.WithFields(map[string]any{
		"level": s.Logging.Level,
		"hold":  s.Button.HoldInterval.String(),
	}).Info("configuration reloaded")
}

func (app *Application) reloadFailed(err error) {
	if app.logger != nil {
		app.logger.WithError(err).Warn("configuration reload failed")
	}
}

// Run drives the button until ctx is cancelled, the driver stops or
// Shutdown is called.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	app.mu.Lock()
	app.cancel = cancel
	app.mu.Unlock()
	defer cancel()

	settings := app.Settings()
	app.logger.WithFields(map[string]any{
		"driver": settings.Driver.Kind,
		"button": app.driver.Name(),
		"hold":   settings.Button.HoldInterval.String(),
	}).Info("running")

	err := app.driver.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return newDriverError(settings.Driver.Kind, "run", err)
	}
	return nil
}

// IsRunning returns true if the application is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Shutdown stops the driver and releases every component. It is safe to
// call more than once and from a signal handler.
func (app *Application) Shutdown() {
	app.shutdown.Do(app.doShutdown)
}

// doShutdown performs cleanup in reverse initialization order.
func (app *Application) doShutdown() {
	app.mu.Lock()
	cancel := app.cancel
	app.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	if app.config != nil {
		app.config.Close()
	}
	if app.closeFn != nil {
		if err := app.closeFn(); err != nil && app.logger != nil {
			app.logger.WithError(err).Warn("closing driver")
		}
	}
	if app.script != nil {
		app.script.Close()
	}

	if app.logger != nil {
		m := app.metrics.Snapshot()
		app.logger.WithFields(map[string]any{
			"stateChanged": m.StateChanged,
			"pressed":      m.Pressed,
			"released":     m.Released,
			"hold":         m.Hold,
			"maxLatency":   m.MaxLatency.String(),
			"uptime":       m.Uptime.Round(time.Millisecond).String(),
		}).Info("stopped")
	}
}

// Config returns the configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Settings returns the settings currently in effect.
func (app *Application) Settings() config.Settings {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.settings
}

// Driver returns the button driver.
func (app *Application) Driver() Driver {
	return app.driver
}

// Metrics returns the notification counters.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}
