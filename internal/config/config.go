// Package config provides layered configuration for buttonkit.
//
// Values are resolved from three layers, later layers winning:
//
//	defaults < TOML file < environment (BUTTONKIT_*)
//
// Values set with Set sit above all three. Settings decodes the merged
// result into a typed struct, and Watch reloads the file when it changes
// and hands the new Settings to every OnChange observer.
package config

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dshills/buttonkit/internal/config/loader"
	"github.com/dshills/buttonkit/internal/config/watcher"
)

// DefaultEnvPrefix is the prefix of environment variables read by Load.
const DefaultEnvPrefix = "BUTTONKIT_"

// Config provides access to the merged configuration.
type Config struct {
	mu sync.RWMutex

	path      string
	fs        loader.FileSystem
	envPrefix string
	useEnv    bool

	file      map[string]any
	env       map[string]any
	overrides map[string]any
	merged    map[string]any

	watcher   *watcher.Watcher
	observers []func(Settings)
	onError   func(error)
}

// Option configures a Config instance.
type Option func(*Config)

// WithFile sets the TOML file to load. A missing file is not an error.
func WithFile(path string) Option {
	return func(c *Config) {
		c.path = path
	}
}

// WithFileSystem replaces the file system the TOML loader reads from.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fsys
	}
}

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}

// WithEnv enables or disables the environment layer.
func WithEnv(enable bool) Option {
	return func(c *Config) {
		c.useEnv = enable
	}
}

// WithReloadErrorHandler sets the handler for errors that occur while
// reloading a watched file.
func WithReloadErrorHandler(h func(error)) Option {
	return func(c *Config) {
		c.onError = h
	}
}

// New creates a Config holding only defaults. Call Load to read the file and
// environment.
func New(opts ...Option) *Config {
	c := &Config{
		fs:        loader.OSFS{},
		envPrefix: DefaultEnvPrefix,
		useEnv:    true,
		overrides: make(map[string]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.rebuild()
	return c
}

// Path returns the config file path, or "" when none was given.
func (c *Config) Path() string {
	return c.path
}

// Load reads the file and environment layers.
func (c *Config) Load(_ context.Context) error {
	file, err := c.loadFile()
	if err != nil {
		return err
	}

	var env map[string]any
	if c.useEnv {
		if env, err = loader.NewEnvLoader(c.envPrefix).Load(); err != nil {
			return fmt.Errorf("loading environment: %w", err)
		}
	}

	c.mu.Lock()
	c.file = file
	c.env = env
	c.rebuild()
	c.mu.Unlock()
	return nil
}

// Reload re-reads the file layer and notifies observers.
// The environment layer is kept as loaded.
func (c *Config) Reload() error {
	file, err := c.loadFile()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.file = file
	c.rebuild()
	c.mu.Unlock()

	s, err := c.Settings()
	if err != nil {
		return err
	}
	c.notify(s)
	return nil
}

func (c *Config) loadFile() (map[string]any, error) {
	if c.path == "" {
		return nil, nil
	}
	return loader.NewTOMLLoaderWithFS(c.fs, c.path).Load()
}

// rebuild recomputes the merged map. Caller holds c.mu.
func (c *Config) rebuild() {
	merged := defaultConfig()
	loader.DeepMerge(merged, c.file)
	loader.DeepMerge(merged, c.env)
	loader.DeepMerge(merged, c.overrides)
	c.merged = merged
}

// Get returns the value at the given path from the merged configuration.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.GetPath(c.merged, path)
}

// Set overrides the value at path above every other layer.
func (c *Config) Set(path string, value any) error {
	if path == "" || path[0] == '.' || path[len(path)-1] == '.' {
		return ErrInvalidPath
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	loader.SetPath(c.overrides, path, value)
	c.rebuild()
	return nil
}

// Merged returns a copy of the fully merged configuration.
func (c *Config) Merged() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.Clone(c.merged)
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", notFound(path)
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetInt returns an integer value at the given path.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, notFound(path)
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		return int(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
	}
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, notFound(path)
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// GetFloat returns a float64 value at the given path.
func (c *Config) GetFloat(path string) (float64, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, notFound(path)
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "float64", Actual: typeName(v)}
	}
}

// GetDuration returns a duration at the given path. Integers are read as
// milliseconds; strings use time.ParseDuration syntax ("2s", "500ms").
func (c *Config) GetDuration(path string) (time.Duration, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, notFound(path)
	}
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case int:
		return time.Duration(val) * time.Millisecond, nil
	case int64:
		return time.Duration(val) * time.Millisecond, nil
	case float64:
		return time.Duration(val * float64(time.Millisecond)), nil
	case string:
		if ms, err := strconv.ParseInt(val, 10, 64); err == nil {
			return time.Duration(ms) * time.Millisecond, nil
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, &TypeError{Path: path, Expected: "duration", Actual: fmt.Sprintf("string %q", val)}
		}
		return d, nil
	default:
		return 0, &TypeError{Path: path, Expected: "duration", Actual: typeName(v)}
	}
}

// OnChange registers fn to receive the new Settings after each successful
// reload.
func (c *Config) OnChange(fn func(Settings)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

func (c *Config) notify(s Settings) {
	c.mu.RLock()
	observers := make([]func(Settings), len(c.observers))
	copy(observers, c.observers)
	c.mu.RUnlock()

	for _, fn := range observers {
		fn(s)
	}
}

func (c *Config) reportError(err error) {
	c.mu.RLock()
	h := c.onError
	c.mu.RUnlock()
	if h != nil {
		h(err)
	}
}

// Watch starts reloading the config file whenever it changes on disk.
func (c *Config) Watch(opts ...watcher.Option) error {
	if c.path == "" {
		return ErrNoFile
	}

	c.mu.Lock()
	if c.watcher != nil {
		c.mu.Unlock()
		return nil
	}
	opts = append([]watcher.Option{watcher.WithErrorHandler(c.reportError)}, opts...)
	w, err := watcher.New(opts...)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("creating config watcher: %w", err)
	}
	c.watcher = w
	c.mu.Unlock()

	if err := w.Watch(c.path, c.handleFileChange); err != nil {
		c.Close()
		return fmt.Errorf("watching %s: %w", c.path, err)
	}
	return nil
}

func (c *Config) handleFileChange(string) {
	if err := c.Reload(); err != nil {
		c.reportError(err)
	}
}

// Close stops watching the config file.
func (c *Config) Close() {
	c.mu.Lock()
	w := c.watcher
	c.watcher = nil
	c.mu.Unlock()

	if w != nil {
		w.Close()
	}
}

// defaultConfig returns the default configuration values.
func defaultConfig() map[string]any {
	return map[string]any{
		"button": map[string]any{
			"name":         "button",
			"tag":          "",
			"holdInterval": int64(2000),
		},
		"dispatch": map[string]any{
			"queueSize": int64(0),
		},
		"logging": map[string]any{
			"level": "info",
		},
		"driver": map[string]any{
			"kind": "term",
		},
		"gpio": map[string]any{
			"pin":         "GPIO17",
			"activeLow":   true,
			"pull":        "up",
			"pollTimeout": int64(250),
		},
		"script": map[string]any{
			"path": "",
		},
	}
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	case int, int64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case time.Duration:
		return "duration"
	case []any:
		return "[]any"
	case map[string]any:
		return "map"
	default:
		return fmt.Sprintf("%T", v)
	}
}
