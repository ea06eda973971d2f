package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/dshills/buttonkit/internal/config/watcher"
)

func TestNew_Defaults(t *testing.T) {
	c := New(WithEnv(false))
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	s, err := c.Settings()
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if s.Button.HoldInterval != 2000*time.Millisecond {
		t.Errorf("HoldInterval = %v, want 2s", s.Button.HoldInterval)
	}
	if s.Button.Name != "button" {
		t.Errorf("Name = %q, want button", s.Button.Name)
	}
	if s.Driver.Kind != DriverTerm {
		t.Errorf("Driver.Kind = %q, want term", s.Driver.Kind)
	}
	if !s.GPIO.ActiveLow {
		t.Error("GPIO.ActiveLow should default to true")
	}
	if s.Dispatch.QueueSize != 0 {
		t.Errorf("QueueSize = %d, want 0", s.Dispatch.QueueSize)
	}
}

func TestLoad_LayerPrecedence(t *testing.T) {
	fsys := fstest.MapFS{
		"buttonkit.toml": {Data: []byte(`
[button]
name = "doorbell"
holdInterval = "750ms"

[logging]
level = "warn"
`)},
	}
	t.Setenv("BUTTONKIT_LOG_LEVEL", "debug")

	c := New(WithFile("buttonkit.toml"), WithFileSystem(fsys))
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got, _ := c.GetString("button.name"); got != "doorbell" {
		t.Errorf("button.name = %q, want file value doorbell", got)
	}
	if got, _ := c.GetDuration("button.holdInterval"); got != 750*time.Millisecond {
		t.Errorf("button.holdInterval = %v, want 750ms", got)
	}
	if got, _ := c.GetString("logging.level"); got != "debug" {
		t.Errorf("logging.level = %q, env should win over file", got)
	}

	if err := c.Set("logging.level", "error"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, _ := c.GetString("logging.level"); got != "error" {
		t.Errorf("logging.level = %q, Set should win over env", got)
	}
}

func TestGetters_Errors(t *testing.T) {
	c := New(WithEnv(false))

	if _, err := c.GetString("no.such"); !errors.Is(err, ErrSettingNotFound) {
		t.Errorf("GetString(missing) = %v, want ErrSettingNotFound", err)
	}
	if _, err := c.GetInt("button.name"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("GetInt(string) = %v, want ErrTypeMismatch", err)
	}
	if _, err := c.GetBool("gpio.pin"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("GetBool(string) = %v, want ErrTypeMismatch", err)
	}
	if err := c.Set("", 1); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("Set(\"\") = %v, want ErrInvalidPath", err)
	}
}

func TestGetDuration(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    time.Duration
		wantErr bool
	}{
		{"int millis", int64(1500), 1500 * time.Millisecond, false},
		{"duration", 3 * time.Second, 3 * time.Second, false},
		{"string", "250ms", 250 * time.Millisecond, false},
		{"numeric string", "100", 100 * time.Millisecond, false},
		{"float millis", 2.5, 2500 * time.Microsecond, false},
		{"garbage", "soon", 0, true},
		{"bool", true, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(WithEnv(false))
			c.Set("button.holdInterval", tt.value)

			got, err := c.GetDuration("button.holdInterval")
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetDuration() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("GetDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSettings_Validation(t *testing.T) {
	tests := []struct {
		path  string
		value any
	}{
		{"button.holdInterval", int64(0)},
		{"dispatch.queueSize", int64(-1)},
		{"logging.level", "loud"},
		{"driver.kind", "usb"},
		{"gpio.pull", "sideways"},
		{"gpio.pollTimeout", "-1s"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			c := New(WithEnv(false))
			c.Set(tt.path, tt.value)

			_, err := c.Settings()
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("Settings() error = %v, want ErrValidationFailed", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Path != tt.path {
				t.Errorf("validation error should name %s, got %v", tt.path, err)
			}
		})
	}
}

func TestSettings_TypeError(t *testing.T) {
	c := New(WithEnv(false))
	c.Set("gpio.activeLow", "maybe")

	if _, err := c.Settings(); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Settings() error = %v, want ErrTypeMismatch", err)
	}
}

func TestMerged_ReturnsCopy(t *testing.T) {
	c := New(WithEnv(false))
	m := c.Merged()
	m["button"].(map[string]any)["name"] = "mutated"

	if got, _ := c.GetString("button.name"); got != "button" {
		t.Errorf("button.name = %q, Merged must return a copy", got)
	}
}

func TestWatch_NoFile(t *testing.T) {
	c := New(WithEnv(false))
	if err := c.Watch(); !errors.Is(err, ErrNoFile) {
		t.Errorf("Watch() = %v, want ErrNoFile", err)
	}
}

func TestWatch_ReloadNotifiesObservers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "buttonkit.toml")
	if err := os.WriteFile(path, []byte("[button]\nholdInterval = 2000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(WithFile(path), WithEnv(false))
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	changes := make(chan Settings, 4)
	c.OnChange(func(s Settings) { changes <- s })

	if err := c.Watch(watcher.WithDebounce(20 * time.Millisecond)); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer c.Close()

	if err := os.WriteFile(path, []byte("[button]\nholdInterval = 300\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case s := <-changes:
		if s.Button.HoldInterval != 300*time.Millisecond {
			t.Errorf("reloaded HoldInterval = %v, want 300ms", s.Button.HoldInterval)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload notification")
	}
}

func TestReload_ParseErrorKeepsPrevious(t *testing.T) {
	fsys := fstest.MapFS{
		"buttonkit.toml": {Data: []byte("[button]\nname = \"one\"\n")},
	}
	c := New(WithFile("buttonkit.toml"), WithFileSystem(fsys), WithEnv(false))
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	fsys["buttonkit.toml"] = &fstest.MapFile{Data: []byte("[button\n")}
	if err := c.Reload(); err == nil {
		t.Fatal("Reload() should fail on invalid TOML")
	}
	if got, _ := c.GetString("button.name"); got != "one" {
		t.Errorf("button.name = %q, previous file layer should be kept", got)
	}
}
