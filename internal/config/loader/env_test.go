package loader

import (
	"testing"
	"time"
)

func newTestEnvLoader(env ...string) *EnvLoader {
	l := NewEnvLoader("BUTTONKIT_")
	l.environ = func() []string { return env }
	return l
}

func TestEnvLoader_Load(t *testing.T) {
	l := newTestEnvLoader(
		"BUTTONKIT_LOG_LEVEL=debug",
		"BUTTONKIT_HOLD_INTERVAL=500ms",
		"BUTTONKIT_GPIO_ACTIVE_LOW=false",
		"BUTTONKIT_DISPATCH_QUEUE_SIZE=64",
		"BUTTONKIT_BUTTON_NAME=doorbell",
		"OTHER_VAR=ignored",
	)

	config, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		path string
		want any
	}{
		{"logging.level", "debug"},
		{"button.holdInterval", 500 * time.Millisecond},
		{"gpio.activeLow", false},
		{"dispatch.queueSize", int64(64)},
		{"button.name", "doorbell"},
	}
	for _, tt := range tests {
		got, ok := GetPath(config, tt.path)
		if !ok {
			t.Errorf("%s missing", tt.path)
			continue
		}
		if got != tt.want {
			t.Errorf("%s = %#v, want %#v", tt.path, got, tt.want)
		}
	}
	if _, ok := config["other"]; ok {
		t.Error("variables without the prefix should be ignored")
	}
}

func TestEnvLoader_AddMapping(t *testing.T) {
	l := newTestEnvLoader("BUTTONKIT_NAME=porch")
	l.AddMapping("BUTTONKIT_NAME", "button.name")

	config, _ := l.Load()
	if got, _ := GetPath(config, "button.name"); got != "porch" {
		t.Errorf("button.name = %v, want porch", got)
	}
}

func TestEnvToPath(t *testing.T) {
	l := NewEnvLoader("BUTTONKIT_")
	tests := []struct {
		env  string
		want string
	}{
		{"BUTTONKIT_GPIO_PIN", "gpio.pin"},
		{"BUTTONKIT_GPIO_POLL_TIMEOUT", "gpio.pollTimeout"},
		{"BUTTONKIT_DEBUG", "debug"},
		{"BUTTONKIT_", ""},
	}
	for _, tt := range tests {
		if got := l.envToPath(tt.env); got != tt.want {
			t.Errorf("envToPath(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"", ""},
		{"true", true},
		{"Off", false},
		{"42", int64(42)},
		{"1.5", 1.5},
		{"2s", 2 * time.Second},
		{"GPIO17", "GPIO17"},
	}
	for _, tt := range tests {
		if got := parseValue(tt.in); got != tt.want {
			t.Errorf("parseValue(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
