// Package script runs Lua listeners for button notifications.
//
// A script registers handlers with on(name, fn) and may write to the
// application log with log(msg):
//
//	on("buttonPressed", function(e)
//	  log(e.source .. " pressed at " .. e.time)
//	end)
//
// Each handler receives a table with the fields name, state, id, time
// (Unix milliseconds) and source. gopher-lua states are not goroutine-safe,
// so every call into Lua is serialized by the Script.
package script

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/buttonkit/internal/button"
	"github.com/dshills/buttonkit/internal/event"
	"github.com/dshills/buttonkit/internal/logging"
)

// ErrClosed is returned when operating on a closed script.
var ErrClosed = errors.New("script is closed")

// Target is anything listeners can be attached to. *button.Base and the
// driver buttons embedding it satisfy it.
type Target interface {
	On(name event.Name, listener button.Listener) error
}

// Script owns a Lua state and the handlers it registered.
type Script struct {
	mu       sync.Mutex
	L        *lua.LState
	name     string
	logger   *logging.Logger
	handlers map[event.Name][]*lua.LFunction
	closed   bool

	calls  atomic.Int64
	failed atomic.Int64
}

// New creates a script runtime with the base, table, string and math
// libraries. name identifies the script in logs.
func New(name string, logger *logging.Logger) *Script {
	if logger == nil {
		logger = logging.Default()
	}
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	s := &Script{
		L:        L,
		name:     name,
		logger:   logger.WithComponent("script").WithField("script", name),
		handlers: make(map[event.Name][]*lua.LFunction),
	}
	L.SetGlobal("on", L.NewFunction(s.luaOn))
	L.SetGlobal("log", L.NewFunction(s.luaLog))
	return s
}

// LoadFile creates a script and runs the file at path.
func LoadFile(path string, logger *logging.Logger) (*Script, error) {
	s := New(path, logger)
	if err := s.DoFile(path); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// DoFile runs a Lua file.
func (s *Script) DoFile(path string) error {
	return s.do(func() error { return s.L.DoFile(path) })
}

// DoString runs a Lua chunk.
func (s *Script) DoString(code string) error {
	return s.do(func() error { return s.L.DoString(code) })
}

func (s *Script) do(fn func() error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	if err := fn(); err != nil {
		return fmt.Errorf("running %s: %w", s.name, err)
	}
	return nil
}

// Attach subscribes the script to every notification of target. Handlers
// registered later with on() are picked up without re-attaching.
func (s *Script) Attach(target Target) error {
	for _, name := range button.Names() {
		name := name
		if err := target.On(name, func(evt button.Event) { s.Dispatch(name, evt) }); err != nil {
			return fmt.Errorf("attaching %s: %w", name, err)
		}
	}
	return nil
}

// Dispatch calls every Lua handler registered for name. Handler errors are
// logged and counted; they do not stop the remaining handlers.
func (s *Script) Dispatch(name event.Name, evt button.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	fns := s.handlers[name]
	if len(fns) == 0 {
		return
	}
	tbl := s.eventTable(name, evt)
	for _, fn := range fns {
		s.calls.Add(1)
		if err := s.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, tbl); err != nil {
			s.failed.Add(1)
			s.logger.WithError(err).WithField("event", name).Warn("handler failed")
		}
	}
}

func (s *Script) eventTable(name event.Name, evt button.Event) *lua.LTable {
	tbl := s.L.NewTable()
	tbl.RawSetString("name", lua.LString(name))
	state := button.Unknown
	if b := evt.Button(); b != nil {
		state = b.State()
	}
	tbl.RawSetString("state", lua.LString(strings.ToLower(state.String())))
	tbl.RawSetString("id", lua.LString(evt.ID()))
	tbl.RawSetString("time", lua.LNumber(evt.Timestamp().UnixMilli()))
	tbl.RawSetString("source", lua.LString(evt.Source()))
	return tbl
}

// Handlers returns how many Lua handlers are registered for name.
func (s *Script) Handlers(name event.Name) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers[name])
}

// Calls returns the number of handler invocations.
func (s *Script) Calls() int64 {
	return s.calls.Load()
}

// Failures returns the number of handler invocations that raised an error.
func (s *Script) Failures() int64 {
	return s.failed.Load()
}

// Close releases the Lua state. Later notifications are ignored.
func (s *Script) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.handlers = nil
	s.L.Close()
}

// luaOn implements on(name, fn). Called with s.mu held.
func (s *Script) luaOn(L *lua.LState) int {
	name := event.Name(L.CheckString(1))
	fn := L.CheckFunction(2)

	known := false
	for _, n := range button.Names() {
		if n == name {
			known = true
			break
		}
	}
	if !known {
		L.ArgError(1, fmt.Sprintf("unknown event %q", name))
		return 0
	}
	s.handlers[name] = append(s.handlers[name], fn)
	return 0
}

// luaLog implements log(...).
func (s *Script) luaLog(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	s.logger.Info("%s", strings.Join(parts, " "))
	return 0
}
