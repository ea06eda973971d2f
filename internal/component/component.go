// Package component provides the generic device component capability:
// a stable ID, a name/tag pair, an ordered property bag and a one-way
// disposed flag.
package component

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Property is a single key/value entry of a component's property bag.
type Property struct {
	Key   string
	Value string
}

// Component is the shared base for device abstractions.
// It is safe for concurrent use.
type Component struct {
	id string

	mu    sync.RWMutex
	name  string
	tag   string
	keys  []string
	props map[string]string

	disposed atomic.Bool
}

// New creates a component with the given name.
func New(name string) *Component {
	return &Component{
		id:    uuid.New().String(),
		name:  name,
		props: make(map[string]string),
	}
}

// ID returns the component's unique identifier.
func (c *Component) ID() string {
	return c.id
}

// Name returns the component name.
func (c *Component) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// SetName sets the component name.
func (c *Component) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

// Tag returns the user-defined tag.
func (c *Component) Tag() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tag
}

// SetTag sets the user-defined tag.
func (c *Component) SetTag(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tag = tag
}

// IsDisposed returns true once Dispose has been called.
func (c *Component) IsDisposed() bool {
	return c.disposed.Load()
}

// Dispose releases the property bag and marks the component disposed.
// Calling it more than once is a no-op.
func (c *Component) Dispose() {
	if c.disposed.Swap(true) {
		return
	}
	c.mu.Lock()
	c.keys = nil
	c.props = make(map[string]string)
	c.mu.Unlock()
}

// Properties returns a copy of the property bag in insertion order.
func (c *Component) Properties() []Property {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Property, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, Property{Key: k, Value: c.props[k]})
	}
	return out
}

// HasProperty reports whether key is present in the property bag.
func (c *Component) HasProperty(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.props[key]
	return ok
}

// Property returns the value stored under key.
func (c *Component) Property(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.props[key]
	return v, ok
}

// SetProperty stores value under key. Existing keys keep their position.
func (c *Component) SetProperty(key, value string) error {
	if c.IsDisposed() {
		return NewDisposedError(c.Name())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.props[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.props[key] = value
	return nil
}
