package app

import (
	"sync/atomic"
	"time"

	"github.com/dshills/buttonkit/internal/button"
	"github.com/dshills/buttonkit/internal/event"
)

// Metrics counts delivered button notifications.
type Metrics struct {
	stateChanged atomic.Uint64
	pressed      atomic.Uint64
	released     atomic.Uint64
	hold         atomic.Uint64

	// Latency from event creation to listener delivery.
	latencyTotalNs atomic.Int64
	latencyMaxNs   atomic.Int64
	lastNs         atomic.Int64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// Record counts one delivered notification.
func (m *Metrics) Record(name event.Name, evt button.Event) {
	switch name {
	case button.StateChanged:
		m.stateChanged.Add(1)
	case button.ButtonPressed:
		m.pressed.Add(1)
	case button.ButtonReleased:
		m.released.Add(1)
	case button.ButtonHold:
		m.hold.Add(1)
	default:
		return
	}

	now := time.Now()
	m.lastNs.Store(now.UnixNano())

	ns := now.Sub(evt.Timestamp()).Nanoseconds()
	if ns < 0 {
		ns = 0
	}
	m.latencyTotalNs.Add(ns)
	for {
		old := m.latencyMaxNs.Load()
		if ns <= old {
			break
		}
		if m.latencyMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// Attach records every notification raised by target.
func (m *Metrics) Attach(target interface {
	On(event.Name, button.Listener) error
}) error {
	for _, name := range button.Names() {
		name := name
		if err := target.On(name, func(evt button.Event) { m.Record(name, evt) }); err != nil {
			return err
		}
	}
	return nil
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	StateChanged uint64
	Pressed      uint64
	Released     uint64
	Hold         uint64

	AvgLatency time.Duration
	MaxLatency time.Duration
	Last       time.Time
	Uptime     time.Duration
}

// Total returns the number of notifications of all kinds.
func (s MetricsSnapshot) Total() uint64 {
	return s.StateChanged + s.Pressed + s.Released + s.Hold
}

// Snapshot returns the current values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		StateChanged: m.stateChanged.Load(),
		Pressed:      m.pressed.Load(),
		Released:     m.released.Load(),
		Hold:         m.hold.Load(),
		MaxLatency:   time.Duration(m.latencyMaxNs.Load()),
		Uptime:       time.Since(m.startTime),
	}
	if total := s.Total(); total > 0 {
		s.AvgLatency = time.Duration(m.latencyTotalNs.Load() / int64(total))
	}
	if last := m.lastNs.Load(); last > 0 {
		s.Last = time.Unix(0, last)
	}
	return s
}
