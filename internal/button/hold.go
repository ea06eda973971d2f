package button

import (
	"time"
)

// holdTimer ticks every interval until stopped.
type holdTimer struct {
	ticker *time.Ticker
	stop   chan struct{}
}

// startHoldTimer replaces any running hold timer with a new one.
func (b *Base) startHoldTimer() {
	b.timerMu.Lock()
	defer b.timerMu.Unlock()

	b.stopHoldTimerLocked()
	if b.disposed.Load() {
		return
	}

	b.holdGen++
	t := &holdTimer{
		ticker: time.NewTicker(b.holdInterval),
		stop:   make(chan struct{}),
	}
	b.hold = t
	go b.runHoldTimer(t, b.holdGen)
}

// stopHoldTimer stops and clears the hold timer. Safe with no timer running.
func (b *Base) stopHoldTimer() {
	b.timerMu.Lock()
	defer b.timerMu.Unlock()
	b.stopHoldTimerLocked()
}

func (b *Base) stopHoldTimerLocked() {
	if b.hold == nil {
		return
	}
	b.hold.ticker.Stop()
	close(b.hold.stop)
	b.hold = nil
}

func (b *Base) runHoldTimer(t *holdTimer, gen uint64) {
	for {
		select {
		case <-t.stop:
			return
		case <-t.ticker.C:
			b.holdTick(gen)
		}
	}
}

// holdTick raises a hold notification if the timer that fired is still
// the active one and the button is pressed right now.
func (b *Base) holdTick(gen uint64) {
	b.timerMu.Lock()
	current := b.hold != nil && b.holdGen == gen
	b.timerMu.Unlock()

	if !current || b.IsDisposed() || !b.IsPressed() {
		return
	}

	self := b.hooks
	if err := self.OnButtonHold(NewEvent(self)); err != nil {
		b.logger.WithError(err).Debug("hold notification dropped")
	}
}

// HoldTimerActive reports whether a hold timer is running.
func (b *Base) HoldTimerActive() bool {
	b.timerMu.Lock()
	defer b.timerMu.Unlock()
	return b.hold != nil
}

// HoldInterval returns the interval used by the next hold timer.
func (b *Base) HoldInterval() time.Duration {
	b.timerMu.Lock()
	defer b.timerMu.Unlock()
	return b.holdInterval
}

// SetHoldInterval changes the hold interval. A running timer keeps its
// interval; the new value applies from the next press.
func (b *Base) SetHoldInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	b.timerMu.Lock()
	defer b.timerMu.Unlock()
	b.holdInterval = d
}
