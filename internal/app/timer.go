package app

import (
	"time"

	"quiz-engine/internal/domain"
)

// Clock is the tick source that drives question countdowns.
// Reset restarts the period so the next tick is one full interval away.
type Clock interface {
	C() <-chan time.Time
	Reset()
	Stop()
}

// TickerClock is a Clock backed by time.Ticker.
type TickerClock struct {
	ticker   *time.Ticker
	interval time.Duration
}

func NewTickerClock(interval time.Duration) *TickerClock {
	if interval <= 0 {
		interval = time.Second
	}
	return &TickerClock{ticker: time.NewTicker(interval), interval: interval}
}

func (c *TickerClock) Reset() {
	c.ticker.Reset(c.interval)
}

func (c *TickerClock) C() <-chan time.Time {
	return c.ticker.C
}

func (c *TickerClock) Stop() {
	c.ticker.Stop()
}

// countdown consumes one second of the current question's time.
// Terminal questions never count down; expired is true once an open question hits zero.
func (s *sessionState) countdown() (changed, expired bool) {
	if s.status().Terminal() {
		return false, false
	}
	if s.remaining[s.current] > 0 {
		s.remaining[s.current]--
		changed = true
	}
	return changed, s.remaining[s.current] == 0
}

// Tick advances the current question's countdown by one second.
// When the countdown reaches zero the question times out and the session moves on.
// The returned bool reports whether anything observable changed.
func (c *Controller) Tick() (domain.Update, bool, error) {
	if c.state != domain.StateInProgress {
		return domain.Update{}, false, c.invalid("tick")
	}
	if err := c.session.checkIndex(); err != nil {
		return domain.Update{}, false, err
	}
	changed, expired := c.session.countdown()
	if expired {
		update, err := c.OnTimerExpired()
		return update, err == nil, err
	}
	return c.snapshot(), changed, nil
}
