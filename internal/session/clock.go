package session

import "time"

// DefaultIdleTimeout closes a session after this much silence.
const DefaultIdleTimeout = 48 * time.Second

// Clock tracks the single open session, if any.
type Clock struct {
	idle         time.Duration
	open         bool
	start        time.Time
	lastActivity time.Time
}

func NewClock(idle time.Duration) *Clock {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Clock{idle: idle}
}

// Touch records activity without opening a session.
func (c *Clock) Touch(now time.Time) {
	c.lastActivity = now
}

// OnActivity opens a session at now if none is open, and records activity.
func (c *Clock) OnActivity(now time.Time) {
	if !c.open {
		c.open = true
		c.start = now
	}
	c.lastActivity = now
}

// CheckIdle closes the open session once now is more than the idle timeout past
// the last activity. It returns true only on the call that closed it.
func (c *Clock) CheckIdle(now time.Time) bool {
	if !c.open || now.Sub(c.lastActivity) <= c.idle {
		return false
	}
	c.open = false
	c.start = time.Time{}
	return true
}

// Elapsed is now - start; false when no session is open.
func (c *Clock) Elapsed(now time.Time) (time.Duration, bool) {
	if !c.open {
		return 0, false
	}
	return now.Sub(c.start), true
}

func (c *Clock) Open() bool { return c.open }

func (c *Clock) Start() time.Time { return c.start }

func (c *Clock) LastActivity() time.Time { return c.lastActivity }

func (c *Clock) IdleTimeout() time.Duration { return c.idle }
