package intelligence

import "time"

// Clock tracks the two timestamps the proactive engine needs: the most
// recent user turn and the most recent proactive message.
//
// It is pure time arithmetic with no side effects. An unset timestamp is
// reported through the ok return value, which stands in for an infinite
// elapsed duration. The Clock is not safe for concurrent use on its own;
// the owning session serializes access.
type Clock struct {
	// lastUserMessageAt is the timestamp of the most recent user turn.
	// Zero until the first turn arrives.
	lastUserMessageAt time.Time

	// lastProactiveAt is the timestamp of the most recent proactive
	// message. Zero until the first proactive message is sent.
	lastProactiveAt time.Time
}

// NewClock creates a clock with both timestamps unset.
func NewClock() *Clock {
	return &Clock{}
}

// RecordUserActivity notes that the user sent a turn at the given time.
func (c *Clock) RecordUserActivity(now time.Time) {
	c.lastUserMessageAt = now
}

// RecordProactiveSent notes that a proactive message was sent at the given
// time.
func (c *Clock) RecordProactiveSent(now time.Time) {
	c.lastProactiveAt = now
}

// IdleDuration returns the elapsed time since the last user turn.
//
// ok is false when no turn has ever been recorded; the elapsed value is
// then meaningless and callers should treat the idle time as undefined.
func (c *Clock) IdleDuration(now time.Time) (elapsed time.Duration, ok bool) {
	if c.lastUserMessageAt.IsZero() {
		return 0, false
	}
	return now.Sub(c.lastUserMessageAt), true
}

// SinceLastProactive returns the elapsed time since the last proactive
// message.
//
// ok is false when no proactive message has ever been sent, which callers
// treat as an infinitely long gap.
func (c *Clock) SinceLastProactive(now time.Time) (elapsed time.Duration, ok bool) {
	if c.lastProactiveAt.IsZero() {
		return 0, false
	}
	return now.Sub(c.lastProactiveAt), true
}
