package connstate

import "time"

// RetryTimeout is the per-retry timeout for control frames (SYN, FIN,
// FILE_NAME), per spec.md §4.3.
const RetryTimeout = 1000 * time.Millisecond

// RetryTimer bounds a control exchange to MaxRetries retransmissions,
// each RetryTimeout apart. It is polled from the cooperative loop
// (spec.md §5) rather than driven by its own goroutine/ticker, since a
// session's frame handling is non-suspending.
type RetryTimer struct {
	lastSent time.Time
	retries  int
}

// Arm starts (or restarts) the timer at now, with the retry count at
// zero — call once when the control frame is first sent.
func (t *RetryTimer) Arm(now time.Time) {
	t.lastSent = now
	t.retries = 0
}

// Due reports whether RetryTimeout has elapsed since the last send.
func (t *RetryTimer) Due(now time.Time) bool {
	return now.Sub(t.lastSent) >= RetryTimeout
}

// Exhausted reports whether the retry cap has been reached.
func (t *RetryTimer) Exhausted() bool {
	return t.retries >= MaxRetries
}

// Retry records a retransmission at now and resets the deadline.
func (t *RetryTimer) Retry(now time.Time) {
	t.retries++
	t.lastSent = now
}

// Retries returns the number of retransmissions sent so far.
func (t *RetryTimer) Retries() int { return t.retries }
