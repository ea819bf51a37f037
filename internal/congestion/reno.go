// Package congestion implements the Reno-style congestion controller
// used by the sender engine (spec.md §4.4). It is deliberately isolated
// from socket I/O and the SendBuffer so its arithmetic can be tested on
// its own, the way a production TCP stack's congestion controller is
// split from the segment-retransmission bookkeeping around it (grounded
// on the sender/congestion split in the gVisor-derived netstack `snd.go`
// reviewed for this module).
package congestion

// State is one of the three Reno congestion states.
type State int

const (
	SlowStart State = iota
	CongestionAvoidance
	FastRecovery
)

func (s State) String() string {
	switch s {
	case SlowStart:
		return "slow-start"
	case CongestionAvoidance:
		return "congestion-avoidance"
	case FastRecovery:
		return "fast-recovery"
	default:
		return "unknown"
	}
}

// dupAckThreshold is the conventional Reno fast-retransmit trigger:
// three identical duplicate ACKs beyond the last cumulative ACK. The
// source this protocol was ported from disagreed with itself about
// counting to 2 or to 3 (spec.md §9); this implementation adopts 3.
const dupAckThreshold = 3

// Reno tracks cwnd, ssthresh, and the current congestion state for one
// sender session.
type Reno struct {
	State    State
	Cwnd     float64
	Ssthresh uint32
	DupAcks  uint32
	LastAck  uint32
}

// New creates a Reno controller starting in slow start with an initial
// congestion window of one frame and ssthresh equal to the advertised
// window size (spec.md §4.4's initial values).
func New(windowSize uint32) *Reno {
	return &Reno{
		State:    SlowStart,
		Cwnd:     1.0,
		Ssthresh: windowSize,
	}
}

// Window returns the effective send window in frames: min(floor(cwnd),
// windowSize), never less than one frame.
func (r *Reno) Window(windowSize uint32) uint32 {
	w := uint32(r.Cwnd)
	if w < 1 {
		w = 1
	}
	return min(w, windowSize)
}

// OnNewAck evolves cwnd/state for a cumulative ACK that advanced base,
// and records ack as the new LastAck for future duplicate detection.
func (r *Reno) OnNewAck(ack uint32) {
	r.DupAcks = 0
	switch r.State {
	case SlowStart:
		r.Cwnd++
		if r.Cwnd >= float64(r.Ssthresh) {
			r.State = CongestionAvoidance
		}
	case CongestionAvoidance:
		r.Cwnd += 1.0 / r.Cwnd
	case FastRecovery:
		r.Cwnd = float64(r.Ssthresh)
		r.State = CongestionAvoidance
	}
	r.LastAck = ack
}

// OnDuplicateAck records one more duplicate ACK equal to LastAck and
// reports whether the caller should now fast-retransmit the segment at
// LastAck. While already in FastRecovery, each further duplicate ACK
// inflates cwnd by one frame.
func (r *Reno) OnDuplicateAck() (fastRetransmit bool) {
	r.DupAcks++
	switch {
	case r.DupAcks == dupAckThreshold:
		r.Ssthresh = max(uint32(r.Cwnd/2), 2)
		r.Cwnd = float64(r.Ssthresh) + 3
		r.State = FastRecovery
		return true
	case r.DupAcks > dupAckThreshold && r.State == FastRecovery:
		r.Cwnd++
	}
	return false
}

// OnTimeout resets the controller to slow start after a retransmission
// timeout, setting ssthresh to half of cwnd (at least 2).
func (r *Reno) OnTimeout() {
	r.Ssthresh = max(uint32(r.Cwnd/2), 2)
	r.Cwnd = 1.0
	r.State = SlowStart
	r.DupAcks = 0
}
