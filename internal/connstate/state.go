// Package connstate implements the connection state machine shared by
// the sender and receiver engines (spec.md §4.3): Closed, SynSent /
// SynReceived, Established, FinWait. It owns no I/O of its own; the
// engines call its transition methods as frames arrive or timers fire.
package connstate

import "github.com/pkg/errors"

// State is one of the five connection states.
type State uint8

const (
	Closed State = iota
	SynSent
	SynReceived
	Established
	FinWait
)

func (s State) String() string {
	switch s {
	case Closed:
		return "CLOSED"
	case SynSent:
		return "SYN_SENT"
	case SynReceived:
		return "SYN_RECEIVED"
	case Established:
		return "ESTABLISHED"
	case FinWait:
		return "FIN_WAIT"
	default:
		return "UNKNOWN"
	}
}

// MaxRetries is the per-control-frame retry cap (SYN, FIN, FILE_NAME).
const MaxRetries = 5

// ErrRetriesExhausted is returned when a control exchange's retry cap is
// reached without a response (spec.md §7).
var ErrRetriesExhausted = errors.New("control frame retries exhausted")

// Machine holds the current connection state for one session.
type Machine struct {
	state State
}

// New creates a Machine starting in Closed.
func New() *Machine {
	return &Machine{state: Closed}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// set moves the machine to s. It is unconditional; callers decide when a
// transition is valid per the table in spec.md §4.3.
func (m *Machine) set(s State) { m.state = s }

// ---- Sender-side transitions ----

// Open moves Closed -> SynSent, as the sender does on open().
func (m *Machine) Open() { m.set(SynSent) }

// EstablishAsSender moves SynSent -> Established on a verified SYN-ACK.
func (m *Machine) EstablishAsSender() { m.set(Established) }

// Close moves Established -> FinWait, as the sender does on close().
func (m *Machine) Close() { m.set(FinWait) }

// FinAcked moves FinWait -> Closed on a verified FIN-ACK.
func (m *Machine) FinAcked() { m.set(Closed) }

// ---- Receiver-side transitions ----

// ReceiveSyn moves Closed -> SynReceived on a verified inbound SYN.
func (m *Machine) ReceiveSyn() { m.set(SynReceived) }

// EstablishAsReceiver moves SynReceived -> Established on the sender's
// third-leg ACK.
func (m *Machine) EstablishAsReceiver() { m.set(Established) }

// ReceiveFin moves Established -> Closed on an inbound FIN.
func (m *Machine) ReceiveFin() { m.set(Closed) }

// Abandon forces the machine to Closed after retries are exhausted.
func (m *Machine) Abandon() { m.set(Closed) }
