// Package filesender implements the sender engine (spec.md §4.4):
// connection establishment, the file-name handoff, the sliding-window
// data transfer with Reno congestion control, and graceful teardown.
package filesender

import (
	"time"

	"github.com/rutgers-cs352/netxfer/internal/congestion"
	"github.com/rutgers-cs352/netxfer/internal/connstate"
	"github.com/rutgers-cs352/netxfer/internal/endpoint"
	"github.com/rutgers-cs352/netxfer/internal/seqmap"
	"github.com/rutgers-cs352/netxfer/internal/wire"
)

// idleSleep is how long the cooperative loop rests when there is no work
// to do (spec.md §5).
const idleSleep = time.Millisecond

// isn is the sender's initial sequence number. The spec allows an
// implementation to randomize it; this one keeps it fixed at zero, which
// makes transfers deterministic and easy to test (spec.md §4.4).
const isn wire.SeqNum = 0

type segment struct {
	frame     wire.Frame
	firstSent time.Time
	lastSent  time.Time
}

// Sender drives one outbound file transfer over an already-bound
// endpoint, as a single cooperative loop (spec.md §5): each pass through
// Connect/SendFileName/SendFile/Disconnect polls the socket, processes
// at most one inbound frame, checks timers, emits outbound frames, and
// sleeps briefly only when there is nothing to do.
type Sender struct {
	ep   *endpoint.Endpoint
	conn *connstate.Machine
	reno *congestion.Reno

	base    wire.SeqNum
	nextSeq wire.SeqNum

	segments *seqmap.Map[*segment]

	synTimer   connstate.RetryTimer
	finTimer   connstate.RetryTimer
	fnameTimer connstate.RetryTimer

	stats Stats
}

// New creates a Sender bound to ep. ep must already know its peer (see
// endpoint.Dial), since the sender is configured with the receiver's
// address up front rather than discovering it from an inbound frame.
func New(ep *endpoint.Endpoint) *Sender {
	return &Sender{
		ep:       ep,
		conn:     connstate.New(),
		reno:     congestion.New(wire.WindowSize),
		segments: seqmap.New[*segment](),
	}
}

// State returns the current connection state.
func (s *Sender) State() connstate.State { return s.conn.State() }

// Stats returns the transfer statistics accumulated so far.
func (s *Sender) Stats() Stats { return s.stats }

// Connect drives the three-way handshake (spec.md §4.3): send SYN, wait
// for SYN-ACK, send the third-leg ACK. It retries the SYN up to
// connstate.MaxRetries times on a connstate.RetryTimeout cadence.
func (s *Sender) Connect() error {
	s.conn.Open()
	syn := wire.Frame{Header: wire.Header{Type: wire.SYN, SeqNum: isn}}
	if err := s.ep.Send(syn); err != nil {
		return err
	}
	s.synTimer.Arm(time.Now())

	for {
		now := time.Now()
		if s.synTimer.Exhausted() {
			s.conn.Abandon()
			return connstate.ErrRetriesExhausted
		}
		if s.synTimer.Due(now) {
			if err := s.ep.Send(syn); err != nil {
				return err
			}
			s.synTimer.Retry(now)
		}

		f, _, ok, err := s.ep.TryRecv()
		if err != nil {
			return err
		}
		if ok && f.Header.Type == wire.SynAck && f.Header.AckNum == isn+1 {
			ack := wire.Frame{Header: wire.Header{
				Type:   wire.Ack,
				SeqNum: isn + 1,
				AckNum: f.Header.SeqNum + 1,
			}}
			if err := s.ep.Send(ack); err != nil {
				return err
			}
			s.conn.EstablishAsSender()
			s.base = isn + 1
			s.nextSeq = isn + 1
			return nil
		}

		time.Sleep(idleSleep)
	}
}

// SendFile segments data into MaxPayload-sized frames and drives them to
// completion: window admission against the Reno congestion window,
// cumulative/duplicate/SACK ACK handling, and retransmission on a
// 1-second per-frame inactivity timeout (spec.md §4.4). It returns once
// every byte of data has been cumulatively acknowledged.
func (s *Sender) SendFile(data []byte) error {
	n := wire.SeqNum((len(data) + wire.MaxPayload - 1) / wire.MaxPayload)
	final := isn + 1 + n

	for s.base < final {
		if err := s.admitWindow(data, final); err != nil {
			return err
		}

		f, _, ok, err := s.ep.TryRecv()
		if err != nil {
			return err
		}
		if ok && f.Header.Type == wire.Ack {
			s.handleAck(f)
		}

		if err := s.checkTimeout(); err != nil {
			return err
		}

		if s.base < final {
			time.Sleep(idleSleep)
		}
	}
	return nil
}

// admitWindow sends every frame the effective congestion window newly
// admits, up to final.
func (s *Sender) admitWindow(data []byte, final wire.SeqNum) error {
	effective := wire.SeqNum(s.reno.Window(wire.WindowSize))
	for s.nextSeq < s.base+effective && s.nextSeq < final {
		i := int(s.nextSeq - (isn + 1))
		start := i * wire.MaxPayload
		end := start + wire.MaxPayload
		if end > len(data) {
			end = len(data)
		}
		payload := data[start:end]

		f := wire.Frame{Header: wire.Header{Type: wire.Data, SeqNum: s.nextSeq}, Payload: payload}
		if err := s.ep.Send(f); err != nil {
			return err
		}
		now := time.Now()
		s.segments.Set(s.nextSeq, &segment{frame: f, firstSent: now, lastSent: now})
		s.stats.PacketsSent++
		s.stats.BytesSent += uint64(len(payload))
		s.nextSeq++
	}
	return nil
}

// handleAck applies one ACK frame's effect on base, the congestion
// controller, and SendBuffer, exactly per spec.md §4.4.
func (s *Sender) handleAck(ack wire.Frame) {
	a := ack.Header.AckNum
	switch {
	case a > s.base:
		s.base = a
		s.reno.OnNewAck(uint32(a))
		s.segments.DeleteBelow(a)
	case a == s.base:
		if s.reno.OnDuplicateAck() {
			if seg, ok := s.segments.Get(a); ok {
				if err := s.ep.Send(seg.frame); err == nil {
					seg.lastSent = time.Now()
					s.stats.Retransmissions++
				}
			}
		}
	}
	for _, block := range ack.SACK {
		for seq := block.Left; seq < block.Right; seq++ {
			s.segments.Delete(seq)
		}
	}
}

// checkTimeout retransmits every SendBuffer entry whose last send is
// older than connstate.RetryTimeout, applying the congestion backoff at
// most once regardless of how many frames timed out in this tick.
func (s *Sender) checkTimeout() error {
	now := time.Now()
	adjusted := false
	var sendErr error
	s.segments.Ascend(func(_ wire.SeqNum, seg *segment) bool {
		if now.Sub(seg.lastSent) < connstate.RetryTimeout {
			return true
		}
		if err := s.ep.Send(seg.frame); err != nil {
			sendErr = err
			return false
		}
		seg.lastSent = now
		s.stats.Retransmissions++
		if !adjusted {
			s.reno.OnTimeout()
			adjusted = true
		}
		return true
	})
	return sendErr
}

// Disconnect drives graceful teardown (spec.md §4.3): send FIN, wait for
// FIN-ACK, retrying up to connstate.MaxRetries times. Exhausting retries
// is logged by the caller and the session still proceeds to Closed.
func (s *Sender) Disconnect() error {
	s.conn.Close()
	fin := wire.Frame{Header: wire.Header{Type: wire.Fin, SeqNum: s.nextSeq}}
	if err := s.ep.Send(fin); err != nil {
		return err
	}
	s.finTimer.Arm(time.Now())

	for {
		now := time.Now()
		if s.finTimer.Exhausted() {
			s.conn.Abandon()
			return connstate.ErrRetriesExhausted
		}
		if s.finTimer.Due(now) {
			if err := s.ep.Send(fin); err != nil {
				return err
			}
			s.finTimer.Retry(now)
		}

		f, _, ok, err := s.ep.TryRecv()
		if err != nil {
			return err
		}
		if ok && f.Header.Type == wire.FinAck {
			s.conn.FinAcked()
			return nil
		}

		time.Sleep(idleSleep)
	}
}
