// Package filereceiver implements the receiver engine (spec.md §4.5):
// handshake acceptance, the file-name handoff, out-of-order reassembly
// with duplicate suppression, and SACK-decorated cumulative ACKs.
package filereceiver

import (
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/rutgers-cs352/netxfer/internal/connstate"
	"github.com/rutgers-cs352/netxfer/internal/endpoint"
	"github.com/rutgers-cs352/netxfer/internal/seqmap"
	"github.com/rutgers-cs352/netxfer/internal/wire"
)

// idleSleep is how long the cooperative loop rests when there is no work
// to do (spec.md §5).
const idleSleep = time.Millisecond

// Sink is the output the reassembled byte stream is written to.
type Sink interface {
	io.WriteCloser
}

// Opener creates the Sink named by an already-derived output name
// (spec.md §4.5/§4.6). It is an external collaborator: the engine only
// knows it needs "something writable named X".
type Opener func(name string) (Sink, error)

// Receiver drives one inbound file transfer as a single cooperative loop
// (spec.md §5): accept the handshake, then repeatedly poll for one
// inbound frame, reassemble it, and emit an ACK, until FIN arrives.
type Receiver struct {
	ep   *endpoint.Endpoint
	conn *connstate.Machine

	expected wire.SeqNum

	buffer   *seqmap.Map[[]byte]
	received *seqmap.SeqSet

	sink   Sink
	opener Opener

	stats Stats
}

// New creates a Receiver bound to ep, using opener to create the output
// sink once the sender's FILE_NAME frame arrives.
func New(ep *endpoint.Endpoint, opener Opener) *Receiver {
	return &Receiver{
		ep:       ep,
		conn:     connstate.New(),
		buffer:   seqmap.New[[]byte](),
		received: seqmap.NewSeqSet(),
		opener:   opener,
	}
}

// State returns the current connection state.
func (r *Receiver) State() connstate.State { return r.conn.State() }

// Stats returns the transfer statistics accumulated so far.
func (r *Receiver) Stats() Stats { return r.stats }

// Run accepts the handshake and then processes frames until a FIN closes
// the session (a clean transfer) or a fatal socket error occurs.
func (r *Receiver) Run() error {
	if err := r.accept(); err != nil {
		return err
	}
	for {
		f, _, ok, err := r.ep.TryRecv()
		if err != nil {
			return err
		}
		if ok {
			done, herr := r.handleFrame(f)
			if herr != nil {
				return herr
			}
			if done {
				return nil
			}
		} else {
			time.Sleep(idleSleep)
		}
	}
}

// accept waits for the inbound SYN and completes the receiver side of
// the three-way handshake (spec.md §4.3), latching the peer on the first
// accepted SYN and re-answering any retried SYNs until the third-leg ACK
// is observed.
func (r *Receiver) accept() error {
	var synSeq wire.SeqNum
	for {
		f, from, ok, err := r.ep.TryRecv()
		if err != nil {
			return err
		}
		if ok && f.Header.Type == wire.SYN {
			if !r.ep.Locked() {
				r.ep.Latch(from)
			}
			synSeq = f.Header.SeqNum
			r.expected = synSeq + 1
			if err := r.sendSynAck(synSeq); err != nil {
				return err
			}
			r.conn.ReceiveSyn()
			break
		}
		time.Sleep(idleSleep)
	}

	for {
		f, _, ok, err := r.ep.TryRecv()
		if err != nil {
			return err
		}
		if ok {
			switch {
			// The SYN-ACK carries seq 0, so the third-leg ACK acknowledges 1.
			case f.Header.Type == wire.Ack && f.Header.AckNum == 1:
				r.conn.EstablishAsReceiver()
				return nil
			case f.Header.Type == wire.SYN:
				if err := r.sendSynAck(synSeq); err != nil {
					return err
				}
			}
		} else {
			time.Sleep(idleSleep)
		}
	}
}

func (r *Receiver) sendSynAck(synSeq wire.SeqNum) error {
	return r.ep.Send(wire.Frame{Header: wire.Header{Type: wire.SynAck, AckNum: synSeq + 1}})
}

// handleFrame dispatches one Established-state frame. Frame kinds other
// than FILE_NAME, DATA, and FIN are silently discarded, per spec.md
// §4.3's invariant.
func (r *Receiver) handleFrame(f wire.Frame) (done bool, err error) {
	switch f.Header.Type {
	case wire.FileName:
		return false, r.handleFileName(f)
	case wire.Data:
		return false, r.handleData(f)
	case wire.Fin:
		return true, r.handleFin(f)
	default:
		return false, nil
	}
}

// handleFileName opens the output sink on the first FILE_NAME frame and
// acknowledges every copy (the sender may retransmit it if the first
// FILE_NAME_ACK was lost; re-opening the sink is not repeated).
func (r *Receiver) handleFileName(f wire.Frame) error {
	if r.sink == nil {
		sink, err := r.opener(OutputName(string(f.Payload)))
		if err != nil {
			return errors.Wrap(err, "open output sink")
		}
		r.sink = sink
	}
	return r.ep.Send(wire.Frame{Header: wire.Header{Type: wire.FileNameAck}})
}

// handleData implements spec.md §4.5's reassembly rule: suppress exact
// duplicates, buffer everything else, drain the contiguous prefix into
// the sink, and always emit an ACK.
func (r *Receiver) handleData(f wire.Frame) error {
	s := f.Header.SeqNum
	if r.received.Contains(s) {
		r.stats.DuplicatesSuppressed++
	} else {
		r.received.Add(s)
		r.buffer.Set(s, f.Payload)
		if s > r.expected {
			r.stats.OutOfOrderBuffered++
		}
		if err := r.drain(); err != nil {
			return err
		}
	}
	return r.sendAck()
}

// drain writes every contiguous buffered payload starting at expected
// into the sink, advancing expected past each one.
func (r *Receiver) drain() error {
	for {
		payload, ok := r.buffer.Get(r.expected)
		if !ok {
			return nil
		}
		if r.sink != nil && len(payload) > 0 {
			if _, err := r.sink.Write(payload); err != nil {
				return errors.Wrap(err, "write to sink")
			}
		}
		r.stats.BytesWritten += uint64(len(payload))
		r.buffer.Delete(r.expected)
		r.expected++
	}
}

// sendAck emits a cumulative ACK decorated with up to wire.MaxSACKBlocks
// SACK blocks describing disjoint received ranges above expected.
func (r *Receiver) sendAck() error {
	return r.ep.Send(wire.Frame{Header: wire.Header{
		Type:       wire.Ack,
		AckNum:     r.expected,
		WindowSize: wire.WindowSize,
	}, SACK: r.sackBlocks()})
}

// sackBlocks scans ReceivedSet in ascending order for maximal runs
// strictly greater than expected, emitting at most wire.MaxSACKBlocks of
// them in ascending left-edge order (spec.md §4.5).
func (r *Receiver) sackBlocks() []wire.SACKBlock {
	var (
		blocks      []wire.SACKBlock
		left, right wire.SeqNum
		open        bool
	)
	r.received.Ascend(func(seq wire.SeqNum) bool {
		if len(blocks) >= wire.MaxSACKBlocks {
			return false
		}
		if seq <= r.expected {
			return true
		}
		switch {
		case !open:
			left, right, open = seq, seq+1, true
		case seq == right:
			right = seq + 1
		default:
			blocks = append(blocks, wire.SACKBlock{Left: left, Right: right})
			if len(blocks) >= wire.MaxSACKBlocks {
				open = false
				return false
			}
			left, right = seq, seq+1
		}
		return true
	})
	if open && len(blocks) < wire.MaxSACKBlocks {
		blocks = append(blocks, wire.SACKBlock{Left: left, Right: right})
	}
	return blocks
}

// handleFin closes the sink and completes the receiver's half of
// teardown (spec.md §4.3).
func (r *Receiver) handleFin(f wire.Frame) error {
	r.conn.ReceiveFin()
	if r.sink != nil {
		_ = r.sink.Close()
	}
	return r.ep.Send(wire.Frame{Header: wire.Header{
		Type:   wire.FinAck,
		AckNum: f.Header.SeqNum + 1,
	}})
}
