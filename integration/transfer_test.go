// Package integration drives filesender and filereceiver against each
// other over an in-memory, fault-injecting transport, covering the
// end-to-end scenarios that real UDP sockets make impractical to exercise
// deterministically: a dropped control frame, a dropped data frame, a
// corrupted checksum, and duplicated ACKs.
package integration

import (
	"bytes"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/rutgers-cs352/netxfer/filereceiver"
	"github.com/rutgers-cs352/netxfer/filesender"
	"github.com/rutgers-cs352/netxfer/internal/endpoint"
	"github.com/rutgers-cs352/netxfer/internal/wire"
)

// fault transforms one outbound datagram into zero or more delivered
// datagrams, letting a test drop, duplicate, or corrupt traffic crossing
// one direction of a link.
type fault func(buf []byte) [][]byte

func passthrough(buf []byte) [][]byte { return [][]byte{buf} }

type fakeAddr string

func (a fakeAddr) Network() string { return "fake" }
func (a fakeAddr) String() string  { return string(a) }

// pipe is a one-directional, non-blocking, in-memory datagram queue. Two
// pipes (one per direction) make up a link between a sender's Endpoint
// and a receiver's Endpoint.
type pipe struct {
	local fakeAddr
	mu    sync.Mutex
	inbox [][]byte
}

// side is the net.PacketConn a sender or receiver Endpoint is built on:
// it writes into out (applying fault) and reads from in.
type side struct {
	local fakeAddr
	out   *pipe
	in    *pipe
	fault fault
}

func newSide(local fakeAddr, out, in *pipe, f fault) *side {
	if f == nil {
		f = passthrough
	}
	return &side{local: local, out: out, in: in, fault: f}
}

func (s *side) LocalAddr() net.Addr { return s.local }
func (s *side) Close() error        { return nil }

func (s *side) WriteTo(p []byte, _ net.Addr) (int, error) {
	cp := append([]byte(nil), p...)
	for _, b := range s.fault(cp) {
		s.out.mu.Lock()
		s.out.inbox = append(s.out.inbox, b)
		s.out.mu.Unlock()
	}
	return len(p), nil
}

// timeoutErr satisfies net.Error with Timeout()==true, matching what a
// real socket returns once endpoint.TryRecv's read deadline fires.
type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func (s *side) ReadFrom(p []byte) (int, net.Addr, error) {
	s.in.mu.Lock()
	defer s.in.mu.Unlock()
	if len(s.in.inbox) == 0 {
		return 0, nil, timeoutErr{}
	}
	next := s.in.inbox[0]
	s.in.inbox = s.in.inbox[1:]
	n := copy(p, next)
	return n, s.in.local, nil
}

func (s *side) SetDeadline(time.Time) error      { return nil }
func (s *side) SetReadDeadline(time.Time) error  { return nil }
func (s *side) SetWriteDeadline(time.Time) error { return nil }

// link builds a sender-facing Endpoint and a receiver-facing Endpoint
// wired to each other, with senderFault applied to sender->receiver
// traffic and receiverFault applied to receiver->sender traffic.
func link(senderFault, receiverFault fault) (*endpoint.Endpoint, *endpoint.Endpoint) {
	toReceiver := &pipe{local: "sender"}
	toSender := &pipe{local: "receiver"}

	senderSide := newSide("sender", toReceiver, toSender, senderFault)
	receiverSide := newSide("receiver", toSender, toReceiver, receiverFault)

	sep := endpoint.NewWithConn(senderSide, fakeAddr("receiver"), true)
	rep := endpoint.NewWithConn(receiverSide, nil, false)
	return sep, rep
}

func dropTypeOnce(t wire.Type) fault {
	var mu sync.Mutex
	dropped := false
	return func(buf []byte) [][]byte {
		f, err := wire.Decode(buf)
		mu.Lock()
		defer mu.Unlock()
		if err == nil && f.Header.Type == t && !dropped {
			dropped = true
			return nil
		}
		return [][]byte{buf}
	}
}

func dropDataSeqOnce(target wire.SeqNum) fault {
	var mu sync.Mutex
	dropped := false
	return func(buf []byte) [][]byte {
		f, err := wire.Decode(buf)
		mu.Lock()
		defer mu.Unlock()
		if err == nil && f.Header.Type == wire.Data && f.Header.SeqNum == target && !dropped {
			dropped = true
			return nil
		}
		return [][]byte{buf}
	}
}

func corruptDataOnce() fault {
	var mu sync.Mutex
	corrupted := false
	return func(buf []byte) [][]byte {
		f, err := wire.Decode(buf)
		mu.Lock()
		defer mu.Unlock()
		if err == nil && f.Header.Type == wire.Data && len(f.Payload) > 0 && !corrupted {
			corrupted = true
			cp := append([]byte(nil), buf...)
			cp[len(cp)-1] ^= 0xFF
			return [][]byte{cp}
		}
		return [][]byte{buf}
	}
}

func duplicateType(t wire.Type, copies int) fault {
	return func(buf []byte) [][]byte {
		f, err := wire.Decode(buf)
		if err != nil || f.Header.Type != t {
			return [][]byte{buf}
		}
		out := make([][]byte, 0, copies)
		for i := 0; i < copies; i++ {
			out = append(out, buf)
		}
		return out
	}
}

// bufSink is an in-memory filereceiver.Sink.
type bufSink struct{ bytes.Buffer }

func (b *bufSink) Close() error { return nil }

// runTransfer drives one complete sender/receiver session over the given
// link and returns the receiver's reassembled output and both sides'
// stats.
func runTransfer(t *testing.T, sep, rep *endpoint.Endpoint, basename string, data []byte) (string, filesender.Stats, filereceiver.Stats) {
	t.Helper()
	out, _, sstats, rstats := runTransferNamed(t, sep, rep, basename, data)
	return out, sstats, rstats
}

// runTransferNamed is runTransfer plus the output name the receiver's
// Opener was actually called with.
func runTransferNamed(t *testing.T, sep, rep *endpoint.Endpoint, basename string, data []byte) (string, string, filesender.Stats, filereceiver.Stats) {
	t.Helper()

	sink := &bufSink{}
	var openedName string
	recv := filereceiver.New(rep, func(name string) (filereceiver.Sink, error) {
		openedName = name
		return sink, nil
	})

	recvDone := make(chan error, 1)
	go func() { recvDone <- recv.Run() }()

	send := filesender.New(sep)
	sendDone := make(chan error, 1)
	go func() {
		if err := send.Connect(); err != nil {
			sendDone <- fmt.Errorf("connect: %w", err)
			return
		}
		if err := send.SendFileName(basename); err != nil {
			sendDone <- fmt.Errorf("send file name: %w", err)
			return
		}
		if err := send.SendFile(data); err != nil {
			sendDone <- fmt.Errorf("send file: %w", err)
			return
		}
		sendDone <- send.Disconnect()
	}()

	select {
	case err := <-sendDone:
		if err != nil {
			t.Fatalf("sender: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("sender did not finish")
	}
	select {
	case err := <-recvDone:
		if err != nil {
			t.Fatalf("receiver: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("receiver did not finish")
	}

	return sink.String(), openedName, send.Stats(), recv.Stats()
}

func TestLosslessSmallFile(t *testing.T) {
	sep, rep := link(passthrough, passthrough)
	out, sstats, _ := runTransfer(t, sep, rep, "greeting.txt", []byte("hello"))
	if out != "hello" {
		t.Fatalf("output = %q, want %q", out, "hello")
	}
	if sstats.Retransmissions != 0 {
		t.Errorf("Retransmissions = %d, want 0", sstats.Retransmissions)
	}
	if sstats.PacketsSent != 1 {
		t.Errorf("PacketsSent = %d, want 1", sstats.PacketsSent)
	}
}

func TestDroppedDataFrameTriggersRetransmitAndSack(t *testing.T) {
	sep, rep := link(dropDataSeqOnce(3), passthrough)
	data := make([]byte, wire.MaxPayload*10)
	for i := range data {
		data[i] = byte(i)
	}
	out, sstats, _ := runTransfer(t, sep, rep, "blob.bin", data)
	if !bytes.Equal([]byte(out), data) {
		t.Fatalf("output length %d, want %d (or contents mismatched)", len(out), len(data))
	}
	if sstats.Retransmissions != 1 {
		t.Errorf("Retransmissions = %d, want 1", sstats.Retransmissions)
	}
}

func TestDroppedSynAckRetransmitsSyn(t *testing.T) {
	sep, rep := link(passthrough, dropTypeOnce(wire.SynAck))
	out, _, _ := runTransfer(t, sep, rep, "x.txt", []byte("ok"))
	if out != "ok" {
		t.Fatalf("output = %q, want %q", out, "ok")
	}
}

func TestDuplicatedAcksCauseNoSpuriousRetransmit(t *testing.T) {
	sep, rep := link(passthrough, duplicateType(wire.Ack, 3))
	data := make([]byte, wire.MaxPayload*4)
	out, sstats, _ := runTransfer(t, sep, rep, "dup.bin", data)
	if len(out) != len(data) {
		t.Fatalf("output length %d, want %d", len(out), len(data))
	}
	if sstats.Retransmissions != 0 {
		t.Errorf("Retransmissions = %d, want 0 (duplicate ACKs at base must not fast-retransmit)", sstats.Retransmissions)
	}
}

func TestCorruptedChecksumTriggersTimeoutRetransmit(t *testing.T) {
	sep, rep := link(corruptDataOnce(), passthrough)
	data := []byte("the quick brown fox jumps over the lazy dog")
	out, sstats, _ := runTransfer(t, sep, rep, "fox.txt", data)
	if out != string(data) {
		t.Fatalf("output = %q, want %q", out, string(data))
	}
	if sstats.Retransmissions == 0 {
		t.Errorf("Retransmissions = 0, want at least 1 after a corrupted frame")
	}
}

func TestEmptyFileNoExtension(t *testing.T) {
	sep, rep := link(passthrough, passthrough)
	out, name, sstats, _ := runTransferNamed(t, sep, rep, "file", nil)
	if out != "" {
		t.Fatalf("output = %q, want empty", out)
	}
	if name != "file_output" {
		t.Errorf("opened name = %q, want %q", name, "file_output")
	}
	if sstats.PacketsSent != 0 {
		t.Errorf("PacketsSent = %d, want 0 for a zero-byte file", sstats.PacketsSent)
	}
}
