package filesender

import (
	"net"
	"testing"
	"time"

	"github.com/rutgers-cs352/netxfer/internal/connstate"
	"github.com/rutgers-cs352/netxfer/internal/endpoint"
	"github.com/rutgers-cs352/netxfer/internal/wire"
)

func loopbackConn(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1")})
	if err != nil {
		t.Fatalf("listen udp: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// newTestSender wires a Sender to one loopback socket and returns a
// second loopback socket, already latched as the sender's peer, that
// tests use to play the role of the receiver.
func newTestSender(t *testing.T) (*Sender, *endpoint.Endpoint) {
	t.Helper()
	sconn := loopbackConn(t)
	rconn := loopbackConn(t)

	sep := endpoint.NewWithConn(sconn, rconn.LocalAddr(), true)
	rep := endpoint.NewWithConn(rconn, sconn.LocalAddr(), true)

	return New(sep), rep
}

func recvWithin(t *testing.T, ep *endpoint.Endpoint, d time.Duration) wire.Frame {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		f, _, ok, err := ep.TryRecv()
		if err != nil {
			t.Fatalf("recv: %v", err)
		}
		if ok {
			return f
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for frame")
	return wire.Frame{}
}

func TestConnectHandshake(t *testing.T) {
	s, rep := newTestSender(t)

	done := make(chan error, 1)
	go func() { done <- s.Connect() }()

	syn := recvWithin(t, rep, time.Second)
	if syn.Header.Type != wire.SYN || syn.Header.SeqNum != isn {
		t.Fatalf("got %v, want SYN seq=%d", syn, isn)
	}

	if err := rep.Send(wire.Frame{Header: wire.Header{
		Type:   wire.SynAck,
		SeqNum: 99,
		AckNum: isn + 1,
	}}); err != nil {
		t.Fatalf("send syn-ack: %v", err)
	}

	ack := recvWithin(t, rep, time.Second)
	if ack.Header.Type != wire.Ack || ack.Header.AckNum != 100 {
		t.Fatalf("got %v, want ACK ack=100", ack)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Connect: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Connect did not complete")
	}

	if s.State() != connstate.Established {
		t.Errorf("state = %v, want Established", s.State())
	}
	if s.base != isn+1 || s.nextSeq != isn+1 {
		t.Errorf("base=%d nextSeq=%d, want both %d", s.base, s.nextSeq, isn+1)
	}
}

func TestAdmitWindowRespectsSlowStartCwnd(t *testing.T) {
	s, rep := newTestSender(t)
	s.base, s.nextSeq = 1, 1

	data := make([]byte, wire.MaxPayload*4)
	if err := s.admitWindow(data, 5); err != nil {
		t.Fatalf("admitWindow: %v", err)
	}
	if s.nextSeq != 2 {
		t.Fatalf("nextSeq = %d, want 2 (cwnd starts at 1)", s.nextSeq)
	}
	if s.segments.Len() != 1 {
		t.Fatalf("segments.Len() = %d, want 1", s.segments.Len())
	}

	f := recvWithin(t, rep, time.Second)
	if f.Header.Type != wire.Data || f.Header.SeqNum != 1 {
		t.Errorf("got %v, want DATA seq=1", f)
	}
}

func TestHandleAckAdvancesBaseAndPrunesSegments(t *testing.T) {
	s, _ := newTestSender(t)
	s.base, s.nextSeq = 1, 1
	s.reno.Cwnd = 10
	data := make([]byte, wire.MaxPayload*4)
	if err := s.admitWindow(data, 5); err != nil {
		t.Fatalf("admitWindow: %v", err)
	}
	if s.segments.Len() != 4 {
		t.Fatalf("segments.Len() = %d, want 4", s.segments.Len())
	}

	s.handleAck(wire.Frame{Header: wire.Header{Type: wire.Ack, AckNum: 3}})
	if s.base != 3 {
		t.Errorf("base = %d, want 3", s.base)
	}
	if s.segments.Len() != 2 {
		t.Errorf("segments.Len() = %d, want 2 (seq 3 and 4 left)", s.segments.Len())
	}
}

func TestHandleAckTripleDuplicateRetransmits(t *testing.T) {
	s, rep := newTestSender(t)
	s.base, s.nextSeq = 1, 1
	s.reno.Cwnd = 10
	data := make([]byte, wire.MaxPayload*4)
	if err := s.admitWindow(data, 5); err != nil {
		t.Fatalf("admitWindow: %v", err)
	}
	// drain the initial burst (seq 1..4) so only the retransmit remains
	for i := 0; i < 4; i++ {
		recvWithin(t, rep, time.Second)
	}

	dup := wire.Frame{Header: wire.Header{Type: wire.Ack, AckNum: 1}}
	s.handleAck(dup)
	s.handleAck(dup)
	if s.stats.Retransmissions != 0 {
		t.Fatalf("retransmitted early, Retransmissions = %d", s.stats.Retransmissions)
	}
	s.handleAck(dup)
	if s.stats.Retransmissions != 1 {
		t.Fatalf("Retransmissions = %d, want 1 after triple duplicate", s.stats.Retransmissions)
	}

	f := recvWithin(t, rep, time.Second)
	if f.Header.Type != wire.Data || f.Header.SeqNum != 1 {
		t.Errorf("got %v, want retransmitted DATA seq=1", f)
	}
}

func TestHandleAckSackPrunesIndividualSegments(t *testing.T) {
	s, _ := newTestSender(t)
	s.base, s.nextSeq = 1, 1
	s.reno.Cwnd = 10
	data := make([]byte, wire.MaxPayload*4)
	if err := s.admitWindow(data, 5); err != nil {
		t.Fatalf("admitWindow: %v", err)
	}

	s.handleAck(wire.Frame{
		Header: wire.Header{Type: wire.Ack, AckNum: 1},
		SACK:   []wire.SACKBlock{{Left: 2, Right: 3}},
	})
	if s.segments.Has(2) {
		t.Error("segment 2 should have been pruned by the SACK block")
	}
	if !s.segments.Has(1) || !s.segments.Has(3) {
		t.Error("segments 1 and 3 should remain outstanding")
	}
}

func TestCheckTimeoutRetransmitsStaleSegments(t *testing.T) {
	s, rep := newTestSender(t)
	s.base, s.nextSeq = 1, 1
	data := make([]byte, wire.MaxPayload)
	if err := s.admitWindow(data, 2); err != nil {
		t.Fatalf("admitWindow: %v", err)
	}
	recvWithin(t, rep, time.Second)

	seg, _ := s.segments.Get(1)
	seg.lastSent = time.Now().Add(-2 * connstate.RetryTimeout)

	if err := s.checkTimeout(); err != nil {
		t.Fatalf("checkTimeout: %v", err)
	}
	if s.stats.Retransmissions != 1 {
		t.Errorf("Retransmissions = %d, want 1", s.stats.Retransmissions)
	}
	recvWithin(t, rep, time.Second)
}

func TestDisconnectHandshake(t *testing.T) {
	s, rep := newTestSender(t)
	s.nextSeq = 42

	done := make(chan error, 1)
	go func() { done <- s.Disconnect() }()

	fin := recvWithin(t, rep, time.Second)
	if fin.Header.Type != wire.Fin || fin.Header.SeqNum != 42 {
		t.Fatalf("got %v, want FIN seq=42", fin)
	}

	if err := rep.Send(wire.Frame{Header: wire.Header{Type: wire.FinAck, AckNum: 43}}); err != nil {
		t.Fatalf("send fin-ack: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Disconnect: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Disconnect did not complete")
	}
	if s.State() != connstate.Closed {
		t.Errorf("state = %v, want Closed", s.State())
	}
}
