// Package endpoint wraps a UDP socket as the non-blocking, single-peer
// datagram primitive described in spec.md §4.2.
package endpoint

import (
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/rutgers-cs352/netxfer/internal/wire"
)

// MaxDatagramSize is the largest datagram accepted before it is treated
// as malformed outright — twice the largest well-formed frame, per
// spec.md §4.1's tolerance requirement.
const MaxDatagramSize = 2 * wire.MaxFrameSize

// Endpoint is a UDP socket bound to a local address, talking to at most
// one remote peer. The peer is latched the first time a frame is
// accepted in a session; afterwards, datagrams from any other source
// are dropped at this layer (spec.md §3's peer-lock invariant).
type Endpoint struct {
	conn   net.PacketConn
	peer   net.Addr
	locked bool
}

// NewWithConn wraps an already-established net.PacketConn as an
// Endpoint. It exists so tests can substitute an in-memory transport
// double that drops, duplicates, or corrupts datagrams (spec.md §8's
// end-to-end scenarios) in place of a real UDP socket; Bind and Dial are
// the constructors production code uses.
func NewWithConn(conn net.PacketConn, peer net.Addr, locked bool) *Endpoint {
	return &Endpoint{conn: conn, peer: peer, locked: locked}
}

// Bind creates a UDP socket at laddr with no peer yet latched, for a
// side that waits to discover its peer from the first inbound frame
// (the receiver).
func Bind(laddr *net.UDPAddr) (*Endpoint, error) {
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, errors.Wrapf(err, "bind udp %s", laddr)
	}
	return &Endpoint{conn: conn}, nil
}

// Dial creates a UDP socket at laddr with its peer already known and
// latched (the sender, which is configured with the receiver's address
// up front). The socket itself is left unconnected, since Send writes
// with WriteTo.
func Dial(laddr, raddr *net.UDPAddr) (*Endpoint, error) {
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, errors.Wrapf(err, "dial udp %s -> %s", laddr, raddr)
	}
	return &Endpoint{conn: conn, peer: raddr, locked: true}, nil
}

// Close releases the underlying socket.
func (e *Endpoint) Close() error { return e.conn.Close() }

// Send encodes and writes f to the latched peer. Calling Send before any
// peer is latched is a programming error.
func (e *Endpoint) Send(f wire.Frame) error {
	if e.peer == nil {
		return errors.New("endpoint: send with no peer latched")
	}
	if _, err := e.conn.WriteTo(wire.Encode(f), e.peer); err != nil {
		return errors.Wrap(err, "send frame")
	}
	return nil
}

// TryRecv performs one receive attempt, waiting at most one millisecond
// for a datagram. (A read deadline of time.Now() itself would expire
// before the socket is read at all, even with a datagram queued.)
//
// ok is true only when a well-formed, checksum-valid frame was received
// from the latched peer (or, if no peer is latched yet, from anywhere —
// the caller decides whether to Latch it). When ok is false and err is
// nil, nothing usable was available: no datagram, a malformed frame, a
// checksum failure, or a datagram from an unlatched-against address —
// all silent drops per spec.md §4.1/§4.2/§7. A non-nil err indicates a
// real socket error, which is fatal to the session per spec.md §7.
func (e *Endpoint) TryRecv() (f wire.Frame, from net.Addr, ok bool, err error) {
	if derr := e.conn.SetReadDeadline(time.Now().Add(time.Millisecond)); derr != nil {
		return wire.Frame{}, nil, false, errors.Wrap(derr, "set read deadline")
	}
	buf := make([]byte, MaxDatagramSize)
	n, from, rerr := e.conn.ReadFrom(buf)
	if rerr != nil {
		if ne, isNetErr := rerr.(net.Error); isNetErr && ne.Timeout() {
			return wire.Frame{}, nil, false, nil
		}
		return wire.Frame{}, nil, false, errors.Wrap(rerr, "read udp")
	}
	if e.locked && !sameAddr(from, e.peer) {
		return wire.Frame{}, nil, false, nil
	}
	decoded, derr := wire.Decode(buf[:n])
	if derr != nil {
		return wire.Frame{}, nil, false, nil
	}
	if !wire.Verify(decoded) {
		return wire.Frame{}, nil, false, nil
	}
	return decoded, from, true, nil
}

// Latch records addr as the endpoint's peer. Once latched it is never
// cleared for the lifetime of the session.
func (e *Endpoint) Latch(addr net.Addr) {
	if e.locked {
		return
	}
	e.peer = addr
	e.locked = true
}

// Locked reports whether a peer has been latched.
func (e *Endpoint) Locked() bool { return e.locked }

// Peer returns the latched peer address, or nil if none yet.
func (e *Endpoint) Peer() net.Addr { return e.peer }

func sameAddr(a, b net.Addr) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
}
