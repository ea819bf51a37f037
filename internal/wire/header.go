// Package wire implements the on-the-wire frame format: a fixed header,
// an optional payload, and an optional trailing array of SACK blocks, all
// protected by a single one's-complement checksum.
package wire

import "encoding/binary"

// Type identifies the kind of frame (spec.md §6).
type Type uint8

const (
	SYN         Type = 0x01
	SynAck      Type = 0x02
	Data        Type = 0x03
	Ack         Type = 0x04
	Fin         Type = 0x05
	FinAck      Type = 0x06
	FileName    Type = 0x07
	FileNameAck Type = 0x08
)

func (t Type) String() string {
	switch t {
	case SYN:
		return "SYN"
	case SynAck:
		return "SYN-ACK"
	case Data:
		return "DATA"
	case Ack:
		return "ACK"
	case Fin:
		return "FIN"
	case FinAck:
		return "FIN-ACK"
	case FileName:
		return "FILE-NAME"
	case FileNameAck:
		return "FILE-NAME-ACK"
	default:
		return "UNKNOWN"
	}
}

// SeqNum is a 32-bit sequence number. Arithmetic on it wraps the way the
// protocol's sequence space wraps; the sender never runs a transfer long
// enough to need modular comparison, so plain uint32 ordering is used
// throughout (see spec.md's Non-goals on session persistence / unbounded
// transfers).
type SeqNum uint32

const (
	// HeaderSize is the fixed header length in bytes.
	HeaderSize = 20
	// MaxPayload is the largest payload a single frame may carry.
	MaxPayload = 1024
	// MaxFrameSize is the largest frame without trailing SACK blocks.
	MaxFrameSize = HeaderSize + MaxPayload
	// SACKBlockSize is the encoded size of one SACK block.
	SACKBlockSize = 8
	// MaxSACKBlocks is the number of SACK blocks a receiver ever emits.
	MaxSACKBlocks = 3
	// WindowSize is the protocol's window size in frames, both the
	// sender's cap on cwnd and the value a receiver advertises.
	WindowSize = 16
)

// Header is the fixed 20-byte frame header. Field order matches the wire
// layout exactly (spec.md §3); every multi-byte field is big-endian on
// the wire. Checksum is already the fold of big-endian 16-bit words, so
// it is written as computed and never byte-swapped a second time
// (spec.md §9).
type Header struct {
	Type       Type
	Flags      uint8
	Checksum   uint16
	SeqNum     SeqNum
	AckNum     SeqNum
	WindowSize uint16
	DataLength uint16
	SackCount  uint32
}

// put writes the header into buf, which must be at least HeaderSize bytes.
func (h Header) put(buf []byte) {
	buf[0] = byte(h.Type)
	buf[1] = h.Flags
	binary.BigEndian.PutUint16(buf[2:4], h.Checksum)
	binary.BigEndian.PutUint32(buf[4:8], uint32(h.SeqNum))
	binary.BigEndian.PutUint32(buf[8:12], uint32(h.AckNum))
	binary.BigEndian.PutUint16(buf[12:14], h.WindowSize)
	binary.BigEndian.PutUint16(buf[14:16], h.DataLength)
	binary.BigEndian.PutUint32(buf[16:20], h.SackCount)
}

// parseHeader reads a Header out of buf, which must be at least HeaderSize
// bytes; the caller is responsible for that length check.
func parseHeader(buf []byte) Header {
	return Header{
		Type:       Type(buf[0]),
		Flags:      buf[1],
		Checksum:   binary.BigEndian.Uint16(buf[2:4]),
		SeqNum:     SeqNum(binary.BigEndian.Uint32(buf[4:8])),
		AckNum:     SeqNum(binary.BigEndian.Uint32(buf[8:12])),
		WindowSize: binary.BigEndian.Uint16(buf[12:14]),
		DataLength: binary.BigEndian.Uint16(buf[14:16]),
		SackCount:  binary.BigEndian.Uint32(buf[16:20]),
	}
}
