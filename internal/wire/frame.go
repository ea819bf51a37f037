package wire

import "fmt"

// Frame is a fully decoded protocol datagram: a header, its payload, and
// any trailing SACK blocks.
type Frame struct {
	Header  Header
	Payload []byte
	SACK    []SACKBlock
}

// ErrMalformed is returned by Decode when buf cannot possibly be a valid
// frame: too short, internally inconsistent length fields, or an
// oversize payload. It is distinct from a checksum failure, which is
// checked separately by Verify (spec.md §4.1).
type ErrMalformed struct{ Reason string }

func (e *ErrMalformed) Error() string { return "malformed frame: " + e.Reason }

// Encode serializes f, computing and filling in its checksum. The
// Header.Checksum field of f is ignored on input and overwritten.
func Encode(f Frame) []byte {
	h := f.Header
	h.DataLength = uint16(len(f.Payload))
	h.SackCount = uint32(len(f.SACK))

	buf := make([]byte, HeaderSize+len(f.Payload)+len(f.SACK)*SACKBlockSize)
	copy(buf[HeaderSize:], f.Payload)

	sackOff := HeaderSize + len(f.Payload)
	for i, b := range f.SACK {
		b.put(buf[sackOff+i*SACKBlockSize:])
	}

	h.Checksum = checksum(headerBufForChecksum(h), f.Payload, buf[sackOff:])
	h.put(buf[:HeaderSize])
	return buf
}

// headerBufForChecksum returns the header bytes with the checksum field
// forced to zero, as required before computing a fresh checksum.
func headerBufForChecksum(h Header) []byte {
	h.Checksum = 0
	buf := make([]byte, HeaderSize)
	h.put(buf)
	return buf
}

// Decode parses buf into a Frame. It fails when buf is shorter than
// HeaderSize, when the declared data_length/sack_count imply a frame
// longer than buf, or when data_length exceeds MaxPayload. Checksum
// verification is not performed here; call Verify on the result.
func Decode(buf []byte) (Frame, error) {
	if len(buf) < HeaderSize {
		return Frame{}, &ErrMalformed{Reason: fmt.Sprintf("length %d shorter than header size %d", len(buf), HeaderSize)}
	}
	h := parseHeader(buf)
	if h.DataLength > MaxPayload {
		return Frame{}, &ErrMalformed{Reason: fmt.Sprintf("data_length %d exceeds max payload %d", h.DataLength, MaxPayload)}
	}
	need := HeaderSize + int(h.DataLength) + int(h.SackCount)*SACKBlockSize
	if need > len(buf) {
		return Frame{}, &ErrMalformed{Reason: fmt.Sprintf("declared length %d exceeds buffer length %d", need, len(buf))}
	}

	payload := make([]byte, h.DataLength)
	copy(payload, buf[HeaderSize:HeaderSize+int(h.DataLength)])

	sackOff := HeaderSize + int(h.DataLength)
	sacks := make([]SACKBlock, h.SackCount)
	for i := range sacks {
		sacks[i] = parseSACKBlock(buf[sackOff+i*SACKBlockSize:])
	}

	return Frame{Header: h, Payload: payload, SACK: sacks}, nil
}

// Verify reports whether f's checksum, as decoded, is internally
// consistent. A failed verification means the frame must be dropped
// silently, not reported upstream (spec.md §4.1/§7).
func Verify(f Frame) bool {
	hbuf := make([]byte, HeaderSize)
	f.Header.put(hbuf)

	sbuf := make([]byte, len(f.SACK)*SACKBlockSize)
	for i, b := range f.SACK {
		b.put(sbuf[i*SACKBlockSize:])
	}
	return verify(hbuf, f.Payload, sbuf)
}

func (f Frame) String() string {
	return fmt.Sprintf("%s seq=%d ack=%d win=%d len=%d sack=%d",
		f.Header.Type, f.Header.SeqNum, f.Header.AckNum,
		f.Header.WindowSize, len(f.Payload), len(f.SACK))
}
