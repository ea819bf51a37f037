package wire

import (
	"github.com/google/netstack/tcpip/header"
)

// sum folds the one's-complement running checksum across the header, the
// payload, and the SACK blocks as three separate regions (rather than one
// contiguous byte slice) so that an odd-length payload is padded with an
// implicit zero byte before the SACK region begins, per spec.md §3. The
// same folding primitive gVisor's netstack uses for IP/TCP/UDP checksums
// is reused here; Checksum already pads a trailing odd byte of whatever
// slice it's given and returns the carry-folded running sum, which is
// exactly the accumulation spec.md describes.
func sum(headerBuf, payload, sackBuf []byte) uint16 {
	s := header.Checksum(headerBuf, 0)
	s = header.Checksum(payload, s)
	s = header.Checksum(sackBuf, s)
	return s
}

// checksum computes the value to store in Header.Checksum: the bitwise
// complement of the running sum over the frame with the checksum field
// treated as zero.
func checksum(headerBuf, payload, sackBuf []byte) uint16 {
	return ^sum(headerBuf, payload, sackBuf)
}

// verify reports whether a frame's stored checksum is consistent: summing
// the whole frame, checksum field included, folds to all-ones under
// one's-complement arithmetic.
func verify(headerBuf, payload, sackBuf []byte) bool {
	return sum(headerBuf, payload, sackBuf) == 0xFFFF
}
