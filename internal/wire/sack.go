package wire

import "encoding/binary"

// SACKBlock describes a disjoint range of sequence numbers the receiver
// has accepted above the cumulative ACK point. Left is inclusive, Right
// is exclusive.
type SACKBlock struct {
	Left  SeqNum
	Right SeqNum
}

func (b SACKBlock) put(buf []byte) {
	binary.BigEndian.PutUint32(buf[0:4], uint32(b.Left))
	binary.BigEndian.PutUint32(buf[4:8], uint32(b.Right))
}

func parseSACKBlock(buf []byte) SACKBlock {
	return SACKBlock{
		Left:  SeqNum(binary.BigEndian.Uint32(buf[0:4])),
		Right: SeqNum(binary.BigEndian.Uint32(buf[4:8])),
	}
}
