package filesender

import "time"

// Stats summarizes a completed (or in-progress) transfer. The engine
// only accumulates these counters; printing them is the CLI's job
// (spec.md §1's "external collaborator" boundary), matching the summary
// original_source/lab2/sender.cpp prints at the end of every transfer.
type Stats struct {
	BytesSent       uint64
	PacketsSent     uint64
	Retransmissions uint64
	Elapsed         time.Duration
}

// ThroughputMbps returns the average throughput in megabits per second,
// or 0 if no time has elapsed yet.
func (s Stats) ThroughputMbps() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.BytesSent*8) / s.Elapsed.Seconds() / 1e6
}
