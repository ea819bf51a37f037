package filereceiver

// Stats summarizes a completed (or in-progress) inbound transfer. Like
// filesender.Stats, the engine only accumulates these counters; printing
// them is the CLI's job.
type Stats struct {
	BytesWritten         uint64
	DuplicatesSuppressed uint64
	OutOfOrderBuffered   uint64
}
