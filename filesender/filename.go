package filesender

import (
	"strings"
	"time"

	"github.com/rutgers-cs352/netxfer/internal/connstate"
	"github.com/rutgers-cs352/netxfer/internal/wire"
)

// Basename extracts the trailing path component of path, splitting on
// the last '/' or '\\' (spec.md §4.6). It does not touch the
// filesystem: the caller already has an open, readable file.
func Basename(path string) string {
	idx := strings.LastIndexAny(path, `/\`)
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

// SendFileName performs the file-name handoff (spec.md §4.5/§4.6): send
// a FILE_NAME frame carrying the basename of path (truncated to
// wire.MaxPayload bytes, UTF-8 encoded), retrying until FILE_NAME_ACK is
// observed or the retry cap is reached. Data transmission must not begin
// until this returns successfully.
func (s *Sender) SendFileName(path string) error {
	payload := []byte(Basename(path))
	if len(payload) > wire.MaxPayload {
		payload = payload[:wire.MaxPayload]
	}
	frame := wire.Frame{Header: wire.Header{Type: wire.FileName, SeqNum: isn}, Payload: payload}
	if err := s.ep.Send(frame); err != nil {
		return err
	}
	s.fnameTimer.Arm(time.Now())

	for {
		now := time.Now()
		if s.fnameTimer.Exhausted() {
			return connstate.ErrRetriesExhausted
		}
		if s.fnameTimer.Due(now) {
			if err := s.ep.Send(frame); err != nil {
				return err
			}
			s.fnameTimer.Retry(now)
		}

		f, _, ok, err := s.ep.TryRecv()
		if err != nil {
			return err
		}
		if ok && f.Header.Type == wire.FileNameAck {
			return nil
		}

		time.Sleep(idleSleep)
	}
}
