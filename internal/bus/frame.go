// Package bus implements the four-lane (Msg, Ctl, Rpc, Sync) message bus: a
// Router that does in-process, exact-address delivery, and a thin
// length-prefixed JSON framing over Unix-domain sockets that bridges
// spawned worker processes onto the same router. There is no message
// broker dependency in the example corpus for this kind of local IPC, so
// this boundary is deliberately built on net + encoding/json rather than
// a third-party queue (see DESIGN.md).
package bus

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"farcasterd/internal/busproto"
)

const maxFrameSize = 16 << 20 // 16MiB, generous for any offer/checkpoint payload

// writeFrame writes one length-prefixed envelope to w.
func writeFrame(w io.Writer, e busproto.Envelope) error {
	data, err := busproto.Marshal(e)
	if err != nil {
		return err
	}
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(data)))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("bus: write frame header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("bus: write frame body: %w", err)
	}
	return nil
}

// readFrame reads one length-prefixed envelope from r.
func readFrame(r *bufio.Reader) (busproto.Envelope, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return busproto.Envelope{}, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > maxFrameSize {
		return busproto.Envelope{}, fmt.Errorf("bus: frame too large (%d bytes)", n)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return busproto.Envelope{}, fmt.Errorf("bus: read frame body: %w", err)
	}
	return busproto.Unmarshal(body)
}
