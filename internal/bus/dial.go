package bus

import (
	"fmt"
	"net"

	"farcasterd/internal/busproto"
)

// WorkerLink is the worker-process side of one lane: a dialed connection
// plus its own local Router so the worker can address itself (e.g. receive
// Terminate) the same way the orchestrator addresses itself.
type WorkerLink struct {
	c      *conn
	Router *Router
}

// Dial connects to the orchestrator's lane socket at path and starts
// reading frames into a fresh Router, which the caller Registers its own
// ServiceAddress inboxes against.
func Dial(lane busproto.Lane, path string) (*WorkerLink, error) {
	nc, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("bus: dial %s at %s: %w", lane, path, err)
	}
	c := &conn{nc: nc, lane: lane}
	router := NewRouter()
	go c.runReadLoop(router)
	return &WorkerLink{c: c, Router: router}, nil
}

// Send writes env out over the dialed connection.
func (w *WorkerLink) Send(env busproto.Envelope) error { return w.c.send(env) }

// Close tears down the underlying connection.
func (w *WorkerLink) Close() error { return w.c.close() }
