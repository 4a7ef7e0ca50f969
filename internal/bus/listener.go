package bus

import (
	"fmt"
	"net"
	"os"

	"farcasterd/internal/busproto"
)

// Listener binds one lane's Unix-domain socket and bridges every accepted
// worker connection onto a Router. The orchestrator runs four of these
// (Msg, Ctl, Rpc, Sync), one per lane socket path.
type Listener struct {
	lane   busproto.Lane
	path   string
	ln     net.Listener
	router *Router
}

// Listen binds the lane's socket at path, removing any stale socket file
// left behind by a previous run.
func Listen(lane busproto.Lane, path string, router *Router) (*Listener, error) {
	_ = os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("bus: listen %s on %s: %w", lane, path, err)
	}
	return &Listener{lane: lane, path: path, ln: ln, router: router}, nil
}

// Serve accepts connections until Close is called. Intended to run in its
// own goroutine.
func (l *Listener) Serve() error {
	for {
		nc, err := l.ln.Accept()
		if err != nil {
			return err
		}
		c := &conn{nc: nc, lane: l.lane}
		go c.runReadLoop(l.router)
	}
}

func (l *Listener) Close() error {
	err := l.ln.Close()
	_ = os.Remove(l.path)
	return err
}

func (l *Listener) Path() string { return l.path }
