package bus

import (
	"sync"

	"github.com/sirupsen/logrus"

	"farcasterd/internal/address"
	"farcasterd/internal/busproto"
	"farcasterd/internal/ferrors"
)

var log = logrus.WithField("component", "bus")

const inboxBuffer = 256

// connKey identifies one external connection slot: a worker may hold a
// distinct connection per lane.
type connKey struct {
	lane busproto.Lane
	addr address.ServiceAddress
}

// Router is the in-process hub for all four lanes. It owns no goroutines of
// its own; Listener and Conn push envelopes into it and pull routing
// decisions out of it. All public methods are safe for concurrent use, but
// the orchestrator's own dispatch loop is expected to be the sole consumer
// of any address it Registers, preserving a single-threaded-cooperative
// delivery model.
type Router struct {
	mu     sync.Mutex
	local  map[address.ServiceAddress]chan busproto.Envelope
	remote map[connKey]*conn
}

func NewRouter() *Router {
	return &Router{
		local:  make(map[address.ServiceAddress]chan busproto.Envelope),
		remote: make(map[connKey]*conn),
	}
}

// Register opens an inbox for addr and returns it. Typical callers: the
// orchestrator registers address.Orchestrator() once; a CLI session
// registers its own address.NewClient() for the duration of one request or
// a progress subscription.
func (r *Router) Register(addr address.ServiceAddress) <-chan busproto.Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch := make(chan busproto.Envelope, inboxBuffer)
	r.local[addr] = ch
	return ch
}

// Unregister closes and removes addr's inbox.
func (r *Router) Unregister(addr address.ServiceAddress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ch, ok := r.local[addr]; ok {
		close(ch)
		delete(r.local, addr)
	}
}

// Send routes env to its destination: loopback is a no-op, a registered
// local inbox is preferred, otherwise a bound remote connection for the
// envelope's lane is used. Returns a Transport *ferrors.Error if neither
// exists.
func (r *Router) Send(env busproto.Envelope) error {
	if env.IsLoopback() {
		return nil
	}
	r.mu.Lock()
	ch, ok := r.local[env.Dst]
	var c *conn
	if !ok {
		c, ok = r.remote[connKey{lane: env.Lane, addr: env.Dst}]
	}
	r.mu.Unlock()

	if ch != nil {
		select {
		case ch <- env:
			return nil
		default:
			return ferrors.New(ferrors.Transport, "destination inbox full: "+env.Dst.String())
		}
	}
	if c != nil {
		return c.send(env)
	}
	return ferrors.New(ferrors.Transport, "no route to "+env.Dst.String())
}

// ingest is called by a Listener when a framed envelope arrives from a
// worker connection. It remembers the connection against the envelope's
// Src (so later Sends to that worker reuse it) and delivers to Dst's local
// inbox, if any.
func (r *Router) ingest(c *conn, env busproto.Envelope) {
	r.mu.Lock()
	r.remote[connKey{lane: env.Lane, addr: env.Src}] = c
	ch, ok := r.local[env.Dst]
	r.mu.Unlock()

	if !ok {
		log.WithFields(logrus.Fields{"dst": env.Dst.String(), "tag": env.Payload.Tag()}).
			Warn("dropping envelope with no local route")
		return
	}
	select {
	case ch <- env:
	default:
		log.WithField("dst", env.Dst.String()).Warn("dropping envelope: inbox full")
	}
}

// dropConn removes every remote entry pointing at c, called when its
// connection closes so stale routes don't linger.
func (r *Router) dropConn(c *conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range r.remote {
		if v == c {
			delete(r.remote, k)
		}
	}
}
