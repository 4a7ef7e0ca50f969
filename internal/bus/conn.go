package bus

import (
	"bufio"
	"errors"
	"io"
	"net"
	"sync"

	"farcasterd/internal/busproto"
)

// conn wraps one physical Unix-domain socket connection (either accepted by
// a Listener or Dialed by a worker) and serializes writes to it. Reads are
// driven by runReadLoop, which hands each decoded Envelope to a Router.
type conn struct {
	nc      net.Conn
	lane    busproto.Lane
	writeMu sync.Mutex
}

func (c *conn) send(env busproto.Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return writeFrame(c.nc, env)
}

func (c *conn) close() error { return c.nc.Close() }

// runReadLoop reads frames until the connection closes or errors, ingesting
// each into router, then cleans up router's routes pointing at c.
func (c *conn) runReadLoop(router *Router) {
	r := bufio.NewReader(c.nc)
	for {
		env, err := readFrame(r)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.WithError(err).WithField("lane", c.lane).Debug("connection read loop ended")
			}
			break
		}
		router.ingest(c, env)
	}
	router.dropConn(c)
	_ = c.close()
}
