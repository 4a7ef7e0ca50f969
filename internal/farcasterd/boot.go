package farcasterd

import (
	"farcasterd/internal/address"
	"farcasterd/internal/busproto"
	"farcasterd/internal/ferrors"
	"farcasterd/internal/supervisor"

	"farcasterd/internal/bus"
)

// Boot binds the four lane sockets and spawns the single-instance workers.
// A failure to spawn KeyManager or Store is fatal to the whole node. The
// offer gateway (gRPC/REST/websocket) is
// not a spawned worker: it runs in-process, started by cmd/farcasterd
// alongside Boot, and reads the registry directly rather than over the bus.
func (rt *Runtime) Boot() error {
	lanes := []struct {
		lane busproto.Lane
		path string
	}{
		{busproto.LaneMsg, rt.sockets.MsgSocket},
		{busproto.LaneCtl, rt.sockets.CtlSocket},
		{busproto.LaneRpc, rt.sockets.RpcSocket},
		{busproto.LaneSync, rt.sockets.SyncSocket},
	}
	for _, l := range lanes {
		ln, err := bus.Listen(l.lane, l.path, rt.router)
		if err != nil {
			return ferrors.Wrap(ferrors.Transport, "bind bus socket", err)
		}
		rt.listens = append(rt.listens, ln)
		go func(ln *bus.Listener) {
			if err := ln.Serve(); err != nil {
				log.WithError(err).WithField("path", ln.Path()).Debug("bus listener stopped")
			}
		}(ln)
	}

	rt.inbox = rt.router.Register(address.Orchestrator())

	if err := rt.sup.Launch(supervisor.KindKeyManager, address.KeyManager(), nil); err != nil {
		return ferrors.Wrap(ferrors.Transport, "spawn key manager", err)
	}
	if err := rt.sup.Launch(supervisor.KindStore, address.Store(), nil); err != nil {
		return ferrors.Wrap(ferrors.Transport, "spawn store", err)
	}

	return nil
}

// Shutdown closes every bus listener. Running workers are left to exit on
// their own Terminate handling; callers that need a hard stop should use
// Supervisor.Terminate per address first.
func (rt *Runtime) Shutdown() {
	for _, ln := range rt.listens {
		if err := ln.Close(); err != nil {
			log.WithError(err).Debug("error closing bus listener")
		}
	}
}
