package main

import (
	"fmt"
	"time"

	"farcasterd/internal/address"
	"farcasterd/internal/bus"
	"farcasterd/internal/busproto"
)

// rpcTimeout bounds how long a command waits for the daemon to answer over
// the local Unix socket; there is no remote hop to budget for.
const rpcTimeout = 30 * time.Second

// call dials the daemon's Rpc lane, sends req from a freshly minted client
// address, and waits for exactly one reply. A Failure reply is a
// recoverable user error; a transport/timeout failure is fatal.
func call(rpcSocket string, req busproto.Payload) (busproto.Payload, error) {
	link, err := bus.Dial(busproto.LaneRpc, rpcSocket)
	if err != nil {
		return nil, fatalf("connect to farcasterd at %s: %v", rpcSocket, err)
	}
	defer link.Close()

	self := address.NewClient()
	inbox := link.Router.Register(self)

	if err := link.Send(busproto.Envelope{Lane: busproto.LaneRpc, Src: self, Dst: address.Orchestrator(), Payload: req}); err != nil {
		return nil, fatalf("send request: %v", err)
	}

	select {
	case env := <-inbox:
		if failure, ok := env.Payload.(busproto.Failure); ok {
			return nil, userErr(fmt.Errorf("%s: %s", failure.Kind, failure.Info))
		}
		return env.Payload, nil
	case <-time.After(rpcTimeout):
		return nil, fatalf("timed out waiting for farcasterd reply")
	}
}
