package syncerfsm

import (
	"farcasterd/internal/address"
	"farcasterd/internal/busproto"
	"farcasterd/internal/registry"
	"farcasterd/internal/supervisor"
)

// Context is the side-effect surface a Machine is driven with, mirroring
// trade.Context but scoped to what an ad-hoc syncer task needs.
type Context interface {
	Send(lane busproto.Lane, dst address.ServiceAddress, payload busproto.Payload) error
	Launch(kind supervisor.Kind, addr address.ServiceAddress, kindArgs []string) error
	Registry() *registry.Registry
}
