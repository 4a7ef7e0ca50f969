// Package busproto defines the message envelope and payload catalogue
// carried over the four-lane bus. Payloads are plain structs tagged with
// a Tag() string so the dispatcher can match on
// (lane, payload-tag, source-tag) without reflection or type switches
// spread across every caller.
package busproto

import "farcasterd/internal/address"

// Lane identifies one of the bus's four logical channels.
type Lane uint8

const (
	LaneMsg Lane = iota
	LaneCtl
	LaneRpc
	LaneSync
)

func (l Lane) String() string {
	switch l {
	case LaneMsg:
		return "Msg"
	case LaneCtl:
		return "Ctl"
	case LaneRpc:
		return "Rpc"
	case LaneSync:
		return "Sync"
	default:
		return "Unknown"
	}
}

// Payload is implemented by every message body the bus carries.
type Payload interface {
	Tag() string
}

// Envelope is the unit of transport on every lane: (lane, source, dest,
// payload). Routing is exact-match on Dest; there is no broadcast.
type Envelope struct {
	Lane    Lane
	Src     address.ServiceAddress
	Dst     address.ServiceAddress
	Payload Payload
}

// IsLoopback reports whether src and dst are identical, in which case the
// bus must treat Send as a no-op.
func (e Envelope) IsLoopback() bool { return e.Src == e.Dst }
