// Package syncerfsm implements the SyncerStateMachine: one instance per
// ad-hoc chain task (currently address sweeps), correlated by
// a monotone task_id rather than by swap. Unlike the trade state machine it
// is entirely transient — it exists only to shepherd one request through a
// syncer worker and hand the result back to the requesting client.
package syncerfsm

import (
	"github.com/sirupsen/logrus"

	"farcasterd/internal/address"
	"farcasterd/internal/busproto"
)

var log = logrus.WithField("component", "syncerfsm")

// Phase tags a Machine's current state: Start -> AwaitingSyncer(task_id)
// -> AwaitingResult(task_id).
type Phase int

const (
	PhaseStart Phase = iota
	PhaseAwaitingSyncer
	PhaseAwaitingResult
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "Start"
	case PhaseAwaitingSyncer:
		return "AwaitingSyncer"
	case PhaseAwaitingResult:
		return "AwaitingResult"
	default:
		return "Unknown"
	}
}

// Machine is the SyncerStateMachine. It is keyed by TaskID, a monotone
// u32 counter, in the owning dispatcher's map.
type Machine struct {
	Phase Phase

	TaskID     uint32
	Addendum   busproto.SweepAddendum
	SyncerAddr address.ServiceAddress
	Client     address.ServiceAddress

	buffered bool // a SweepAddress is buffered, waiting on syncer Hello
}
