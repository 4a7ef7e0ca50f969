package syncerfsm

import (
	"strings"

	"farcasterd/internal/busproto"
)

// Next feeds one bus envelope into the machine. It returns terminated=true
// once the sweep result has been delivered to the requesting client.
func (m *Machine) Next(ctx Context, env busproto.Envelope) (terminated bool, err error) {
	switch m.Phase {
	case PhaseAwaitingSyncer:
		return m.stepAwaitingSyncer(ctx, env)
	case PhaseAwaitingResult:
		return m.stepAwaitingResult(ctx, env)
	default:
		log.WithField("tag", env.Payload.Tag()).Debug("envelope ignored in this phase")
		return false, nil
	}
}

func (m *Machine) stepAwaitingSyncer(ctx Context, env busproto.Envelope) (bool, error) {
	if _, ok := env.Payload.(busproto.Hello); !ok || env.Src != m.SyncerAddr || !m.buffered {
		return false, nil
	}
	if err := ctx.Send(busproto.LaneSync, m.SyncerAddr, busproto.SweepAddress{TaskID: m.TaskID, Addendum: m.Addendum}); err != nil {
		return false, err
	}
	m.buffered = false
	m.Phase = PhaseAwaitingResult
	return false, nil
}

func (m *Machine) stepAwaitingResult(ctx Context, env busproto.Envelope) (bool, error) {
	success, ok := env.Payload.(busproto.SweepSuccess)
	if !ok || success.TaskID != m.TaskID {
		return false, nil
	}

	details := "Nothing to sweep."
	if len(success.TxIDs) > 0 {
		details = strings.Join(success.TxIDs, ",")
	}
	if err := ctx.Send(busproto.LaneRpc, m.Client, busproto.Success{Details: details}); err != nil {
		return false, err
	}
	return true, nil
}
