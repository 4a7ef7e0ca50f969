package syncerfsm

import (
	"farcasterd/internal/address"
	"farcasterd/internal/busproto"
	"farcasterd/internal/supervisor"
)

// NewStart runs the Start step: ensures the right (chain, network) syncer
// is up, spawning it if needed, and either dispatches the
// sweep task immediately (syncer already registered) or buffers it until
// the syncer's Hello arrives. taskID is assigned by the caller's monotone
// counter, not by this constructor.
func NewStart(ctx Context, taskID uint32, addendum busproto.SweepAddendum, client address.ServiceAddress) (*Machine, error) {
	syncerAddr := address.Syncer(string(addendum.Chain), string(addendum.Network))

	m := &Machine{
		TaskID:     taskID,
		Addendum:   addendum,
		SyncerAddr: syncerAddr,
		Client:     client,
	}

	if ctx.Registry().IsRegistered(syncerAddr) {
		if err := ctx.Send(busproto.LaneSync, syncerAddr, busproto.SweepAddress{TaskID: taskID, Addendum: addendum}); err != nil {
			return nil, err
		}
		m.Phase = PhaseAwaitingResult
		return m, nil
	}

	if err := ctx.Launch(supervisor.KindSyncer, syncerAddr, []string{"--chain", string(addendum.Chain), "--network", string(addendum.Network)}); err != nil {
		return nil, err
	}
	m.buffered = true
	m.Phase = PhaseAwaitingSyncer
	return m, nil
}
