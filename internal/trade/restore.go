package trade

import (
	"farcasterd/internal/address"
	"farcasterd/internal/busproto"
	"farcasterd/internal/ferrors"
	"farcasterd/internal/supervisor"
)

// NewRestore runs the StartRestore step: loads an existing checkpoint,
// spawns both syncers, launches the swap worker with
// the same swap id and role, and jumps directly to SwapLaunched.
func NewRestore(ctx Context, entry busproto.CheckpointEntry) (*Machine, error) {
	po := entry.PublicOffer
	swapID := entry.SwapID

	syncerA := address.Syncer(string(po.Offer.Accordant), string(po.Offer.Network))
	syncerB := address.Syncer(string(po.Offer.Arbitrating), string(po.Offer.Network))
	if err := ctx.Launch(supervisor.KindSyncer, syncerA, []string{"--chain", string(po.Offer.Accordant), "--network", string(po.Offer.Network)}); err != nil {
		return nil, ferrors.Wrap(ferrors.Transport, "spawn accordant syncer", err)
	}
	if err := ctx.Launch(supervisor.KindSyncer, syncerB, []string{"--chain", string(po.Offer.Arbitrating), "--network", string(po.Offer.Network)}); err != nil {
		return nil, ferrors.Wrap(ferrors.Transport, "spawn arbitrating syncer", err)
	}

	swapAddr := address.Swap(swapID)
	if err := ctx.Launch(supervisor.KindSwap, swapAddr, []string{"--restore", swapID.String()}); err != nil {
		return nil, ferrors.Wrap(ferrors.Transport, "launch swap worker", err)
	}
	if err := ctx.Send(busproto.LaneCtl, swapAddr, busproto.RestoreCheckpoint{Entry: entry}); err != nil {
		log.WithError(err).Debug("failed to forward checkpoint to restored swap worker")
	}

	m := &Machine{
		Phase:        PhaseSwapLaunched,
		IsMaker:      entry.IsMaker,
		offerVal:     &po,
		consumed:     true,
		swapIDVal:    &swapID,
		Role:         entry.Role,
		syncerAReady: true,
		syncerBReady: true,
	}
	return m, nil
}
