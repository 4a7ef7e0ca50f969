package trade

import (
	"farcasterd/internal/address"
	"farcasterd/internal/busproto"
)

// cleanupAttempts bounds the retry-on-failure loop for each bus send
// cleanup makes; there is no backoff because these are local Unix-socket
// sends, not network calls.
const cleanupAttempts = 3

// Cleanup tears down everything a finished Machine owned: the swap
// worker, its checkpoint, and any Peer/Syncer worker no other machine
// still references. It must only be called once m.Phase == PhaseEnd.
func Cleanup(ctx Context, m *Machine) {
	id, ok := m.PendingSwapID()
	if !ok {
		return
	}

	sendWithRetry(ctx, busproto.LaneCtl, address.Swap(id), busproto.Terminate{Reason: "swap finished"})
	sendWithRetry(ctx, busproto.LaneCtl, address.Store(), busproto.DeleteCheckpoint{SwapID: id})

	if m.PeerAddr != (address.ServiceAddress{}) && !ctx.ReferencesRemain(m.PeerAddr) {
		sendWithRetry(ctx, busproto.LaneCtl, m.PeerAddr, busproto.Terminate{Reason: "no remaining swaps"})
	}

	if m.offerVal != nil {
		syncerA := address.Syncer(string(m.offerVal.Offer.Accordant), string(m.offerVal.Offer.Network))
		syncerB := address.Syncer(string(m.offerVal.Offer.Arbitrating), string(m.offerVal.Offer.Network))
		for _, s := range []address.ServiceAddress{syncerA, syncerB} {
			if !ctx.ReferencesRemain(s) {
				sendWithRetry(ctx, busproto.LaneCtl, s, busproto.Terminate{Reason: "no remaining swaps"})
			}
		}
		ctx.Registry().RemovePublicOffer(m.offerVal.Offer.UUID)
	}

	ctx.Progress().GC(id)
}

func sendWithRetry(ctx Context, lane busproto.Lane, dst address.ServiceAddress, payload busproto.Payload) {
	var lastErr error
	for attempt := 0; attempt < cleanupAttempts; attempt++ {
		if err := ctx.Send(lane, dst, payload); err != nil {
			lastErr = err
			continue
		}
		return
	}
	if lastErr != nil {
		log.WithError(lastErr).WithField("dst", dst).Warn("cleanup send failed after retries")
	}
}
