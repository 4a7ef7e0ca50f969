package trade

import (
	"time"

	"farcasterd/internal/address"
	"farcasterd/internal/busproto"
	"farcasterd/internal/metrics"
	"farcasterd/internal/offer"
	"farcasterd/internal/progress"
	"farcasterd/internal/supervisor"
)

// Next feeds one bus envelope into the machine and advances it, per its
// per-phase transition table. It returns terminated=true once
// the machine has reached End; the dispatcher is responsible for garbage
// collecting the machine (and its progress log, via cleanup) after that.
func (m *Machine) Next(ctx Context, env busproto.Envelope) (terminated bool, err error) {
	// Peer health is handled the same way regardless of phase, once a swap
	// is underway.
	switch env.Payload.(type) {
	case busproto.PeerdTerminated:
		log.WithField("peer", env.Src).Debug("peer worker terminated; swap outcome unaffected")
		return false, nil
	case busproto.PeerdUnreachable:
		m.awaitingPeerReconnect = true
		m.reconnectDeadline = time.Now().Add(ctx.PeerReconnectTimeout())
		m.emit(ctx, progress.Message, "peer unreachable, awaiting reconnect")
		if err := ctx.Send(busproto.LaneCtl, m.PeerAddr, busproto.Terminate{Reason: "unreachable"}); err != nil {
			log.WithError(err).Debug("failed to terminate unreachable peer worker")
		}
		return false, nil
	case busproto.AbortRequest:
		return m.abort(ctx)
	case busproto.Hello:
		if m.awaitingPeerReconnect && env.Src == m.PeerAddr {
			m.awaitingPeerReconnect = false
			m.reconnectDeadline = time.Time{}
			m.emit(ctx, progress.Message, "peer reconnected")
		}
	}

	switch m.Phase {
	case PhaseMakerOffered:
		return m.stepMakerOffered(ctx, env)
	case PhaseTakerConnecting:
		return m.stepTakerConnecting(ctx, env)
	case PhaseAwaitingKeys:
		return m.stepAwaitingKeys(ctx, env)
	case PhaseAwaitingSyncers:
		return m.stepAwaitingSyncers(ctx, env)
	case PhaseSwapLaunched:
		return m.stepSwapLaunched(ctx, env)
	case PhaseAwaitingFunding:
		return m.stepAwaitingFunding(ctx, env)
	case PhaseSwapping:
		return m.stepSwapping(ctx, env)
	default:
		log.WithFields(map[string]interface{}{"phase": m.Phase, "tag": env.Payload.Tag()}).Debug("envelope ignored in this phase")
		return false, nil
	}
}

func (m *Machine) stepMakerOffered(ctx Context, env busproto.Envelope) (bool, error) {
	if revoke, ok := env.Payload.(busproto.RevokeOffer); ok {
		if m.offerVal == nil || revoke.PublicOffer.Offer.UUID != m.offerVal.Offer.UUID {
			return false, nil
		}
		metrics.OffersOpen.Dec()
		ctx.Registry().SetOfferStatus(m.offerVal.Offer.UUID, offer.Status{Tag: offer.StatusEnded, Outcome: offer.OutcomeAbort})
		ctx.Registry().RemovePublicOffer(m.offerVal.Offer.UUID)
		m.Phase = PhaseEnd
		return true, nil
	}

	commit, ok := env.Payload.(busproto.TakerCommit)
	if !ok {
		return false, nil
	}
	if m.offerVal == nil || commit.PublicOffer.Offer.UUID != m.offerVal.Offer.UUID {
		log.Debug("TakerCommit for unknown offer ignored")
		return false, nil
	}
	if _, consumed := m.ConsumedOffer(); consumed {
		log.Debug("stale TakerCommit on already-consumed offer ignored")
		return false, nil
	}

	swapID := commit.SwapID
	m.swapIDVal = &swapID
	m.consumed = true
	m.Role = m.Params.Maker

	reg := ctx.Registry()
	reg.SetOfferStatus(m.offerVal.Offer.UUID, offer.Status{Tag: offer.StatusInProgress})
	reg.InitSwap()
	metrics.OffersOpen.Dec()

	if err := ctx.Send(busproto.LaneCtl, address.KeyManager(), busproto.LaunchSwap{
		PublicOffer: *m.offerVal,
		SwapID:      swapID,
		Role:        m.Role,
		IsMaker:     true,
	}); err != nil {
		return false, err
	}

	m.Phase = PhaseAwaitingKeys
	m.emit(ctx, progress.StateTransition, "taker committed, requesting key material")
	return false, nil
}

func (m *Machine) stepTakerConnecting(ctx Context, env busproto.Envelope) (bool, error) {
	if _, ok := env.Payload.(busproto.Hello); !ok || env.Src != m.PeerAddr {
		return false, nil
	}
	if m.offerVal == nil || m.swapIDVal == nil {
		return false, nil
	}

	if err := ctx.Send(busproto.LaneMsg, m.PeerAddr, busproto.TakerCommit{
		PublicOffer: *m.offerVal,
		SwapID:      *m.swapIDVal,
	}); err != nil {
		return false, err
	}
	if err := ctx.Send(busproto.LaneCtl, address.KeyManager(), busproto.LaunchSwap{
		PublicOffer: *m.offerVal,
		SwapID:      *m.swapIDVal,
		Role:        m.Role,
		IsMaker:     false,
	}); err != nil {
		return false, err
	}
	ctx.Registry().InitSwap()

	m.Phase = PhaseAwaitingKeys
	m.emit(ctx, progress.StateTransition, "connected to maker, requesting key material")
	return false, nil
}

func (m *Machine) stepAwaitingKeys(ctx Context, env busproto.Envelope) (bool, error) {
	ready, ok := env.Payload.(busproto.KeyShareReady)
	if !ok || m.swapIDVal == nil || ready.SwapID != *m.swapIDVal {
		return false, nil
	}

	syncerA := address.Syncer(string(m.offerVal.Offer.Accordant), string(m.offerVal.Offer.Network))
	syncerB := address.Syncer(string(m.offerVal.Offer.Arbitrating), string(m.offerVal.Offer.Network))
	if err := ctx.Launch(supervisor.KindSyncer, syncerA, []string{"--chain", string(m.offerVal.Offer.Accordant), "--network", string(m.offerVal.Offer.Network)}); err != nil {
		return false, err
	}
	if err := ctx.Launch(supervisor.KindSyncer, syncerB, []string{"--chain", string(m.offerVal.Offer.Arbitrating), "--network", string(m.offerVal.Offer.Network)}); err != nil {
		return false, err
	}

	m.Phase = PhaseAwaitingSyncers
	m.emit(ctx, progress.StateTransition, "key material ready, spawning syncers")
	return false, nil
}

func (m *Machine) stepAwaitingSyncers(ctx Context, env busproto.Envelope) (bool, error) {
	if _, ok := env.Payload.(busproto.Hello); !ok || env.Src.Kind != address.KindSyncer {
		return false, nil
	}
	switch env.Src.Chain {
	case string(m.offerVal.Offer.Accordant):
		m.syncerAReady = true
	case string(m.offerVal.Offer.Arbitrating):
		m.syncerBReady = true
	default:
		return false, nil
	}
	if !m.syncerAReady || !m.syncerBReady {
		return false, nil
	}

	swapAddr := address.Swap(*m.swapIDVal)
	if err := ctx.Launch(supervisor.KindSwap, swapAddr, []string{"--swap-id", m.swapIDVal.String()}); err != nil {
		return false, err
	}
	if err := ctx.Send(busproto.LaneCtl, swapAddr, busproto.LaunchSwap{
		PublicOffer: *m.offerVal,
		SwapID:      *m.swapIDVal,
		Role:        m.Role,
		IsMaker:     m.IsMaker,
	}); err != nil {
		return false, err
	}

	m.Phase = PhaseSwapLaunched
	metrics.SwapsInitialized.Inc()
	m.emit(ctx, progress.StateTransition, "syncers ready, swap launched")
	return false, nil
}

func (m *Machine) stepSwapLaunched(ctx Context, env busproto.Envelope) (bool, error) {
	switch p := env.Payload.(type) {
	case busproto.FundingInfo:
		m.FundingChain = p.Chain
		m.FundingAddr = p.Address
		m.FundingAmount = p.Amount
		id, _ := m.SwapID()
		ctx.Registry().MarkAwaitingFunding(p.Chain, id)
		m.Phase = PhaseAwaitingFunding
		m.emit(ctx, progress.StateTransition, "awaiting funding")
		if err := ctx.AutoFund(p.Chain, p.Address, p.Amount); err != nil {
			log.WithError(err).Debug("auto-fund unavailable, waiting on manual funding")
		}
		return false, nil
	case busproto.SwapOutcome:
		return m.finish(ctx, p.Outcome)
	}
	return false, nil
}

func (m *Machine) stepAwaitingFunding(ctx Context, env busproto.Envelope) (bool, error) {
	id, _ := m.SwapID()
	switch p := env.Payload.(type) {
	case busproto.FundingCompleted:
		ctx.Registry().ClearAwaitingFunding(p.Chain, id)
		m.Phase = PhaseSwapping
		m.emit(ctx, progress.StateTransition, "funded, swap in progress")
		return false, nil
	case busproto.FundingCanceled:
		ctx.Registry().ClearAwaitingFunding(p.Chain, id)
		return m.finish(ctx, offer.OutcomeAbort)
	}
	return false, nil
}

func (m *Machine) stepSwapping(ctx Context, env busproto.Envelope) (bool, error) {
	outcome, ok := env.Payload.(busproto.SwapOutcome)
	if !ok {
		return false, nil
	}
	return m.finish(ctx, outcome.Outcome)
}

func (m *Machine) abort(ctx Context) (bool, error) {
	if m.Phase == PhaseEnd {
		return true, nil
	}
	return m.finish(ctx, offer.OutcomeAbort)
}

func (m *Machine) finish(ctx Context, outcome offer.Outcome) (bool, error) {
	m.Outcome = outcome
	ctx.Registry().RecordOutcome(outcome)
	metrics.SwapOutcomes.WithLabelValues(outcome.String()).Inc()
	if m.offerVal != nil {
		ctx.Registry().SetOfferStatus(m.offerVal.Offer.UUID, offer.Status{Tag: offer.StatusEnded, Outcome: outcome})
	}
	if id, ok := m.SwapID(); ok {
		ctx.Progress().Emit(id, progress.Event{Kind: progress.Success, Text: outcome.String()})
	}
	m.Phase = PhaseEnd
	return true, nil
}
