package dispatcher

import (
	"time"

	"farcasterd/internal/address"
	"farcasterd/internal/busproto"
	"farcasterd/internal/ferrors"
	"farcasterd/internal/syncerfsm"
	"farcasterd/internal/trade"
)

// Dispatch routes one inbound envelope per the trade-match and syncer-match
// tables. It never returns an error to the caller: failures
// that are the requesting client's fault are reported back over the bus
// (replyErr); anything else is logged.
func (d *Dispatcher) Dispatch(ctx trade.Context, env busproto.Envelope) {
	switch p := env.Payload.(type) {
	case busproto.MakeOffer:
		m, err := trade.NewMaker(ctx, p.Proto)
		if err != nil {
			replyErr(ctx, env, err)
			return
		}
		d.addTrade(m)
		if po, ok := m.OpenOffer(); ok {
			reply(ctx, env, busproto.MadeOffer{Offer: po})
		}

	case busproto.TakeOffer:
		m, err := trade.NewTaker(ctx, p.PublicOffer, p.ArbitratingAddr, p.AccordantAddr, p.WithoutValidation)
		if err != nil {
			replyErr(ctx, env, err)
			return
		}
		d.addTrade(m)
		reply(ctx, env, busproto.Success{Details: "offer taken"})

	case busproto.RestoreCheckpoint:
		m, err := trade.NewRestore(ctx, p.Entry)
		if err != nil {
			replyErr(ctx, env, err)
			return
		}
		d.addTrade(m)

	case busproto.TakerCommit:
		m := d.findByOpenOffer(p.PublicOffer)
		if m == nil {
			replyErr(ctx, env, ferrors.Userf("unknown offer"))
			return
		}
		d.step(ctx, m, env)

	case busproto.RevokeOffer:
		m := d.findByOpenOffer(p.PublicOffer)
		if m == nil {
			replyErr(ctx, env, ferrors.Userf("unknown offer"))
			return
		}
		d.step(ctx, m, env)
		reply(ctx, env, busproto.Success{Details: "offer revoked"})

	case busproto.LaunchSwap:
		m := d.findByConsumedOffer(p.PublicOffer)
		if m == nil {
			log.Debug("LaunchSwap for offer with no consuming machine, ignored")
			return
		}
		d.step(ctx, m, env)

	case busproto.FundingInfo:
		d.routeBySwapSource(ctx, env)
	case busproto.FundingCompleted:
		d.routeBySwapSource(ctx, env)
	case busproto.FundingCanceled:
		d.routeBySwapSource(ctx, env)
	case busproto.SwapOutcome:
		d.routeBySwapSource(ctx, env)
	case busproto.PeerdUnreachable:
		d.routeBySwapSource(ctx, env)

	case busproto.PeerdTerminated:
		if m := d.findByPeerAddr(env.Src); m != nil {
			d.step(ctx, m, env)
		}

	case busproto.AbortRequest:
		m := d.findBySwapID(p.SwapID)
		if m == nil {
			replyErr(ctx, env, ferrors.Userf("unknown swap"))
			return
		}
		d.step(ctx, m, env)
		reply(ctx, env, busproto.Success{Details: "swap aborted"})

	case busproto.Hello:
		d.dispatchHello(ctx, env)

	case busproto.SweepAddress:
		taskID := d.allocTaskID()
		m, err := syncerfsm.NewStart(ctx, taskID, p.Addendum, env.Src)
		if err != nil {
			replyErr(ctx, env, err)
			return
		}
		d.addSyncer(m)

	case busproto.SweepSuccess:
		m := d.findSyncerByTaskID(p.TaskID)
		if m == nil {
			log.WithField("task_id", p.TaskID).Debug("SweepSuccess for unknown task_id, ignored")
			return
		}
		d.stepSyncer(ctx, m, env)

	default:
		log.WithField("tag", env.Payload.Tag()).Debug("envelope matched no table entry, ignored")
	}
}

// routeBySwapSource handles the match-table entry shared by
// FundingInfo/FundingCompleted/FundingCanceled/SwapOutcome/PeerdUnreachable:
// "from source Swap(swap_id) -> machine whose swap_id() equals swap_id".
func (d *Dispatcher) routeBySwapSource(ctx trade.Context, env busproto.Envelope) {
	src := env.Src
	if src.Kind != address.KindSwap {
		log.WithField("src", src).Debug("swap-keyed message from unexpected source kind, ignored")
		return
	}
	m := d.findBySwapID(src.SwapID)
	if m == nil {
		log.WithField("swap_id", src.SwapID).Debug("message for unknown swap, ignored")
		return
	}
	d.step(ctx, m, env)
}

func (d *Dispatcher) step(ctx trade.Context, m *trade.Machine, env busproto.Envelope) {
	terminated, err := m.Next(ctx, env)
	if err != nil {
		log.WithError(err).WithField("phase", m.Phase).Warn("trade machine step failed")
		return
	}
	if terminated {
		// Remove before Cleanup so ReferencesRemain doesn't see m itself
		// as still holding its own Peer/Syncer addresses.
		d.removeTrade(m)
		trade.Cleanup(ctx, m)
	}
}

func (d *Dispatcher) stepSyncer(ctx trade.Context, m *syncerfsm.Machine, env busproto.Envelope) {
	terminated, err := m.Next(ctx, env)
	if err != nil {
		log.WithError(err).WithField("phase", m.Phase).Warn("syncer machine step failed")
		return
	}
	if terminated {
		d.removeSyncer(m)
	}
}

// CheckReconnectTimeouts aborts any trade machine that has been waiting on
// an unreachable peer past its configured deadline. Called periodically
// rather than off any one envelope, since a timeout is the absence of a
// message rather than the arrival of one.
func (d *Dispatcher) CheckReconnectTimeouts(ctx trade.Context, now time.Time) {
	for _, m := range d.snapshotTrades() {
		terminated, err := m.CheckReconnectTimeout(ctx, now)
		if err != nil {
			log.WithError(err).WithField("phase", m.Phase).Warn("reconnect timeout abort failed")
			continue
		}
		if terminated {
			d.removeTrade(m)
			trade.Cleanup(ctx, m)
		}
	}
}

// dispatchHello fans a Hello out to every live machine, in insertion order,
// over a drained snapshot. Machines that don't consume it are
// left unchanged; no re-insertion step is needed since Machine is mutated
// in place rather than replaced.
func (d *Dispatcher) dispatchHello(ctx trade.Context, env busproto.Envelope) {
	promoted := ctx.Registry().PromoteOnHello(env.Src)
	if !promoted {
		log.WithField("addr", env.Src).Debug("duplicate Hello, logged only")
	}

	for _, m := range d.snapshotTrades() {
		d.step(ctx, m, env)
	}
	for _, m := range d.snapshotSyncers() {
		d.stepSyncer(ctx, m, env)
	}
}
