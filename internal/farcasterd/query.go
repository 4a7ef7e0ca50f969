package farcasterd

import (
	"time"

	"farcasterd/internal/address"
	"farcasterd/internal/busproto"
	"farcasterd/internal/offer"
)

// version is reported by InfoRequest; bumped by hand, there is no build-time
// injection step in this tree.
const version = "0.1.0"

// handleQuery answers the read-only Rpc request/response surface directly
// from Runtime's own state, replying to env.Src over LaneRpc. It
// returns false if env isn't one of these request types, letting Dispatch
// fall through to the trade/syncer match tables.
//
// ListCheckpointsRequest and RestoreRequest are the two exceptions: the
// Store worker is the sole owner of persisted checkpoints, so these are
// forwarded to it one-way (see forwardCheckpointQuery/forwardRestoreRequest
// below) and answered asynchronously when Runtime.Dispatch intercepts
// Store's reply, rather than synchronously here, since Store runs as a
// separate process.
func (rt *Runtime) handleQuery(env busproto.Envelope) bool {
	switch p := env.Payload.(type) {
	case busproto.InfoRequest:
		rt.reply(env.Src, rt.nodeInfo())
	case busproto.ListPeersRequest:
		rt.reply(env.Src, busproto.ListPeersResponse{Peers: rt.peerInfos()})
	case busproto.ListSwapsRequest:
		rt.reply(env.Src, busproto.ListSwapsResponse{Swaps: rt.swapInfos()})
	case busproto.ListOffersRequest:
		rt.reply(env.Src, busproto.ListOffersResponse{Offers: rt.reg.OffersBySelector(selectorTag(p.Selector))})
	case busproto.ListListensRequest:
		rt.reply(env.Src, busproto.ListListensResponse{Addrs: rt.reg.Listens()})
	case busproto.NeedsFundingRequest:
		rt.reply(env.Src, busproto.NeedsFundingResponse{Addresses: rt.fundingNeeded(p.Chain)})
	case busproto.ListCheckpointsRequest:
		rt.forwardCheckpointQuery(env.Src)
	case busproto.RestoreRequest:
		rt.forwardRestoreRequest(env.Src, p.SwapID)
	case busproto.SweepRequest:
		rt.disp.Dispatch(rt, busproto.Envelope{
			Lane: busproto.LaneCtl,
			Src:  env.Src,
			Dst:  address.Orchestrator(),
			Payload: busproto.SweepAddress{
				Addendum: busproto.SweepAddendum{
					Chain:     p.Chain,
					Network:   p.Network,
					SourceKey: []byte(p.Source),
					DestAddr:  p.Dest,
				},
			},
		})
	default:
		return false
	}
	return true
}

func (rt *Runtime) reply(to address.ServiceAddress, payload busproto.Payload) {
	if err := rt.Send(busproto.LaneRpc, to, payload); err != nil {
		log.WithError(err).WithField("dst", to).Debug("failed to reply to rpc request")
	}
}

func selectorTag(s busproto.OfferSelector) offer.StatusTag {
	switch s {
	case busproto.SelectInProgress:
		return offer.StatusInProgress
	case busproto.SelectEnded:
		return offer.StatusEnded
	default:
		return offer.StatusOpen
	}
}

func (rt *Runtime) nodeInfo() busproto.NodeInfo {
	stats := rt.reg.Stats()
	return busproto.NodeInfo{
		Version:     version,
		Uptime:      time.Since(rt.startedAt).Round(time.Second).String(),
		ListenCount: len(rt.reg.Listens()),
		PeerCount:   len(rt.reg.RegisteredAddrs(address.KindPeer)),
		OfferCount: len(rt.reg.OffersBySelector(offer.StatusOpen)) +
			len(rt.reg.OffersBySelector(offer.StatusInProgress)),
		SwapCount:   int(stats.Initialized),
		SyncerCount: len(rt.reg.RegisteredAddrs(address.KindSyncer)),
	}
}

func (rt *Runtime) peerInfos() []busproto.PeerInfo {
	var out []busproto.PeerInfo
	for _, addr := range rt.reg.RegisteredAddrs(address.KindPeer) {
		swaps := 0
		for _, m := range rt.disp.Trades() {
			if m.PeerAddr == addr {
				swaps++
			}
		}
		out = append(out, busproto.PeerInfo{NodeAddr: addr.NodeAddr, Registered: true, SwapCount: swaps})
	}
	return out
}

func (rt *Runtime) swapInfos() []busproto.SwapInfo {
	var out []busproto.SwapInfo
	for _, m := range rt.disp.Trades() {
		id, ok := m.SwapID()
		if !ok {
			continue
		}
		out = append(out, busproto.SwapInfo{SwapID: id, Role: m.Role, Status: m.Phase.String()})
	}
	return out
}

func (rt *Runtime) fundingNeeded(chain offer.Chain) []busproto.FundingInfo {
	var out []busproto.FundingInfo
	for _, m := range rt.disp.Trades() {
		if !awaitingFunding(m) {
			continue
		}
		if m.FundingChain != chain {
			continue
		}
		out = append(out, busproto.FundingInfo{Chain: m.FundingChain, Address: m.FundingAddr, Amount: m.FundingAmount})
	}
	return out
}

// forwardCheckpointQuery relays a ListCheckpointsRequest to Store, queueing
// the caller so Runtime.Dispatch can route Store's eventual
// ListCheckpointsResponse back to it.
func (rt *Runtime) forwardCheckpointQuery(from address.ServiceAddress) {
	rt.mu.Lock()
	rt.pendingCheckpointList = append(rt.pendingCheckpointList, from)
	rt.mu.Unlock()
	if err := rt.Send(busproto.LaneCtl, address.Store(), busproto.ListCheckpointsRequest{}); err != nil {
		log.WithError(err).Debug("failed to forward checkpoint list request to store")
	}
}

func (rt *Runtime) forwardRestoreRequest(from address.ServiceAddress, id address.SwapID) {
	rt.mu.Lock()
	rt.pendingRestore[id] = from
	rt.mu.Unlock()
	if err := rt.Send(busproto.LaneCtl, address.Store(), busproto.RestoreRequest{SwapID: id}); err != nil {
		log.WithError(err).Debug("failed to forward restore request to store")
	}
}
