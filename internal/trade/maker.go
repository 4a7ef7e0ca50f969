package trade

import (
	"farcasterd/internal/address"
	"farcasterd/internal/busproto"
	"farcasterd/internal/ferrors"
	"farcasterd/internal/metrics"
	"farcasterd/internal/offer"
	"farcasterd/internal/supervisor"
)

// NewMaker runs the StartMaker step and returns the resulting Machine,
// already advanced to MakerOffered on success. The
// caller (dispatcher) is responsible for replying MadeOffer or Failure to
// the requesting client based on the returned error.
func NewMaker(ctx Context, params busproto.OfferParams) (*Machine, error) {
	if err := ValidateOfferParams(params); err != nil {
		return nil, err
	}
	if !ctx.KeyManagerReady() {
		return nil, ferrors.NotReadyf("key manager not yet registered")
	}

	po := offer.PublicOffer{
		Offer: offer.Offer{
			UUID:              newOfferUUID(),
			Network:           params.Network,
			Arbitrating:       params.Arbitrating,
			Accordant:         params.Accordant,
			ArbitratingAmount: params.ArbitratingAmount,
			AccordantAmount:   params.AccordantAmount,
			CancelTimelock:    params.CancelTimelock,
			PunishTimelock:    params.PunishTimelock,
			FeeStrategy:       params.FeeStrategy,
			Maker:             params.Maker,
		},
		PeerSocket: params.BindAddr,
	}

	reg := ctx.Registry()
	if _, exists := reg.PublicOffer(po.Offer.UUID); exists {
		return nil, ferrors.Userf("offer already exists")
	}

	// Duplicate listener bind request is a no-op success.
	if !reg.IsListening(params.BindAddr) {
		if err := ctx.Launch(supervisor.KindPeer, address.Peer(params.BindAddr), []string{"--listen", params.BindAddr}); err != nil {
			return nil, ferrors.Wrap(ferrors.Transport, "open listener", err)
		}
		reg.AddListen(params.BindAddr)
	}

	if err := reg.AddPublicOffer(po); err != nil {
		return nil, err
	}
	metrics.OffersOpen.Inc()

	m := &Machine{
		Phase:    PhaseMakerOffered,
		IsMaker:  true,
		Params:   params,
		offerVal: &po,
		PeerAddr: address.Peer(params.BindAddr),
	}

	if err := ctx.Send(busproto.LaneRpc, address.Gateway(), busproto.MadeOffer{Offer: po}); err != nil {
		log.WithError(err).Debug("failed to notify gateway of new offer")
	}
	return m, nil
}
