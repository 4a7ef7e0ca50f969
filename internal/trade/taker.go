package trade

import (
	"farcasterd/internal/address"
	"farcasterd/internal/ferrors"
	"farcasterd/internal/offer"
	"farcasterd/internal/supervisor"
	"farcasterd/pkg/offerenc"
)

// NewTaker runs the StartTaker step: it mirrors the maker path but uses
// connect_peer instead of listen. Returns the Machine advanced to
// TakerConnecting on success.
func NewTaker(ctx Context, po offer.PublicOffer, arbitratingAddr, accordantAddr string, withoutValidation bool) (*Machine, error) {
	if err := ValidateTakerAddresses(po, arbitratingAddr, accordantAddr, withoutValidation); err != nil {
		return nil, err
	}
	if !ctx.KeyManagerReady() {
		return nil, ferrors.NotReadyf("key manager not yet registered")
	}

	reg := ctx.Registry()
	if existing, ok := reg.PublicOffer(po.Offer.UUID); ok {
		if status, ok := reg.OfferStatus(existing.Offer.UUID); ok && status.Tag != offer.StatusOpen {
			return nil, ferrors.Userf("offer is no longer available")
		}
	}

	encoding, err := offerenc.Encode(po)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.Internal, "encode public offer", err)
	}
	swapID := address.DeriveSwapID(encoding)

	peerAddr := address.Peer(po.PeerSocket)
	if err := ctx.Launch(supervisor.KindPeer, peerAddr, []string{"--connect", po.PeerSocket}); err != nil {
		return nil, ferrors.Wrap(ferrors.Transport, "connect to maker", err)
	}

	m := &Machine{
		Phase:           PhaseTakerConnecting,
		IsMaker:         false,
		offerVal:        &po,
		PeerAddr:        peerAddr,
		ArbitratingAddr: arbitratingAddr,
		AccordantAddr:   accordantAddr,
		swapIDVal:       &swapID,
		Role:            oppositeRole(po.Offer.Maker),
	}
	return m, nil
}

func oppositeRole(maker offer.Role) offer.Role {
	if maker == offer.Alice {
		return offer.Bob
	}
	return offer.Alice
}
