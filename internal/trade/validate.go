package trade

import (
	"strings"

	"farcasterd/internal/busproto"
	"farcasterd/internal/ferrors"
	"farcasterd/internal/offer"
)

// ValidateOfferParams enforces the Make/Take validation rules: amount
// caps/minimums and address-network agreement. Address prefixes aren't
// authoritative here — the wallet/syncer workers are the real
// chain-address authority — this is a best-effort heuristic gate so
// obviously-wrong input is rejected before any worker is involved; see
// DESIGN.md.
func ValidateOfferParams(p busproto.OfferParams) error {
	if p.ArbitratingAmount == 0 || p.AccordantAmount == 0 {
		return ferrors.Userf("amounts must be non-zero")
	}
	if p.AccordantAmount < offer.MinXMRAmount {
		return ferrors.Userf("Monero amount too low, minimum is 0.001 XMR")
	}
	if p.Network == offer.Mainnet {
		if p.ArbitratingAmount > offer.MaxBTCOnMainnet {
			return ferrors.Userf("Bitcoin amount %d too high, mainnet amount capped at 0.01 BTC", p.ArbitratingAmount)
		}
		if p.AccordantAmount > offer.MaxXMROnMainnet {
			return ferrors.Userf("Monero amount %d too high, mainnet amount capped at 2 XMR", p.AccordantAmount)
		}
	}
	if p.Maker != offer.Alice && p.Maker != offer.Bob {
		return ferrors.Userf("maker role must be Alice or Bob")
	}
	return nil
}

// ValidateTakerAddresses checks the network agreement of the addresses a
// taker supplies against the offer's network, with the A-chain "local"
// relaxation below.
func ValidateTakerAddresses(po offer.PublicOffer, arbitratingAddr, accordantAddr string, withoutValidation bool) error {
	if withoutValidation {
		return nil
	}
	if !addrMatchesNetwork(po.Offer.Arbitrating, arbitratingAddr, po.Offer.Network, false) {
		return ferrors.Userf("arbitrating address does not match offer network %s", po.Offer.Network)
	}
	if !addrMatchesNetwork(po.Offer.Accordant, accordantAddr, po.Offer.Network, true) {
		return ferrors.Userf("accordant address does not match offer network %s", po.Offer.Network)
	}
	return nil
}

// addrMatchesNetwork applies the heuristic prefix check, relaxed for the
// A-chain's "local" tag: allowLocalRelax is true only for the accordant
// leg, where a "local:" address tag is accepted on any network.
func addrMatchesNetwork(chain offer.Chain, addr string, network offer.Network, allowLocalRelax bool) bool {
	if allowLocalRelax && strings.HasPrefix(addr, "local:") {
		return true
	}
	tag := inferNetwork(chain, addr)
	if tag == "" {
		return false
	}
	return tag == network
}

// inferNetwork is a best-effort guess at which network an address belongs
// to from its textual prefix. Returns "" if no known prefix matches.
func inferNetwork(chain offer.Chain, addr string) offer.Network {
	switch chain {
	case offer.Bitcoin:
		switch {
		case strings.HasPrefix(addr, "1"), strings.HasPrefix(addr, "3"), strings.HasPrefix(addr, "bc1"):
			return offer.Mainnet
		case strings.HasPrefix(addr, "m"), strings.HasPrefix(addr, "n"), strings.HasPrefix(addr, "2"), strings.HasPrefix(addr, "tb1"):
			return offer.Testnet
		}
	case offer.Monero:
		switch {
		case strings.HasPrefix(addr, "4"), strings.HasPrefix(addr, "8"):
			return offer.Mainnet
		case strings.HasPrefix(addr, "9"), strings.HasPrefix(addr, "A"):
			return offer.Testnet
		}
	}
	return ""
}
