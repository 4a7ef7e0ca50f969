// Package offer holds the swap offer data model: Offer, PublicOffer,
// OfferStatus and Outcome. Types here are the
// user-authored, immutable-once-created artifacts the trade state machine
// and registry reason about; the wire encoding used to interoperate with
// other nodes lives in pkg/offerenc.
package offer

import (
	"fmt"

	"github.com/google/uuid"
)

// Network is the chain network an offer targets.
type Network string

const (
	Mainnet Network = "Mainnet"
	Testnet Network = "Testnet"
	Local   Network = "Local"
)

// Chain tags one leg of the swap. The arbitrating chain enforces the
// cancel/punish timelocks (the UTXO chain, e.g. Bitcoin); the accordant
// chain is the other leg (the account-style chain, e.g. Monero).
type Chain string

const (
	Bitcoin Chain = "Bitcoin"
	Monero  Chain = "Monero"
)

// Role is the swap-protocol role the maker takes on. Alice funds the
// accordant (A) chain, Bob funds the arbitrating (B) chain.
type Role string

const (
	Alice Role = "Alice"
	Bob   Role = "Bob"
)

// Unit conversion constants used by validation.
const (
	SatoshiPerBTC   uint64 = 100_000_000
	PiconeroPerXMR  uint64 = 1_000_000_000_000
	MaxBTCOnMainnet        = SatoshiPerBTC / 100   // 0.01 BTC
	MaxXMROnMainnet        = 2 * PiconeroPerXMR    // 2 XMR
	MinXMRAmount           = PiconeroPerXMR / 1000 // 0.001 XMR
)

// Offer is the user-authored, immutable set of swap parameters.
type Offer struct {
	UUID              uuid.UUID
	Network           Network
	Arbitrating       Chain // B-chain
	Accordant         Chain // A-chain
	ArbitratingAmount uint64 // satoshis
	AccordantAmount   uint64 // piconero
	CancelTimelock    uint32
	PunishTimelock    uint32
	FeeStrategy       string
	Maker             Role
}

// PublicOffer is an Offer plus the maker's node identity, the shareable
// artifact a taker consumes. Two PublicOffers with equal Offer.UUID are
// considered the same offer regardless of any other field.
type PublicOffer struct {
	Offer        Offer
	NodePubKey   [33]byte // compressed secp256k1 public key
	PeerSocket   string   // maker's public socket address
}

// Equal compares offers by UUID alone, ignoring every other field.
func (p PublicOffer) Equal(o PublicOffer) bool {
	return p.Offer.UUID == o.Offer.UUID
}

func (p PublicOffer) String() string {
	return fmt.Sprintf("offer:%s", p.Offer.UUID)
}

// Outcome is the terminal result of a finished swap.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeBuy
	OutcomeRefund
	OutcomePunish
	OutcomeAbort
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBuy:
		return "Buy"
	case OutcomeRefund:
		return "Refund"
	case OutcomePunish:
		return "Punish"
	case OutcomeAbort:
		return "Abort"
	default:
		return "None"
	}
}

// Status is the lifecycle tag of an offer: Open -> InProgress -> Ended.
// Transitions are monotone; there are no rebirths.
type Status struct {
	Tag     StatusTag
	Outcome Outcome // only meaningful when Tag == StatusEnded
}

type StatusTag int

const (
	StatusOpen StatusTag = iota
	StatusInProgress
	StatusEnded
)

func (s StatusTag) String() string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusInProgress:
		return "InProgress"
	case StatusEnded:
		return "Ended"
	default:
		return "Unknown"
	}
}

// CanTransitionTo enforces the monotone Open->InProgress->Ended rule.
func (s Status) CanTransitionTo(next StatusTag) bool {
	return next > s.Tag || (next == s.Tag && s.Tag != StatusEnded)
}
