// Package trade implements the TradeStateMachine, the center of the
// orchestrator: one instance per open offer or running swap, driving
// maker, taker and restore paths from intent to terminal outcome.
package trade

import (
	"time"

	"github.com/sirupsen/logrus"

	"farcasterd/internal/address"
	"farcasterd/internal/busproto"
	"farcasterd/internal/offer"
	"farcasterd/internal/progress"
)

var log = logrus.WithField("component", "trade")

// Phase tags a Machine's current state. Values are ordered so phase
// comparisons like ">= PhaseSwapLaunched" (used by ConsumedOffer) are
// meaningful; never reorder without checking every such comparison.
type Phase int

const (
	PhaseStartMaker Phase = iota
	PhaseStartTaker
	PhaseStartRestore
	PhaseAwaitingPeer
	PhaseMakerOffered
	PhaseTakerConnecting
	PhaseAwaitingKeys
	PhaseAwaitingSyncers
	PhaseSwapLaunched
	PhaseAwaitingFunding
	PhaseSwapping
	PhaseEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseStartMaker:
		return "StartMaker"
	case PhaseStartTaker:
		return "StartTaker"
	case PhaseStartRestore:
		return "StartRestore"
	case PhaseAwaitingPeer:
		return "AwaitingPeer"
	case PhaseMakerOffered:
		return "MakerOffered"
	case PhaseTakerConnecting:
		return "TakerConnecting"
	case PhaseAwaitingKeys:
		return "AwaitingKeys"
	case PhaseAwaitingSyncers:
		return "AwaitingSyncers"
	case PhaseSwapLaunched:
		return "SwapLaunched"
	case PhaseAwaitingFunding:
		return "AwaitingFunding"
	case PhaseSwapping:
		return "Swapping"
	case PhaseEnd:
		return "End"
	default:
		return "Unknown"
	}
}

// Machine is the TradeStateMachine. Every field besides Phase is optional
// scratch state used by one or more phases; see the accessor methods below
// for the invariants each phase upholds.
type Machine struct {
	Phase Phase

	IsMaker bool
	Params  busproto.OfferParams // maker-only, pre-PublicOffer

	offerVal *offer.PublicOffer // set once the PublicOffer exists
	consumed bool                // true once this offer has been launched into a swap

	PeerAddr address.ServiceAddress

	ArbitratingAddr string // taker-supplied, or maker's own receive addr
	AccordantAddr   string

	swapIDVal *address.SwapID
	Role      offer.Role

	syncerAReady bool
	syncerBReady bool

	FundingChain  offer.Chain
	FundingAddr   string
	FundingAmount uint64

	Outcome offer.Outcome

	awaitingPeerReconnect bool      // set after PeerdUnreachable kicked a reconnect
	reconnectDeadline     time.Time // zero until awaitingPeerReconnect is set
}

// CheckReconnectTimeout aborts the swap if it has been waiting on a peer
// reconnect past its deadline. A no-op unless PeerdUnreachable fired and the
// peer hasn't come back since. Called periodically by the dispatcher rather
// than driven off any single envelope, since the thing it reacts to is the
// absence of a message.
func (m *Machine) CheckReconnectTimeout(ctx Context, now time.Time) (terminated bool, err error) {
	if !m.awaitingPeerReconnect || m.reconnectDeadline.IsZero() || now.Before(m.reconnectDeadline) {
		return false, nil
	}
	m.emit(ctx, progress.Failure, "peer reconnect timed out")
	return m.abort(ctx)
}

// SwapID returns the swap id and true iff Phase is one of
// {SwapLaunched, AwaitingFunding, Swapping}.
func (m *Machine) SwapID() (address.SwapID, bool) {
	if m.swapIDVal != nil && (m.Phase == PhaseSwapLaunched || m.Phase == PhaseAwaitingFunding || m.Phase == PhaseSwapping) {
		return *m.swapIDVal, true
	}
	return address.SwapID{}, false
}

// OpenOffer returns the PublicOffer and true iff Phase is MakerOffered, or
// AwaitingPeer while acting as maker.
func (m *Machine) OpenOffer() (offer.PublicOffer, bool) {
	if m.offerVal == nil {
		return offer.PublicOffer{}, false
	}
	if m.Phase == PhaseMakerOffered || (m.Phase == PhaseAwaitingPeer && m.IsMaker) {
		return *m.offerVal, true
	}
	return offer.PublicOffer{}, false
}

// PendingSwapID returns the swap id this machine is negotiating even
// before it is publicly visible via SwapID(), used only by the dispatcher
// to correlate pre-launch messages (key-share/syncer readiness) to the
// right machine instance.
func (m *Machine) PendingSwapID() (address.SwapID, bool) {
	if m.swapIDVal == nil {
		return address.SwapID{}, false
	}
	return *m.swapIDVal, true
}

// ConsumedOffer returns the PublicOffer and true iff Phase >= SwapLaunched
// and the machine hasn't reached End.
func (m *Machine) ConsumedOffer() (offer.PublicOffer, bool) {
	if m.offerVal != nil && m.consumed && int(m.Phase) >= int(PhaseSwapLaunched) && m.Phase != PhaseEnd {
		return *m.offerVal, true
	}
	return offer.PublicOffer{}, false
}

// ReferencesSyncer reports whether this machine's offer depends on the
// (chain,network) syncer at addr, used by cleanup to decide whether a
// shared syncer worker can be torn down.
func (m *Machine) ReferencesSyncer(addr address.ServiceAddress) bool {
	if m.offerVal == nil || addr.Kind != address.KindSyncer {
		return false
	}
	network := string(m.offerVal.Offer.Network)
	return (addr.Chain == string(m.offerVal.Offer.Accordant) || addr.Chain == string(m.offerVal.Offer.Arbitrating)) &&
		addr.Network == network
}

func (m *Machine) emit(ctx Context, kind progress.EventKind, text string) {
	id, ok := m.SwapID()
	if !ok {
		return
	}
	ctx.Progress().Emit(id, progress.Event{Kind: kind, Text: text})
}

func (m *Machine) emitFailure(ctx Context, err error) {
	id, ok := m.SwapID()
	if !ok {
		return
	}
	f := busproto.FromError(err)
	ctx.Progress().Emit(id, progress.Event{Kind: progress.Failure, Code: f.Kind, Info: f.Info})
}
