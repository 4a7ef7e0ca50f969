// Package address implements ServiceAddress, the bus addressing scheme.
// Addresses are a closed, structurally-comparable tagged variant — never
// a bare string — so two addresses are equal iff
// their Kind and payload are equal, and a ServiceAddress can be used
// directly as a Go map key.
package address

import (
	"crypto/sha256"
	"fmt"

	"github.com/google/uuid"
)

// Kind tags the variant a ServiceAddress carries.
type Kind uint8

const (
	KindOrchestrator Kind = iota
	KindKeyManager
	KindStore
	KindPeer
	KindSwap
	KindSyncer
	KindClient
	KindGateway
)

func (k Kind) String() string {
	switch k {
	case KindOrchestrator:
		return "Orchestrator"
	case KindKeyManager:
		return "KeyManager"
	case KindStore:
		return "Store"
	case KindPeer:
		return "Peer"
	case KindSwap:
		return "Swap"
	case KindSyncer:
		return "Syncer"
	case KindClient:
		return "Client"
	case KindGateway:
		return "Gateway"
	default:
		return "Unknown"
	}
}

// SwapID is a 32-byte identifier, globally unique per node, derived
// deterministically from a PublicOffer at launch time.
type SwapID [32]byte

func (s SwapID) String() string { return fmt.Sprintf("%x", s[:]) }

// DeriveSwapID computes a SwapID deterministically from a PublicOffer's
// canonical encoding, so maker and taker arrive at the same id without a
// round trip.
func DeriveSwapID(publicOfferEncoding []byte) SwapID {
	return sha256.Sum256(publicOfferEncoding)
}

// ServiceAddress is the bus address: a tagged variant over every worker
// kind the orchestrator may address. Only the fields relevant to Kind are
// populated; it is comparable with ==, so two addresses are equal iff
// their tag and payload are equal.
type ServiceAddress struct {
	Kind     Kind
	NodeAddr string // KindPeer: the peer's socket/multiaddr form
	SwapID   SwapID // KindSwap
	Chain    string // KindSyncer
	Network  string // KindSyncer
	ClientID uuid.UUID
}

func Orchestrator() ServiceAddress { return ServiceAddress{Kind: KindOrchestrator} }
func KeyManager() ServiceAddress   { return ServiceAddress{Kind: KindKeyManager} }
func Store() ServiceAddress        { return ServiceAddress{Kind: KindStore} }
func Gateway() ServiceAddress      { return ServiceAddress{Kind: KindGateway} }

func Peer(nodeAddr string) ServiceAddress {
	return ServiceAddress{Kind: KindPeer, NodeAddr: Normalize(nodeAddr)}
}

func Swap(id SwapID) ServiceAddress {
	return ServiceAddress{Kind: KindSwap, SwapID: id}
}

func Syncer(chain, network string) ServiceAddress {
	return ServiceAddress{Kind: KindSyncer, Chain: chain, Network: network}
}

// NewClient mints a fresh Client address with a random id, used to address
// CLI/gateway sessions that subscribe to progress or issue one Rpc request.
func NewClient() ServiceAddress {
	return ServiceAddress{Kind: KindClient, ClientID: uuid.New()}
}

// Client wraps an existing client id, used when routing a reply back to a
// session whose id was learned from an earlier message.
func Client(id uuid.UUID) ServiceAddress {
	return ServiceAddress{Kind: KindClient, ClientID: id}
}

func (a ServiceAddress) String() string {
	switch a.Kind {
	case KindPeer:
		return fmt.Sprintf("Peer(%s)", a.NodeAddr)
	case KindSwap:
		return fmt.Sprintf("Swap(%s)", a.SwapID)
	case KindSyncer:
		return fmt.Sprintf("Syncer(%s,%s)", a.Chain, a.Network)
	case KindClient:
		return fmt.Sprintf("Client(%s)", a.ClientID)
	default:
		return a.Kind.String()
	}
}

// IsZero reports whether a has never been assigned (the Go zero value
// collides with Orchestrator, so callers that need "no address" should use
// a *ServiceAddress or a separate ok bool instead of relying on this).
func (a ServiceAddress) IsZero() bool { return a == ServiceAddress{} }
