package busproto

import (
	"farcasterd/internal/address"
	"farcasterd/internal/ferrors"
	"farcasterd/internal/offer"
)

// --- worker lifecycle (Ctl) ---

// Hello is sent by a worker immediately after it starts; receipt promotes
// the worker's expected ServiceAddress from spawning to registered.
type Hello struct{}

func (Hello) Tag() string { return "Hello" }

// Terminate asks a worker to shut down. It is the only cancellation
// primitive the orchestrator has.
type Terminate struct{ Reason string }

func (Terminate) Tag() string { return "Terminate" }

// --- offer lifecycle (Ctl/Rpc creation triggers) ---

// OfferParams is the user-supplied offer proposal carried by MakeOffer,
// before a PublicOffer exists (no node identity attached yet).
type OfferParams struct {
	Network           offer.Network
	Arbitrating       offer.Chain
	Accordant         offer.Chain
	ArbitratingAmount uint64
	AccordantAmount   uint64
	CancelTimelock    uint32
	PunishTimelock    uint32
	FeeStrategy       string
	Maker             offer.Role
	BindAddr          string
}

type MakeOffer struct{ Proto OfferParams }

func (MakeOffer) Tag() string { return "MakeOffer" }

type MadeOffer struct{ Offer offer.PublicOffer }

func (MadeOffer) Tag() string { return "MadeOffer" }

type TakeOffer struct {
	PublicOffer       offer.PublicOffer
	ArbitratingAddr   string // B-chain refund/receive address
	AccordantAddr     string // A-chain receive address
	WithoutValidation bool
}

func (TakeOffer) Tag() string { return "TakeOffer" }

type RevokeOffer struct{ PublicOffer offer.PublicOffer }

func (RevokeOffer) Tag() string { return "RevokeOffer" }

// TakerCommit arrives over Msg from the peer worker when a taker commits
// to an open offer.
type TakerCommit struct {
	PublicOffer offer.PublicOffer
	SwapID      address.SwapID
}

func (TakerCommit) Tag() string { return "TakerCommit" }

// CheckpointEntry is the persisted per-swap snapshot the Store keeps.
type CheckpointEntry struct {
	SwapID      address.SwapID
	PublicOffer offer.PublicOffer
	Role        offer.Role
	IsMaker     bool
	State       []byte // opaque serialized per-swap worker state
}

type RestoreCheckpoint struct{ Entry CheckpointEntry }

func (RestoreCheckpoint) Tag() string { return "RestoreCheckpoint" }

// DeleteCheckpoint asks the Store to drop a swap's checkpoint once it has
// reached a terminal outcome. The Store treats this as
// idempotent: deleting an already-gone checkpoint is success, not an error.
type DeleteCheckpoint struct{ SwapID address.SwapID }

func (DeleteCheckpoint) Tag() string { return "DeleteCheckpoint" }

// LaunchSwap is sent by the orchestrator to the wallet/key-manager worker
// once negotiation completes, and is also the signal (reported back on the
// Ctl lane from that worker) that a PublicOffer has been fully consumed.
type LaunchSwap struct {
	PublicOffer offer.PublicOffer
	SwapID      address.SwapID
	Role        offer.Role
	IsMaker     bool
}

func (LaunchSwap) Tag() string { return "LaunchSwap" }

// KeyShareReady is sent by the key manager once it has generated the
// per-swap key material for swap, completing the AwaitingKeys phase for
// both maker and taker.
type KeyShareReady struct{ SwapID address.SwapID }

func (KeyShareReady) Tag() string { return "KeyShareReady" }

// --- funding ---

type FundingInfo struct {
	Chain   offer.Chain
	Address string
	Amount  uint64
}

func (FundingInfo) Tag() string { return "FundingInfo" }

type FundingCompleted struct{ Chain offer.Chain }

func (FundingCompleted) Tag() string { return "FundingCompleted" }

type FundingCanceled struct{ Chain offer.Chain }

func (FundingCanceled) Tag() string { return "FundingCanceled" }

// --- outcome / peer health ---

type SwapOutcome struct{ Outcome offer.Outcome }

func (SwapOutcome) Tag() string { return "SwapOutcome" }

// PeerdTerminated is reported when the peer worker process exits while a
// swap may still be running over it.
type PeerdTerminated struct{}

func (PeerdTerminated) Tag() string { return "PeerdTerminated" }

// PeerdUnreachable is reported when the peer worker detects the remote end
// is unreachable (send timeouts, connection refused).
type PeerdUnreachable struct{}

func (PeerdUnreachable) Tag() string { return "PeerdUnreachable" }

// --- ad-hoc syncer tasks ---

type SweepAddendum struct {
	Chain     offer.Chain
	Network   offer.Network
	SourceKey []byte // private key / view key material for the sweep, opaque here
	DestAddr  string
}

type SweepAddress struct {
	TaskID    uint32 // 0 when requesting; the Start handler assigns one
	Addendum  SweepAddendum
}

func (SweepAddress) Tag() string { return "SweepAddress" }

type SweepSuccess struct {
	TaskID uint32
	TxIDs  []string
}

func (SweepSuccess) Tag() string { return "SweepSuccess" }

// --- Rpc request/response surface ---

type InfoRequest struct {
	Addr     *string // optional, raw CLI token
	SwapID   *address.SwapID
	Chain    *offer.Chain
	Network  *offer.Network
}

func (InfoRequest) Tag() string { return "InfoRequest" }

type NodeInfo struct {
	Version      string
	Uptime       string
	ListenCount  int
	PeerCount    int
	OfferCount   int
	SwapCount    int
	SyncerCount  int
}

func (NodeInfo) Tag() string { return "NodeInfo" }

type PeerInfo struct {
	NodeAddr   string
	Registered bool
	SwapCount  int
}

func (PeerInfo) Tag() string { return "PeerInfo" }

type SwapInfo struct {
	SwapID address.SwapID
	Role   offer.Role
	Status string
}

func (SwapInfo) Tag() string { return "SwapInfo" }

type SyncerInfo struct {
	Chain      offer.Chain
	Network    offer.Network
	Registered bool
	ClientCount int
}

func (SyncerInfo) Tag() string { return "SyncerInfo" }

type ListPeersRequest struct{}

func (ListPeersRequest) Tag() string { return "ListPeersRequest" }

type ListPeersResponse struct{ Peers []PeerInfo }

func (ListPeersResponse) Tag() string { return "ListPeersResponse" }

type ListSwapsRequest struct{}

func (ListSwapsRequest) Tag() string { return "ListSwapsRequest" }

type ListSwapsResponse struct{ Swaps []SwapInfo }

func (ListSwapsResponse) Tag() string { return "ListSwapsResponse" }

// OfferSelector mirrors the CLI's `offers <selector>` argument.
type OfferSelector int

const (
	SelectOpen OfferSelector = iota
	SelectInProgress
	SelectEnded
)

type ListOffersRequest struct{ Selector OfferSelector }

func (ListOffersRequest) Tag() string { return "ListOffersRequest" }

type ListOffersResponse struct{ Offers []offer.PublicOffer }

func (ListOffersResponse) Tag() string { return "ListOffersResponse" }

type ListListensRequest struct{}

func (ListListensRequest) Tag() string { return "ListListensRequest" }

type ListListensResponse struct{ Addrs []string }

func (ListListensResponse) Tag() string { return "ListListensResponse" }

type ListCheckpointsRequest struct{}

func (ListCheckpointsRequest) Tag() string { return "ListCheckpointsRequest" }

type ListCheckpointsResponse struct{ Entries []CheckpointEntry }

func (ListCheckpointsResponse) Tag() string { return "ListCheckpointsResponse" }

type RestoreRequest struct{ SwapID address.SwapID }

func (RestoreRequest) Tag() string { return "RestoreRequest" }

type AbortRequest struct{ SwapID address.SwapID }

func (AbortRequest) Tag() string { return "AbortRequest" }

type ProgressRequest struct {
	SwapID address.SwapID
	Follow bool
}

func (ProgressRequest) Tag() string { return "ProgressRequest" }

type ProgressUnsubscribe struct{ SwapID address.SwapID }

func (ProgressUnsubscribe) Tag() string { return "ProgressUnsubscribe" }

type NeedsFundingRequest struct{ Chain offer.Chain }

func (NeedsFundingRequest) Tag() string { return "NeedsFundingRequest" }

type NeedsFundingResponse struct{ Addresses []FundingInfo }

func (NeedsFundingResponse) Tag() string { return "NeedsFundingResponse" }

type SweepRequest struct {
	Chain    offer.Chain
	Network  offer.Network
	Source   string
	Dest     string
}

func (SweepRequest) Tag() string { return "SweepRequest" }

// --- generic responses ---

type Failure struct {
	Kind ferrors.Kind
	Info string
}

func (Failure) Tag() string { return "Failure" }

// FromError renders a *ferrors.Error (or any error) as a wire Failure.
func FromError(err error) Failure {
	if fe, ok := ferrors.As(err); ok {
		return Failure{Kind: fe.Kind, Info: fe.Info}
	}
	return Failure{Kind: ferrors.Internal, Info: err.Error()}
}

type Success struct{ Details string }

func (Success) Tag() string { return "Success" }
