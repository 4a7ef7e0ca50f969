package trade

import (
	"time"

	"farcasterd/internal/address"
	"farcasterd/internal/busproto"
	"farcasterd/internal/offer"
	"farcasterd/internal/progress"
	"farcasterd/internal/registry"
	"farcasterd/internal/supervisor"
)

// Context is the side-effect surface a Machine's step function is given:
// every side effect is emitted via the supplied context rather than a
// package-level global. Implemented by the aggregating Runtime in
// internal/farcasterd; kept as
// an interface here so the state machine logic can be unit-tested against
// a fake without spinning up real workers or sockets.
type Context interface {
	// Send routes payload from Orchestrator to dst over lane.
	Send(lane busproto.Lane, dst address.ServiceAddress, payload busproto.Payload) error
	// Launch starts (or no-ops onto an already-spawning/registered) worker
	// kind at addr.
	Launch(kind supervisor.Kind, addr address.ServiceAddress, kindArgs []string) error
	// Registry exposes the shared offer/peer/syncer bookkeeping.
	Registry() *registry.Registry
	// Progress exposes the shared progress stream.
	Progress() *progress.Stream
	// KeyManagerReady/StoreReady report whether those singleton workers
	// have completed their Hello handshake.
	KeyManagerReady() bool
	StoreReady() bool
	// AutoFund attempts the configured external funding integration.
	// Returns a NotReady error if auto-funding isn't configured; callers
	// treat that as "no-op, waiting on a human to fund manually".
	AutoFund(chain offer.Chain, addr string, amount uint64) error
	// ReferencesRemain reports whether any other live TradeStateMachine or
	// SyncerStateMachine still needs worker addr, so cleanup only
	// terminates Peer/Syncer workers nothing else depends on. This is
	// the kind of cross-machine query the registry deliberately doesn't
	// own; only the aggregating Runtime can answer it.
	ReferencesRemain(addr address.ServiceAddress) bool
	// PeerReconnectTimeout bounds how long a swap waits for a PeerdUnreachable
	// peer to come back before the swap is aborted. Configurable rather than
	// fixed: a Tor-proxied peer needs more slack than a direct LAN one.
	PeerReconnectTimeout() time.Duration
}
