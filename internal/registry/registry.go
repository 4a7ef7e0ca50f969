// Package registry implements the orchestrator's bookkeeping: which worker
// addresses are spawning/registered, which sockets are bound, which offers
// are known, and outcome statistics. It deliberately knows nothing about
// TradeStateMachine/SyncerStateMachine instances — queries that need to
// cross-reference those live on the aggregating Runtime in
// internal/farcasterd, reached through the context parameter each machine
// is driven with.
package registry

import (
	"sync"

	"github.com/google/uuid"

	"farcasterd/internal/address"
	"farcasterd/internal/offer"
)

// Registry holds all orchestrator-owned bookkeeping state.
type Registry struct {
	mu sync.Mutex

	spawning   map[address.ServiceAddress]struct{}
	registered map[address.ServiceAddress]struct{}
	listens    map[string]struct{}

	publicOffers map[uuid.UUID]offer.PublicOffer
	offerStatus  map[uuid.UUID]offer.Status

	stats Stats
}

func New() *Registry {
	return &Registry{
		spawning:     make(map[address.ServiceAddress]struct{}),
		registered:   make(map[address.ServiceAddress]struct{}),
		listens:      make(map[string]struct{}),
		publicOffers: make(map[uuid.UUID]offer.PublicOffer),
		offerStatus:  make(map[uuid.UUID]offer.Status),
		stats:        NewStats(),
	}
}

// MarkSpawning records addr as launched-but-not-yet-registered.
func (r *Registry) MarkSpawning(addr address.ServiceAddress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spawning[addr] = struct{}{}
}

// PromoteOnHello moves addr from spawning to registered. It is a no-op
// (and returns false) if addr was not spawning, matching a duplicate-Hello
// tie-break, which is log-only for the caller to decide.
func (r *Registry) PromoteOnHello(addr address.ServiceAddress) (promoted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, wasSpawning := r.spawning[addr]
	delete(r.spawning, addr)
	_, wasRegistered := r.registered[addr]
	r.registered[addr] = struct{}{}
	return wasSpawning && !wasRegistered
}

// IsRegistered reports whether addr has completed its Hello handshake.
func (r *Registry) IsRegistered(addr address.ServiceAddress) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.registered[addr]
	return ok
}

// IsSpawning reports whether addr was launched but hasn't said Hello yet.
func (r *Registry) IsSpawning(addr address.ServiceAddress) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.spawning[addr]
	return ok
}

// Remove deletes addr from both spawning and registered, so no ghost entry
// of either kind survives.
func (r *Registry) Remove(addr address.ServiceAddress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.spawning, addr)
	delete(r.registered, addr)
}

// RegisteredAddrs returns a snapshot of every currently registered address
// of the given kind.
func (r *Registry) RegisteredAddrs(kind address.Kind) []address.ServiceAddress {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []address.ServiceAddress
	for a := range r.registered {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

// AddListen records a bound listener address. Re-adding an existing one is
// a no-op: a duplicate listener bind request.
func (r *Registry) AddListen(addr string) (added bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listens[addr]; ok {
		return false
	}
	r.listens[addr] = struct{}{}
	return true
}

func (r *Registry) RemoveListen(addr string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.listens, addr)
}

func (r *Registry) Listens() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.listens))
	for a := range r.listens {
		out = append(out, a)
	}
	return out
}

func (r *Registry) IsListening(addr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.listens[addr]
	return ok
}

// AddPublicOffer inserts po, returning a User error if an offer with the
// same uuid already exists.
func (r *Registry) AddPublicOffer(po offer.PublicOffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.publicOffers[po.Offer.UUID]; ok {
		return errOfferExists
	}
	r.publicOffers[po.Offer.UUID] = po
	r.offerStatus[po.Offer.UUID] = offer.Status{Tag: offer.StatusOpen}
	return nil
}

// RemovePublicOffer deletes po (and its status) entirely, called when its
// TradeStateMachine reaches End.
func (r *Registry) RemovePublicOffer(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.publicOffers, id)
	delete(r.offerStatus, id)
}

func (r *Registry) PublicOffer(id uuid.UUID) (offer.PublicOffer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	po, ok := r.publicOffers[id]
	return po, ok
}

func (r *Registry) SetOfferStatus(id uuid.UUID, status offer.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offerStatus[id] = status
}

func (r *Registry) OfferStatus(id uuid.UUID) (offer.Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.offerStatus[id]
	return s, ok
}

// OffersBySelector lists public offers whose status tag matches selector.
func (r *Registry) OffersBySelector(selector offer.StatusTag) []offer.PublicOffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []offer.PublicOffer
	for id, po := range r.publicOffers {
		if st, ok := r.offerStatus[id]; ok && st.Tag == selector {
			out = append(out, po)
		}
	}
	return out
}

// Stats returns a snapshot copy of the outcome/funding counters.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats.clone()
}

// RecordOutcome increments the stats counter for outcome. It does not touch
// the pending-funding sets; ClearAwaitingFunding removes a swap from those.
func (r *Registry) RecordOutcome(outcome offer.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.record(outcome)
}

func (r *Registry) MarkAwaitingFunding(chain offer.Chain, swap address.SwapID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.markAwaitingFunding(chain, swap)
}

func (r *Registry) ClearAwaitingFunding(chain offer.Chain, swap address.SwapID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.clearAwaitingFunding(chain, swap)
}

func (r *Registry) InitSwap() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.Initialized++
}
