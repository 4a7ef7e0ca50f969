// Package progress implements the per-swap progress stream: an
// append-only FIFO of ProgressEvents per swap, subscriber fan-out, and
// dead-subscriber reaping as the only backpressure mechanism.
package progress

import (
	"sync"

	"farcasterd/internal/address"
	"farcasterd/internal/ferrors"
)

// EventKind tags an Event's variant.
type EventKind int

const (
	Message EventKind = iota
	StateTransition
	Success
	Failure
)

// Event is one entry in a swap's progress FIFO.
type Event struct {
	Kind EventKind
	Text string        // Message / StateTransition
	Code ferrors.Kind   // Failure
	Info string        // Failure detail / Success details
}

// Sink delivers an Event to one subscriber. Implementations must not block
// indefinitely; Stream treats any error as "dead subscriber".
type Sink interface {
	Send(swap address.SwapID, ev Event) error
}

type swapLog struct {
	events []Event
	subs   map[address.ServiceAddress]Sink
}

// Stream owns every swap's FIFO and subscriber set.
type Stream struct {
	mu   sync.Mutex
	logs map[address.SwapID]*swapLog
}

func New() *Stream {
	return &Stream{logs: make(map[address.SwapID]*swapLog)}
}

// Emit appends ev to swap's FIFO (creating it if this is the first
// emission) and fans it out to current subscribers, dropping any whose
// Send fails.
func (s *Stream) Emit(swap address.SwapID, ev Event) {
	s.mu.Lock()
	l, ok := s.logs[swap]
	if !ok {
		l = &swapLog{subs: make(map[address.ServiceAddress]Sink)}
		s.logs[swap] = l
	}
	l.events = append(l.events, ev)
	subs := make(map[address.ServiceAddress]Sink, len(l.subs))
	for a, sink := range l.subs {
		subs[a] = sink
	}
	s.mu.Unlock()

	var dead []address.ServiceAddress
	for a, sink := range subs {
		if err := sink.Send(swap, ev); err != nil {
			dead = append(dead, a)
		}
	}
	if len(dead) > 0 {
		s.mu.Lock()
		if l2, ok := s.logs[swap]; ok {
			for _, a := range dead {
				delete(l2.subs, a)
			}
		}
		s.mu.Unlock()
	}
}

// Subscribe attaches client to swap and returns a replay of the FIFO so
// far, in order, before any subsequent Emit is delivered to it. Returns a
// User error ("Unknown swap") if swap is unknown to the stream and the
// caller hasn't told us it's a currently running swap via knownRunning.
func (s *Stream) Subscribe(swap address.SwapID, client address.ServiceAddress, sink Sink, knownRunning bool) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logs[swap]
	if !ok {
		if !knownRunning {
			return nil, ferrors.Userf("Unknown swap")
		}
		l = &swapLog{subs: make(map[address.ServiceAddress]Sink)}
		s.logs[swap] = l
	}
	l.subs[client] = sink
	replay := make([]Event, len(l.events))
	copy(replay, l.events)
	return replay, nil
}

// Unsubscribe detaches client from swap. Idempotent: unsubscribing twice,
// or a client that was never subscribed, is a no-op. When the subscriber
// set empties the log entry is NOT removed here — the FIFO survives until
// GC, which fires via cleanup, not when the subscriber set empties.
func (s *Stream) Unsubscribe(swap address.SwapID, client address.ServiceAddress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.logs[swap]; ok {
		delete(l.subs, client)
	}
}

// Read returns a snapshot of swap's FIFO in one call.
func (s *Stream) Read(swap address.SwapID) ([]Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logs[swap]
	if !ok {
		return nil, false
	}
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out, true
}

// GC removes swap's FIFO and subscriber set entirely, called once the
// owning TradeStateMachine reaches End. Progress queues are created on
// first emission per swap and destroyed with the swap.
func (s *Stream) GC(swap address.SwapID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logs, swap)
}

// SubscriberCount reports how many clients are currently subscribed to
// swap.
func (s *Stream) SubscriberCount(swap address.SwapID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.logs[swap]; ok {
		return len(l.subs)
	}
	return 0
}
