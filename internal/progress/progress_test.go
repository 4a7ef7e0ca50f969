package progress

import (
	"errors"
	"testing"

	"farcasterd/internal/address"
	"farcasterd/internal/ferrors"
)

type recordingSink struct {
	events []Event
	fail   bool
}

func (s *recordingSink) Send(swap address.SwapID, ev Event) error {
	if s.fail {
		return errors.New("dead subscriber")
	}
	s.events = append(s.events, ev)
	return nil
}

func TestSubscribeUnknownSwapRequiresKnownRunning(t *testing.T) {
	s := New()
	swap := address.SwapID{1}
	if _, err := s.Subscribe(swap, address.NewClient(), &recordingSink{}, false); err == nil {
		t.Fatalf("Subscribe on an unknown swap should fail without knownRunning")
	}
	if _, err := s.Subscribe(swap, address.NewClient(), &recordingSink{}, true); err != nil {
		t.Fatalf("Subscribe with knownRunning=true should succeed: %v", err)
	}
}

func TestSubscribeReplaysExistingEvents(t *testing.T) {
	s := New()
	swap := address.SwapID{2}
	s.Emit(swap, Event{Kind: Message, Text: "first"})
	s.Emit(swap, Event{Kind: Message, Text: "second"})

	replay, err := s.Subscribe(swap, address.NewClient(), &recordingSink{}, false)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if len(replay) != 2 || replay[0].Text != "first" || replay[1].Text != "second" {
		t.Fatalf("unexpected replay: %+v", replay)
	}
}

func TestEmitFansOutToLiveSubscribers(t *testing.T) {
	s := New()
	swap := address.SwapID{3}
	client := address.NewClient()
	sink := &recordingSink{}
	if _, err := s.Subscribe(swap, client, sink, true); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	s.Emit(swap, Event{Kind: StateTransition, Text: "advanced"})
	if len(sink.events) != 1 || sink.events[0].Text != "advanced" {
		t.Fatalf("subscriber did not receive the emitted event: %+v", sink.events)
	}
}

func TestEmitDropsDeadSubscribers(t *testing.T) {
	s := New()
	swap := address.SwapID{4}
	client := address.NewClient()
	sink := &recordingSink{fail: true}
	if _, err := s.Subscribe(swap, client, sink, true); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	s.Emit(swap, Event{Kind: Message, Text: "boom"})
	if s.SubscriberCount(swap) != 0 {
		t.Fatalf("a subscriber whose Send fails should be dropped, got count %d", s.SubscriberCount(swap))
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	s := New()
	swap := address.SwapID{5}
	client := address.NewClient()
	if _, err := s.Subscribe(swap, client, &recordingSink{}, true); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	s.Unsubscribe(swap, client)
	s.Unsubscribe(swap, client)
	s.Unsubscribe(swap, address.NewClient())
	if s.SubscriberCount(swap) != 0 {
		t.Fatalf("expected zero subscribers after Unsubscribe, got %d", s.SubscriberCount(swap))
	}
}

func TestGCRemovesLog(t *testing.T) {
	s := New()
	swap := address.SwapID{6}
	s.Emit(swap, Event{Kind: Success, Info: "Buy"})
	s.GC(swap)
	if _, ok := s.Read(swap); ok {
		t.Fatalf("Read should report not-found after GC")
	}
}

func TestReadReturnsSnapshot(t *testing.T) {
	s := New()
	swap := address.SwapID{7}
	s.Emit(swap, Event{Kind: Failure, Code: ferrors.Internal, Info: "crashed"})
	events, ok := s.Read(swap)
	if !ok || len(events) != 1 || events[0].Code != ferrors.Internal {
		t.Fatalf("Read returned %+v, ok=%v", events, ok)
	}
}
