package trade

import (
	"testing"

	"farcasterd/internal/offer"
)

func sampleOpenOffer() offer.PublicOffer {
	return offer.PublicOffer{
		Offer: offer.Offer{
			Network:     offer.Mainnet,
			Arbitrating: offer.Bitcoin,
			Accordant:   offer.Monero,
			Maker:       offer.Bob,
		},
		PeerSocket: "127.0.0.1:9376",
	}
}

func TestNewTakerRejectsInvalidAddresses(t *testing.T) {
	ctx := newFakeContext()
	if _, err := NewTaker(ctx, sampleOpenOffer(), "mabc", "4abc", false); err == nil {
		t.Fatalf("expected a network mismatch error")
	}
}

func TestNewTakerRequiresKeyManager(t *testing.T) {
	ctx := newFakeContext()
	ctx.keyManagerReady = false
	if _, err := NewTaker(ctx, sampleOpenOffer(), "1abc", "4abc", false); err == nil {
		t.Fatalf("expected a NotReady error when the key manager hasn't registered")
	}
}

func TestNewTakerRejectsNonOpenOffer(t *testing.T) {
	ctx := newFakeContext()
	po := sampleOpenOffer()
	if err := ctx.reg.AddPublicOffer(po); err != nil {
		t.Fatalf("AddPublicOffer: %v", err)
	}
	ctx.reg.SetOfferStatus(po.Offer.UUID, offer.Status{Tag: offer.StatusEnded})

	if _, err := NewTaker(ctx, po, "1abc", "4abc", false); err == nil {
		t.Fatalf("expected an error taking an offer that is no longer open")
	}
}

func TestNewTakerAdvancesToConnectingWithOppositeRole(t *testing.T) {
	ctx := newFakeContext()
	po := sampleOpenOffer() // maker is Bob
	m, err := NewTaker(ctx, po, "1abc", "4abc", false)
	if err != nil {
		t.Fatalf("NewTaker: %v", err)
	}
	if m.Phase != PhaseTakerConnecting || m.IsMaker {
		t.Fatalf("expected TakerConnecting as non-maker, got %+v", m)
	}
	if m.Role != offer.Alice {
		t.Fatalf("expected the taker to assume the opposite role of the maker, got %v", m.Role)
	}
	if len(ctx.launched) != 1 {
		t.Fatalf("expected exactly one peer connect launch, got %d", len(ctx.launched))
	}
	if _, ok := m.SwapID(); ok {
		t.Fatalf("swap id should not be publicly visible before SwapLaunched")
	}
	if _, ok := m.PendingSwapID(); !ok {
		t.Fatalf("expected a pending swap id usable for correlation before SwapLaunched")
	}
}

func TestNewTakerDerivesSameSwapIDForSameOffer(t *testing.T) {
	ctx1, ctx2 := newFakeContext(), newFakeContext()
	po := sampleOpenOffer()
	m1, err := NewTaker(ctx1, po, "1abc", "4abc", false)
	if err != nil {
		t.Fatalf("NewTaker: %v", err)
	}
	m2, err := NewTaker(ctx2, po, "1abc", "4abc", false)
	if err != nil {
		t.Fatalf("NewTaker: %v", err)
	}
	id1, _ := m1.PendingSwapID()
	id2, _ := m2.PendingSwapID()
	if id1 != id2 {
		t.Fatalf("expected the swap id to be a deterministic function of the offer encoding")
	}
}
