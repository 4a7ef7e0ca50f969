package trade

import (
	"testing"

	"farcasterd/internal/address"
	"farcasterd/internal/busproto"
)

func TestNewMakerRejectsInvalidParams(t *testing.T) {
	ctx := newFakeContext()
	p := validParams()
	p.ArbitratingAmount = 0
	if _, err := NewMaker(ctx, p); err == nil {
		t.Fatalf("expected validation failure to propagate")
	}
}

func TestNewMakerRequiresKeyManager(t *testing.T) {
	ctx := newFakeContext()
	ctx.keyManagerReady = false
	if _, err := NewMaker(ctx, validParams()); err == nil {
		t.Fatalf("expected a NotReady error when the key manager hasn't registered")
	}
}

func TestNewMakerLaunchesListenerAndAdvancesToOffered(t *testing.T) {
	ctx := newFakeContext()
	m, err := NewMaker(ctx, validParams())
	if err != nil {
		t.Fatalf("NewMaker: %v", err)
	}
	if m.Phase != PhaseMakerOffered || !m.IsMaker {
		t.Fatalf("expected MakerOffered as maker, got %+v", m)
	}
	if len(ctx.launched) != 1 {
		t.Fatalf("expected exactly one peer listener launch, got %d", len(ctx.launched))
	}
	if !ctx.reg.IsListening(validParams().BindAddr) {
		t.Fatalf("expected the bind address to be registered as listening")
	}
	if _, ok := m.OpenOffer(); !ok {
		t.Fatalf("expected the new offer to be visible via OpenOffer")
	}
}

func TestNewMakerReusesExistingListener(t *testing.T) {
	ctx := newFakeContext()
	p1 := validParams()
	if _, err := NewMaker(ctx, p1); err != nil {
		t.Fatalf("first NewMaker: %v", err)
	}

	p2 := validParams()
	p2.Arbitrating, p2.Accordant = p2.Accordant, p2.Arbitrating // distinct offer, same bind addr
	if _, err := NewMaker(ctx, p2); err != nil {
		t.Fatalf("second NewMaker: %v", err)
	}
	if len(ctx.launched) != 1 {
		t.Fatalf("a second offer on the same bind address must not relaunch the listener, got %d launches", len(ctx.launched))
	}
}

func TestNewMakerNotifiesGatewayOfNewOffer(t *testing.T) {
	ctx := newFakeContext()
	if _, err := NewMaker(ctx, validParams()); err != nil {
		t.Fatalf("NewMaker: %v", err)
	}
	if len(ctx.sent) != 1 || ctx.sent[0].dst != address.Gateway() {
		t.Fatalf("expected a MadeOffer notification sent to the gateway address, got %+v", ctx.sent)
	}
	if _, ok := ctx.sent[0].payload.(busproto.MadeOffer); !ok {
		t.Fatalf("expected the gateway notification payload to be MadeOffer, got %T", ctx.sent[0].payload)
	}
}

func TestNewMakerToleratesGatewaySendFailure(t *testing.T) {
	ctx := newFakeContext()
	ctx.sendErr = errSendFailed
	m, err := NewMaker(ctx, validParams())
	if err != nil {
		t.Fatalf("a failed best-effort gateway notification must not fail NewMaker, got %v", err)
	}
	if m.Phase != PhaseMakerOffered {
		t.Fatalf("expected MakerOffered despite the gateway send failure")
	}
}
