package syncerfsm

import (
	"testing"

	"farcasterd/internal/address"
	"farcasterd/internal/busproto"
	"farcasterd/internal/registry"
	"farcasterd/internal/supervisor"
)

type sentEnvelope struct {
	lane    busproto.Lane
	dst     address.ServiceAddress
	payload busproto.Payload
}

type fakeContext struct {
	reg       *registry.Registry
	sent      []sentEnvelope
	launched  []address.ServiceAddress
	launchErr error
	sendErr   error
}

func newFakeContext() *fakeContext {
	return &fakeContext{reg: registry.New()}
}

func (f *fakeContext) Send(lane busproto.Lane, dst address.ServiceAddress, payload busproto.Payload) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentEnvelope{lane, dst, payload})
	return nil
}

func (f *fakeContext) Launch(kind supervisor.Kind, addr address.ServiceAddress, kindArgs []string) error {
	if f.launchErr != nil {
		return f.launchErr
	}
	f.launched = append(f.launched, addr)
	return nil
}

func (f *fakeContext) Registry() *registry.Registry { return f.reg }

func TestNewStartLaunchesWhenSyncerNotRegistered(t *testing.T) {
	ctx := newFakeContext()
	client := address.NewClient()
	addendum := busproto.SweepAddendum{Chain: "Bitcoin", Network: "Mainnet", DestAddr: "addr"}

	m, err := NewStart(ctx, 1, addendum, client)
	if err != nil {
		t.Fatalf("NewStart: %v", err)
	}
	if m.Phase != PhaseAwaitingSyncer || !m.buffered {
		t.Fatalf("expected a buffered task awaiting a freshly launched syncer, got %+v", m)
	}
	if len(ctx.launched) != 1 {
		t.Fatalf("expected exactly one Launch call, got %d", len(ctx.launched))
	}
	if len(ctx.sent) != 0 {
		t.Fatalf("SweepAddress should not be sent before the syncer says Hello")
	}
}

func TestNewStartDispatchesImmediatelyWhenSyncerRegistered(t *testing.T) {
	ctx := newFakeContext()
	client := address.NewClient()
	addendum := busproto.SweepAddendum{Chain: "Monero", Network: "Mainnet", DestAddr: "addr"}
	syncerAddr := address.Syncer("Monero", "Mainnet")
	ctx.reg.PromoteOnHello(syncerAddr)

	m, err := NewStart(ctx, 2, addendum, client)
	if err != nil {
		t.Fatalf("NewStart: %v", err)
	}
	if m.Phase != PhaseAwaitingResult {
		t.Fatalf("expected immediate dispatch to AwaitingResult, got phase %v", m.Phase)
	}
	if len(ctx.sent) != 1 || ctx.sent[0].dst != syncerAddr {
		t.Fatalf("expected a SweepAddress sent to the registered syncer, got %+v", ctx.sent)
	}
}

func TestStepAwaitingSyncerAdvancesOnMatchingHello(t *testing.T) {
	ctx := newFakeContext()
	client := address.NewClient()
	addendum := busproto.SweepAddendum{Chain: "Bitcoin", Network: "Mainnet"}
	m, err := NewStart(ctx, 3, addendum, client)
	if err != nil {
		t.Fatalf("NewStart: %v", err)
	}

	env := busproto.Envelope{Lane: busproto.LaneSync, Src: m.SyncerAddr, Dst: address.Orchestrator(), Payload: busproto.Hello{}}
	terminated, err := m.Next(ctx, env)
	if err != nil || terminated {
		t.Fatalf("Next on matching Hello: terminated=%v err=%v", terminated, err)
	}
	if m.Phase != PhaseAwaitingResult {
		t.Fatalf("expected AwaitingResult after Hello, got %v", m.Phase)
	}
	if len(ctx.sent) != 1 {
		t.Fatalf("expected the buffered SweepAddress to be sent after Hello")
	}
}

func TestStepAwaitingSyncerIgnoresUnrelatedHello(t *testing.T) {
	ctx := newFakeContext()
	addendum := busproto.SweepAddendum{Chain: "Bitcoin", Network: "Mainnet"}
	m, err := NewStart(ctx, 4, addendum, address.NewClient())
	if err != nil {
		t.Fatalf("NewStart: %v", err)
	}

	env := busproto.Envelope{Lane: busproto.LaneSync, Src: address.Syncer("Monero", "Mainnet"), Dst: address.Orchestrator(), Payload: busproto.Hello{}}
	terminated, err := m.Next(ctx, env)
	if err != nil || terminated || m.Phase != PhaseAwaitingSyncer {
		t.Fatalf("unrelated Hello should be ignored, got terminated=%v err=%v phase=%v", terminated, err, m.Phase)
	}
}

func TestStepAwaitingResultCompletesOnMatchingTaskID(t *testing.T) {
	ctx := newFakeContext()
	client := address.NewClient()
	syncerAddr := address.Syncer("Bitcoin", "Mainnet")
	ctx.reg.PromoteOnHello(syncerAddr)
	m, err := NewStart(ctx, 5, busproto.SweepAddendum{Chain: "Bitcoin", Network: "Mainnet"}, client)
	if err != nil {
		t.Fatalf("NewStart: %v", err)
	}

	env := busproto.Envelope{Lane: busproto.LaneSync, Src: syncerAddr, Dst: address.Orchestrator(), Payload: busproto.SweepSuccess{TaskID: 5, TxIDs: []string{"tx1"}}}
	terminated, err := m.Next(ctx, env)
	if err != nil || !terminated {
		t.Fatalf("expected completion on matching SweepSuccess, got terminated=%v err=%v", terminated, err)
	}
	last := ctx.sent[len(ctx.sent)-1]
	if last.dst != client || last.payload.Tag() != "Success" {
		t.Fatalf("expected a Success reply sent to the client, got %+v", last)
	}
}

func TestStepAwaitingResultIgnoresMismatchedTaskID(t *testing.T) {
	ctx := newFakeContext()
	syncerAddr := address.Syncer("Bitcoin", "Mainnet")
	ctx.reg.PromoteOnHello(syncerAddr)
	m, err := NewStart(ctx, 6, busproto.SweepAddendum{Chain: "Bitcoin", Network: "Mainnet"}, address.NewClient())
	if err != nil {
		t.Fatalf("NewStart: %v", err)
	}

	env := busproto.Envelope{Lane: busproto.LaneSync, Src: syncerAddr, Payload: busproto.SweepSuccess{TaskID: 999}}
	terminated, err := m.Next(ctx, env)
	if err != nil || terminated || m.Phase != PhaseAwaitingResult {
		t.Fatalf("mismatched task_id should be ignored, got terminated=%v err=%v phase=%v", terminated, err, m.Phase)
	}
}
