package dispatcher

import (
	"errors"
	"testing"
	"time"

	"farcasterd/internal/address"
	"farcasterd/internal/busproto"
	"farcasterd/internal/offer"
	"farcasterd/internal/progress"
	"farcasterd/internal/registry"
	"farcasterd/internal/supervisor"
)

type fakeSend struct {
	lane    busproto.Lane
	dst     address.ServiceAddress
	payload busproto.Payload
}

type fakeContext struct {
	reg  *registry.Registry
	prog *progress.Stream
	sent []fakeSend
}

func newFakeContext() *fakeContext {
	return &fakeContext{reg: registry.New(), prog: progress.New()}
}

func (f *fakeContext) Send(lane busproto.Lane, dst address.ServiceAddress, payload busproto.Payload) error {
	f.sent = append(f.sent, fakeSend{lane, dst, payload})
	return nil
}

func (f *fakeContext) Launch(kind supervisor.Kind, addr address.ServiceAddress, kindArgs []string) error {
	return nil
}

func (f *fakeContext) Registry() *registry.Registry { return f.reg }
func (f *fakeContext) Progress() *progress.Stream    { return f.prog }
func (f *fakeContext) KeyManagerReady() bool         { return true }
func (f *fakeContext) StoreReady() bool              { return true }
func (f *fakeContext) AutoFund(chain offer.Chain, addr string, amount uint64) error {
	return errors.New("no funding integration configured")
}
func (f *fakeContext) ReferencesRemain(addr address.ServiceAddress) bool { return false }
func (f *fakeContext) PeerReconnectTimeout() time.Duration              { return 2 * time.Minute }

func validOfferParams() busproto.OfferParams {
	return busproto.OfferParams{
		Network:           offer.Mainnet,
		Arbitrating:       offer.Bitcoin,
		Accordant:         offer.Monero,
		ArbitratingAmount: 500_000,
		AccordantAmount:   offer.MinXMRAmount * 2,
		Maker:             offer.Bob,
		BindAddr:          "127.0.0.1:9376",
	}
}

func TestDispatchMakeOfferRepliesMadeOffer(t *testing.T) {
	d := New()
	ctx := newFakeContext()
	client := address.NewClient()

	d.Dispatch(ctx, busproto.Envelope{Lane: busproto.LaneRpc, Src: client, Payload: busproto.MakeOffer{Proto: validOfferParams()}})

	if len(d.Trades()) != 1 {
		t.Fatalf("expected one trade machine created, got %d", len(d.Trades()))
	}
	if len(ctx.sent) != 2 { // gateway notify (from NewMaker) + client reply
		t.Fatalf("expected two sends (gateway notify + client reply), got %d: %+v", len(ctx.sent), ctx.sent)
	}
	last := ctx.sent[len(ctx.sent)-1]
	if last.dst != client {
		t.Fatalf("expected the final reply addressed to the requesting client")
	}
	if _, ok := last.payload.(busproto.MadeOffer); !ok {
		t.Fatalf("expected a MadeOffer reply, got %T", last.payload)
	}
}

func TestDispatchMakeOfferFailureRepliesFailure(t *testing.T) {
	d := New()
	ctx := newFakeContext()
	client := address.NewClient()
	bad := validOfferParams()
	bad.ArbitratingAmount = 0

	d.Dispatch(ctx, busproto.Envelope{Lane: busproto.LaneRpc, Src: client, Payload: busproto.MakeOffer{Proto: bad}})

	if len(d.Trades()) != 0 {
		t.Fatalf("expected no trade machine on validation failure")
	}
	if len(ctx.sent) != 1 {
		t.Fatalf("expected exactly one Failure reply, got %d", len(ctx.sent))
	}
	if _, ok := ctx.sent[0].payload.(busproto.Failure); !ok {
		t.Fatalf("expected a Failure reply, got %T", ctx.sent[0].payload)
	}
}

func TestDispatchRevokeOfferUnknownOfferRepliesFailure(t *testing.T) {
	d := New()
	ctx := newFakeContext()
	client := address.NewClient()

	d.Dispatch(ctx, busproto.Envelope{Lane: busproto.LaneRpc, Src: client, Payload: busproto.RevokeOffer{}})

	if len(ctx.sent) != 1 {
		t.Fatalf("expected exactly one reply, got %d", len(ctx.sent))
	}
	if _, ok := ctx.sent[0].payload.(busproto.Failure); !ok {
		t.Fatalf("expected a Failure reply for an unknown offer, got %T", ctx.sent[0].payload)
	}
}

func TestDispatchAbortRequestUnknownSwapRepliesFailure(t *testing.T) {
	d := New()
	ctx := newFakeContext()
	client := address.NewClient()

	d.Dispatch(ctx, busproto.Envelope{Lane: busproto.LaneRpc, Src: client, Payload: busproto.AbortRequest{SwapID: address.SwapID{1}}})

	if len(ctx.sent) != 1 {
		t.Fatalf("expected exactly one reply, got %d", len(ctx.sent))
	}
	if _, ok := ctx.sent[0].payload.(busproto.Failure); !ok {
		t.Fatalf("expected a Failure reply for an unknown swap, got %T", ctx.sent[0].payload)
	}
}

func TestDispatchHelloPromotesRegistryEntry(t *testing.T) {
	d := New()
	ctx := newFakeContext()
	peerAddr := address.Peer("127.0.0.1:9376")
	ctx.reg.MarkSpawning(peerAddr)

	d.Dispatch(ctx, busproto.Envelope{Lane: busproto.LaneSync, Src: peerAddr, Payload: busproto.Hello{}})

	if !ctx.reg.IsRegistered(peerAddr) {
		t.Fatalf("expected Hello to promote the spawning peer to registered")
	}
}

func TestDispatchSweepAddressCreatesSyncerMachine(t *testing.T) {
	d := New()
	ctx := newFakeContext()
	syncerAddr := address.Syncer("Bitcoin", "Mainnet")
	ctx.reg.PromoteOnHello(syncerAddr)
	client := address.NewClient()

	d.Dispatch(ctx, busproto.Envelope{
		Lane: busproto.LaneCtl,
		Src:  client,
		Payload: busproto.SweepAddress{
			Addendum: busproto.SweepAddendum{Chain: "Bitcoin", Network: "Mainnet", DestAddr: "addr"},
		},
	})

	if len(d.Syncers()) != 1 {
		t.Fatalf("expected one syncer machine created, got %d", len(d.Syncers()))
	}
	if len(ctx.sent) != 1 {
		t.Fatalf("expected the SweepAddress forwarded to the registered syncer, got %d sends", len(ctx.sent))
	}
}

func TestDispatchUnmatchedPayloadIsIgnored(t *testing.T) {
	d := New()
	ctx := newFakeContext()
	d.Dispatch(ctx, busproto.Envelope{Payload: busproto.PeerdTerminated{}})
	if len(ctx.sent) != 0 || len(d.Trades()) != 0 {
		t.Fatalf("expected a PeerdTerminated with no matching peer address to be a silent no-op")
	}
}
