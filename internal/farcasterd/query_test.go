package farcasterd

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"farcasterd/internal/address"
	"farcasterd/internal/busproto"
	"farcasterd/internal/config"
	"farcasterd/internal/offer"
)

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	var cfg config.Config
	cfg.Network.DataDir = t.TempDir()
	rt, err := New(&cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return rt
}

func TestHandleQueryInfoRequestRepliesNodeInfo(t *testing.T) {
	rt := newTestRuntime(t)
	client := address.NewClient()
	inbox := rt.router.Register(client)

	if !rt.handleQuery(busproto.Envelope{Src: client, Payload: busproto.InfoRequest{}}) {
		t.Fatalf("expected handleQuery to recognize InfoRequest")
	}

	select {
	case env := <-inbox:
		info, ok := env.Payload.(busproto.NodeInfo)
		if !ok {
			t.Fatalf("expected a NodeInfo reply, got %T", env.Payload)
		}
		if info.Version != version {
			t.Fatalf("expected version %q, got %q", version, info.Version)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for the InfoRequest reply")
	}
}

func TestHandleQueryReturnsFalseForUnrelatedPayload(t *testing.T) {
	rt := newTestRuntime(t)
	if rt.handleQuery(busproto.Envelope{Payload: busproto.Hello{}}) {
		t.Fatalf("expected handleQuery to decline a payload outside its table")
	}
}

func TestHandleQueryListOffersFiltersBySelector(t *testing.T) {
	rt := newTestRuntime(t)
	po := offer.PublicOffer{Offer: offer.Offer{UUID: uuid.New(), Network: offer.Mainnet, Arbitrating: offer.Bitcoin, Accordant: offer.Monero}}
	if err := rt.reg.AddPublicOffer(po); err != nil {
		t.Fatalf("AddPublicOffer: %v", err)
	}

	client := address.NewClient()
	inbox := rt.router.Register(client)
	rt.handleQuery(busproto.Envelope{Src: client, Payload: busproto.ListOffersRequest{Selector: busproto.SelectOpen}})

	select {
	case env := <-inbox:
		resp, ok := env.Payload.(busproto.ListOffersResponse)
		if !ok || len(resp.Offers) != 1 {
			t.Fatalf("expected one open offer in the response, got %+v", env.Payload)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for the ListOffersRequest reply")
	}
}

func TestForwardCheckpointQueryRelaysToStoreAndRoutesReplyBack(t *testing.T) {
	rt := newTestRuntime(t)
	storeInbox := rt.router.Register(address.Store())
	client := address.NewClient()
	clientInbox := rt.router.Register(client)

	rt.forwardCheckpointQuery(client)

	select {
	case env := <-storeInbox:
		if _, ok := env.Payload.(busproto.ListCheckpointsRequest); !ok {
			t.Fatalf("expected a ListCheckpointsRequest forwarded to Store, got %T", env.Payload)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for the forwarded request")
	}

	// Simulate Store's eventual reply arriving back through Dispatch.
	rt.Dispatch(busproto.Envelope{Src: address.Store(), Dst: address.Orchestrator(), Payload: busproto.ListCheckpointsResponse{}})

	select {
	case env := <-clientInbox:
		if _, ok := env.Payload.(busproto.ListCheckpointsResponse); !ok {
			t.Fatalf("expected the checkpoint list routed back to the original client, got %T", env.Payload)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for the checkpoint list routed back to the client")
	}
}

func TestForwardRestoreRequestRoutesSuccessBackToClient(t *testing.T) {
	rt := newTestRuntime(t)
	storeInbox := rt.router.Register(address.Store())
	client := address.NewClient()
	clientInbox := rt.router.Register(client)

	swapID := address.SwapID{5}
	rt.forwardRestoreRequest(client, swapID)

	select {
	case <-storeInbox:
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for the forwarded restore request")
	}

	entry := busproto.CheckpointEntry{SwapID: swapID, PublicOffer: offer.PublicOffer{PeerSocket: "127.0.0.1:9376"}}
	rt.Dispatch(busproto.Envelope{Src: address.Store(), Dst: address.Orchestrator(), Payload: busproto.RestoreCheckpoint{Entry: entry}})

	select {
	case env := <-clientInbox:
		if _, ok := env.Payload.(busproto.Success); !ok {
			t.Fatalf("expected a Success reply routed back to the requesting client, got %T", env.Payload)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for the restore success reply")
	}
}

func TestNodeInfoCountsListensAndPeers(t *testing.T) {
	rt := newTestRuntime(t)
	rt.reg.AddListen("127.0.0.1:9376")
	peerAddr := address.Peer("127.0.0.1:9376")
	rt.reg.MarkSpawning(peerAddr)
	rt.reg.PromoteOnHello(peerAddr)

	info := rt.nodeInfo()
	if info.ListenCount != 1 {
		t.Errorf("ListenCount = %d, want 1", info.ListenCount)
	}
	if info.PeerCount != 1 {
		t.Errorf("PeerCount = %d, want 1", info.PeerCount)
	}
}
