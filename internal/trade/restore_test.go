package trade

import (
	"testing"

	"farcasterd/internal/address"
	"farcasterd/internal/busproto"
	"farcasterd/internal/offer"
)

func TestNewRestoreLaunchesBothSyncersAndSwapWorker(t *testing.T) {
	ctx := newFakeContext()
	swapID := address.SwapID{9, 9, 9}
	entry := busproto.CheckpointEntry{
		SwapID:      swapID,
		PublicOffer: sampleOpenOffer(),
		Role:        offer.Alice,
		IsMaker:     true,
		State:       []byte("opaque"),
	}

	m, err := NewRestore(ctx, entry)
	if err != nil {
		t.Fatalf("NewRestore: %v", err)
	}
	if m.Phase != PhaseSwapLaunched {
		t.Fatalf("expected restore to jump directly to SwapLaunched, got %v", m.Phase)
	}
	got, ok := m.SwapID()
	if !ok || got != swapID {
		t.Fatalf("expected the restored swap id to be immediately visible, got %v ok=%v", got, ok)
	}
	if len(ctx.launched) != 3 {
		t.Fatalf("expected two syncer launches and one swap worker launch, got %d", len(ctx.launched))
	}
	if len(ctx.sent) != 1 {
		t.Fatalf("expected the checkpoint entry forwarded to the restored swap worker, got %d sends", len(ctx.sent))
	}
	if _, ok := ctx.sent[0].payload.(busproto.RestoreCheckpoint); !ok {
		t.Fatalf("expected a RestoreCheckpoint payload, got %T", ctx.sent[0].payload)
	}
}
