package busproto

import (
	"testing"

	"farcasterd/internal/address"
	"farcasterd/internal/ferrors"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		payload Payload
	}{
		{"Hello", Hello{}},
		{"Terminate", Terminate{Reason: "shutdown"}},
		{"DeleteCheckpoint", DeleteCheckpoint{SwapID: address.SwapID{1, 2, 3}}},
		{"RestoreCheckpoint", RestoreCheckpoint{Entry: CheckpointEntry{SwapID: address.SwapID{4}, IsMaker: true}}},
		{"NodeInfo", NodeInfo{Version: "0.1.0", PeerCount: 3}},
		{"Failure", Failure{Kind: ferrors.User, Info: "unknown offer"}},
		{"Success", Success{Details: "ok"}},
		{"SweepRequest", SweepRequest{Source: "key", Dest: "addr"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			env := Envelope{
				Lane:    LaneCtl,
				Src:     address.Orchestrator(),
				Dst:     address.Store(),
				Payload: c.payload,
			}
			data, err := Marshal(env)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			got, err := Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if got.Lane != env.Lane || got.Src != env.Src || got.Dst != env.Dst {
				t.Fatalf("envelope header mismatch: got %+v, want %+v", got, env)
			}
			if got.Payload.Tag() != c.payload.Tag() {
				t.Fatalf("payload tag mismatch: got %q, want %q", got.Payload.Tag(), c.payload.Tag())
			}
		})
	}
}

func TestUnmarshalUnknownTag(t *testing.T) {
	_, err := Unmarshal([]byte(`{"lane":0,"src":{},"dst":{},"tag":"NotARealPayload","payload":{}}`))
	if err == nil {
		t.Fatalf("expected an error for an unregistered payload tag")
	}
}

func TestUnmarshalMalformedJSON(t *testing.T) {
	if _, err := Unmarshal([]byte("not json")); err == nil {
		t.Fatalf("expected an error for malformed JSON")
	}
}
