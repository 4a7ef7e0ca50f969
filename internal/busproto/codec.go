package busproto

import (
	"encoding/json"
	"fmt"
	"reflect"

	"farcasterd/internal/address"
)

// registry maps a payload Tag to its concrete Go type so a received frame
// can be decoded back into the right struct. Every Payload implementation
// in this package registers itself in init() below.
var registry = map[string]reflect.Type{}

func register(p Payload) {
	registry[p.Tag()] = reflect.TypeOf(p)
}

func init() {
	for _, p := range []Payload{
		Hello{}, Terminate{}, MakeOffer{}, MadeOffer{}, TakeOffer{}, RevokeOffer{},
		TakerCommit{}, RestoreCheckpoint{}, DeleteCheckpoint{}, LaunchSwap{}, KeyShareReady{}, FundingInfo{},
		FundingCompleted{}, FundingCanceled{}, SwapOutcome{}, PeerdTerminated{},
		PeerdUnreachable{}, SweepAddress{}, SweepSuccess{}, InfoRequest{}, NodeInfo{},
		PeerInfo{}, SwapInfo{}, SyncerInfo{}, ListPeersRequest{}, ListPeersResponse{},
		ListSwapsRequest{}, ListSwapsResponse{}, ListOffersRequest{}, ListOffersResponse{},
		ListListensRequest{}, ListListensResponse{}, ListCheckpointsRequest{},
		ListCheckpointsResponse{}, RestoreRequest{}, AbortRequest{}, ProgressRequest{},
		ProgressUnsubscribe{}, NeedsFundingRequest{}, NeedsFundingResponse{},
		SweepRequest{}, Failure{}, Success{},
	} {
		register(p)
	}
}

// wireEnvelope is the JSON-on-the-wire shape of an Envelope: the payload is
// split into its tag plus raw data so it round-trips through the registry.
type wireEnvelope struct {
	Lane    Lane                    `json:"lane"`
	Src     address.ServiceAddress  `json:"src"`
	Dst     address.ServiceAddress  `json:"dst"`
	Tag     string                  `json:"tag"`
	Payload json.RawMessage         `json:"payload"`
}

// Marshal renders an Envelope to its wire bytes.
func Marshal(e Envelope) ([]byte, error) {
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("busproto: marshal payload %s: %w", e.Payload.Tag(), err)
	}
	w := wireEnvelope{Lane: e.Lane, Src: e.Src, Dst: e.Dst, Tag: e.Payload.Tag(), Payload: data}
	return json.Marshal(w)
}

// Unmarshal parses wire bytes produced by Marshal back into an Envelope.
func Unmarshal(data []byte) (Envelope, error) {
	var w wireEnvelope
	if err := json.Unmarshal(data, &w); err != nil {
		return Envelope{}, fmt.Errorf("busproto: unmarshal envelope: %w", err)
	}
	typ, ok := registry[w.Tag]
	if !ok {
		return Envelope{}, fmt.Errorf("busproto: unknown payload tag %q", w.Tag)
	}
	ptr := reflect.New(typ)
	if err := json.Unmarshal(w.Payload, ptr.Interface()); err != nil {
		return Envelope{}, fmt.Errorf("busproto: unmarshal payload %q: %w", w.Tag, err)
	}
	payload, ok := ptr.Elem().Interface().(Payload)
	if !ok {
		return Envelope{}, fmt.Errorf("busproto: type %s does not implement Payload", typ)
	}
	return Envelope{Lane: w.Lane, Src: w.Src, Dst: w.Dst, Payload: payload}, nil
}
