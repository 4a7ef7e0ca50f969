// Package walletrpc implements the offer gRPC gateway and the REST/websocket
// progress-following surface used by `farcaster-cli progress --follow`. It
// is a read-only window onto the registry and progress stream — it never
// mutates orchestrator state directly, every write goes back over the bus
// like any other client.
package walletrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"farcasterd/internal/offer"
	"farcasterd/internal/registry"
)

// GatewayServer implements the offer gRPC gateway. Requests and responses
// are built on the well-known wrapper/struct protobuf types rather than a
// dedicated generated schema: the surface is read-only and small enough
// that hand-authored generated code would add more risk than a fixed
// .proto would save, while still exercising real protobuf messages end to
// end over grpc's wire codec.
type GatewayServer struct {
	reg *registry.Registry
}

func NewGatewayServer(reg *registry.Registry) *GatewayServer {
	return &GatewayServer{reg: reg}
}

// ListOffers returns every PublicOffer matching selector ("open",
// "in_progress", "ended", or "" for all of them) as a protobuf ListValue of
// per-offer Structs.
func (s *GatewayServer) ListOffers(ctx context.Context, selector *wrapperspb.StringValue) (*structpb.ListValue, error) {
	var offers []offer.PublicOffer
	if tag, ok := selectorTag(selector.GetValue()); ok {
		offers = s.reg.OffersBySelector(tag)
	} else {
		for _, t := range []offer.StatusTag{offer.StatusOpen, offer.StatusInProgress, offer.StatusEnded} {
			offers = append(offers, s.reg.OffersBySelector(t)...)
		}
	}

	values := make([]*structpb.Value, 0, len(offers))
	for _, po := range offers {
		st, err := structpb.NewStruct(offerFields(po))
		if err != nil {
			return nil, err
		}
		values = append(values, structpb.NewStructValue(st))
	}
	return &structpb.ListValue{Values: values}, nil
}

func offerFields(po offer.PublicOffer) map[string]interface{} {
	return map[string]interface{}{
		"uuid":               po.Offer.UUID.String(),
		"network":            string(po.Offer.Network),
		"arbitrating":        string(po.Offer.Arbitrating),
		"accordant":          string(po.Offer.Accordant),
		"arbitrating_amount": float64(po.Offer.ArbitratingAmount),
		"accordant_amount":   float64(po.Offer.AccordantAmount),
		"maker":              string(po.Offer.Maker),
		"peer_socket":        po.PeerSocket,
	}
}

func selectorTag(s string) (offer.StatusTag, bool) {
	switch s {
	case "open":
		return offer.StatusOpen, true
	case "in_progress":
		return offer.StatusInProgress, true
	case "ended":
		return offer.StatusEnded, true
	default:
		return 0, false
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: "farcasterd.OfferGateway",
	HandlerType: (*GatewayServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListOffers",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				in := new(wrapperspb.StringValue)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(*GatewayServer).ListOffers(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/farcasterd.OfferGateway/ListOffers"}
				handler := func(ctx context.Context, req interface{}) (interface{}, error) {
					return srv.(*GatewayServer).ListOffers(ctx, req.(*wrapperspb.StringValue))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
	},
	Metadata: "internal/walletrpc/grpc.go",
}

// Register attaches the offer gateway service to an existing *grpc.Server.
func Register(s *grpc.Server, srv *GatewayServer) {
	s.RegisterService(&serviceDesc, srv)
}
