// Hand-authored in the shape protoc-gen-go-grpc emits: a client stub, a
// server interface with its Unimplemented embed, and a grpc.ServiceDesc
// wired to a streaming handler. Only the message layer (messages.go)
// departs from codegen — see DESIGN.md.
package orderbookv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	OrderbookAggregator_BookSummary_FullMethodName = "/orderbook.v1.OrderbookAggregator/BookSummary"
)

// OrderbookAggregatorClient is the client API for OrderbookAggregator.
type OrderbookAggregatorClient interface {
	BookSummary(ctx context.Context, in *Empty, opts ...grpc.CallOption) (OrderbookAggregator_BookSummaryClient, error)
}

type orderbookAggregatorClient struct {
	cc grpc.ClientConnInterface
}

// NewOrderbookAggregatorClient builds a client bound to cc.
func NewOrderbookAggregatorClient(cc grpc.ClientConnInterface) OrderbookAggregatorClient {
	return &orderbookAggregatorClient{cc}
}

func (c *orderbookAggregatorClient) BookSummary(ctx context.Context, in *Empty, opts ...grpc.CallOption) (OrderbookAggregator_BookSummaryClient, error) {
	stream, err := c.cc.NewStream(ctx, &OrderbookAggregator_ServiceDesc.Streams[0], OrderbookAggregator_BookSummary_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &orderbookAggregatorBookSummaryClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// OrderbookAggregator_BookSummaryClient is the stream of Summary values
// returned by BookSummary.
type OrderbookAggregator_BookSummaryClient interface {
	Recv() (*Summary, error)
	grpc.ClientStream
}

type orderbookAggregatorBookSummaryClient struct {
	grpc.ClientStream
}

func (x *orderbookAggregatorBookSummaryClient) Recv() (*Summary, error) {
	m := new(Summary)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// OrderbookAggregatorServer is the server API for OrderbookAggregator.
// Implementations must embed UnimplementedOrderbookAggregatorServer for
// forward compatibility.
type OrderbookAggregatorServer interface {
	BookSummary(*Empty, OrderbookAggregator_BookSummaryServer) error
	mustEmbedUnimplementedOrderbookAggregatorServer()
}

// UnimplementedOrderbookAggregatorServer must be embedded by value to
// have forward-compatible implementations.
type UnimplementedOrderbookAggregatorServer struct{}

func (UnimplementedOrderbookAggregatorServer) BookSummary(*Empty, OrderbookAggregator_BookSummaryServer) error {
	return status.Errorf(codes.Unimplemented, "method BookSummary not implemented")
}
func (UnimplementedOrderbookAggregatorServer) mustEmbedUnimplementedOrderbookAggregatorServer() {}

// RegisterOrderbookAggregatorServer attaches srv to s.
func RegisterOrderbookAggregatorServer(s grpc.ServiceRegistrar, srv OrderbookAggregatorServer) {
	s.RegisterService(&OrderbookAggregator_ServiceDesc, srv)
}

// OrderbookAggregator_BookSummaryServer is the per-call stream a
// BookSummary implementation sends Summary values on.
type OrderbookAggregator_BookSummaryServer interface {
	Send(*Summary) error
	grpc.ServerStream
}

type orderbookAggregatorBookSummaryServer struct {
	grpc.ServerStream
}

func (x *orderbookAggregatorBookSummaryServer) Send(m *Summary) error {
	return x.ServerStream.SendMsg(m)
}

func _OrderbookAggregator_BookSummary_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(Empty)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(OrderbookAggregatorServer).BookSummary(m, &orderbookAggregatorBookSummaryServer{stream})
}

// OrderbookAggregator_ServiceDesc is the grpc.ServiceDesc for
// OrderbookAggregator. It is only intended for grpc.RegisterService.
var OrderbookAggregator_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "orderbook.v1.OrderbookAggregator",
	HandlerType: (*OrderbookAggregatorServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "BookSummary",
			Handler:       _OrderbookAggregator_BookSummary_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "orderbook/v1/orderbook.proto",
}
