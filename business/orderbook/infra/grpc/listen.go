package grpc

import (
	"context"
	"errors"
	"net"
	"net/http"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"google.golang.org/grpc"

	"github.com/ordermesh/orderbook-aggregator/internal/grpccodec"
)

// NewGRPCServer builds a grpc.Server that marshals every message
// through the JSON codec instead of the default protobuf one (see
// grpccodec and DESIGN.md).
func NewGRPCServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ForceServerCodec(grpccodec.Codec{}))
	return grpc.NewServer(opts...)
}

// DualStackServer serves srv over HTTP/2, or over HTTP/1.1 upgraded to
// HTTP/2 in cleartext (h2c), on a single listener — clients behind
// proxies that only speak HTTP/1.1 can still reach the RPC, per the
// "MUST accept HTTP/1.1 upgrade" requirement on this endpoint.
// grpc.Server.ServeHTTP handles both once the connection has h2
// framing, which h2c negotiates transparently for plaintext 1.1
// clients that send the upgrade preface.
type DualStackServer struct {
	grpcServer *grpc.Server
	httpServer *http.Server
}

// NewDualStackServer wraps srv for HTTP/1.1+HTTP/2 cleartext serving.
func NewDualStackServer(srv *grpc.Server) *DualStackServer {
	h2s := &http2.Server{}
	handler := h2c.NewHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.ServeHTTP(w, r)
	}), h2s)

	return &DualStackServer{
		grpcServer: srv,
		httpServer: &http.Server{Handler: handler},
	}
}

// Serve blocks accepting connections on lis until Shutdown is called,
// at which point it returns nil.
func (d *DualStackServer) Serve(lis net.Listener) error {
	err := d.httpServer.Serve(lis)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops both the gRPC server and its HTTP listener.
func (d *DualStackServer) Shutdown(ctx context.Context) error {
	d.grpcServer.GracefulStop()
	return d.httpServer.Shutdown(ctx)
}
