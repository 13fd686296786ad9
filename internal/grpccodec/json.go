// Package grpccodec plugs a plain encoding/json wire codec into
// grpc-go in place of the default protobuf codec. The service's
// messages (proto/orderbook/v1) are hand-authored Go structs rather
// than protoc-gen-go output, so there is no generated descriptor for
// the real protobuf codec to marshal against — see DESIGN.md.
package grpccodec

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// Name is the codec's content-subtype. The server forces it directly
// via grpc.ForceServerCodec; the client selects it per-call via
// grpc.CallContentSubtype, which requires the codec to also be
// registered globally under this name.
const Name = "json"

// Codec implements google.golang.org/grpc/encoding.Codec.
type Codec struct{}

func init() {
	encoding.RegisterCodec(Codec{})
}

func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (Codec) Name() string {
	return Name
}
