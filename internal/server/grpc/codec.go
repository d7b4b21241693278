// Package grpc exposes the swap engine as the slotswap.v1.SlotSwap gRPC
// service.
//
// Messages are plain Go structs encoded as JSON: the codec below is registered
// under the "json" content-subtype and the service descriptor in
// service_desc.go is written by hand rather than generated from a .proto
// file. Clients built with NewSlotSwapClient select the codec on every call.
package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// codecName is the content-subtype clients select with
// grpc.CallContentSubtype.
const codecName = "json"

// jsonCodec carries the service messages as JSON on the gRPC wire.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return codecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
