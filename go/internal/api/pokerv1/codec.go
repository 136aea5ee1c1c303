package pokerv1

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// Codec encodes messages as plain JSON. It is registered under the "json" name so it replaces
// connect's protobuf JSON codec, which only handles proto.Message values.
type Codec struct{}

var _ connect.Codec = Codec{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) { return json.Marshal(msg) }

func (Codec) Unmarshal(data []byte, msg any) error { return json.Unmarshal(data, msg) }
