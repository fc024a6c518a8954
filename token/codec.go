package token

import (
	"encoding/json"
	"io"
)

// Codec decodes token endpoint response bodies. Implementations must be
// stateless and safe for concurrent use.
type Codec interface {
	Decode(r io.Reader, v any) error
}

// JSONCodec decodes JSON bodies. Unknown fields are ignored.
type JSONCodec struct{}

func NewJSONCodec() JSONCodec {
	return JSONCodec{}
}

func (JSONCodec) Decode(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}
