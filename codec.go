package searchkit

import "encoding/json"

// Codec converts documents of type T to and from their JSON source.
type Codec[T any] interface {
	Encode(doc T) ([]byte, error)
	Decode(src []byte) (T, error)
}

// JSONCodec uses encoding/json: unknown fields are ignored, omitempty fields
// are dropped and time.Time is RFC 3339.
type JSONCodec[T any] struct{}

// Encode implements Codec.
func (JSONCodec[T]) Encode(doc T) ([]byte, error) {
	return json.Marshal(doc)
}

// Decode implements Codec.
func (JSONCodec[T]) Decode(src []byte) (T, error) {
	var out T
	err := json.Unmarshal(src, &out)
	return out, err
}

// CodecFuncs adapts a pair of functions to Codec.
type CodecFuncs[T any] struct {
	EncodeFunc func(T) ([]byte, error)
	DecodeFunc func([]byte) (T, error)
}

// Encode implements Codec.
func (c CodecFuncs[T]) Encode(doc T) ([]byte, error) { return c.EncodeFunc(doc) }

// Decode implements Codec.
func (c CodecFuncs[T]) Decode(src []byte) (T, error) { return c.DecodeFunc(src) }

func codecOrDefault[T any](c Codec[T]) Codec[T] {
	if c == nil {
		return JSONCodec[T]{}
	}
	return c
}
