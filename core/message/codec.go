package message

import (
	"sync"

	"github.com/ugorji/go/codec"
)

// Canonical so that encode(decode(b)) == b; the store compares and stores
// blobs byte-for-byte.
var cborHandle = func() *codec.CborHandle {
	h := new(codec.CborHandle)
	h.Canonical = true
	return h
}()

var encoderPool = sync.Pool{
	New: func() interface{} {
		var scratch []byte
		return codec.NewEncoderBytes(&scratch, cborHandle)
	},
}

var decoderPool = sync.Pool{
	New: func() interface{} { return codec.NewDecoderBytes(nil, cborHandle) },
}

// Encode serializes the message to its storage form.
func Encode(m *Message) ([]byte, error) {
	e := encoderPool.Get().(*codec.Encoder)
	defer encoderPool.Put(e)
	var out []byte
	e.ResetBytes(&out)
	if err := e.Encode(m); err != nil {
		return nil, err
	}
	return out, nil
}

// Decode deserializes a message from its storage form.
func Decode(data []byte) (*Message, error) {
	d := decoderPool.Get().(*codec.Decoder)
	defer decoderPool.Put(d)
	d.ResetBytes(data)
	m := new(Message)
	if err := d.Decode(m); err != nil {
		return nil, err
	}
	return m, nil
}
