package bridge

import (
	"errors"
	"fmt"

	"github.com/golang/protobuf/proto"
	"github.com/golang/protobuf/ptypes/wrappers"
)

// ErrBadFrame indicates a packet can't be decoded.
var ErrBadFrame = errors.New("bad frame")

// Codec converts between the bytes of a serial stream and packets.
type Codec interface {
	Encode(data []byte) ([]byte, error)
	Decode(pkt []byte) ([]byte, error)
}

// RawCodec puts the bytes as is into packets.
type RawCodec struct{}

// Encode implements Codec.
func (RawCodec) Encode(data []byte) ([]byte, error) {
	return data, nil
}

// Decode implements Codec.
func (RawCodec) Decode(pkt []byte) ([]byte, error) {
	return pkt, nil
}

// ProtoCodec wraps the bytes in a google.protobuf.BytesValue message.
type ProtoCodec struct{}

// Encode implements Codec.
func (ProtoCodec) Encode(data []byte) ([]byte, error) {
	return proto.Marshal(&wrappers.BytesValue{Value: data})
}

// Decode implements Codec.
func (ProtoCodec) Decode(pkt []byte) ([]byte, error) {
	var msg wrappers.BytesValue
	if err := proto.Unmarshal(pkt, &msg); err != nil {
		return nil, fmt.Errorf("%v: %v", ErrBadFrame, err)
	}
	return msg.Value, nil
}

// CodecByName returns the codec with the name, "raw" or "proto".
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "raw":
		return RawCodec{}, nil
	case "proto":
		return ProtoCodec{}, nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}
