// Package stream provides packet transports over byte streams.
package stream

import (
	"encoding/binary"
	"io"
)

// MaxPacketSize limits the size of a length-prefixed packet.
const MaxPacketSize = 1 << 16

// ReadWriter implements bridge.PacketReadWriter.
// Each packet is prefixed by 4-byte (little-endian) indicate the length.
type ReadWriter struct {
	io.ReadWriteCloser
}

// New creates a ReadWriter with io.ReadWriteCloser.
func New(s io.ReadWriteCloser) *ReadWriter {
	return &ReadWriter{s}
}

// ReadPacket implements bridge.PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	var size uint32
	if err := binary.Read(p, binary.LittleEndian, &size); err != nil {
		return nil, err
	}
	if size > MaxPacketSize {
		return nil, io.ErrShortBuffer
	}
	pkt := make([]byte, size)
	_, err := io.ReadFull(p, pkt)
	return pkt, err
}

// WritePacket implements bridge.PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	size := uint32(len(pkt))
	if err := binary.Write(p, binary.LittleEndian, size); err != nil {
		return err
	}
	_, err := p.Write(pkt[:size])
	return err
}

// RawReadWriter implements bridge.PacketReadWriter without framing:
// a packet is whatever a single Read returns.
type RawReadWriter struct {
	io.ReadWriteCloser
	BufferSize int
}

// NewRaw creates a RawReadWriter.
func NewRaw(s io.ReadWriteCloser) *RawReadWriter {
	return &RawReadWriter{ReadWriteCloser: s, BufferSize: 256}
}

// ReadPacket implements bridge.PacketReader.
func (p *RawReadWriter) ReadPacket() ([]byte, error) {
	size := p.BufferSize
	if size <= 0 {
		size = 256
	}
	buf := make([]byte, size)
	for {
		n, err := p.Read(buf)
		if n > 0 {
			return buf[:n], nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// WritePacket implements bridge.PacketWriter.
func (p *RawReadWriter) WritePacket(pkt []byte) error {
	_, err := p.Write(pkt)
	return err
}
