package mqtt

import (
	"context"
	"io"
	"sync"
)

// Topic suffixes used by ReadWriter.
const (
	// TopicRx carries bytes received by the UART.
	TopicRx = "rx"
	// TopicTx carries bytes to be sent by the UART.
	TopicTx = "tx"
)

// ReadWriter implements bridge.PacketReadWriter.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	packetCh  chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once
	ownQueue  bool
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{
		Queue:    q,
		packetCh: make(chan []byte, 16),
		closeCh:  make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// OwnQueue makes Close also close the Queue.
func (p *ReadWriter) OwnQueue() *ReadWriter {
	p.ownQueue = true
	return p
}

// ForUART sets topics using the convention for a UART named name:
// SubTopic = name/tx
// PubTopic = name/rx
func (p *ReadWriter) ForUART(name string) *ReadWriter {
	return p.WithTopics(name+"/"+TopicTx, name+"/"+TopicRx)
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.packetCh:
		return pkt, nil
	case <-p.closeCh:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	p.closeOnce.Do(func() {
		close(p.closeCh)
	})
	if p.ownQueue {
		return p.Queue.Close()
	}
	return nil
}

// Run implements Runnable. It keeps the subscription until canceled
// or closed.
func (p *ReadWriter) Run(ctx context.Context) error {
	token := p.Queue.Sub(p.SubTopic, p.handleMsg)
	if token.Wait(); token.Error() != nil {
		return token.Error()
	}
	defer p.Queue.Unsub(p.SubTopic)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.closeCh:
		return nil
	}
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	select {
	case p.packetCh <- payload:
	case <-p.closeCh:
	}
}
