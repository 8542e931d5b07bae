package uart

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
)

// ErrClosed indicates the port is closed.
var ErrClosed = errors.New("port closed")

// PortConfig defines buffer sizes of a Port.
type PortConfig struct {
	// RxBuffer is the number of received bytes kept until read.
	RxBuffer int
	// TxQueue is the number of bytes queued for sending.
	TxQueue int
}

// DefaultPortConfig is used when a size is not positive.
var DefaultPortConfig = PortConfig{
	RxBuffer: 256,
	TxQueue:  256,
}

// Port is a buffered byte stream over a Link. Received bytes are buffered
// until read, and written bytes are queued and fed to the link one at a
// time from the byte-sent handler.
//
// The mask must be the lock the platform holds while it calls OnTick and
// OnPinChanged on the link. Port takes it for every foreground access
// to the link.
type Port struct {
	link *Link
	mask sync.Locker

	rxCh      chan byte
	overflows uint32

	// guarded by mask.
	txQueue []byte
	txLimit int
	sentCh  chan struct{}

	closeCh   chan struct{}
	closeOnce sync.Once
}

// NewPort creates a Port and installs itself as the link's handlers.
func NewPort(link *Link, mask sync.Locker, conf PortConfig) *Port {
	if conf.RxBuffer <= 0 {
		conf.RxBuffer = DefaultPortConfig.RxBuffer
	}
	if conf.TxQueue <= 0 {
		conf.TxQueue = DefaultPortConfig.TxQueue
	}
	p := &Port{
		link:    link,
		mask:    mask,
		rxCh:    make(chan byte, conf.RxBuffer),
		txLimit: conf.TxQueue,
		sentCh:  make(chan struct{}),
		closeCh: make(chan struct{}),
	}
	link.OnByteReceived(p).OnByteSent(p)
	return p
}

// Link gets the underlying link.
func (p *Port) Link() *Link {
	return p.link
}

// Overflows returns the number of received bytes dropped
// because the receive buffer was full.
func (p *Port) Overflows() uint32 {
	return atomic.LoadUint32(&p.overflows)
}

// Buffered returns the number of received bytes ready to read.
func (p *Port) Buffered() int {
	return len(p.rxCh)
}

// ByteReceived implements ByteReceivedHandler.
func (p *Port) ByteReceived(b byte) {
	select {
	case p.rxCh <- b:
	default:
		atomic.AddUint32(&p.overflows, 1)
		glog.Warningf("rx buffer full, dropped %02x", b)
	}
}

// ByteSent implements ByteSentHandler. It runs with the mask held.
func (p *Port) ByteSent() {
	p.sendNext()
	p.notifySent()
}

// LinkReset implements ResetHandler. Queued bytes are dropped along with
// the aborted frame, blocked writers and flushers are woken up.
func (p *Port) LinkReset() {
	if n := len(p.txQueue); n > 0 {
		glog.Warningf("link reset, dropped %d queued bytes", n)
	}
	p.txQueue = nil
	p.notifySent()
}

// sendNext feeds the queue head to an idle link. Mask must be held.
func (p *Port) sendNext() {
	if len(p.txQueue) > 0 && !p.link.Busy() {
		b := p.txQueue[0]
		p.txQueue = p.txQueue[1:]
		p.link.SendByte(b)
	}
}

func (p *Port) notifySent() {
	close(p.sentCh)
	p.sentCh = make(chan struct{})
}

// Read implements io.Reader. It blocks until at least one byte is received.
// After Close, buffered bytes are returned before io.EOF.
func (p *Port) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	var n int
	select {
	case buf[0] = <-p.rxCh:
		n = 1
	default:
		select {
		case buf[0] = <-p.rxCh:
			n = 1
		case <-p.closeCh:
			select {
			case buf[0] = <-p.rxCh:
				n = 1
			default:
				return 0, io.EOF
			}
		}
	}
	for ; n < len(buf); n++ {
		select {
		case buf[n] = <-p.rxCh:
		default:
			return n, nil
		}
	}
	return n, nil
}

// Write implements io.Writer. It returns once all bytes are queued,
// blocking only while the queue is full.
func (p *Port) Write(buf []byte) (int, error) {
	var written int
	for written < len(buf) {
		n, sentCh, err := p.enqueue(buf[written:])
		written += n
		if err != nil {
			return written, err
		}
		if written < len(buf) {
			select {
			case <-sentCh:
			case <-p.closeCh:
				return written, ErrClosed
			}
		}
	}
	return written, nil
}

func (p *Port) enqueue(buf []byte) (int, <-chan struct{}, error) {
	p.mask.Lock()
	defer p.mask.Unlock()
	if p.isClosed() {
		return 0, nil, ErrClosed
	}
	// the queue stalls if the link went idle without a byte-sent
	// notification, restart it from the head.
	p.sendNext()
	var n int
	if len(buf) > 0 && len(p.txQueue) == 0 && !p.link.Busy() {
		p.link.SendByte(buf[0])
		n++
	}
	room := p.txLimit - len(p.txQueue)
	if rest := len(buf) - n; rest < room {
		room = rest
	}
	if room > 0 {
		p.txQueue = append(p.txQueue, buf[n:n+room]...)
		n += room
	}
	return n, p.sentCh, nil
}

// Flush waits until every written byte has been sent.
func (p *Port) Flush(ctx context.Context) error {
	for {
		if p.isClosed() {
			return ErrClosed
		}
		p.mask.Lock()
		p.sendNext()
		done := len(p.txQueue) == 0 && !p.link.Busy()
		sentCh := p.sentCh
		p.mask.Unlock()
		if done {
			return nil
		}
		select {
		case <-sentCh:
		case <-p.closeCh:
			return ErrClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close implements io.Closer. Queued bytes not yet on the line are dropped,
// the byte in flight completes.
func (p *Port) Close() error {
	p.closeOnce.Do(func() {
		close(p.closeCh)
		p.mask.Lock()
		p.txQueue = nil
		p.mask.Unlock()
	})
	return nil
}

func (p *Port) isClosed() bool {
	select {
	case <-p.closeCh:
		return true
	default:
		return false
	}
}
