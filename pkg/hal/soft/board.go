package soft

import (
	"sync"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/robotalks/softuart/pkg/uart"
)

// Board is a virtual microcontroller running one uart.Link.
type Board struct {
	name   string
	rx, tx *Line

	mask    sync.Mutex
	timerOn int32
	watchOn int32
	edgeCh  chan struct{}
	ticks   uint64

	link *uart.Link
}

// NewBoard creates a Board using rx and tx lines. The link is reset,
// which drives tx high.
func NewBoard(name string, rx, tx *Line) *Board {
	b := &Board{
		name:   name,
		rx:     rx,
		tx:     tx,
		edgeCh: make(chan struct{}, 1),
	}
	rx.Watch(b.edgeCh)
	b.link = uart.NewLink(b)
	return b
}

// NewNullModem creates two boards with crossed lines.
func NewNullModem(nameA, nameB string) (*Board, *Board) {
	ab, ba := NewLine(true), NewLine(true)
	return NewBoard(nameA, ba, ab), NewBoard(nameB, ab, ba)
}

// Name implements framework.Named.
func (b *Board) Name() string {
	return b.name
}

// Link gets the link running on the board.
func (b *Board) Link() *uart.Link {
	return b.link
}

// Mask gets the interrupt mask.
func (b *Board) Mask() sync.Locker {
	return &b.mask
}

// NewPort creates a uart.Port over the link.
func (b *Board) NewPort(conf uart.PortConfig) *uart.Port {
	return uart.NewPort(b.link, &b.mask, conf)
}

// Do runs fn with interrupts masked.
func (b *Board) Do(fn func(*uart.Link)) {
	b.mask.Lock()
	defer b.mask.Unlock()
	fn(b.link)
}

// Status gets the link status.
func (b *Board) Status() (st uart.Status) {
	b.Do(func(l *uart.Link) {
		st = l.Status()
	})
	return
}

// Ticks returns the number of ticks delivered to the link.
func (b *Board) Ticks() uint64 {
	return atomic.LoadUint64(&b.ticks)
}

// TimerOn indicates the board timer is started.
func (b *Board) TimerOn() bool {
	return atomic.LoadInt32(&b.timerOn) != 0
}

// Watching indicates RX pin-change watch is armed.
func (b *Board) Watching() bool {
	return atomic.LoadInt32(&b.watchOn) != 0
}

// SampleRx implements uart.Hardware.
func (b *Board) SampleRx() bool {
	return b.rx.Level()
}

// SetTx implements uart.Hardware.
func (b *Board) SetTx(high bool) {
	b.tx.Set(high)
}

// StartTimer implements uart.Hardware.
func (b *Board) StartTimer() {
	if atomic.SwapInt32(&b.timerOn, 1) == 0 && glog.V(4) {
		glog.Infof("%s: timer started", b.name)
	}
}

// StopTimer implements uart.Hardware.
func (b *Board) StopTimer() {
	if atomic.SwapInt32(&b.timerOn, 0) != 0 && glog.V(4) {
		glog.Infof("%s: timer stopped", b.name)
	}
}

// StartPinWatch implements uart.Hardware.
func (b *Board) StartPinWatch() {
	atomic.StoreInt32(&b.watchOn, 1)
}

// StopPinWatch implements uart.Hardware.
func (b *Board) StopPinWatch() {
	atomic.StoreInt32(&b.watchOn, 0)
}

// tick delivers a timer interrupt if the timer is started.
func (b *Board) tick() {
	if !b.TimerOn() {
		return
	}
	b.mask.Lock()
	// the timer may have been stopped while waiting for the mask.
	if b.TimerOn() {
		b.link.OnTick()
		atomic.AddUint64(&b.ticks, 1)
	}
	b.mask.Unlock()
}

// pollEdge delivers a pending pin-change interrupt if watch is armed.
func (b *Board) pollEdge() {
	select {
	case <-b.edgeCh:
	default:
		return
	}
	if !b.Watching() {
		return
	}
	b.mask.Lock()
	if b.Watching() {
		b.link.OnPinChanged()
	}
	b.mask.Unlock()
}
