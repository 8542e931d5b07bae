package uart

import (
	"fmt"

	"github.com/golang/glog"
)

// Link couples a Receiver and a Transmitter over one Hardware and
// arbitrates the shared timer and RX pin-change watch between them.
type Link struct {
	hw      Hardware
	rx      Receiver
	tx      Transmitter
	ticking bool
}

// Status is a snapshot of a Link.
type Status struct {
	Rx             RxState
	RxCounter      int
	Tx             TxState
	TxCounter      int
	TimerActive    bool
	PinWatchActive bool
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return fmt.Sprintf("rx=%s(%d) tx=%s(%d) timer=%v watch=%v",
		s.Rx, s.RxCounter, s.Tx, s.TxCounter, s.TimerActive, s.PinWatchActive)
}

// NewLink creates a Link and resets it with the hardware.
func NewLink(hw Hardware) *Link {
	l := &Link{hw: hw}
	l.rx.hw, l.tx.hw = hw, hw
	l.Reset()
	return l
}

// OnByteReceived sets the handler called for every received byte.
func (l *Link) OnByteReceived(h ByteReceivedHandler) *Link {
	l.rx.handler = h
	return l
}

// OnByteSent sets the handler called when a byte is fully sent.
// The handler may call SendByte to chain the next byte.
func (l *Link) OnByteSent(h ByteSentHandler) *Link {
	l.tx.handler = h
	return l
}

// Receiver gets the receiving state machine.
func (l *Link) Receiver() *Receiver {
	return &l.rx
}

// Transmitter gets the transmitting state machine.
func (l *Link) Transmitter() *Transmitter {
	return &l.tx
}

// TimerActive indicates the timer should be running: either state
// machine has a frame in flight.
func (l *Link) TimerActive() bool {
	return !l.rx.state.IsIdle() || !l.tx.state.IsIdle()
}

// Busy indicates a byte is being sent and SendByte would be ignored.
func (l *Link) Busy() bool {
	return !l.tx.state.IsIdle()
}

// Status returns a snapshot of the current state.
func (l *Link) Status() Status {
	active := l.TimerActive()
	return Status{
		Rx:             l.rx.state,
		RxCounter:      l.rx.counter,
		Tx:             l.tx.state,
		TxCounter:      l.tx.counter,
		TimerActive:    active,
		PinWatchActive: !active,
	}
}

// Reset aborts any frame in flight and brings the hardware to idle:
// timer stopped, pin-change watch armed, TX high.
// A byte-sent handler implementing ResetHandler is notified.
func (l *Link) Reset() {
	l.rx.reset()
	l.tx.reset()
	l.idle()
	l.hw.SetTx(true)
	if h, ok := l.tx.handler.(ResetHandler); ok {
		h.LinkReset()
	}
}

// SendByte starts sending b. It is ignored if a byte is already in flight;
// wait for the byte-sent handler before sending the next one.
func (l *Link) SendByte(b byte) {
	active := l.TimerActive()
	if !l.tx.start(b) {
		if glog.V(3) {
			glog.Infof("send %02x ignored, %s", b, l.tx.state)
		}
		return
	}
	// inside a tick the timer is running by definition.
	if !active && !l.ticking {
		l.activate()
	}
}

// OnPinChanged must be called when the RX line changes level.
func (l *Link) OnPinChanged() {
	active := l.TimerActive()
	if l.rx.pinChanged() && !active {
		l.activate()
	}
}

// OnTick must be called on every timer tick.
func (l *Link) OnTick() {
	active := l.TimerActive()
	l.ticking = true
	l.rx.tick()
	l.tx.tick()
	l.ticking = false
	switch {
	case !l.TimerActive():
		l.idle()
	case !active:
		// a stray tick after the timer was stopped found the RX line low.
		l.activate()
	}
}

// activate switches from edge detection to timed sampling.
func (l *Link) activate() {
	l.hw.StopPinWatch()
	l.hw.StartTimer()
}

func (l *Link) idle() {
	l.hw.StartPinWatch()
	l.hw.StopTimer()
}
