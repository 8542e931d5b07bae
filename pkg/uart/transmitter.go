package uart

import "github.com/golang/glog"

// Transmitter drives the TX line bit by bit.
type Transmitter struct {
	state   TxState
	buffer  byte
	counter int

	hw      Hardware
	handler ByteSentHandler
}

// State gets the current stage.
func (t *Transmitter) State() TxState {
	return t.state
}

// Counter gets the ticks elapsed in the current stage.
func (t *Transmitter) Counter() int {
	return t.counter
}

func (t *Transmitter) reset() {
	t.state, t.counter = TxIdleState, 0
}

// start begins sending b. It returns false if a byte is in flight.
func (t *Transmitter) start(b byte) bool {
	if !t.state.IsIdle() {
		return false
	}
	t.buffer, t.counter = b, 0
	t.state = t.state.Next()
	t.hw.SetTx(false)
	return true
}

func (t *Transmitter) tick() {
	if t.state.IsIdle() {
		return
	}
	t.counter++
	if t.counter < TicksPerBit {
		return
	}
	t.counter = 0
	switch {
	case t.state.IsLastBit():
		t.hw.SetTx(true)
		t.state = t.state.Next()
	case t.state.Stage == TxSendingStop:
		// must be idle before the handler runs, it may send the next byte.
		t.state = t.state.Next()
		if glog.V(3) {
			glog.Info("tx done")
		}
		if t.handler != nil {
			t.handler.ByteSent()
		}
	default:
		t.hw.SetTx(t.buffer&1 != 0)
		t.buffer >>= 1
		t.state = t.state.Next()
	}
}
