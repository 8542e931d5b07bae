package uart

import "github.com/golang/glog"

// Receiver reassembles bytes from RX line samples.
type Receiver struct {
	state   RxState
	buffer  byte
	counter int

	hw      Hardware
	handler ByteReceivedHandler
}

// State gets the current stage.
func (r *Receiver) State() RxState {
	return r.state
}

// Counter gets the ticks elapsed in the current stage.
func (r *Receiver) Counter() int {
	return r.counter
}

func (r *Receiver) reset() {
	r.state, r.counter = RxIdle, 0
}

// arm enters start confirmation.
func (r *Receiver) arm() {
	r.state, r.counter = RxConfirming, 0
}

// pinChanged returns true if a start bit is suspected and the receiver
// has been armed.
func (r *Receiver) pinChanged() bool {
	if !r.state.IsIdle() || r.hw.SampleRx() {
		return false
	}
	r.arm()
	return true
}

func (r *Receiver) tick() {
	switch r.state.Stage {
	case RxWaitingForStart:
		// the falling edge may have been missed while the timer
		// was kept running by the transmitter.
		if !r.hw.SampleRx() {
			r.arm()
		}
	case RxConfirmingStart:
		r.counter++
		if r.hw.SampleRx() {
			r.reset()
		} else if r.counter >= StartConfirmTicks {
			r.advance()
		}
	case RxReceivingBit:
		r.counter++
		if r.counter < TicksPerBit {
			return
		}
		r.sampleBit()
		r.advance()
		if r.state.Stage != RxReadingStop {
			return
		}
		if glog.V(3) {
			glog.Infof("rx %02x", r.buffer)
		}
		if r.handler != nil {
			r.handler.ByteReceived(r.buffer)
		}
	case RxReadingStop:
		// stop bit level is not validated.
		r.counter++
		if r.counter >= TicksPerBit {
			r.advance()
		}
	}
}

func (r *Receiver) advance() {
	r.state, r.counter = r.state.Next(), 0
}

// sampleBit shifts the RX level into the buffer from the high end,
// so the first sampled bit ends up as the LSB.
func (r *Receiver) sampleBit() {
	r.buffer >>= 1
	if r.hw.SampleRx() {
		r.buffer |= 0x80
	}
}
