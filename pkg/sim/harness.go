package sim

import (
	"fmt"

	"github.com/robotalks/softuart/pkg/uart"
)

// Harness drives a Link over stepped Hardware one tick at a time and
// records everything the link reports.
type Harness struct {
	*uart.Link
	HW *Hardware

	// Received collects bytes reported by the receiver.
	Received []byte
	// SentCount counts byte-sent notifications.
	SentCount int
	// Ticks counts delivered ticks.
	Ticks int

	// OnSent, if set, is called after SentCount is incremented.
	OnSent func(*Harness)
	// Check, if set, is called after every tick.
	Check func(*Harness) error

	errs []error
}

// NewHarness creates a Harness with a reset link.
func NewHarness() *Harness {
	h := &Harness{HW: NewHardware()}
	h.Link = uart.NewLink(h.HW).
		OnByteReceived(uart.ByteReceivedFunc(func(b byte) {
			h.Received = append(h.Received, b)
		})).
		OnByteSent(uart.ByteSentFunc(func() {
			h.SentCount++
			if fn := h.OnSent; fn != nil {
				fn(h)
			}
		}))
	return h
}

// Reset resets the link and the records, the RX line is set high.
func (h *Harness) Reset() {
	h.HW.Rx = true
	h.Received, h.SentCount, h.Ticks, h.errs = nil, 0, 0, nil
	h.Link.Reset()
	h.HW.Samples, h.HW.TimerStarts = 0, 0
}

// Tick delivers n ticks regardless of the timer state.
func (h *Harness) Tick(n int) *Harness {
	for i := 0; i < n; i++ {
		h.Link.OnTick()
		h.Ticks++
		if h.Check != nil {
			if err := h.Check(h); err != nil {
				h.errs = append(h.errs, fmt.Errorf("tick %d: %v", h.Ticks, err))
			}
		}
	}
	return h
}

// SetRx sets the RX line level and notifies the link of the change
// if pin-change watch is armed.
func (h *Harness) SetRx(high bool) *Harness {
	changed := h.HW.Rx != high
	h.HW.Rx = high
	if changed && h.HW.Watching {
		h.Link.OnPinChanged()
	}
	return h
}

// ClockIn feeds a complete frame carrying b into the receiver: the falling
// edge, start confirmation, eight data bits and the stop bit. Level changes
// are aligned with the receiver's sampling windows.
func (h *Harness) ClockIn(b byte) *Harness {
	h.SetRx(false)
	if h.Link.Receiver().State().IsIdle() {
		// watch is off, the receiver picks the low level up on the next tick.
		h.Tick(1)
	}
	h.Tick(uart.StartConfirmTicks)
	for i := 0; i < uart.DataBits; i++ {
		h.HW.Rx = b&1 != 0
		b >>= 1
		h.Tick(uart.TicksPerBit)
	}
	h.HW.Rx = true
	return h.Tick(uart.TicksPerBit)
}

// Errors returns failures reported by Check.
func (h *Harness) Errors() []error {
	return h.errs
}

// CheckArbiter verifies the timer and pin-change watch follow the state
// machines: the timer runs iff a frame is in flight and watch is armed
// iff the timer is stopped.
func CheckArbiter(h *Harness) error {
	active := h.Link.TimerActive()
	if h.HW.TimerOn != active {
		return fmt.Errorf("timer on=%v, expected %v (%s)", h.HW.TimerOn, active, h.Link.Status())
	}
	if h.HW.Watching == h.HW.TimerOn {
		return fmt.Errorf("watch=%v timer=%v must be complementary", h.HW.Watching, h.HW.TimerOn)
	}
	return nil
}
