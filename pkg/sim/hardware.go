package sim

// Hardware is a stepped uart.Hardware that records what the link does
// to the lines, the timer and the pin-change watch.
type Hardware struct {
	// Rx is the RX line level returned by SampleRx.
	Rx bool
	// Tx is the level the TX line is driven to.
	Tx bool
	// TimerOn indicates the timer is started.
	TimerOn bool
	// Watching indicates pin-change watch is armed.
	Watching bool
	// Samples counts SampleRx calls.
	Samples int
	// TimerStarts counts StartTimer calls.
	TimerStarts int
}

// NewHardware creates Hardware with both lines idle (high).
func NewHardware() *Hardware {
	return &Hardware{Rx: true, Tx: true}
}

// SampleRx implements uart.Hardware.
func (h *Hardware) SampleRx() bool {
	h.Samples++
	return h.Rx
}

// SetTx implements uart.Hardware.
func (h *Hardware) SetTx(high bool) {
	h.Tx = high
}

// StartTimer implements uart.Hardware.
func (h *Hardware) StartTimer() {
	h.TimerOn = true
	h.TimerStarts++
}

// StopTimer implements uart.Hardware.
func (h *Hardware) StopTimer() {
	h.TimerOn = false
}

// StartPinWatch implements uart.Hardware.
func (h *Hardware) StartPinWatch() {
	h.Watching = true
}

// StopPinWatch implements uart.Hardware.
func (h *Hardware) StopPinWatch() {
	h.Watching = false
}

// ResetSamples clears the sample counter and returns the previous count.
func (h *Hardware) ResetSamples() int {
	n := h.Samples
	h.Samples = 0
	return n
}
