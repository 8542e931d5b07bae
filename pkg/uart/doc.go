// Package uart provides a software (bit-banged) UART.
package uart

// The link is driven entirely by two events from the platform: a periodic
// timer tick and an RX pin-change notification. One bit lasts TicksPerBit
// ticks. A frame is 1 start bit, 8 data bits (LSB first) and 1 stop bit.
//
// Receiver and Transmitter are independent state machines sharing a single
// timer. The timer runs while either of them has a frame in flight; while
// both are idle the timer is stopped and RX pin-change watching is armed
// to catch the next start bit.
//
// All Link methods must be serialized by the platform: they are meant to
// run in interrupt context and never block.
