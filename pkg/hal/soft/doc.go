// Package soft runs uart links in real time on goroutines.
//
// A Board implements uart.Hardware on top of virtual Lines. Boards are
// ticked by a Clock, one goroutine which delivers timer ticks and RX
// pin-change notifications to every board it drives. Each Board has an
// interrupt mask which is held while the link handles a tick or a pin
// change, and which foreground code (e.g. uart.Port) takes to call into
// the link. This provides the serialization uart.Link requires.
package soft
