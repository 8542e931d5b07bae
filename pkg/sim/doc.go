// Package sim provides a stepped simulation of the hardware a uart.Link
// runs on. Ticks and RX level changes are fed explicitly, and the
// resulting TX level, timer and pin-change watch states are recorded.
package sim
