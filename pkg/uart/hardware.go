package uart

// Hardware is the capability set a platform binding provides to a Link.
// All methods are called from interrupt context and must not block.
type Hardware interface {
	// SampleRx returns the current RX line level, true for high.
	SampleRx() bool
	// SetTx drives the TX line.
	SetTx(high bool)
	// StartTimer starts the periodic tick source.
	StartTimer()
	// StopTimer stops the periodic tick source.
	StopTimer()
	// StartPinWatch arms RX pin-change notification.
	StartPinWatch()
	// StopPinWatch disarms RX pin-change notification.
	StopPinWatch()
}

// ByteReceivedHandler is called when a byte is fully received.
type ByteReceivedHandler interface {
	ByteReceived(b byte)
}

// ByteReceivedFunc is func type of ByteReceivedHandler.
type ByteReceivedFunc func(byte)

// ByteReceived implements ByteReceivedHandler.
func (f ByteReceivedFunc) ByteReceived(b byte) {
	f(b)
}

// ByteSentHandler is called when a byte is fully transmitted,
// including its stop bit.
type ByteSentHandler interface {
	ByteSent()
}

// ByteSentFunc is func type of ByteSentHandler.
type ByteSentFunc func()

// ByteSent implements ByteSentHandler.
func (f ByteSentFunc) ByteSent() {
	f()
}

// ResetHandler may be implemented by a ByteSentHandler to learn that
// Reset dropped the byte in flight. No ByteSent follows for that byte.
type ResetHandler interface {
	LinkReset()
}
