package uart

import "fmt"

// Frame timing.
const (
	// TicksPerBit is the number of timer ticks in one bit period.
	TicksPerBit = 8
	// StartConfirmTicks is the number of ticks the RX line must stay low
	// before a start bit is accepted. It lands near the center of the
	// start bit, so data bits are sampled near their centers as well.
	StartConfirmTicks = 4
	// DataBits is the number of data bits in a frame.
	DataBits = 8
)

// RxStage enumerates the kinds of receiver stages.
type RxStage int

const (
	// RxWaitingForStart means the line is idle.
	RxWaitingForStart RxStage = iota
	// RxConfirmingStart means a low level was seen and is being confirmed.
	RxConfirmingStart
	// RxReceivingBit means a data bit is being timed, see RxState.Bit.
	RxReceivingBit
	// RxReadingStop means all data bits were received and the stop bit
	// is being waited out.
	RxReadingStop
)

// RxState is a receiver stage. Bit is only meaningful for RxReceivingBit.
type RxState struct {
	Stage RxStage
	Bit   int
}

// Receiver stages usable as values.
var (
	RxIdle       = RxState{Stage: RxWaitingForStart}
	RxConfirming = RxState{Stage: RxConfirmingStart}
	RxStop       = RxState{Stage: RxReadingStop}
)

// RxBit returns the stage receiving data bit n.
func RxBit(n int) RxState {
	return RxState{Stage: RxReceivingBit, Bit: n}
}

// Next returns the successor stage.
// WaitingForStart, Confirm, Bit 0..7, Stop, then back to WaitingForStart.
func (s RxState) Next() RxState {
	switch s.Stage {
	case RxWaitingForStart:
		return RxConfirming
	case RxConfirmingStart:
		return RxBit(0)
	case RxReceivingBit:
		if s.Bit+1 < DataBits {
			return RxBit(s.Bit + 1)
		}
		return RxStop
	}
	return RxIdle
}

// IsIdle indicates no frame is being received.
func (s RxState) IsIdle() bool {
	return s.Stage == RxWaitingForStart
}

// String implements fmt.Stringer.
func (s RxState) String() string {
	switch s.Stage {
	case RxWaitingForStart:
		return "waiting-for-start"
	case RxConfirmingStart:
		return "confirming-start"
	case RxReceivingBit:
		return fmt.Sprintf("receiving-bit-%d", s.Bit)
	case RxReadingStop:
		return "reading-stop"
	}
	return fmt.Sprintf("rx-stage-%d", int(s.Stage))
}

// TxStage enumerates the kinds of transmitter stages.
type TxStage int

const (
	// TxIdle means nothing is being sent.
	TxIdle TxStage = iota
	// TxSendingStart means the start bit is on the line.
	TxSendingStart
	// TxSendingBit means a data bit is on the line, see TxState.Bit.
	TxSendingBit
	// TxSendingStop means the stop bit is on the line.
	TxSendingStop
)

// TxState is a transmitter stage. Bit is only meaningful for TxSendingBit.
type TxState struct {
	Stage TxStage
	Bit   int
}

// Transmitter stages usable as values.
var (
	TxIdleState = TxState{Stage: TxIdle}
	TxStart     = TxState{Stage: TxSendingStart}
	TxStop      = TxState{Stage: TxSendingStop}
)

// TxBit returns the stage sending data bit n.
func TxBit(n int) TxState {
	return TxState{Stage: TxSendingBit, Bit: n}
}

// Next returns the successor stage.
// Idle, Start, Bit 0..7, Stop, then back to Idle.
func (s TxState) Next() TxState {
	switch s.Stage {
	case TxIdle:
		return TxStart
	case TxSendingStart:
		return TxBit(0)
	case TxSendingBit:
		if s.Bit+1 < DataBits {
			return TxBit(s.Bit + 1)
		}
		return TxStop
	}
	return TxIdleState
}

// IsIdle indicates no frame is being sent.
func (s TxState) IsIdle() bool {
	return s.Stage == TxIdle
}

// IsLastBit indicates the last data bit is on the line.
func (s TxState) IsLastBit() bool {
	return s.Stage == TxSendingBit && s.Bit == DataBits-1
}

// String implements fmt.Stringer.
func (s TxState) String() string {
	switch s.Stage {
	case TxIdle:
		return "idle"
	case TxSendingStart:
		return "sending-start"
	case TxSendingBit:
		return fmt.Sprintf("sending-bit-%d", s.Bit)
	case TxSendingStop:
		return "sending-stop"
	}
	return fmt.Sprintf("tx-stage-%d", int(s.Stage))
}
