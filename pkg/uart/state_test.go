package uart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRxStateSequence(t *testing.T) {
	expected := []string{
		"confirming-start",
		"receiving-bit-0", "receiving-bit-1", "receiving-bit-2", "receiving-bit-3",
		"receiving-bit-4", "receiving-bit-5", "receiving-bit-6", "receiving-bit-7",
		"reading-stop",
		"waiting-for-start",
	}
	s := RxIdle
	for _, name := range expected {
		s = s.Next()
		require.Equal(t, name, s.String())
	}
	require.True(t, s.IsIdle())
	require.Equal(t, RxIdle, s)
}

func TestTxStateSequence(t *testing.T) {
	expected := []string{
		"sending-start",
		"sending-bit-0", "sending-bit-1", "sending-bit-2", "sending-bit-3",
		"sending-bit-4", "sending-bit-5", "sending-bit-6", "sending-bit-7",
		"sending-stop",
		"idle",
	}
	s := TxIdleState
	var lastBits int
	for _, name := range expected {
		s = s.Next()
		require.Equal(t, name, s.String())
		if s.IsLastBit() {
			lastBits++
			require.Equal(t, TxBit(DataBits-1), s)
		}
	}
	require.Equal(t, 1, lastBits)
	require.True(t, s.IsIdle())
}

func TestReceiverIgnoresEdgesMidFrame(t *testing.T) {
	hw := &stubHardware{rx: true}
	l := NewLink(hw)
	hw.rx = false
	l.OnPinChanged()
	require.Equal(t, RxConfirming, l.rx.state)
	l.OnTick()
	l.OnTick()
	require.Equal(t, 2, l.rx.counter)
	l.OnPinChanged()
	require.Equal(t, RxConfirming, l.rx.state)
	require.Equal(t, 2, l.rx.counter)
	require.Equal(t, 1, hw.timerStarts)
}

type stubHardware struct {
	rx          bool
	timerStarts int
}

func (h *stubHardware) SampleRx() bool { return h.rx }
func (h *stubHardware) SetTx(bool)     {}
func (h *stubHardware) StartTimer()    { h.timerStarts++ }
func (h *stubHardware) StopTimer()     {}
func (h *stubHardware) StartPinWatch() {}
func (h *stubHardware) StopPinWatch()  {}
