package uart_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/softuart/pkg/sim"
	"github.com/robotalks/softuart/pkg/uart"
)

func newHarness(t *testing.T) *sim.Harness {
	h := sim.NewHarness()
	h.Check = sim.CheckArbiter
	require.True(t, h.HW.Tx, "tx up after reset")
	require.False(t, h.HW.TimerOn, "timer stopped after reset")
	require.True(t, h.HW.Watching, "watching after reset")
	return h
}

func requireNoArbiterErrors(t *testing.T, h *sim.Harness) {
	errs := h.Errors()
	if len(errs) > 10 {
		errs = errs[:10]
	}
	require.Empty(t, errs)
}

func receiveBit(t *testing.T, h *sim.Harness, level bool) {
	h.HW.Rx = level
	h.HW.ResetSamples()
	h.Tick(uart.TicksPerBit - 1)
	require.Zero(t, h.HW.Samples, "rx sampled before bit center")
	h.Tick(1)
	require.Equal(t, 1, h.HW.Samples, "rx not sampled at bit center")
}

func TestReceiveEveryByte(t *testing.T) {
	h := newHarness(t)
	for v := 0; v < 0x100; v++ {
		t.Run(fmt.Sprintf("%02x", v), func(t *testing.T) {
			h.Reset()
			h.SetRx(false)
			require.Equal(t, 1, h.HW.ResetSamples(), "rx sampled by pin change")
			require.False(t, h.HW.Watching)
			require.True(t, h.HW.TimerOn)

			h.Tick(uart.StartConfirmTicks)
			require.Equal(t, uart.StartConfirmTicks, h.HW.Samples)
			require.Equal(t, uart.RxBit(0), h.Link.Receiver().State())

			b := byte(v)
			for i := 0; i < uart.DataBits; i++ {
				require.Empty(t, h.Received)
				receiveBit(t, h, b&1 != 0)
				b >>= 1
			}
			require.Equal(t, []byte{byte(v)}, h.Received)
			require.Equal(t, uart.RxStop, h.Link.Receiver().State())

			h.HW.Rx = true
			h.Tick(uart.TicksPerBit - 1)
			require.True(t, h.HW.TimerOn)
			h.Tick(1)
			require.False(t, h.HW.TimerOn)
			require.True(t, h.HW.Watching)
			require.Equal(t, []byte{byte(v)}, h.Received)
			requireNoArbiterErrors(t, h)
		})
	}
}

func TestSendEveryByte(t *testing.T) {
	h := newHarness(t)
	for v := 0; v < 0x100; v++ {
		t.Run(fmt.Sprintf("%02x", v), func(t *testing.T) {
			h.Reset()
			h.SendByte(byte(v))
			require.True(t, h.HW.TimerOn)
			require.False(t, h.HW.Watching)
			require.False(t, h.HW.Tx, "start bit")

			for i := 0; i < uart.TicksPerBit-1; i++ {
				h.Tick(1)
				require.False(t, h.HW.Tx, "start bit")
			}
			b := byte(v)
			for i := 0; i < uart.DataBits; i++ {
				level := b&1 != 0
				b >>= 1
				for n := 0; n < uart.TicksPerBit; n++ {
					h.Tick(1)
					require.Equal(t, level, h.HW.Tx, "bit %d tick %d", i, n)
				}
			}
			for i := 0; i < uart.TicksPerBit; i++ {
				h.Tick(1)
				require.True(t, h.HW.Tx, "stop bit")
				require.True(t, h.HW.TimerOn)
				require.Zero(t, h.SentCount)
			}
			h.Tick(1)
			require.Equal(t, 1, h.SentCount)
			require.False(t, h.HW.TimerOn)
			require.True(t, h.HW.Watching)
			require.Equal(t, 1, h.HW.TimerStarts)
			requireNoArbiterErrors(t, h)
		})
	}
}

func TestSendInterleavedWithReceive(t *testing.T) {
	h := newHarness(t)
	pending := []byte{0x35, 0xf1}
	var calls int
	sendNext := func(h *sim.Harness) {
		calls++
		if len(pending) > 0 {
			h.SendByte(pending[0])
			pending = pending[1:]
		}
	}
	h.OnSent = sendNext

	sendNext(h)
	require.True(t, h.HW.TimerOn)
	require.False(t, h.HW.Watching)
	require.False(t, h.HW.Tx)

	h.Tick(16)
	h.HW.Rx = false
	h.Tick(8)

	receive := byte(0xd4)
	for i := 0; i < uart.DataBits; i++ {
		h.HW.Rx = receive&1 != 0
		receive >>= 1
		h.Tick(8)
	}
	require.Equal(t, []byte{0xd4}, h.Received)

	for i := 0; i < 71; i++ {
		h.Tick(1)
		require.True(t, h.HW.TimerOn, "tick %d", h.Ticks)
		require.False(t, h.HW.Watching, "tick %d", h.Ticks)
	}
	h.Tick(1)
	require.False(t, h.HW.TimerOn)
	require.True(t, h.HW.Watching)

	require.Equal(t, 3, calls)
	require.Equal(t, 2, h.SentCount)
	require.Equal(t, 1, h.HW.TimerStarts)
	requireNoArbiterErrors(t, h)
}

func TestGlitchRejected(t *testing.T) {
	for ticks := 0; ticks < uart.StartConfirmTicks; ticks++ {
		t.Run(fmt.Sprintf("low for %d ticks", ticks), func(t *testing.T) {
			h := newHarness(t)
			h.SetRx(false).Tick(ticks)
			require.Equal(t, uart.RxConfirming, h.Link.Receiver().State())
			h.SetRx(true).Tick(1)
			require.Equal(t, uart.RxIdle, h.Link.Receiver().State())
			require.False(t, h.HW.TimerOn)
			require.True(t, h.HW.Watching)
			h.Tick(2 * uart.TicksPerBit * uart.DataBits)
			require.Empty(t, h.Received)
			requireNoArbiterErrors(t, h)
		})
	}
}

func TestGlitchWhileSending(t *testing.T) {
	h := newHarness(t)
	h.SendByte(0x55)
	h.Tick(3)
	h.SetRx(false).Tick(1)
	require.Equal(t, uart.RxConfirming, h.Link.Receiver().State(), "armed by tick")
	h.Tick(2)
	h.SetRx(true).Tick(1)
	require.Equal(t, uart.RxIdle, h.Link.Receiver().State())
	require.True(t, h.HW.TimerOn, "transmitter still busy")
	h.Tick(10 * uart.TicksPerBit)
	require.Empty(t, h.Received)
	require.Equal(t, 1, h.SentCount)
	require.False(t, h.HW.TimerOn)
	requireNoArbiterErrors(t, h)
}

func TestSendWhileBusyIgnored(t *testing.T) {
	h := newHarness(t)
	h.SendByte(0xa5)
	h.Tick(uart.TicksPerBit + 2)
	before := h.Link.Status()
	require.Equal(t, uart.TxBit(0), before.Tx)
	require.Equal(t, 2, before.TxCounter)
	require.True(t, h.Link.Busy())

	h.SendByte(0x00)
	require.Equal(t, before, h.Link.Status())
	require.Equal(t, 1, h.HW.TimerStarts)

	var bits byte
	for i := 0; i < uart.DataBits; i++ {
		if h.HW.Tx {
			bits |= 1 << uint(i)
		}
		h.Tick(uart.TicksPerBit)
	}
	require.Equal(t, byte(0xa5), bits)
	h.Tick(uart.TicksPerBit + 1)
	require.Equal(t, 1, h.SentCount)
	require.False(t, h.Link.Busy())
	requireNoArbiterErrors(t, h)
}

func TestReceiveWhileSending(t *testing.T) {
	h := newHarness(t)
	h.SendByte(0x0f)
	h.Tick(5)
	h.ClockIn(0x9c)
	require.Equal(t, []byte{0x9c}, h.Received)
	h.Tick(10 * uart.TicksPerBit)
	require.Equal(t, 1, h.SentCount)
	require.False(t, h.HW.TimerOn)
	require.True(t, h.HW.Watching)
	requireNoArbiterErrors(t, h)
}

func TestSendWhileReceiving(t *testing.T) {
	h := newHarness(t)
	h.SetRx(false).Tick(uart.StartConfirmTicks + 3)
	h.SendByte(0x81)
	require.Equal(t, 1, h.HW.TimerStarts, "timer already running for receiver")
	require.False(t, h.HW.Tx)
	h.HW.Rx = true
	h.Tick(10*uart.TicksPerBit - 1)
	require.True(t, h.HW.TimerOn)
	h.Tick(1)
	require.Equal(t, 1, h.SentCount)
	require.Equal(t, []byte{0xff}, h.Received)
	require.False(t, h.HW.TimerOn)
	requireNoArbiterErrors(t, h)
}

func TestStopBitNotValidated(t *testing.T) {
	h := newHarness(t)
	h.SetRx(false).Tick(uart.StartConfirmTicks)
	for i := 0; i < uart.DataBits; i++ {
		h.HW.Rx = i%2 == 0
		h.Tick(uart.TicksPerBit)
	}
	h.HW.Rx = false
	h.Tick(uart.TicksPerBit)
	require.Equal(t, []byte{0x55}, h.Received)
	require.Equal(t, uart.RxIdle, h.Link.Receiver().State())
}

func TestStrayTickWithRxLow(t *testing.T) {
	h := newHarness(t)
	h.HW.Rx = false
	h.Tick(1)
	require.Equal(t, uart.RxConfirming, h.Link.Receiver().State())
	require.True(t, h.HW.TimerOn)
	require.False(t, h.HW.Watching)
	requireNoArbiterErrors(t, h)
}

func TestResetAbortsFrames(t *testing.T) {
	h := newHarness(t)
	h.SendByte(0x00)
	h.SetRx(false).Tick(uart.StartConfirmTicks + uart.TicksPerBit)
	require.True(t, h.HW.TimerOn)
	require.False(t, h.HW.Tx)

	h.Link.Reset()
	st := h.Link.Status()
	assert.Equal(t, uart.RxIdle, st.Rx)
	assert.Equal(t, uart.TxIdleState, st.Tx)
	assert.Zero(t, st.RxCounter)
	assert.Zero(t, st.TxCounter)
	assert.False(t, h.HW.TimerOn)
	assert.True(t, h.HW.Watching)
	assert.True(t, h.HW.Tx)
	assert.Zero(t, h.SentCount)
	assert.Empty(t, h.Received)
}

func TestByteSentHandlerMaySendFromInsideTick(t *testing.T) {
	h := newHarness(t)
	remaining := 3
	h.OnSent = func(h *sim.Harness) {
		if remaining > 0 {
			remaining--
			h.SendByte(byte(remaining))
		}
	}
	h.SendByte(0xff)
	h.Tick(4 * 10 * uart.TicksPerBit)
	require.Equal(t, 4, h.SentCount)
	require.Equal(t, 1, h.HW.TimerStarts, "timer kept running across chained bytes")
	require.False(t, h.HW.TimerOn)
	requireNoArbiterErrors(t, h)
}

func TestArbiterRandomActivity(t *testing.T) {
	h := newHarness(t)
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 20000; i++ {
		switch rnd.Intn(40) {
		case 0:
			h.SendByte(byte(rnd.Intn(0x100)))
		case 1:
			h.SetRx(!h.HW.Rx)
		case 2:
			if rnd.Intn(50) == 0 {
				h.Link.Reset()
			}
		}
		h.Tick(1)
	}
	requireNoArbiterErrors(t, h)
}
