package sim

// Pair wires two harnesses as a null-modem link: the TX line of each one
// is the RX line of the other.
type Pair struct {
	A, B *Harness
}

// NewPair creates a Pair of freshly reset harnesses.
func NewPair() *Pair {
	return &Pair{A: NewHarness(), B: NewHarness()}
}

// Tick advances both sides n ticks. Within a tick, TX levels are
// propagated before the tick is delivered, so a level driven on tick t
// is seen by the peer on tick t+1.
func (p *Pair) Tick(n int) *Pair {
	for i := 0; i < n; i++ {
		p.B.SetRx(p.A.HW.Tx)
		p.A.SetRx(p.B.HW.Tx)
		p.A.Tick(1)
		p.B.Tick(1)
	}
	return p
}
