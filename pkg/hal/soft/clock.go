package soft

import (
	"context"
	"time"

	"github.com/golang/glog"
)

// Clock is the tick source shared by a set of boards. Boards on the same
// clock never drift apart, even when the host delays or drops ticks.
type Clock struct {
	Interval time.Duration

	boards []*Board
}

// NewClock creates a Clock.
func NewClock(interval time.Duration) *Clock {
	return &Clock{Interval: interval}
}

// Add adds boards to be driven.
func (c *Clock) Add(boards ...*Board) *Clock {
	c.boards = append(c.boards, boards...)
	return c
}

// Step advances all boards one tick. Timer interrupts are delivered
// first, then pin changes caused by them or by foreground code.
func (c *Clock) Step() {
	for _, b := range c.boards {
		b.tick()
	}
	for _, b := range c.boards {
		b.pollEdge()
	}
}

// Run implements framework.Runnable.
func (c *Clock) Run(ctx context.Context) error {
	interval := c.Interval
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	glog.V(2).Infof("clock started, tick %v, %d boards", interval, len(c.boards))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Step()
		}
	}
}
