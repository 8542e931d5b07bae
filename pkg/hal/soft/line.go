package soft

import (
	"sync"
	"sync/atomic"
)

// Line is a virtual digital line.
type Line struct {
	level    int32
	lock     sync.Mutex
	watchers []chan<- struct{}
}

// NewLine creates a Line at the given level.
func NewLine(high bool) *Line {
	l := &Line{}
	if high {
		l.level = 1
	}
	return l
}

// Level gets the current level, true for high.
func (l *Line) Level() bool {
	return atomic.LoadInt32(&l.level) != 0
}

// Set drives the line. Watchers are notified when the level changes.
// Notifications do not block and coalesce while not consumed.
func (l *Line) Set(high bool) {
	var v int32
	if high {
		v = 1
	}
	if atomic.SwapInt32(&l.level, v) == v {
		return
	}
	l.lock.Lock()
	for _, ch := range l.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	l.lock.Unlock()
}

// Watch registers ch to be notified on level changes.
func (l *Line) Watch(ch chan<- struct{}) {
	l.lock.Lock()
	l.watchers = append(l.watchers, ch)
	l.lock.Unlock()
}
