package framework

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/golang/glog"
)

// ErrForcedExit is returned by Wait when a second stop signal arrives
// before all Runnables stopped.
var ErrForcedExit = errors.New("forced exit")

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string {
	return r.name
}

// NamedRun wraps a Runnable with a name.
func NamedRun(name string, runnable Runnable) Runnable {
	return &namedRunnable{name: name, Runnable: runnable}
}

// Runner runs a group of Runnables sharing one context. The first
// Runnable to stop, with or without error, cancels the others.
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc

	wg     sync.WaitGroup
	lock   sync.Mutex
	count  int
	errs   AggregatedError
	exitCh chan struct{}
	exit   sync.Once
}

// NewRunner creates a runner with a default background context.
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a runner canceled along with ctx.
func NewRunnerWith(ctx context.Context) *Runner {
	r := &Runner{exitCh: make(chan struct{})}
	r.ctx, r.cancel = context.WithCancel(ctx)
	return r
}

// HandleSignals stops the runner on SIGINT or SIGTERM. A second signal
// makes Wait return ErrForcedExit without waiting.
func (r *Runner) HandleSignals() *Runner {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		for n := 0; ; n++ {
			var sig os.Signal
			select {
			case sig = <-sigCh:
			case <-r.exitCh:
				return
			}
			if n > 0 {
				glog.Errorf("%v again, force exit", sig)
				r.forceExit()
				return
			}
			glog.Infof("%v, stopping", sig)
			r.cancel()
		}
	}()
	return r
}

// Go starts Runnables in the background.
func (r *Runner) Go(runners ...Runnable) *Runner {
	for _, runner := range runners {
		r.lock.Lock()
		name := strconv.Itoa(r.count)
		r.count++
		r.lock.Unlock()
		if named, ok := runner.(Named); ok {
			name = named.Name()
		}
		r.wg.Add(1)
		go r.run(runner, name)
	}
	return r
}

func (r *Runner) run(runner Runnable, name string) {
	defer r.wg.Done()
	glog.V(4).Infof("%s: started", name)
	err := runner.Run(r.ctx)
	glog.V(4).Infof("%s: stopped: %v", name, err)
	r.cancel()
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	r.lock.Lock()
	r.errs.Add(fmt.Errorf("%s: %v", name, err))
	r.lock.Unlock()
}

// Stop cancels all Runnables.
func (r *Runner) Stop() {
	r.cancel()
}

// Wait blocks until all Runnables stopped and returns their errors
// aggregated, context.Canceled is not counted.
func (r *Runner) Wait() error {
	doneCh := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(doneCh)
	}()
	select {
	case <-doneCh:
	case <-r.exitCh:
		return ErrForcedExit
	}
	r.exit.Do(func() { close(r.exitCh) })
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.errs.Aggregate()
}

func (r *Runner) forceExit() {
	r.exit.Do(func() { close(r.exitCh) })
}

// RunWithContextCancel adapts a blocking fn which doesn't accept a context.
// When ctx is done before fn returns, onCancel is called to unblock fn,
// and ctx.Err() is returned once fn returned.
func RunWithContextCancel(ctx context.Context, onCancel func(), fn func() error) error {
	resultCh := make(chan error, 1)
	go func() {
		resultCh <- fn()
	}()
	select {
	case err := <-resultCh:
		return err
	case <-ctx.Done():
	}
	if onCancel != nil {
		onCancel()
	}
	<-resultCh
	return ctx.Err()
}

// RunWithContext is RunWithContextCancel for a fn that returns by itself.
func RunWithContext(ctx context.Context, fn func() error) error {
	return RunWithContextCancel(ctx, nil, fn)
}

// RunWithContextCloser unblocks fn by closing closer on cancel. closer is
// closed exactly once, also when fn returns first.
func RunWithContextCloser(ctx context.Context, closer io.Closer, fn func() error) error {
	var once sync.Once
	closeOnce := func() {
		once.Do(func() {
			if err := closer.Close(); err != nil {
				glog.Warningf("close: %v", err)
			}
		})
	}
	defer closeOnce()
	return RunWithContextCancel(ctx, closeOnce, fn)
}
