package framework

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/golang/glog"
)

// NamedRun attaches a name to runnable, used in lifecycle logs.
func NamedRun(name string, runnable Runnable) Runnable {
	return &namedRunnable{Runnable: runnable, name: name}
}

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string {
	return r.name
}

// ErrForcedExit is returned by Wait when a second stop signal arrives.
var ErrForcedExit = errors.New("forced exit")

// Runner is a group of goroutines, one per Runnable, sharing a context.
// Wait collects their results.
type Runner struct {
	Context context.Context
	Runners []Runnable

	errCh   chan error
	exitCh  chan struct{}
	pending int
}

// NewRunner creates a Runner on context.Background().
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a Runner on ctx.
func NewRunnerWith(ctx context.Context) *Runner {
	return &Runner{
		Context: ctx,
		errCh:   make(chan error, 1),
		exitCh:  make(chan struct{}),
	}
}

// HandleSignals cancels the context on SIGINT or SIGTERM. A second
// signal makes Wait return ErrForcedExit without waiting any longer.
func (r *Runner) HandleSignals() *Runner {
	var cancel func()
	r.Context, cancel = context.WithCancel(r.Context)
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		glog.Infof("%v: stopping", sig)
		cancel()
		sig = <-sigCh
		glog.Errorf("%v again: exit now", sig)
		close(r.exitCh)
	}()
	return r
}

// Go starts runnables on the Runner's context.
func (r *Runner) Go(runnables ...Runnable) *Runner {
	return r.GoWith(r.Context, runnables...)
}

// GoWith starts runnables on ctx.
func (r *Runner) GoWith(ctx context.Context, runnables ...Runnable) *Runner {
	for _, runnable := range runnables {
		name := strconv.Itoa(len(r.Runners))
		if named, ok := runnable.(Named); ok {
			name = named.Name()
		}
		r.Runners = append(r.Runners, runnable)
		r.pending++
		go r.run(ctx, runnable, name)
	}
	return r
}

func (r *Runner) run(ctx context.Context, runnable Runnable, name string) {
	glog.V(4).Infof("%s: started", name)
	err := runnable.Run(ctx)
	glog.V(4).Infof("%s: stopped: %v", name, err)
	r.errCh <- err
}

// Wait blocks until every started Runnable returned. Cancellation is not
// reported as an error.
func (r *Runner) Wait() error {
	var errs AggregatedError
	for r.pending > 0 {
		select {
		case <-r.exitCh:
			return ErrForcedExit
		case err := <-r.errCh:
			r.pending--
			if err != context.Canceled {
				errs.Add(err)
			}
		}
	}
	return errs.Aggregate()
}

// RunWithContextCancel runs fn, which knows nothing about ctx. When ctx
// is done first, onCancel must make fn return, and context.Canceled is
// returned after it did.
func RunWithContextCancel(ctx context.Context, onCancel func(), fn func() error) error {
	doneCh := make(chan error, 1)
	go func() { doneCh <- fn() }()
	select {
	case err := <-doneCh:
		return err
	case <-ctx.Done():
	}
	if onCancel != nil {
		onCancel()
	}
	<-doneCh
	return context.Canceled
}

// RunWithContextCloser runs fn and closes closer exactly once, either to
// interrupt fn on cancel or after fn returned.
func RunWithContextCloser(ctx context.Context, closer io.Closer, fn func() error) error {
	closed := false
	err := RunWithContextCancel(ctx, func() {
		closed = true
		closer.Close()
	}, fn)
	if !closed {
		closer.Close()
	}
	return err
}
