package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingController struct {
	name  string
	order *[]string
}

func (c *recordingController) Control(cc ControlContext) error {
	*c.order = append(*c.order, c.name)
	return nil
}

func TestLoopPriorityOrder(t *testing.T) {
	var order []string
	l := NewLoop()
	l.AddController(PrLvPostProc, &recordingController{name: "post", order: &order})
	l.AddController(PrLvControl, &recordingController{name: "control", order: &order})
	l.AddController(PrLvSetup, &recordingController{name: "setup", order: &order})
	l.RunIteration(context.Background())
	require.Equal(t, []string{"setup", "control", "post"}, order)
}

func TestLoopWakesUpOnPost(t *testing.T) {
	l := NewLoop()
	l.Interval = time.Hour
	q := l.NewQueue("events", 4)
	gotCh := make(chan Message, 4)
	l.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		if msg, ok := q.Take(); ok {
			gotCh <- msg
		}
		return nil
	}))
	l.AddRunnable(RunFunc(func(ctx context.Context) error {
		q.Post("a")
		q.Post("b")
		<-ctx.Done()
		return ctx.Err()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	doneCh := make(chan error, 1)
	go func() { doneCh <- l.Run(ctx) }()

	for _, expected := range []string{"a", "b"} {
		select {
		case msg := <-gotCh:
			require.Equal(t, expected, msg)
		case <-time.After(time.Second):
			t.Fatalf("message %q not processed", expected)
		}
	}
	cancel()
	require.Equal(t, context.Canceled, <-doneCh)
}

func TestLoopStopsOnRunnableError(t *testing.T) {
	errBroken := errors.New("broken")
	l := NewLoop()
	l.AddRunnable(RunFunc(func(ctx context.Context) error {
		return errBroken
	}))
	l.AddRunnable(RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	select {
	case err := <-runAsync(l):
		require.Equal(t, errBroken, err)
	case <-time.After(time.Second):
		t.Fatal("loop didn't stop")
	}
}

func runAsync(l *Loop) <-chan error {
	ch := make(chan error, 1)
	go func() { ch <- l.Run(context.Background()) }()
	return ch
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())
	e1, e2 := errors.New("e1"), errors.New("e2")
	require.Equal(t, "e1", (&AggregatedError{}).Add(e1).Aggregate().Error())
	require.Equal(t, "multiple errors:\n  e1\n  e2", errs.Add(e1, nil, e2).Aggregate().Error())
}

func TestRunWithContextCloser(t *testing.T) {
	closer := &testCloser{ch: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunWithContextCloser(ctx, closer, func() error {
		<-closer.ch
		return errors.New("closed")
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 1, closer.count)
}

type testCloser struct {
	ch    chan struct{}
	count int
}

func (c *testCloser) Close() error {
	if c.count == 0 {
		close(c.ch)
	}
	c.count++
	return nil
}

func TestLoopWaitIdle(t *testing.T) {
	l := NewLoop()
	l.Interval = time.Hour
	q := l.NewQueue("q", 4)
	var handled []Message
	l.AddController(PrLvControl, ControlFunc(func(ControlContext) error {
		if msg, ok := q.Take(); ok {
			handled = append(handled, msg)
		}
		return nil
	}))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	for i := 0; i < 3; i++ {
		require.True(t, q.Post(i))
	}
	waitCtx, waitCancel := context.WithTimeout(ctx, time.Second)
	defer waitCancel()
	require.NoError(t, l.WaitIdle(waitCtx))
	require.Equal(t, []Message{0, 1, 2}, handled)
}

func TestLoopWaitIdleCanceled(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Equal(t, context.Canceled, l.WaitIdle(ctx))
}

func TestRunnerWait(t *testing.T) {
	errBroken := errors.New("broken")
	ctx, cancel := context.WithCancel(context.Background())
	runner := NewRunnerWith(ctx).Go(
		NamedRun("broken", RunFunc(func(context.Context) error { return errBroken })),
		NamedRun("canceled", RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})),
		RunFunc(func(context.Context) error { return nil }),
	)
	require.Len(t, runner.Runners, 3)
	cancel()
	err := runner.Wait()
	require.Error(t, err)
	require.Equal(t, []error{errBroken}, err.(*AggregatedError).Errors)
	require.NoError(t, NewRunner().Wait())
}
