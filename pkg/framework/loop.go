package framework

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/golang/glog"
)

// Loop is the single consumer of all queues. Producers run as Runnables
// in their own goroutines and only communicate through queues; controllers
// run serially in loop context, ordered by priority level.
type Loop struct {
	Interval time.Duration

	controllers [PriorityLevels][]Controller
	runners     []Runnable
	queues      []*Queue

	wakeUpCh chan struct{}

	idleLock    sync.Mutex
	idleWaiters []chan struct{}
}

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

type loopIteration struct {
	*Loop
	ctx           context.Context
	time          time.Time
	priorityLevel int
}

var (
	loopCtxKey = &Loop{}
)

// DefaultInterval is the default interval between iterations when
// nothing wakes the loop up.
const DefaultInterval = 100 * time.Millisecond

// LoopCtlFrom gets LoopControl from context.
func LoopCtlFrom(ctx context.Context) LoopControl {
	return ctx.Value(loopCtxKey).(LoopControl)
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{
		Interval: DefaultInterval,
		wakeUpCh: make(chan struct{}, 1),
	}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController registers controllers to the loop.
func (l *Loop) AddController(priorityLevel int, ctls ...Controller) *Loop {
	l.controllers[priorityLevel] = append(l.controllers[priorityLevel], ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds Runnable implementions.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// NewQueue creates a Queue which wakes up this loop when a message is posted.
func (l *Loop) NewQueue(name string, size int) *Queue {
	q := NewQueue(name, size)
	l.AttachQueue(q)
	return q
}

// AttachQueue makes q wake up this loop. It must be called before Run.
func (l *Loop) AttachQueue(q *Queue) {
	q.wakeUp = l.TriggerNext
	l.queues = append(l.queues, q)
}

// Run implements Runnable.
func (l *Loop) Run(ctx context.Context) error {
	if l.wakeUpCh == nil {
		l.wakeUpCh = make(chan struct{}, 1)
	}

	runCtx, cancel := context.WithCancel(ctx)
	runner := NewRunnerWith(context.WithValue(runCtx, loopCtxKey, LoopControl(l)))
	runner.Go(l.runners...)
	defer runner.Wait()
	defer cancel()

	interval := l.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-runner.errCh:
			runner.pending--
			if err == nil || err == context.Canceled {
				continue
			}
			// a failed producer (e.g. a broken link) stops the loop.
			return err
		case <-ticker.C:
			l.RunIteration(ctx)
		case <-l.wakeUpCh:
			l.RunIteration(ctx)
		}
	}
}

// RunOrFail is intended to be used in main to simply run the loop.
func (l *Loop) RunOrFail(ctx context.Context) {
	if err := l.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalln(err)
	}
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

// RunIteration executes all controllers once, in priority order.
func (l *Loop) RunIteration(ctx context.Context) {
	iter := &loopIteration{Loop: l, time: time.Now()}
	iter.ctx = context.WithValue(ctx, loopCtxKey, LoopControl(l))
	for i := 0; i < PriorityLevels; i++ {
		iter.priorityLevel = i
		for _, ctl := range l.controllers[i] {
			if err := ctl.Control(iter); err != nil {
				glog.Errorf("controller error: %v", err)
			}
		}
	}
	for _, q := range l.queues {
		if q.Len() > 0 {
			// more work pending, don't wait for the next tick.
			l.TriggerNext()
			return
		}
	}
	l.releaseIdle()
}

// WaitIdle blocks until an iteration completes with all attached queues
// drained. Messages posted before the call are handled by then.
func (l *Loop) WaitIdle(ctx context.Context) error {
	ch := make(chan struct{})
	l.idleLock.Lock()
	l.idleWaiters = append(l.idleWaiters, ch)
	l.idleLock.Unlock()
	l.TriggerNext()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) releaseIdle() {
	l.idleLock.Lock()
	waiters := l.idleWaiters
	l.idleWaiters = nil
	l.idleLock.Unlock()
	for _, ch := range waiters {
		close(ch)
	}
}

func (t *loopIteration) Context() context.Context {
	return t.ctx
}

func (t *loopIteration) Time() time.Time {
	return t.time
}

func (t *loopIteration) PriorityLevel() int {
	return t.priorityLevel
}
