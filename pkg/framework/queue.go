package framework

import (
	"context"

	"github.com/golang/glog"
)

// Queue is a bounded event queue drained by a single consumer (the loop).
// Any number of goroutines may post, messages from one producer keep
// their order. Posting a message wakes up the loop.
type Queue struct {
	name   string
	ch     chan Message
	wakeUp func()
}

// NewQueue creates a standalone Queue holding at most size messages.
func NewQueue(name string, size int) *Queue {
	if size <= 0 {
		size = 1
	}
	return &Queue{name: name, ch: make(chan Message, size)}
}

// Name implements Named.
func (q *Queue) Name() string {
	return q.name
}

// Len returns the number of pending messages.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Cap returns the capacity of the queue.
func (q *Queue) Cap() int {
	return cap(q.ch)
}

// Post enqueues msg without blocking. It returns false if the queue is
// full and msg has been dropped.
func (q *Queue) Post(msg Message) bool {
	select {
	case q.ch <- msg:
		q.notify()
		return true
	default:
		glog.V(2).Infof("queue %s full, dropped %v", q.name, msg)
		return false
	}
}

// PostWait enqueues msg and blocks until there is room or ctx is done.
func (q *Queue) PostWait(ctx context.Context, msg Message) error {
	select {
	case q.ch <- msg:
		q.notify()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Take dequeues one message without blocking.
func (q *Queue) Take() (Message, bool) {
	select {
	case msg := <-q.ch:
		return msg, true
	default:
		return nil, false
	}
}

func (q *Queue) notify() {
	if fn := q.wakeUp; fn != nil {
		fn()
	}
}
