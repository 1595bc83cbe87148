package device

import (
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/tictac.go/pkg/framework"
)

// DefaultDebounceInterval is how long a button stays disarmed after a press.
const DefaultDebounceInterval = 10 * time.Millisecond

// Debouncer suppresses retriggers of each button for Interval after an
// accepted press. The button re-arms once the interval expires.
type Debouncer struct {
	Interval time.Duration

	lock    sync.Mutex
	armedAt [NumButtons + 1]time.Time
}

// NewDebouncer creates a Debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{Interval: interval}
}

// Accept reports whether a press of b at now is a real press.
func (d *Debouncer) Accept(b Button, now time.Time) bool {
	if !b.IsValid() {
		return false
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	if now.Before(d.armedAt[b]) {
		return false
	}
	d.armedAt[b] = now.Add(d.Interval)
	return true
}

// Buttons turns raw button edges into debounced events on a queue.
// It is shared by all input backends.
type Buttons struct {
	Queue     *fx.Queue
	Debouncer *Debouncer
	Now       func() time.Time
}

// NewButtons creates Buttons posting to q with the default debounce interval.
func NewButtons(q *fx.Queue) *Buttons {
	return &Buttons{Queue: q, Debouncer: NewDebouncer(DefaultDebounceInterval), Now: time.Now}
}

// Press reports a raw press. It returns true if the press was queued.
// A press arriving while the previous one is still pending is dropped.
func (b *Buttons) Press(btn Button) bool {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	if b.Debouncer != nil && !b.Debouncer.Accept(btn, now()) {
		glog.V(2).Infof("%s bounced", btn)
		return false
	}
	return b.Queue.Post(btn)
}
