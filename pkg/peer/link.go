package peer

import (
	"context"
	"io"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/tictac.go/pkg/framework"
)

// Link is the bi-directional message channel to the peer board.
type Link struct {
	ReadWriter FrameReadWriter
	Handler    MessageHandler

	sendLock sync.Mutex
}

// NewLink creates a Link with given FrameReadWriter.
func NewLink(rw FrameReadWriter) *Link {
	return &Link{ReadWriter: rw}
}

// Name implements Named.
func (l *Link) Name() string {
	return "link"
}

// Send encodes msg and blocks until the transport accepted it.
func (l *Link) Send(msg Message) error {
	return l.SendFrame(Encode(msg))
}

// SendFrame sends a raw frame payload, bypassing the codec.
func (l *Link) SendFrame(frame []byte) error {
	l.sendLock.Lock()
	defer l.sendLock.Unlock()
	glog.V(2).Infof("TX %q", frame)
	return l.ReadWriter.WriteFrame(frame)
}

// Run implements Runnable. Frames which fail to decode are dropped.
func (l *Link) Run(ctx context.Context) error {
	return fx.RunWithContextCloser(ctx, l, func() error {
		for {
			frame, err := l.ReadWriter.ReadFrame()
			if err != nil {
				return err
			}
			glog.V(2).Infof("RX %q", frame)
			msg, err := Decode(frame)
			if err != nil {
				glog.V(1).Infof("drop frame %q: %v", frame, err)
				continue
			}
			if h := l.Handler; h != nil {
				if err = h.HandleMessage(ctx, msg); err != nil {
					return err
				}
			}
		}
	})
}

// Close implements io.Closer.
func (l *Link) Close() error {
	if closer, ok := l.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// AddToLoop implements LoopAdder.
func (l *Link) AddToLoop(loop *fx.Loop) {
	if adder, ok := l.ReadWriter.(fx.LoopAdder); ok {
		loop.Add(adder)
	} else if runnable, ok := l.ReadWriter.(fx.Runnable); ok {
		loop.AddRunnable(runnable)
	}
	loop.AddRunnable(l)
}

// PostTo creates a MessageHandler which queues messages for the loop.
// It blocks while the queue is full so no inbound message is lost.
func PostTo(q *fx.Queue) MessageHandler {
	return HandleMessageFunc(func(ctx context.Context, msg Message) error {
		return q.PostWait(ctx, msg)
	})
}
