package status

import (
	"context"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	fx "github.com/robotalks/tictac.go/pkg/framework"
	"github.com/robotalks/tictac.go/pkg/game"
	"github.com/robotalks/tictac.go/pkg/link/mqtt"
)

// PubSub is the part of mqtt.Broker used for publishing.
type PubSub interface {
	PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token
}

// Publisher publishes the latest board status, retained, on the status
// topic of the board. Statuses not yet published are replaced by newer ones.
type Publisher struct {
	PubSub PubSub
	ID     string

	statusCh chan *BoardStatus
}

// NewPublisher creates a Publisher.
func NewPublisher(ps PubSub, id string) *Publisher {
	return &Publisher{PubSub: ps, ID: id, statusCh: make(chan *BoardStatus, 1)}
}

// Name implements Named.
func (p *Publisher) Name() string {
	return "status"
}

// BoardChanged implements game.Observer. It never blocks.
func (p *Publisher) BoardChanged(b game.Board) {
	s := FromBoard(p.ID, b, time.Now())
	for {
		select {
		case p.statusCh <- s:
			return
		default:
		}
		select {
		case <-p.statusCh:
		default:
		}
	}
}

// Run implements Runnable.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s := <-p.statusCh:
			if err := p.publish(s); err != nil {
				glog.Warningf("publish status: %v", err)
			}
		}
	}
}

func (p *Publisher) publish(s *BoardStatus) error {
	data, err := s.Encode()
	if err != nil {
		return err
	}
	token := p.PubSub.PubWith(mqtt.StatusTopic(p.ID), data, 1, true)
	if !token.WaitTimeout(5 * time.Second) {
		return context.DeadlineExceeded
	}
	return token.Error()
}

// AddToLoop implements LoopAdder.
func (p *Publisher) AddToLoop(l *fx.Loop) {
	l.AddRunnable(p)
}
