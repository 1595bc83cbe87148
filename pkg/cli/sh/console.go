package sh

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/robotalks/tictac.go/pkg/board/env"
	"github.com/robotalks/tictac.go/pkg/device"
	fx "github.com/robotalks/tictac.go/pkg/framework"
	"github.com/robotalks/tictac.go/pkg/game"
	"github.com/robotalks/tictac.go/pkg/peer"
)

// Console operates a board from commands. It only talks to the loop
// through queues and the board snapshots it observes.
type Console struct {
	Buttons *device.Buttons
	Inbound *fx.Queue
	Link    *peer.Link

	lock   sync.Mutex
	latest game.Board
}

// NewConsole creates a Console on an assembled board.
func NewConsole(b *env.Board) *Console {
	return &Console{
		Buttons: b.Buttons,
		Inbound: b.Machine.Inbound,
		Link:    b.Link,
	}
}

// BoardChanged implements game.Observer.
func (c *Console) BoardChanged(b game.Board) {
	c.lock.Lock()
	c.latest = b
	c.lock.Unlock()
}

// Board returns the latest observed board.
func (c *Console) Board() game.Board {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.latest
}

// Press presses a button.
func (c *Console) Press(btn device.Button) error {
	if !c.Buttons.Press(btn) {
		return fmt.Errorf("%s dropped", btn)
	}
	return nil
}

// Inject feeds a frame as if it was received from the peer.
func (c *Console) Inject(ctx context.Context, frame string) error {
	msg, err := peer.Decode([]byte(frame))
	if err != nil {
		return err
	}
	return c.Inbound.PostWait(ctx, msg)
}

// SendRaw sends a frame to the peer without touching the board.
func (c *Console) SendRaw(frame string) error {
	return c.Link.SendFrame([]byte(frame))
}

// Describe prints the latest board.
func (c *Console) Describe() string {
	b := c.Board()
	var sb strings.Builder
	fmt.Fprintf(&sb, "phase: %s\n", b.Phase)
	if b.Player.IsMarker() {
		fmt.Fprintf(&sb, "player: %s\n", b.Player)
	}
	fmt.Fprintf(&sb, "cursor: (%d, %d)\n", b.Cursor.X, b.Cursor.Y)
	fmt.Fprintf(&sb, "my turn: %v\n", b.MyTurn)
	sb.WriteString(b.Grid.String() + "\n")
	return sb.String()
}
