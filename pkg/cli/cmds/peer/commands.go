// Package peer provides commands talking to the peer link directly.
package peer

import (
	"context"
	"fmt"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/tictac.go/pkg/cli/sh"
)

const injectTimeout = time.Second

func frameArg(c *ishell.Context) (string, bool) {
	if len(c.Args) != 1 {
		c.Err(fmt.Errorf("exactly one FRAME expected"))
		return "", false
	}
	return c.Args[0], true
}

var (
	// RawCmd handles a frame as if it was received from the peer.
	RawCmd = ishell.Cmd{
		Name:    "peer.raw",
		Aliases: []string{"raw"},
		Help:    "FRAME",
		Func: func(c *ishell.Context) {
			frame, ok := frameArg(c)
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), injectTimeout)
			defer cancel()
			if err := sh.ShellFrom(c).Console.Inject(ctx, frame); err != nil {
				c.Err(err)
			}
		},
	}

	// SendCmd sends a frame to the peer without touching the board.
	SendCmd = ishell.Cmd{
		Name:    "peer.send",
		Aliases: []string{"send"},
		Help:    "FRAME",
		Func: func(c *ishell.Context) {
			frame, ok := frameArg(c)
			if !ok {
				return
			}
			if err := sh.ShellFrom(c).Console.SendRaw(frame); err != nil {
				c.Err(err)
			}
		},
	}
)

func init() {
	sh.AddCmds(
		&RawCmd,
		&SendCmd,
	)
}
