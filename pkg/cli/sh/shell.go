// Package sh provides an interactive console to play a board.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/tictac.go/pkg/board/env"
	"github.com/robotalks/tictac.go/pkg/device"
	fx "github.com/robotalks/tictac.go/pkg/framework"
	"github.com/robotalks/tictac.go/pkg/status"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell   *ishell.Shell
	Board   *env.Board
	Console *Console
}

const (
	shellKey      = "$shell"
	settleTimeout = 2 * time.Second
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&Btn1Cmd,
		&Btn2Cmd,
		&BoardCmd,
		&ScreenCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a shell operating board b.
func New(b *env.Board) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:   ishell.New(),
		Board:   b,
		Console: NewConsole(b),
	}
	b.Machine.Observers = append(b.Machine.Observers, s.Console)
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(b.ID + " > ")
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Run runs the board loop in background and the shell until it exits.
func (s *Shell) Run(ctx context.Context, args ...string) {
	ctx, cancel := context.WithCancel(ctx)
	runner := fx.NewRunnerWith(ctx).Go(fx.NamedRun("board", s.Board.Loop))
	defer func() {
		cancel()
		if err := runner.Wait(); err != nil {
			glog.Errorf("board stopped: %v", err)
		}
	}()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		s.settle(ctx)
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// settle lets the board handle what the commands posted before the
// loop is stopped.
func (s *Shell) settle(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, settleTimeout)
	defer cancel()
	if err := s.Board.Loop.WaitIdle(ctx); err != nil {
		glog.Warningf("board not settled: %v", err)
	}
}

// PrintBoard prints the latest observed board.
func (s *Shell) PrintBoard(c *ishell.Context) {
	if s.OutputJSON {
		out, err := json.Marshal(status.FromBoard(s.Board.ID, s.Console.Board(), time.Now()))
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Print(s.Console.Describe())
}

func pressCmd(btn device.Button) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if err := ShellFrom(c).Console.Press(btn); err != nil {
			c.Err(err)
		}
	}
}

var (
	// Btn1Cmd presses button 1.
	Btn1Cmd = ishell.Cmd{
		Name:    "btn1",
		Aliases: []string{"1", "next", "n"},
		Help:    "choose X, or move the cursor",
		Func:    pressCmd(device.Button1),
	}

	// Btn2Cmd presses button 2.
	Btn2Cmd = ishell.Cmd{
		Name:    "btn2",
		Aliases: []string{"2", "place", "p"},
		Help:    "choose O, or place the marker",
		Func:    pressCmd(device.Button2),
	}

	// BoardCmd prints the board state.
	BoardCmd = ishell.Cmd{
		Name:    "board",
		Aliases: []string{"b"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).PrintBoard(c)
		},
	}

	// ScreenCmd prints the terminal display.
	ScreenCmd = ishell.Cmd{
		Name:    "screen",
		Aliases: []string{"s"},
		Help:    "",
		Func: func(c *ishell.Context) {
			screen := ShellFrom(c).Board.Screen
			if screen == nil {
				c.Err(fmt.Errorf("no terminal display"))
				return
			}
			c.Print(screen.String())
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	ctx := context.Background()
	b := env.NewConfig().MustNewBoard(ctx)
	// the shell owns the terminal, the screen is printed on demand.
	if b.Screen != nil {
		b.Screen.Out = nil
	}
	New(b).Run(ctx, flag.Args()...)
}
