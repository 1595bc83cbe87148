// Package env assembles a board from configuration.
package env

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/tictac.go/pkg/device"
	"github.com/robotalks/tictac.go/pkg/device/see"
	"github.com/robotalks/tictac.go/pkg/device/term"
	fx "github.com/robotalks/tictac.go/pkg/framework"
	"github.com/robotalks/tictac.go/pkg/game"
	linkenv "github.com/robotalks/tictac.go/pkg/link/env"
	"github.com/robotalks/tictac.go/pkg/link/mqtt"
	"github.com/robotalks/tictac.go/pkg/peer"
	"github.com/robotalks/tictac.go/pkg/status"
)

// Displays
const (
	DisplayTerm = "term"
	DisplaySee  = "see"
	DisplayNone = "none"
)

// Config provides the options of a board.
type Config struct {
	Link *linkenv.Config
	// Display is one of term, see, none.
	Display string
	// Bell rings the terminal bell for tones.
	Bell bool
	// ResultHold is how long the result is shown before reset.
	ResultHold time.Duration
	// StatusURL is the MQTT broker to publish status, empty to disable.
	// e.g. mqtt://host:port/topic-prefix/
	StatusURL string
}

var defaultConfig = Config{
	Display:    DisplayTerm,
	ResultHold: game.DefaultResultHold,
}

func init() {
	if val := os.Getenv("TICTAC_STATUS_URL"); val != "" {
		defaultConfig.StatusURL = val
	}
	if val := os.Getenv("TICTAC_DISPLAY"); val != "" {
		defaultConfig.Display = val
	}
}

// SetupFlags sets up command line flags, including the link flags.
func SetupFlags() {
	linkenv.SetupFlags()
	flag.StringVar(&defaultConfig.Display, "display", defaultConfig.Display, "Display: term, see or none.")
	flag.BoolVar(&defaultConfig.Bell, "bell", defaultConfig.Bell, "Ring terminal bell for tones.")
	flag.DurationVar(&defaultConfig.ResultHold, "result-hold", defaultConfig.ResultHold, "Time to show the result before reset.")
	flag.StringVar(&defaultConfig.StatusURL, "status", defaultConfig.StatusURL, "MQTT broker URL to publish board status.")
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	conf.Link = linkenv.NewConfig()
	return &conf
}

// Board is an assembled board ready to run.
type Board struct {
	ID      string
	Loop    *fx.Loop
	Machine *game.Machine
	Link    *peer.Link
	Buttons *device.Buttons
	// Screen is set when the display is a terminal.
	Screen *term.Screen
}

// BoardID returns the configured ID, or one derived from the machine.
func (c *Config) BoardID() (string, error) {
	if c.Link.ID != "" {
		return c.Link.ID, nil
	}
	return MachineID()
}

// NewBoard opens the link and assembles the board.
func (c *Config) NewBoard(ctx context.Context) (*Board, error) {
	id, err := c.BoardID()
	if err != nil {
		return nil, fmt.Errorf("board ID: %v", err)
	}
	c.Link.ID = id
	rw, err := c.Link.Open(ctx)
	if err != nil {
		return nil, err
	}
	b, err := c.Assemble(id, rw)
	if err != nil {
		if closer, ok := rw.(io.Closer); ok {
			closer.Close()
		}
		return nil, err
	}
	return b, nil
}

// MustNewBoard creates the board and fails on error.
func (c *Config) MustNewBoard(ctx context.Context) *Board {
	b, err := c.NewBoard(ctx)
	if err != nil {
		log.Fatalln(err)
	}
	return b
}

// Assemble builds the board on an opened link.
func (c *Config) Assemble(id string, rw peer.FrameReadWriter) (*Board, error) {
	b := &Board{
		ID:   id,
		Loop: fx.NewLoop(),
		Link: peer.NewLink(rw),
	}
	b.Machine = game.NewMachine(b.Link)
	b.Machine.ResultHold = c.ResultHold
	b.Loop.Add(b.Machine)
	b.Link.Handler = peer.PostTo(b.Machine.Inbound)
	b.Loop.Add(b.Link)
	b.Buttons = device.NewButtons(b.Machine.Input)

	switch c.Display {
	case DisplayTerm:
		b.Screen = term.NewScreen(os.Stdout)
		b.Screen.Bell = c.Bell
		b.Machine.Display, b.Machine.Indicator = b.Screen, b.Screen
		b.Machine.Sound = device.NewMelody(b.Screen)
	case DisplaySee:
		adapter := see.NewConfig().NewAdapter()
		b.Machine.Display, b.Machine.Indicator = adapter, adapter
		b.Loop.Add(adapter)
	case DisplayNone, "":
	default:
		return nil, fmt.Errorf("unknown display %q", c.Display)
	}

	if c.StatusURL != "" {
		broker, err := mqtt.NewBrokerFromURL(c.StatusURL)
		if err != nil {
			return nil, fmt.Errorf("invalid status URL: %v", err)
		}
		// connects in background, status is retained once connected.
		go func() {
			if err := broker.Connect(); err != nil {
				glog.Errorf("status broker: %v", err)
			}
		}()
		pub := status.NewPublisher(broker, id)
		b.Machine.Observers = append(b.Machine.Observers, pub)
		b.Loop.Add(pub)
		b.Loop.AddRunnable(fx.NamedRun("status-broker", fx.RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			broker.Close()
			return ctx.Err()
		})))
	}
	glog.Infof("board %s ready", id)
	return b, nil
}

// Run runs the board until ctx is done or the link fails.
func (b *Board) Run(ctx context.Context) error {
	return b.Loop.Run(ctx)
}
