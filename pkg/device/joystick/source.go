package joystick

import (
	"context"
	"flag"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/tictac.go/pkg/device"
	fx "github.com/robotalks/tictac.go/pkg/framework"
)

// Config defines the joystick options.
type Config struct {
	// DeviceIndex selects /dev/input/jsN, -1 for auto detection.
	DeviceIndex int
	// Button1, Button2 are the joystick button indices of the board buttons.
	Button1 int
	Button2 int
}

var defaultConfig = Config{
	DeviceIndex: -1,
	Button1:     0,
	Button2:     1,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.DeviceIndex, "js-device", defaultConfig.DeviceIndex, "Joystick device index, -1 for auto detection.")
	flag.IntVar(&defaultConfig.Button1, "js-btn1", defaultConfig.Button1, "Joystick button used as button 1.")
	flag.IntVar(&defaultConfig.Button2, "js-btn2", defaultConfig.Button2, "Joystick button used as button 2.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// ReopenInterval is the delay before retrying to open the device.
const ReopenInterval = time.Second

// Source reads button presses from a joystick and reports them to
// Buttons. The device is reopened when it goes away.
type Source struct {
	Config  Config
	Buttons *device.Buttons
	// Open opens the device, defaults to Open/DetectAndOpen per config.
	Open func() (Device, error)
}

// NewSource creates a Source from the config.
func (c *Config) NewSource(buttons *device.Buttons) *Source {
	s := &Source{Config: *c, Buttons: buttons}
	s.Open = s.openDevice
	return s
}

// Name implements Named.
func (s *Source) Name() string {
	return "joystick"
}

// AddToLoop implements LoopAdder.
func (s *Source) AddToLoop(l *fx.Loop) {
	l.AddRunnable(s)
}

// Run implements Runnable.
func (s *Source) Run(ctx context.Context) error {
	for {
		dev, err := s.Open()
		if err == ErrNotSupported {
			glog.Warning("joystick not supported, no button input")
			<-ctx.Done()
			return ctx.Err()
		}
		if err != nil {
			glog.V(1).Infof("open joystick: %v", err)
		} else if dev != nil {
			glog.Infof("joystick %d %q opened", dev.Index(), dev.Name())
			err = fx.RunWithContextCloser(ctx, dev, func() error {
				return s.poll(dev)
			})
			if err == context.Canceled {
				return err
			}
			glog.Warningf("joystick %d: %v", dev.Index(), err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(ReopenInterval):
		}
	}
}

func (s *Source) poll(dev Device) error {
	for {
		ev, err := dev.ReadEvent()
		if err != nil {
			return err
		}
		if btn, ok := s.mapEvent(ev); ok {
			s.Buttons.Press(btn)
		}
	}
}

// mapEvent maps a press edge of a configured button.
func (s *Source) mapEvent(ev Event) (device.Button, bool) {
	bev, ok := ev.(ButtonEvent)
	if !ok || bev.IsInit() || !bev.Pressed() {
		return 0, false
	}
	switch bev.Index() {
	case s.Config.Button1:
		return device.Button1, true
	case s.Config.Button2:
		return device.Button2, true
	}
	return 0, false
}

func (s *Source) openDevice() (Device, error) {
	if s.Config.DeviceIndex >= 0 {
		return Open(s.Config.DeviceIndex)
	}
	return DetectAndOpen(0)
}
