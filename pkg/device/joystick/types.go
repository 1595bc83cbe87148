// Package joystick reads the two board buttons from a joystick device.
package joystick

import (
	"errors"
	"io"
)

// ErrNotSupported indicates joysticks are not supported on this system.
var ErrNotSupported = errors.New("joystick not supported")

// Event is an event read from the device.
type Event interface {
	// IsInit indicates this reports the initial state.
	IsInit() bool
	// Index returns either Axis or Button index.
	Index() int
}

// ButtonEvent represents the change on a button.
type ButtonEvent interface {
	Event
	Pressed() bool
}

// Device represents an opened joystick.
type Device interface {
	io.Closer
	// Index returns the index of the device on the system.
	Index() int
	// Name returns the name of the device.
	Name() string
	// ButtonCount returns the number of buttons on the device.
	ButtonCount() int
	// ReadEvent reads one event from the device.
	ReadEvent() (Event, error)
}
