// Package device defines the peripherals a board drives: display, sound,
// turn indicator and the two buttons.
package device

import "time"

// Glyph is what a grid cell shows.
type Glyph byte

// Glyphs
const (
	GlyphEmpty Glyph = ' '
	GlyphX     Glyph = 'X'
	GlyphO     Glyph = 'O'
)

// String implements fmt.Stringer.
func (g Glyph) String() string {
	return string([]byte{byte(g)})
}

// Display renders the grid and text lines.
type Display interface {
	// Clear blanks the whole display.
	Clear()
	// RenderMarker draws glyph in cell (col, row), both in [0, 2].
	RenderMarker(col, row int, glyph Glyph)
	// RenderGridLines draws the 3x3 grid lines.
	RenderGridLines()
	// RenderText prints text starting at the text position (col, row).
	RenderText(col, row int, text string)
}

// Tone plays a single tone, returning once it's done.
type Tone interface {
	PlayTone(hz int, duration time.Duration)
}

// EventSound identifies a melody.
type EventSound int

// Event sounds
const (
	EventWin EventSound = iota
	EventLose
	EventDraw
)

// Sound plays tones and event melodies.
type Sound interface {
	Tone
	PlayEvent(EventSound)
}

// Indicator is the turn LED.
type Indicator interface {
	SetTurnIndicator(on bool)
}

// Button identifies one of the two discrete buttons.
type Button int

// Buttons
const (
	Button1 Button = iota + 1
	Button2
)

// NumButtons is the number of buttons on a board.
const NumButtons = 2

// String implements fmt.Stringer.
func (b Button) String() string {
	switch b {
	case Button1:
		return "btn1"
	case Button2:
		return "btn2"
	}
	return "btn?"
}

// IsValid indicates b is one of the board buttons.
func (b Button) IsValid() bool {
	return b == Button1 || b == Button2
}
