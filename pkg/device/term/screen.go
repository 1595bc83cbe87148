// Package term shows a board on an ANSI terminal.
package term

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/golang/glog"

	"github.com/robotalks/tictac.go/pkg/device"
)

// Rows is the number of text rows of the display.
const Rows = 8

var (
	colorX     = color.New(color.FgRed, color.Bold).SprintFunc()
	colorO     = color.New(color.FgCyan, color.Bold).SprintFunc()
	colorLines = color.New(color.FgHiBlack).SprintFunc()
	colorLEDOn = color.New(color.FgGreen, color.Bold).SprintFunc()
	colorTone  = color.New(color.FgYellow).SprintFunc()
)

const clearScreen = "\x1b[H\x1b[2J"

// Screen implements device.Display, device.Tone and device.Indicator.
// Every change redraws the whole screen on Out when it's set.
type Screen struct {
	Out io.Writer
	// Bell rings the terminal bell for each tone.
	Bell bool
	// Blocking makes PlayTone sleep for the duration of the tone.
	Blocking bool

	lock  sync.Mutex
	texts [Rows]string
	cells [3][3]device.Glyph
	lines bool
	led   bool
	tone  string
}

// NewScreen creates a Screen drawing on out.
func NewScreen(out io.Writer) *Screen {
	s := &Screen{Out: out}
	s.reset()
	return s
}

func (s *Screen) reset() {
	s.texts = [Rows]string{}
	s.lines = false
	for y := range s.cells {
		for x := range s.cells[y] {
			s.cells[y][x] = device.GlyphEmpty
		}
	}
}

// Clear implements device.Display.
func (s *Screen) Clear() {
	s.update(s.reset)
}

// RenderMarker implements device.Display.
func (s *Screen) RenderMarker(col, row int, glyph device.Glyph) {
	if col < 0 || col > 2 || row < 0 || row > 2 {
		glog.Warningf("marker out of range (%d, %d)", col, row)
		return
	}
	s.update(func() { s.cells[row][col] = glyph })
}

// RenderGridLines implements device.Display.
func (s *Screen) RenderGridLines() {
	s.update(func() { s.lines = true })
}

// RenderText implements device.Display. The text replaces the row from col on.
func (s *Screen) RenderText(col, row int, text string) {
	if row < 0 || row >= Rows {
		return
	}
	s.update(func() {
		line := []rune(s.texts[row])
		for len(line) < col {
			line = append(line, ' ')
		}
		line = append(line[:col], []rune(text)...)
		s.texts[row] = string(line)
	})
}

// SetTurnIndicator implements device.Indicator.
func (s *Screen) SetTurnIndicator(on bool) {
	s.update(func() { s.led = on })
}

// PlayTone implements device.Tone.
func (s *Screen) PlayTone(hz int, duration time.Duration) {
	glog.V(3).Infof("tone %dHz %v", hz, duration)
	s.update(func() { s.tone = fmt.Sprintf("%dHz %v", hz, duration) })
	if s.Bell && s.Out != nil {
		s.lock.Lock()
		io.WriteString(s.Out, "\a")
		s.lock.Unlock()
	}
	if s.Blocking {
		time.Sleep(duration)
	}
}

func (s *Screen) update(fn func()) {
	s.lock.Lock()
	defer s.lock.Unlock()
	fn()
	if s.Out != nil {
		io.WriteString(s.Out, clearScreen+s.render())
	}
}

// String renders the screen.
func (s *Screen) String() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.render()
}

func (s *Screen) render() string {
	var sb strings.Builder
	if s.lines {
		for y, row := range s.cells {
			if y > 0 {
				sb.WriteString(colorLines("---+---+---") + "\n")
			}
			for x, glyph := range row {
				if x > 0 {
					sb.WriteString(colorLines("|"))
				}
				sb.WriteString(" " + paint(glyph) + " ")
			}
			sb.WriteString("\n")
		}
	} else {
		for _, text := range s.texts {
			sb.WriteString(text + "\n")
		}
	}
	if s.led {
		sb.WriteString(colorLEDOn("(*)") + " your turn\n")
	} else {
		sb.WriteString("( ) waiting\n")
	}
	if s.tone != "" {
		sb.WriteString(colorTone("~ "+s.tone) + "\n")
	}
	return sb.String()
}

func paint(g device.Glyph) string {
	switch g {
	case device.GlyphX:
		return colorX(g.String())
	case device.GlyphO:
		return colorO(g.String())
	}
	return g.String()
}
