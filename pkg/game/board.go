// Package game implements the tic-tac-toe state machine of one board.
package game

import (
	"strings"

	"github.com/robotalks/tictac.go/pkg/device"
	"github.com/robotalks/tictac.go/pkg/peer"
)

// Size is the width and height of the grid.
const Size = 3

// Cell is the content of a grid cell.
type Cell byte

// Cells
const (
	Empty Cell = iota
	X
	O
)

// String implements fmt.Stringer.
func (c Cell) String() string {
	return c.Glyph().String()
}

// Glyph returns how the cell is displayed.
func (c Cell) Glyph() device.Glyph {
	switch c {
	case X:
		return device.GlyphX
	case O:
		return device.GlyphO
	}
	return device.GlyphEmpty
}

// IsMarker indicates c is X or O.
func (c Cell) IsMarker() bool {
	return c == X || c == O
}

// Opponent returns the complementary marker.
func (c Cell) Opponent() Cell {
	switch c {
	case X:
		return O
	case O:
		return X
	}
	return Empty
}

// Wire returns the marker byte used by the peer protocol.
func (c Cell) Wire() byte {
	switch c {
	case X:
		return peer.MarkerX
	case O:
		return peer.MarkerO
	}
	return 0
}

// CellFromWire converts a protocol marker byte.
func CellFromWire(b byte) Cell {
	switch b {
	case peer.MarkerX:
		return X
	case peer.MarkerO:
		return O
	}
	return Empty
}

// Pos is a cell position, X is the column and Y the row.
type Pos struct {
	X, Y int
}

// Valid indicates p is inside the grid.
func (p Pos) Valid() bool {
	return p.X >= 0 && p.X < Size && p.Y >= 0 && p.Y < Size
}

// next returns the following position in row-major order, wrapping.
func (p Pos) next() Pos {
	p.X++
	if p.X >= Size {
		p.X = 0
		p.Y++
		if p.Y >= Size {
			p.Y = 0
		}
	}
	return p
}

// Grid is indexed [row][col].
type Grid [Size][Size]Cell

// At returns the cell at p.
func (g Grid) At(p Pos) Cell {
	return g[p.Y][p.X]
}

// Set sets the cell at p.
func (g *Grid) Set(p Pos, c Cell) {
	g[p.Y][p.X] = c
}

// Full indicates there is no empty cell left.
func (g Grid) Full() bool {
	for _, row := range g {
		for _, c := range row {
			if c == Empty {
				return false
			}
		}
	}
	return true
}

// NextEmpty walks from p in row-major order, wrapping, and returns the
// first empty cell after p. When no other cell is empty, p is returned.
func (g Grid) NextEmpty(p Pos) Pos {
	for n := p.next(); n != p; n = n.next() {
		if g.At(n) == Empty {
			return n
		}
	}
	return p
}

// String renders the grid as three lines, '.' for empty cells.
func (g Grid) String() string {
	var sb strings.Builder
	for y, row := range g {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for _, c := range row {
			if c == Empty {
				sb.WriteByte('.')
			} else {
				sb.WriteByte(byte(c.Glyph()))
			}
		}
	}
	return sb.String()
}

// ParseGrid parses the form produced by Grid.String. Rows are separated
// by newlines or '/', anything other than X/O is empty.
func ParseGrid(s string) (g Grid) {
	rows := strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '/' })
	for y := 0; y < Size && y < len(rows); y++ {
		for x := 0; x < Size && x < len(rows[y]); x++ {
			switch rows[y][x] {
			case 'X', 'x':
				g[y][x] = X
			case 'O', 'o':
				g[y][x] = O
			}
		}
	}
	return
}

// Phase is the coarse stage of a game.
type Phase int

// Phases
const (
	PhaseSelecting Phase = iota
	PhaseEntering
	PhasePlaying
	PhaseOver
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseSelecting:
		return "selecting"
	case PhaseEntering:
		return "entering"
	case PhasePlaying:
		return "playing"
	case PhaseOver:
		return "over"
	}
	return "unknown"
}

// Board is the complete game state of one board.
type Board struct {
	Grid         Grid
	Phase        Phase
	Player       Cell
	Cursor       Pos
	GameOver     bool
	ResetPending bool
	// MyTurn mirrors the turn indicator.
	MyTurn bool
}
