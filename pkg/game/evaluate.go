package game

// Result is the outcome of evaluating a grid after a move.
type Result int

// Results
const (
	Continue Result = iota
	Win
	Draw
)

// String implements fmt.Stringer.
func (r Result) String() string {
	switch r {
	case Win:
		return "win"
	case Draw:
		return "draw"
	}
	return "continue"
}

// Line is three positions which win when held by one marker.
type Line [Size]Pos

// Lines lists all winning lines in check order: rows, columns, diagonals.
var Lines = func() []Line {
	var lines []Line
	for y := 0; y < Size; y++ {
		lines = append(lines, Line{{0, y}, {1, y}, {2, y}})
	}
	for x := 0; x < Size; x++ {
		lines = append(lines, Line{{x, 0}, {x, 1}, {x, 2}})
	}
	return append(lines,
		Line{{0, 0}, {1, 1}, {2, 2}},
		Line{{2, 0}, {1, 1}, {0, 2}})
}()

// Evaluate checks whether player has won on g, or the game is a draw.
// Only player's lines are checked.
func Evaluate(g Grid, player Cell) Result {
	if _, ok := WinningLine(g, player); ok {
		return Win
	}
	if g.Full() {
		return Draw
	}
	return Continue
}

// WinningLine returns the first line fully held by player.
func WinningLine(g Grid, player Cell) (Line, bool) {
	if !player.IsMarker() {
		return Line{}, false
	}
	for _, line := range Lines {
		if g.At(line[0]) == player && g.At(line[1]) == player && g.At(line[2]) == player {
			return line, true
		}
	}
	return Line{}, false
}
