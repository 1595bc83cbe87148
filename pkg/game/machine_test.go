package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/tictac.go/pkg/device"
	fx "github.com/robotalks/tictac.go/pkg/framework"
	"github.com/robotalks/tictac.go/pkg/peer"
)

// recorder captures everything sent to the sinks.
type recorder struct {
	texts  map[int]string
	cells  map[Pos]device.Glyph
	lines  bool
	tones  []device.Note
	events []device.EventSound
	led    bool
}

func newRecorder() *recorder {
	r := &recorder{}
	r.Clear()
	return r
}

func (r *recorder) Clear() {
	r.texts = make(map[int]string)
	r.cells = make(map[Pos]device.Glyph)
	r.lines = false
}

func (r *recorder) RenderMarker(col, row int, glyph device.Glyph) {
	r.cells[Pos{col, row}] = glyph
}

func (r *recorder) RenderGridLines() {
	r.lines = true
}

func (r *recorder) RenderText(col, row int, text string) {
	r.texts[row] = text
}

func (r *recorder) PlayTone(hz int, duration time.Duration) {
	r.tones = append(r.tones, device.Note{Hz: hz, Duration: duration})
}

func (r *recorder) PlayEvent(ev device.EventSound) {
	r.events = append(r.events, ev)
}

func (r *recorder) SetTurnIndicator(on bool) {
	r.led = on
}

// endpoint is one board connected to another through wireSender.
type endpoint struct {
	*Machine
	*recorder
	sent  []string
	inbox []peer.Message
}

type wireSender struct {
	from, to *endpoint
}

func (w *wireSender) Send(msg peer.Message) error {
	frame := peer.Frame(msg)
	payload := frame[:len(frame)-1]
	w.from.sent = append(w.from.sent, string(payload))
	decoded, err := peer.Decode(payload)
	if err != nil {
		return err
	}
	w.to.inbox = append(w.to.inbox, decoded)
	return nil
}

func newEndpoint() *endpoint {
	e := &endpoint{recorder: newRecorder()}
	e.Machine = NewMachine(nil)
	e.Display, e.Sound, e.Indicator = e.recorder, e.recorder, e.recorder
	e.ResultHold = 0
	return e
}

func newPair(t *testing.T) (a, b *endpoint) {
	a, b = newEndpoint(), newEndpoint()
	a.Peer = &wireSender{from: a, to: b}
	b.Peer = &wireSender{from: b, to: a}
	require.NoError(t, a.Step(context.Background()))
	require.NoError(t, b.Step(context.Background()))
	return
}

func (e *endpoint) press(t *testing.T, btn device.Button) {
	require.NoError(t, e.Press(context.Background(), btn))
}

func (e *endpoint) deliver(t *testing.T) {
	for len(e.inbox) > 0 {
		msg := e.inbox[0]
		e.inbox = e.inbox[1:]
		require.NoError(t, e.Receive(context.Background(), msg))
	}
}

// settle runs loop iterations on both boards until nothing is in flight.
func settle(t *testing.T, boards ...*endpoint) {
	for i := 0; i < 4; i++ {
		for _, e := range boards {
			require.NoError(t, e.Step(context.Background()))
			e.deliver(t)
		}
	}
}

func (e *endpoint) moveTo(t *testing.T, p Pos) {
	for i := 0; i < Size*Size && e.Board().Cursor != p; i++ {
		e.press(t, device.Button1)
	}
	require.Equal(t, p, e.Board().Cursor)
}

func (e *endpoint) placeAt(t *testing.T, p Pos) {
	e.moveTo(t, p)
	e.press(t, device.Button2)
}

func (e *endpoint) lastSent() string {
	if len(e.sent) == 0 {
		return ""
	}
	return e.sent[len(e.sent)-1]
}

func TestSelectionScreen(t *testing.T) {
	e := newEndpoint()
	require.NoError(t, e.Step(context.Background()))
	require.Equal(t, map[int]string{
		0: TextWantPlay,
		2: TextChoose,
		4: TextPressX,
		5: TextPressO,
	}, e.texts)
	require.Equal(t, PhaseSelecting, e.Board().Phase)
}

func TestSelection(t *testing.T) {
	tests := []struct {
		name   string
		btn    device.Button
		frame  string
		mine   Cell
		theirs Cell
	}{
		{"choose X", device.Button1, "A", X, O},
		{"choose O", device.Button2, "B", O, X},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			a, b := newPair(t)
			a.press(t, test.btn)
			require.Equal(t, []string{test.frame}, a.sent)
			require.Equal(t, PhaseEntering, a.Board().Phase)
			require.Equal(t, test.mine, a.Board().Player)
			require.True(t, a.Board().MyTurn)
			require.True(t, a.led)

			settle(t, a, b)
			require.Equal(t, PhasePlaying, a.Board().Phase)
			require.Equal(t, PhasePlaying, b.Board().Phase)
			require.Equal(t, test.theirs, b.Board().Player)
			require.False(t, b.Board().MyTurn)
			require.False(t, b.led)
			require.True(t, a.lines)
			require.True(t, b.lines)
			// cursor highlighted with the own marker.
			require.Equal(t, test.mine.Glyph(), a.cells[Pos{0, 0}])
			require.Equal(t, test.theirs.Glyph(), b.cells[Pos{0, 0}])
			require.Empty(t, b.sent)
		})
	}
}

func TestSelectionConflict(t *testing.T) {
	a, b := newPair(t)
	a.press(t, device.Button1)
	b.press(t, device.Button1)
	settle(t, a, b)
	// no arbitration, both keep their own choice.
	require.Equal(t, X, a.Board().Player)
	require.Equal(t, X, b.Board().Player)
	require.Equal(t, PhasePlaying, a.Board().Phase)
}

func TestIgnoredInputs(t *testing.T) {
	a, b := newPair(t)
	// placement and navigation are meaningless before a game starts.
	require.NoError(t, a.Receive(context.Background(), peer.Place(1, 1, peer.MarkerX)))
	require.NoError(t, a.Receive(context.Background(), peer.Draw()))
	require.Equal(t, Board{}, a.Board())
	require.NoError(t, a.Press(context.Background(), device.Button(0)))
	require.Equal(t, Board{}, a.Board())

	a.press(t, device.Button1)
	settle(t, a, b)
	// selections are not accepted while playing.
	require.NoError(t, b.Receive(context.Background(), peer.SelectO()))
	require.Equal(t, O, b.Board().Player)
	require.Equal(t, PhasePlaying, b.Board().Phase)
}

func TestResetIdempotent(t *testing.T) {
	a, b := newPair(t)
	a.press(t, device.Button1)
	settle(t, a, b)
	a.placeAt(t, Pos{1, 1})

	ctx := context.Background()
	a.Reset(ctx)
	once := a.Board()
	onceTexts := a.texts
	a.Reset(ctx)
	require.Equal(t, once, a.Board())
	require.Equal(t, onceTexts, a.texts)
	require.Equal(t, Board{}, once)
	require.Equal(t, PhaseSelecting, once.Phase)
	require.Equal(t, Pos{0, 0}, once.Cursor)
	require.False(t, a.led)
}

func TestRemoteReset(t *testing.T) {
	a, b := newPair(t)
	a.press(t, device.Button1)
	settle(t, a, b)
	a.placeAt(t, Pos{2, 2})
	settle(t, a, b)
	require.Equal(t, X, b.Board().Grid.At(Pos{2, 2}))

	require.NoError(t, b.Receive(context.Background(), peer.Reset()))
	require.Equal(t, Board{}, b.Board())
	require.Equal(t, TextWantPlay, b.texts[0])
	// no echo.
	require.Empty(t, b.sent)
}

func TestPlacementLegality(t *testing.T) {
	a, b := newPair(t)
	a.press(t, device.Button1)
	settle(t, a, b)

	a.press(t, device.Button2)
	require.Equal(t, "P00X", a.lastSent())
	require.Equal(t, []device.Note{TonePlace}, a.tones)
	require.False(t, a.Board().MyTurn)
	require.False(t, a.led)
	settle(t, a, b)
	require.Equal(t, X, b.Board().Grid.At(Pos{0, 0}))
	require.True(t, b.Board().MyTurn)
	require.True(t, b.led)
	require.Equal(t, []device.Note{ToneRemotePlace}, b.tones)

	t.Run("not my turn", func(t *testing.T) {
		sent, grid := len(a.sent), a.Board().Grid
		a.moveTo(t, Pos{1, 0})
		a.press(t, device.Button2)
		require.Len(t, a.sent, sent)
		require.Equal(t, grid, a.Board().Grid)
	})

	t.Run("occupied cell", func(t *testing.T) {
		// b's cursor still sits on the cell taken by a.
		require.Equal(t, Pos{0, 0}, b.Board().Cursor)
		grid := b.Board().Grid
		b.press(t, device.Button2)
		require.Empty(t, b.sent)
		require.Equal(t, grid, b.Board().Grid)
		require.True(t, b.Board().MyTurn)
	})

	t.Run("remote place on occupied cell", func(t *testing.T) {
		grid := b.Board().Grid
		require.NoError(t, b.Receive(context.Background(), peer.Place(0, 0, peer.MarkerO)))
		require.Equal(t, grid, b.Board().Grid)
	})
}

func TestNavigate(t *testing.T) {
	a, b := newPair(t)
	a.press(t, device.Button1)
	settle(t, a, b)
	a.press(t, device.Button2)
	settle(t, a, b)
	// b navigates past the taken cell, restoring it.
	b.press(t, device.Button1)
	require.Equal(t, Pos{1, 0}, b.Board().Cursor)
	require.Equal(t, device.GlyphX, b.cells[Pos{0, 0}])
	require.Equal(t, device.GlyphO, b.cells[Pos{1, 0}])
	require.Equal(t, ToneNavigate, b.tones[len(b.tones)-1])
	b.press(t, device.Button1)
	require.Equal(t, Pos{2, 0}, b.Board().Cursor)
	require.Equal(t, device.GlyphEmpty, b.cells[Pos{1, 0}])
	require.Empty(t, b.sent)
}

func TestNavigateFullGrid(t *testing.T) {
	e := newEndpoint()
	ctx := context.Background()
	require.NoError(t, e.Step(ctx))
	e.board.Phase = PhasePlaying
	e.board.Player = X
	e.board.Grid = ParseGrid("XOX/XOO/OXX")
	e.board.Cursor = Pos{1, 1}
	e.press(t, device.Button1)
	require.Equal(t, Pos{1, 1}, e.Board().Cursor)
	require.Equal(t, device.GlyphO, e.cells[Pos{1, 1}])
}

// A chooses X, places at (1,1).
func TestScenarioFirstMove(t *testing.T) {
	a, b := newPair(t)
	a.press(t, device.Button1)
	settle(t, a, b)
	require.Equal(t, PhasePlaying, a.Board().Phase)
	require.Equal(t, X, a.Board().Player)
	require.Equal(t, Grid{}, a.Board().Grid)

	a.placeAt(t, Pos{1, 1})
	require.Equal(t, X, a.Board().Grid[1][1])
	require.Equal(t, "P11X", a.lastSent())
	require.Equal(t, Continue, Evaluate(a.Board().Grid, X))
	require.False(t, a.Board().GameOver)
	settle(t, a, b)
	require.Equal(t, a.Board().Grid, b.Board().Grid)
}

// A (X) completes the column x=0.
func TestScenarioWin(t *testing.T) {
	a, b := newPair(t)
	a.press(t, device.Button1)
	settle(t, a, b)

	moves := []struct {
		e *endpoint
		p Pos
	}{
		{a, Pos{0, 0}}, {b, Pos{1, 0}},
		{a, Pos{0, 1}}, {b, Pos{1, 1}},
		{a, Pos{0, 2}},
	}
	for _, move := range moves {
		move.e.placeAt(t, move.p)
		for _, e := range []*endpoint{a, b} {
			e.deliver(t)
		}
	}
	require.Equal(t, []string{"A", "P00X", "P01X", "P02X", "GX"}, a.sent)
	require.Equal(t, PhaseOver, a.Board().Phase)
	require.True(t, a.Board().GameOver)
	require.True(t, a.Board().ResetPending)
	for _, e := range []*endpoint{a, b} {
		require.Equal(t, TextGameOver, e.texts[0])
		require.Equal(t, TextXWins, e.texts[2])
	}
	require.Equal(t, []device.EventSound{device.EventWin}, a.events)
	require.Equal(t, []device.EventSound{device.EventLose}, b.events)

	settle(t, a, b)
	require.Equal(t, "R", a.lastSent())
	require.Equal(t, []string{"P10O", "P11O"}, b.sent)
	for _, e := range []*endpoint{a, b} {
		require.Equal(t, Board{}, e.Board())
		require.Equal(t, TextWantPlay, e.texts[0])
	}
}

// A (X) fills the last cell without completing a line.
func TestScenarioDraw(t *testing.T) {
	a, b := newPair(t)
	a.press(t, device.Button1)
	settle(t, a, b)

	moves := []struct {
		e *endpoint
		p Pos
	}{
		{a, Pos{0, 0}}, {b, Pos{1, 0}},
		{a, Pos{2, 0}}, {b, Pos{1, 1}},
		{a, Pos{0, 1}}, {b, Pos{2, 1}},
		{a, Pos{1, 2}}, {b, Pos{0, 2}},
		{a, Pos{2, 2}},
	}
	for _, move := range moves {
		move.e.placeAt(t, move.p)
		for _, e := range []*endpoint{a, b} {
			e.deliver(t)
		}
	}
	require.Equal(t, "D", a.lastSent())
	for _, e := range []*endpoint{a, b} {
		require.Equal(t, TextGameOver, e.texts[0])
		require.Equal(t, TextDraw, e.texts[2])
		require.Equal(t, []device.EventSound{device.EventDraw}, e.events)
		require.Equal(t, PhaseOver, e.Board().Phase)
	}
	require.Equal(t, ParseGrid("XOX/XOO/OXX"), a.Board().Grid)
	require.Equal(t, a.Board().Grid, b.Board().Grid)

	settle(t, a, b)
	require.Equal(t, PhaseSelecting, a.Board().Phase)
	require.Equal(t, PhaseSelecting, b.Board().Phase)
}

func TestResultHoldCanceled(t *testing.T) {
	a, b := newPair(t)
	a.ResultHold = time.Hour
	a.press(t, device.Button1)
	settle(t, a, b)
	a.board.Grid = ParseGrid("XX./OO./...")
	a.board.Cursor = Pos{2, 0}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	require.NoError(t, a.Press(ctx, device.Button2))
	require.True(t, time.Since(start) < time.Minute)
	require.Equal(t, PhaseOver, a.Board().Phase)
	require.Equal(t, "GX", a.lastSent())
}

type failSender struct{}

func (failSender) Send(peer.Message) error {
	return errors.New("broken")
}

func TestSendError(t *testing.T) {
	e := newEndpoint()
	e.Peer = failSender{}
	require.NoError(t, e.Step(context.Background()))
	require.Error(t, e.Press(context.Background(), device.Button1))
	// state still advances.
	require.Equal(t, PhaseEntering, e.Board().Phase)
}

// two boards, each on its own loop, connected by an in-memory link.
func TestLoopEndToEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	endA, endB := peer.Pipe(4)
	type board struct {
		m      *Machine
		loop   *fx.Loop
		states chan Board
	}
	newBoard := func(end *peer.PipeEnd) *board {
		link := peer.NewLink(end)
		m := NewMachine(link)
		m.ResultHold = 0
		states := make(chan Board, 64)
		m.Observers = append(m.Observers, ObserverFunc(func(b Board) {
			select {
			case states <- b:
			default:
			}
		}))
		loop := fx.NewLoop()
		loop.Interval = 10 * time.Millisecond
		loop.Add(m)
		link.Handler = peer.PostTo(m.Inbound)
		loop.Add(link)
		go loop.Run(ctx)
		return &board{m: m, loop: loop, states: states}
	}
	a, b := newBoard(endA), newBoard(endB)

	waitFor := func(bd *board, cond func(Board) bool) Board {
		timeout := time.After(5 * time.Second)
		for {
			select {
			case s := <-bd.states:
				if cond(s) {
					return s
				}
			case <-timeout:
				require.FailNow(t, "timeout")
			}
		}
	}

	require.True(t, a.m.Input.Post(device.Button1))
	waitFor(a, func(s Board) bool { return s.Phase == PhasePlaying && s.Player == X })
	waitFor(b, func(s Board) bool { return s.Phase == PhasePlaying && s.Player == O })

	require.True(t, a.m.Input.Post(device.Button2))
	s := waitFor(b, func(s Board) bool { return s.Grid.At(Pos{0, 0}) == X })
	require.True(t, s.MyTurn)
}
