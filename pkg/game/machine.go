package game

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/tictac.go/pkg/device"
	fx "github.com/robotalks/tictac.go/pkg/framework"
	"github.com/robotalks/tictac.go/pkg/peer"
)

// Texts shown on the display.
const (
	TextWantPlay = "Do you want to play?"
	TextChoose   = "Choose X or O"
	TextPressX   = "Press Btn 1 for X"
	TextPressO   = "Press Btn 2 for O"
	TextGameOver = "Game Over!"
	TextXWins    = "X Wins!"
	TextOWins    = "O Wins!"
	TextDraw     = "It's a Draw!"
)

// Tones played during a game.
var (
	ToneNavigate    = device.Note{Hz: 400, Duration: 200 * time.Millisecond}
	TonePlace       = device.Note{Hz: 1000, Duration: 300 * time.Millisecond}
	ToneRemotePlace = device.Note{Hz: 1000, Duration: 200 * time.Millisecond}
)

// DefaultResultHold is how long the result stays on the display before
// the board resets.
const DefaultResultHold = 5 * time.Second

// Observer is notified with a snapshot after the board changed.
type Observer interface {
	BoardChanged(Board)
}

// ObserverFunc is the func form of Observer.
type ObserverFunc func(Board)

// BoardChanged implements Observer.
func (f ObserverFunc) BoardChanged(b Board) {
	f(b)
}

// Machine is the game state machine of one board. All methods must be
// called from the loop.
type Machine struct {
	Display    device.Display
	Sound      device.Sound
	Indicator  device.Indicator
	Peer       peer.Sender
	ResultHold time.Duration
	Observers  []Observer

	// Input carries device.Button, Inbound carries peer.Message.
	Input   *fx.Queue
	Inbound *fx.Queue

	board     Board
	started   bool
	ownResult bool
	published Board
}

// NewMachine creates a Machine sending to p, with all sinks disabled.
func NewMachine(p peer.Sender) *Machine {
	return &Machine{
		Display:    device.Nop{},
		Sound:      device.Nop{},
		Indicator:  device.Nop{},
		Peer:       p,
		ResultHold: DefaultResultHold,
	}
}

// Board returns a snapshot of the board.
func (m *Machine) Board() Board {
	return m.board
}

// AddToLoop implements LoopAdder. Queues missing are created.
func (m *Machine) AddToLoop(l *fx.Loop) {
	if m.Input == nil {
		m.Input = l.NewQueue("input", 1)
	}
	if m.Inbound == nil {
		m.Inbound = l.NewQueue("inbound", 1)
	}
	l.AddController(fx.PrLvSetup, fx.ControlFunc(func(cc fx.ControlContext) error {
		return m.Step(cc.Context())
	}))
	l.AddController(fx.PrLvControl, fx.ControlFunc(m.dispatch))
	l.AddController(fx.PrLvPostProc, fx.ControlFunc(func(fx.ControlContext) error {
		m.notify()
		return nil
	}))
}

// dispatch handles at most one inbound message and one local input.
func (m *Machine) dispatch(cc fx.ControlContext) error {
	var errs fx.AggregatedError
	ctx := cc.Context()
	if m.Inbound != nil {
		if msg, ok := m.Inbound.Take(); ok {
			if pm, ok := msg.(peer.Message); ok {
				errs.Add(m.Receive(ctx, pm))
			} else {
				glog.Warningf("unexpected inbound %T", msg)
			}
		}
	}
	if m.Input != nil {
		if msg, ok := m.Input.Take(); ok {
			if btn, ok := msg.(device.Button); ok {
				errs.Add(m.Press(ctx, btn))
			} else {
				glog.Warningf("unexpected input %T", msg)
			}
		}
	}
	return errs.Aggregate()
}

// Step performs the housekeeping of one loop iteration: the pending
// reset after a game ended, and drawing the grid when entering a game.
func (m *Machine) Step(ctx context.Context) error {
	if !m.started {
		m.Reset(ctx)
	}
	var err error
	if m.board.GameOver && m.board.ResetPending {
		tellPeer := m.ownResult
		m.Reset(ctx)
		if tellPeer {
			err = m.send(peer.Reset())
		}
	}
	if m.board.Phase == PhaseEntering {
		m.drawGrid()
		m.board.Phase = PhasePlaying
		glog.V(1).Infof("playing as %s", m.board.Player)
	}
	return err
}

// Reset clears the board and shows the selection screen.
func (m *Machine) Reset(ctx context.Context) {
	m.board = Board{}
	m.started, m.ownResult = true, false
	m.Indicator.SetTurnIndicator(false)
	m.Display.Clear()
	m.Display.RenderText(0, 0, TextWantPlay)
	m.Display.RenderText(0, 2, TextChoose)
	m.Display.RenderText(0, 4, TextPressX)
	m.Display.RenderText(0, 5, TextPressO)
	glog.V(1).Info("reset")
}

// Press handles a local button press.
func (m *Machine) Press(ctx context.Context, btn device.Button) error {
	switch m.board.Phase {
	case PhaseSelecting:
		switch btn {
		case device.Button1:
			return m.choose(X, peer.SelectX())
		case device.Button2:
			return m.choose(O, peer.SelectO())
		}
	case PhasePlaying:
		switch btn {
		case device.Button1:
			m.navigate()
		case device.Button2:
			return m.place(ctx)
		}
	default:
		glog.V(2).Infof("ignore %s in phase %s", btn, m.board.Phase)
	}
	return nil
}

// Receive handles a message from the peer.
func (m *Machine) Receive(ctx context.Context, msg peer.Message) error {
	if msg.Kind == peer.KindReset {
		m.Reset(ctx)
		return nil
	}
	switch m.board.Phase {
	case PhaseSelecting:
		switch msg.Kind {
		case peer.KindSelectX:
			m.assign(O)
			return nil
		case peer.KindSelectO:
			m.assign(X)
			return nil
		}
	case PhasePlaying:
		switch msg.Kind {
		case peer.KindPlace:
			m.remotePlace(msg)
			return nil
		case peer.KindGameOver:
			winner := CellFromWire(msg.Marker)
			m.showResult(winner, Win)
			if winner == m.board.Player {
				m.Sound.PlayEvent(device.EventWin)
			} else {
				m.Sound.PlayEvent(device.EventLose)
			}
			m.over(ctx, false)
			return nil
		case peer.KindDraw:
			m.showResult(Empty, Draw)
			m.Sound.PlayEvent(device.EventDraw)
			m.over(ctx, false)
			return nil
		}
	}
	if (msg.Kind == peer.KindSelectX || msg.Kind == peer.KindSelectO) && m.board.Phase != PhaseSelecting {
		if selected := CellFromWire(selectionMarker(msg.Kind)); selected == m.board.Player {
			glog.Warningf("selection conflict: peer also chose %s", selected)
			return nil
		}
	}
	glog.V(2).Infof("drop %q in phase %s", msg.String(), m.board.Phase)
	return nil
}

func selectionMarker(k peer.Kind) byte {
	if k == peer.KindSelectX {
		return peer.MarkerX
	}
	return peer.MarkerO
}

func (m *Machine) choose(player Cell, msg peer.Message) error {
	m.board.Player = player
	m.board.Phase = PhaseEntering
	m.setTurn(true)
	glog.V(1).Infof("chose %s", player)
	return m.send(msg)
}

func (m *Machine) assign(player Cell) {
	m.board.Player = player
	m.board.Phase = PhaseEntering
	m.setTurn(false)
	glog.V(1).Infof("peer chose %s, assigned %s", player.Opponent(), player)
}

func (m *Machine) navigate() {
	cur := m.board.Cursor
	m.Display.RenderMarker(cur.X, cur.Y, m.board.Grid.At(cur).Glyph())
	cur = m.board.Grid.NextEmpty(cur)
	m.board.Cursor = cur
	m.highlight()
	m.playNote(ToneNavigate)
}

func (m *Machine) place(ctx context.Context) error {
	cur := m.board.Cursor
	if !m.board.MyTurn || m.board.Grid.At(cur) != Empty {
		glog.V(2).Infof("ignore place at %v, my turn %v", cur, m.board.MyTurn)
		return nil
	}
	player := m.board.Player
	m.board.Grid.Set(cur, player)
	m.Display.RenderMarker(cur.X, cur.Y, player.Glyph())
	err := m.send(peer.Place(cur.X, cur.Y, player.Wire()))
	switch Evaluate(m.board.Grid, player) {
	case Win:
		m.Sound.PlayEvent(device.EventWin)
		if e := m.send(peer.GameOver(player.Wire())); err == nil {
			err = e
		}
		m.showResult(player, Win)
		m.over(ctx, true)
	case Draw:
		m.Sound.PlayEvent(device.EventDraw)
		if e := m.send(peer.Draw()); err == nil {
			err = e
		}
		m.showResult(Empty, Draw)
		m.over(ctx, true)
	}
	m.playNote(TonePlace)
	m.setTurn(false)
	return err
}

func (m *Machine) remotePlace(msg peer.Message) {
	pos := Pos{X: msg.X, Y: msg.Y}
	if !pos.Valid() || m.board.Grid.At(pos) != Empty {
		glog.V(1).Infof("drop place on occupied cell %v", pos)
		return
	}
	marker := CellFromWire(msg.Marker)
	m.board.Grid.Set(pos, marker)
	m.Display.RenderMarker(pos.X, pos.Y, marker.Glyph())
	m.playNote(ToneRemotePlace)
	m.setTurn(true)
}

func (m *Machine) showResult(winner Cell, result Result) {
	m.Display.Clear()
	m.Display.RenderText(0, 0, TextGameOver)
	text := TextDraw
	if result == Win {
		text = TextXWins
		if winner == O {
			text = TextOWins
		}
	}
	m.Display.RenderText(0, 2, text)
	glog.V(1).Infof("game over: %s", text)
}

// over holds the result and marks the board for reset. own indicates
// this board's evaluator ended the game, so the peer is told to reset.
func (m *Machine) over(ctx context.Context, own bool) {
	m.hold(ctx)
	m.board.Phase = PhaseOver
	m.board.GameOver, m.board.ResetPending = true, true
	m.ownResult = own
}

func (m *Machine) hold(ctx context.Context) {
	if m.ResultHold <= 0 {
		return
	}
	timer := time.NewTimer(m.ResultHold)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (m *Machine) drawGrid() {
	m.Display.Clear()
	m.Display.RenderGridLines()
	for y, row := range m.board.Grid {
		for x, c := range row {
			if c != Empty {
				m.Display.RenderMarker(x, y, c.Glyph())
			}
		}
	}
	m.highlight()
}

// highlight shows the own marker at the cursor, unless the cell is taken.
func (m *Machine) highlight() {
	cur := m.board.Cursor
	glyph := m.board.Grid.At(cur).Glyph()
	if m.board.Grid.At(cur) == Empty {
		glyph = m.board.Player.Glyph()
	}
	m.Display.RenderMarker(cur.X, cur.Y, glyph)
}

func (m *Machine) setTurn(on bool) {
	m.board.MyTurn = on
	m.Indicator.SetTurnIndicator(on)
}

func (m *Machine) playNote(n device.Note) {
	m.Sound.PlayTone(n.Hz, n.Duration)
}

func (m *Machine) send(msg peer.Message) error {
	if m.Peer == nil {
		return nil
	}
	if err := m.Peer.Send(msg); err != nil {
		glog.Errorf("send %q: %v", msg.String(), err)
		return err
	}
	return nil
}

func (m *Machine) notify() {
	if m.board == m.published {
		return
	}
	m.published = m.board
	for _, o := range m.Observers {
		o.BoardChanged(m.board)
	}
}
