// Package see shows a board in github.com/robotalks/see.
package see

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/robotalks/tictac.go/pkg/device"
	fx "github.com/robotalks/tictac.go/pkg/framework"
)

// Object is the data model used to represents an object.
type Object map[string]interface{}

// Rect is object rect area.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Message is the message for see.
type Message struct {
	Action   string `json:"action"`
	Object   Object `json:"object,omitempty"`
	RemoveID string `json:"id,omitempty"`
}

// Actions
const (
	ActionReset  = "reset"
	ActionObject = "object"
	ActionRemove = "remove"
)

// Properties
const (
	PropID    = "id"
	PropType  = "type"
	PropRect  = "rect"
	PropText  = "text"
	PropStyle = "style"
)

// IDs of fixed objects.
const (
	IDLED = "led"
)

// NewObject creates Object.
func NewObject(typ, id string) Object {
	o := make(Object)
	o[PropID] = id
	o[PropType] = typ
	return o
}

// Rc sets rect.
func (o Object) Rc(x, y, w, h float64) Object {
	o[PropRect] = &Rect{X: x, Y: y, W: w, H: h}
	return o
}

// With sets a custom property.
func (o Object) With(key string, val interface{}) Object {
	o[key] = val
	return o
}

// CellID is the object ID of grid cell (col, row).
func CellID(col, row int) string {
	return fmt.Sprintf("cell-%d-%d", col, row)
}

// TextID is the object ID of a text row.
func TextID(row int) string {
	return fmt.Sprintf("text-%d", row)
}

// Adapter implements device.Display and device.Indicator, batching the
// scene updates until Flush. Each batch is one JSON array on a line.
type Adapter struct {
	Config *Config
	Out    io.Writer

	lock    sync.Mutex
	pending []Message
}

// NewAdapter creates the adapter writing to stdout.
func NewAdapter(config *Config) *Adapter {
	return &Adapter{Config: config, Out: os.Stdout}
}

// NewAdapter creates the adapter from config.
func (c *Config) NewAdapter() *Adapter {
	return NewAdapter(c)
}

func (a *Adapter) add(msgs ...Message) {
	a.lock.Lock()
	a.pending = append(a.pending, msgs...)
	a.lock.Unlock()
}

func (a *Adapter) cell() float64 {
	return a.Config.CellSize
}

// Clear implements device.Display.
func (a *Adapter) Clear() {
	a.lock.Lock()
	// anything pending is wiped by the reset.
	a.pending = append(a.pending[:0], Message{Action: ActionReset})
	a.lock.Unlock()
}

// RenderGridLines implements device.Display.
func (a *Adapter) RenderGridLines() {
	c := a.cell()
	var msgs []Message
	for i := 1; i < 3; i++ {
		msgs = append(msgs,
			Message{Action: ActionObject, Object: NewObject("line", fmt.Sprintf("hline-%d", i)).Rc(0, c*float64(i), c*3, 0)},
			Message{Action: ActionObject, Object: NewObject("line", fmt.Sprintf("vline-%d", i)).Rc(c*float64(i), 0, 0, c*3)})
	}
	a.add(msgs...)
}

// RenderMarker implements device.Display.
func (a *Adapter) RenderMarker(col, row int, glyph device.Glyph) {
	id := CellID(col, row)
	if glyph == device.GlyphEmpty {
		a.add(Message{Action: ActionRemove, RemoveID: id})
		return
	}
	c := a.cell()
	a.add(Message{Action: ActionObject, Object: NewObject("marker", id).
		Rc(c*float64(col), c*float64(row), c, c).
		With(PropText, glyph.String())})
}

// RenderText implements device.Display.
func (a *Adapter) RenderText(col, row int, text string) {
	c := a.cell()
	a.add(Message{Action: ActionObject, Object: NewObject("text", TextID(row)).
		Rc(c*float64(col)/8, c*float64(row)*3/8, c*3, c*3/8).
		With(PropText, text)})
}

// SetTurnIndicator implements device.Indicator.
func (a *Adapter) SetTurnIndicator(on bool) {
	style := "off"
	if on {
		style = "on"
	}
	c := a.cell()
	a.add(Message{Action: ActionObject, Object: NewObject("led", IDLED).
		Rc(c*3+c/4, 0, c/4, c/4).
		With(PropStyle, style)})
}

// Flush writes pending updates.
func (a *Adapter) Flush() error {
	a.lock.Lock()
	msgs := a.pending
	a.pending = nil
	a.lock.Unlock()
	if len(msgs) == 0 {
		return nil
	}
	encoded, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	_, err = a.Out.Write(append(encoded, '\n'))
	return err
}

// AddToLoop implements LoopAdder.
func (a *Adapter) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvPostProc, fx.ControlFunc(func(fx.ControlContext) error {
		return a.Flush()
	}))
}
