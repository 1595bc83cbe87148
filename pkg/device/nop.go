package device

import "time"

// Nop implements Display, Sound and Indicator doing nothing.
type Nop struct{}

// Clear implements Display.
func (Nop) Clear() {}

// RenderMarker implements Display.
func (Nop) RenderMarker(col, row int, glyph Glyph) {}

// RenderGridLines implements Display.
func (Nop) RenderGridLines() {}

// RenderText implements Display.
func (Nop) RenderText(col, row int, text string) {}

// PlayTone implements Tone.
func (Nop) PlayTone(hz int, duration time.Duration) {}

// PlayEvent implements Sound.
func (Nop) PlayEvent(EventSound) {}

// SetTurnIndicator implements Indicator.
func (Nop) SetTurnIndicator(bool) {}
