package device

import "time"

// Note is one tone of a melody.
type Note struct {
	Hz       int
	Duration time.Duration
}

// Melodies are the notes played for each event.
var Melodies = map[EventSound][]Note{
	EventWin:  {{800, 200 * time.Millisecond}, {1000, 200 * time.Millisecond}, {1200, 300 * time.Millisecond}},
	EventLose: {{800, 200 * time.Millisecond}, {600, 200 * time.Millisecond}, {400, 300 * time.Millisecond}},
	EventDraw: {{700, 200 * time.Millisecond}, {700, 200 * time.Millisecond}},
}

// DefaultNoteGap is the pause between notes of a melody.
const DefaultNoteGap = 200 * time.Millisecond

// Melody implements Sound on top of a Tone player.
type Melody struct {
	Tone
	Gap   time.Duration
	Sleep func(time.Duration)
}

// NewMelody creates a Melody with the default gap.
func NewMelody(tone Tone) *Melody {
	return &Melody{Tone: tone, Gap: DefaultNoteGap, Sleep: time.Sleep}
}

// PlayEvent implements Sound. Unknown events play nothing.
func (m *Melody) PlayEvent(ev EventSound) {
	for n, note := range Melodies[ev] {
		if n > 0 && m.Gap > 0 && m.Sleep != nil {
			m.Sleep(m.Gap)
		}
		m.PlayTone(note.Hz, note.Duration)
	}
}
