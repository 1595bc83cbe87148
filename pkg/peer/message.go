package peer

// Kind is the tag of a message, also its first byte on the wire.
type Kind byte

// Message kinds.
const (
	KindSelectX  Kind = 'A'
	KindSelectO  Kind = 'B'
	KindPlace    Kind = 'P'
	KindReset    Kind = 'R'
	KindGameOver Kind = 'G'
	KindDraw     Kind = 'D'
)

// Markers as they appear on the wire.
const (
	MarkerX byte = 'X'
	MarkerO byte = 'O'
)

// Message is a decoded peer message. X, Y are only meaningful for
// KindPlace, Marker for KindPlace and KindGameOver.
type Message struct {
	Kind   Kind
	X, Y   int
	Marker byte
}

// SelectX creates the message announcing the sender plays X.
func SelectX() Message { return Message{Kind: KindSelectX} }

// SelectO creates the message announcing the sender plays O.
func SelectO() Message { return Message{Kind: KindSelectO} }

// Place creates a placement message.
func Place(x, y int, marker byte) Message {
	return Message{Kind: KindPlace, X: x, Y: y, Marker: marker}
}

// Reset creates the reset message.
func Reset() Message { return Message{Kind: KindReset} }

// GameOver creates the message announcing winner.
func GameOver(winner byte) Message {
	return Message{Kind: KindGameOver, Marker: winner}
}

// Draw creates the draw message.
func Draw() Message { return Message{Kind: KindDraw} }

// String returns the wire form.
func (m Message) String() string {
	return string(Encode(m))
}

// Encode encodes the message into a frame payload (without terminator).
func Encode(m Message) []byte {
	switch m.Kind {
	case KindPlace:
		return []byte{byte(m.Kind), digit(m.X), digit(m.Y), m.Marker}
	case KindGameOver:
		return []byte{byte(m.Kind), m.Marker}
	default:
		return []byte{byte(m.Kind)}
	}
}

// Frame encodes the message and appends the stream terminator.
func Frame(m Message) []byte {
	return append(Encode(m), Terminator)
}

// Decode decodes a frame payload. The first byte selects the kind.
func Decode(frame []byte) (m Message, err error) {
	if len(frame) == 0 {
		return m, ErrEmptyFrame
	}
	m.Kind = Kind(frame[0])
	switch m.Kind {
	case KindSelectX, KindSelectO, KindReset, KindDraw:
		if len(frame) != 1 {
			return Message{}, ErrMalformed
		}
	case KindPlace:
		if len(frame) != 4 {
			return Message{}, ErrMalformed
		}
		x, okX := coord(frame[1])
		y, okY := coord(frame[2])
		if !okX || !okY || !IsMarker(frame[3]) {
			return Message{}, ErrMalformed
		}
		m.X, m.Y, m.Marker = x, y, frame[3]
	case KindGameOver:
		if len(frame) != 2 || !IsMarker(frame[1]) {
			return Message{}, ErrMalformed
		}
		m.Marker = frame[1]
	default:
		return Message{}, &TagError{Tag: frame[0]}
	}
	return m, nil
}

// IsMarker checks b is a valid wire marker.
func IsMarker(b byte) bool {
	return b == MarkerX || b == MarkerO
}

func digit(n int) byte {
	return byte(n) + '0'
}

func coord(b byte) (int, bool) {
	n := int(b) - '0'
	return n, n >= 0 && n <= 2
}
