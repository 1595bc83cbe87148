package peer

// Terminator ends a frame on byte streams.
const Terminator byte = 0

// MaxFrameLen is the maximum payload kept for one frame. Extra bytes
// before the terminator are discarded, the frame is still delivered.
const MaxFrameLen = 9

// ParseResult indicates the result after one parsing step.
type ParseResult struct {
	// Frame is set when a terminator completed a frame.
	Frame []byte
	// Ready indicates Frame is valid (it may be empty).
	Ready bool
	// Truncated indicates bytes were discarded from this frame.
	Truncated bool
}

// Parser assembles frames from a byte stream.
type Parser struct {
	buf       [MaxFrameLen]byte
	recvLen   int
	truncated bool
}

// Pending returns the number of bytes accumulated for the current frame.
func (p *Parser) Pending() int {
	return p.recvLen
}

// Reset drops the partially received frame.
func (p *Parser) Reset() {
	p.recvLen, p.truncated = 0, false
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) (pr ParseResult) {
	if b == Terminator {
		pr.Frame = make([]byte, p.recvLen)
		copy(pr.Frame, p.buf[:p.recvLen])
		pr.Ready, pr.Truncated = true, p.truncated
		p.Reset()
		return
	}
	if p.recvLen < len(p.buf) {
		p.buf[p.recvLen] = b
		p.recvLen++
	} else {
		p.truncated = true
	}
	return
}
