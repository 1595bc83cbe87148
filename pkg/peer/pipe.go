package peer

import (
	"io"
	"sync"
)

// PipeEnd is one end of an in-memory FrameReadWriter pair.
type PipeEnd struct {
	recvCh <-chan []byte
	sendCh chan<- []byte
	closed chan struct{}
	once   *sync.Once
}

// Pipe creates two connected in-memory ends. Frames written on one end
// are read from the other in order. Closing either end closes both.
func Pipe(size int) (*PipeEnd, *PipeEnd) {
	ab, ba := make(chan []byte, size), make(chan []byte, size)
	closed, once := make(chan struct{}), &sync.Once{}
	return &PipeEnd{recvCh: ba, sendCh: ab, closed: closed, once: once},
		&PipeEnd{recvCh: ab, sendCh: ba, closed: closed, once: once}
}

// ReadFrame implements FrameReader. Frames written before the pipe was
// closed are still delivered.
func (p *PipeEnd) ReadFrame() ([]byte, error) {
	select {
	case frame := <-p.recvCh:
		return frame, nil
	case <-p.closed:
		select {
		case frame := <-p.recvCh:
			return frame, nil
		default:
			return nil, io.EOF
		}
	}
}

// WriteFrame implements FrameWriter.
func (p *PipeEnd) WriteFrame(frame []byte) error {
	select {
	case <-p.closed:
		return io.ErrClosedPipe
	default:
	}
	b := make([]byte, len(frame))
	copy(b, frame)
	select {
	case p.sendCh <- b:
		return nil
	case <-p.closed:
		return io.ErrClosedPipe
	}
}

// Close implements io.Closer.
func (p *PipeEnd) Close() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}
