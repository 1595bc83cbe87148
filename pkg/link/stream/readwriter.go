// Package stream frames peer messages on a byte stream, e.g. a serial
// port or a TCP connection.
package stream

import (
	"bufio"
	"bytes"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/tictac.go/pkg/peer"
)

// ReadWriter implements peer.FrameReadWriter.
// Each frame is terminated by a single peer.Terminator byte.
type ReadWriter struct {
	io.ReadWriter

	reader *bufio.Reader
	parser peer.Parser
}

// New creates a ReadWriter with io.ReadWriter.
func New(s io.ReadWriter) *ReadWriter {
	return &ReadWriter{ReadWriter: s, reader: bufio.NewReader(s)}
}

// ReadFrame implements peer.FrameReader.
func (s *ReadWriter) ReadFrame() ([]byte, error) {
	for {
		b, err := s.reader.ReadByte()
		if err != nil {
			return nil, err
		}
		if res := s.parser.Parse(b); res.Ready {
			if res.Truncated {
				glog.V(1).Infof("frame truncated to %q", res.Frame)
			}
			return res.Frame, nil
		}
	}
}

// WriteFrame implements peer.FrameWriter. The frame and its terminator
// are written with a single Write.
func (s *ReadWriter) WriteFrame(frame []byte) error {
	if len(frame) > peer.MaxFrameLen {
		return peer.ErrFrameTooLong
	}
	if bytes.IndexByte(frame, peer.Terminator) >= 0 {
		return peer.ErrMalformed
	}
	buf := make([]byte, len(frame)+1)
	copy(buf, frame)
	buf[len(frame)] = peer.Terminator
	_, err := s.Write(buf)
	return err
}

// Close implements io.Closer.
func (s *ReadWriter) Close() error {
	if closer, ok := s.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
