package mqtt

import (
	"errors"
	"io"
	"net/url"
	"sync"
)

var (
	// ErrNoPeer indicates the peer board is not specified.
	ErrNoPeer = errors.New("peer board not specified")
	// ErrInvalidID indicates the board ID is empty or same as the peer.
	ErrInvalidID = errors.New("invalid board ID")
)

// Topics relative to the broker prefix.
const (
	FramesSuffix = "/frames"
	StatusSuffix = "/status"
)

// FramesTopic is where board id publishes its frames.
func FramesTopic(id string) string {
	return id + FramesSuffix
}

// StatusTopic is where board id publishes its status.
func StatusTopic(id string) string {
	return id + StatusSuffix
}

// ReadWriter implements peer.FrameReadWriter. Frames are published on
// the own frames topic and received from the peer's.
type ReadWriter struct {
	Broker   *Broker
	SubTopic string
	PubTopic string

	frameCh chan []byte
	done    chan struct{}
	sub     *Subscription
	once    sync.Once
}

// NewReadWriter subscribes to the frames of board peerID and publishes
// as board selfID.
func NewReadWriter(b *Broker, selfID, peerID string) *ReadWriter {
	rw := &ReadWriter{
		Broker:   b,
		SubTopic: FramesTopic(peerID),
		PubTopic: FramesTopic(selfID),
		frameCh:  make(chan []byte, 1),
		done:     make(chan struct{}),
	}
	rw.sub = b.Sub(rw.SubTopic, rw.handleMsg)
	return rw
}

// ReadFrame implements peer.FrameReader.
func (p *ReadWriter) ReadFrame() ([]byte, error) {
	select {
	case frame := <-p.frameCh:
		return frame, nil
	case <-p.done:
		return nil, io.EOF
	}
}

// WriteFrame implements peer.FrameWriter.
func (p *ReadWriter) WriteFrame(frame []byte) error {
	select {
	case <-p.done:
		return io.ErrClosedPipe
	default:
	}
	return p.Broker.Pub(p.PubTopic, frame)
}

// Close implements io.Closer. The broker is left connected.
func (p *ReadWriter) Close() (err error) {
	p.once.Do(func() {
		close(p.done)
		err = p.sub.Close()
	})
	return
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	frame := make([]byte, len(payload))
	copy(frame, payload)
	select {
	case p.frameCh <- frame:
	case <-p.done:
	}
}

// Conn is a ReadWriter owning its broker connection.
type Conn struct {
	*ReadWriter
}

// Dial connects to the broker at brokerURL and links board selfID with
// the board named by the "peer" query parameter.
func Dial(brokerURL, selfID string) (*Conn, error) {
	u, err := url.Parse(brokerURL)
	if err != nil {
		return nil, err
	}
	peerID := u.Query().Get("peer")
	if peerID == "" {
		return nil, ErrNoPeer
	}
	if selfID == "" || selfID == peerID {
		return nil, ErrInvalidID
	}
	opts, topicPrefix := ClientOptionsFromURL(u)
	if opts.ClientID == "" {
		opts.SetClientID("tictac-" + selfID)
	}
	b := NewBroker(opts, topicPrefix)
	conn := &Conn{ReadWriter: NewReadWriter(b, selfID, peerID)}
	if err = b.Connect(); err != nil {
		conn.ReadWriter.Close()
		return nil, err
	}
	return conn, nil
}

// Close implements io.Closer.
func (c *Conn) Close() error {
	err := c.ReadWriter.Close()
	c.Broker.Close()
	return err
}
