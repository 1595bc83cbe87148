// Package websocket carries peer frames as websocket binary messages.
package websocket

import (
	"context"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"
)

// ReadWriter implements peer.FrameReadWriter, one frame per message.
type ReadWriter websocket.Conn

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *ReadWriter {
	return (*ReadWriter)(conn)
}

// ReadFrame implements peer.FrameReader.
func (p *ReadWriter) ReadFrame() (frame []byte, err error) {
	err = websocket.Message.Receive((*websocket.Conn)(p), &frame)
	return
}

// WriteFrame implements peer.FrameWriter.
func (p *ReadWriter) WriteFrame(frame []byte) error {
	return websocket.Message.Send((*websocket.Conn)(p), frame)
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	return (*websocket.Conn)(p).Close()
}

// Dial connects to the peer serving on url.
func Dial(url string) (*ReadWriter, error) {
	conn, err := websocket.Dial(url, "", "http://localhost/")
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// ServerConn is the peer connection accepted by Accept.
type ServerConn struct {
	*ReadWriter

	server   *http.Server
	released chan struct{}
	once     sync.Once
}

// Close implements io.Closer, also shutting down the server.
func (c *ServerConn) Close() error {
	err := c.ReadWriter.Close()
	c.once.Do(func() {
		close(c.released)
		c.server.Close()
	})
	return err
}

// Accept listens on addr and waits for the peer to connect on path.
// Only the first connection is accepted.
func Accept(ctx context.Context, addr, path string) (*ServerConn, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return AcceptOn(ctx, ln, path)
}

// AcceptOn is Accept with an existing listener.
func AcceptOn(ctx context.Context, ln net.Listener, path string) (*ServerConn, error) {
	conn := &ServerConn{released: make(chan struct{})}
	connCh := make(chan *websocket.Conn, 1)
	var accepted int32
	// the handler must not return until the link is done with the conn.
	var handler websocket.Handler = func(wsConn *websocket.Conn) {
		if !atomic.CompareAndSwapInt32(&accepted, 0, 1) {
			glog.Warningf("reject extra peer from %s", wsConn.Request().RemoteAddr)
			return
		}
		connCh <- wsConn
		<-conn.released
	}
	if path == "" {
		path = "/"
	}
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	conn.server = &http.Server{Handler: mux}
	go conn.server.Serve(ln)
	glog.Infof("waiting for peer on ws://%s%s", ln.Addr(), path)
	select {
	case wsConn := <-connCh:
		glog.Infof("peer connected from %s", wsConn.Request().RemoteAddr)
		conn.ReadWriter = New(wsConn)
		return conn, nil
	case <-ctx.Done():
		conn.server.Close()
		return nil, ctx.Err()
	}
}
