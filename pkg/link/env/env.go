// Package env opens the link to the peer board from a URL.
package env

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/tictac.go/pkg/link/mqtt"
	"github.com/robotalks/tictac.go/pkg/link/stream"
	"github.com/robotalks/tictac.go/pkg/link/websocket"
	"github.com/robotalks/tictac.go/pkg/peer"
)

// SchemeError indicates the link URL scheme is not supported.
type SchemeError struct {
	Scheme string
}

// Error implements error.
func (e *SchemeError) Error() string {
	return fmt.Sprintf("unknown link URL scheme: %q", e.Scheme)
}

// Config provides options to open the link.
type Config struct {
	// URL specifies the transport, one of
	//   serial:///dev/ttyUSB0
	//   tcp://host:port
	//   tcplisten://:port
	//   mqtt://host:port/topic-prefix/?peer=ID
	//   ws://host:port/path
	//   wslisten://:port/path
	URL string
	// ID identifies this board on shared transports.
	ID string
}

var defaultConfig = Config{
	URL: "tcplisten://:7070",
}

func init() {
	if val := os.Getenv("TICTAC_LINK"); val != "" {
		defaultConfig.URL = val
	}
	if val := os.Getenv("TICTAC_ID"); val != "" {
		defaultConfig.ID = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.URL, "link", defaultConfig.URL, "Link URL to the peer board.")
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Board ID, defaults to machine ID.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Open opens the transport. Listening schemes block until the peer
// connects or ctx is done.
func (c *Config) Open(ctx context.Context) (peer.FrameReadWriter, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid link URL: %v", err)
	}
	switch u.Scheme {
	case "serial":
		f, err := os.OpenFile(u.Path, os.O_RDWR, 0)
		if err != nil {
			return nil, err
		}
		glog.Infof("link on serial %s", u.Path)
		return stream.New(f), nil
	case "tcp":
		var dialer net.Dialer
		conn, err := dialer.DialContext(ctx, "tcp", u.Host)
		if err != nil {
			return nil, err
		}
		glog.Infof("link connected to %s", u.Host)
		return stream.New(conn), nil
	case "tcplisten":
		conn, err := acceptOne(ctx, u.Host)
		if err != nil {
			return nil, err
		}
		return stream.New(conn), nil
	case "mqtt":
		conn, err := mqtt.Dial(c.URL, c.ID)
		if err != nil {
			return nil, err
		}
		return conn, nil
	case "ws", "wss":
		conn, err := websocket.Dial(c.URL)
		if err != nil {
			return nil, err
		}
		return conn, nil
	case "wslisten":
		conn, err := websocket.Accept(ctx, u.Host, u.Path)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
	return nil, &SchemeError{Scheme: u.Scheme}
}

// MustOpen opens the transport and fails on error.
func (c *Config) MustOpen(ctx context.Context) peer.FrameReadWriter {
	rw, err := c.Open(ctx)
	if err != nil {
		log.Fatalln(err)
	}
	return rw
}

func acceptOne(ctx context.Context, addr string) (net.Conn, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	defer ln.Close()
	glog.Infof("waiting for peer on %s", ln.Addr())
	type result struct {
		conn net.Conn
		err  error
	}
	resCh := make(chan result, 1)
	go func() {
		conn, err := ln.Accept()
		resCh <- result{conn, err}
	}()
	select {
	case res := <-resCh:
		if res.err == nil {
			glog.Infof("peer connected from %s", res.conn.RemoteAddr())
		}
		return res.conn, res.err
	case <-ctx.Done():
		ln.Close()
		return nil, ctx.Err()
	}
}
