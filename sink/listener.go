//go:build !windows

package sink

import (
	"context"
	"fmt"
	"log"
	"net"

	"github.com/sdnwise/node"
)

// Listener accepts a single controller connection over TCP and hands it
// back as a Bridge, a development-mode stand-in for a physical serial
// link to the sink's host controller. Adapted from the original
// transparent-proxy's accept loop: no SOCKS5 relaying here, just framed
// packet exchange with whichever controller connects first.
type Listener struct {
	listener net.Listener
	pool     *sdnwise.Pool
	log      *log.Logger
}

// NewListener starts listening on addr (e.g. ":7000").
func NewListener(addr string, pool *sdnwise.Pool, logger *log.Logger) (*Listener, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("sink: listening on %s: %w", addr, err)
	}
	return &Listener{listener: l, pool: pool, log: logger}, nil
}

// Addr returns the address the listener is bound to.
func (l *Listener) Addr() net.Addr {
	return l.listener.Addr()
}

// Accept blocks for the next controller connection, or until ctx is
// canceled, and wraps it in a Bridge.
func (l *Listener) Accept(ctx context.Context) (*Bridge, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	done := make(chan result, 1)
	go func() {
		conn, err := l.listener.Accept()
		done <- result{conn: conn, err: err}
	}()

	select {
	case <-ctx.Done():
		l.listener.Close()
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		return NewStreamBridge(r.conn, l.pool, l.log), nil
	}
}

// Close stops accepting new connections.
func (l *Listener) Close() error {
	return l.listener.Close()
}
