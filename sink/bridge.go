//go:build !windows

// Package sink implements the sink node's bridge to the network
// controller: a framed byte stream carrying serialized packets, over
// either a raw serial port or a TCP connection, the Go realization of
// the original firmware's UART_RECEIVE_EVENT/print_packet_uart path.
package sink

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/sdnwise/node"
)

// Bridge exports packets from a sink node to a controller and, in the
// other direction, decodes controller-issued frames back into pool
// slots. It never touches the dispatcher directly: it implements
// dispatch.Sink (Export) and radio.Receiver (Receive) itself, and
// cmd/sdnwise-node hands it to the dispatcher and the orchestrator as is.
type Bridge struct {
	rw   io.ReadWriter
	pool *sdnwise.Pool
	log  *log.Logger

	mu     sync.Mutex
	closer io.Closer
}

// NewSerialBridge opens path as a raw-mode serial port at the given baud
// rate (as a termios speed constant, e.g. unix.B115200) and wraps it in
// a Bridge. Raw mode disables line buffering, echo and signal
// generation, mirroring the UART configuration the original firmware's
// host-side tools expect.
func NewSerialBridge(path string, baud uint32, pool *sdnwise.Pool, logger *log.Logger) (*Bridge, error) {
	f, err := os.OpenFile(path, os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("sink: opening serial port %s: %w", path, err)
	}
	if err := setRawMode(f, baud); err != nil {
		f.Close()
		return nil, err
	}
	return &Bridge{rw: f, pool: pool, log: logger, closer: f}, nil
}

// NewStreamBridge wraps an already-connected stream (typically a TCP
// connection accepted by a development listener) in a Bridge.
func NewStreamBridge(conn net.Conn, pool *sdnwise.Pool, logger *log.Logger) *Bridge {
	return &Bridge{rw: conn, pool: pool, log: logger, closer: conn}
}

// setRawMode configures f's underlying file descriptor for 8N1 raw
// serial I/O at baud, via termios ioctls — the Unix analogue of the
// original host tooling's UART configuration.
func setRawMode(f *os.File, baud uint32) error {
	fd := int(f.Fd())
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("sink: reading termios: %w", err)
	}

	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB
	t.Cflag |= unix.CS8
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0
	t.Ispeed = baud
	t.Ospeed = baud

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, t); err != nil {
		return fmt.Errorf("sink: applying termios: %w", err)
	}
	return nil
}

// Export serializes pkt and writes it to the bridge, the Go realization
// of print_packet_uart. There is no length prefix beyond the header's own
// Len byte: the frame is exactly Serialize's output, and the far end's
// framer keys off LenIndex the same way Receive does below (§6).
func (b *Bridge) Export(pkt *sdnwise.Packet) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.rw.Write(sdnwise.Serialize(pkt)); err != nil {
		b.logf("write frame: %v", err)
	}
}

// Receive blocks until one frame arrives, or ctx is canceled, and parses
// it into a freshly allocated pool slot. It reads the fixed header first,
// then uses the header's own declared length (at sdnwise.LenIndex) to
// know how many more bytes complete the frame — the same two-phase read
// the original firmware's UART framer performs (§6), with no separate
// length prefix. Bridge satisfies radio.Receiver so a sink can treat
// controller traffic the same way a regular node treats radio traffic.
func (b *Bridge) Receive(ctx context.Context) (sdnwise.Handle, *sdnwise.Packet, error) {
	type result struct {
		h   sdnwise.Handle
		p   *sdnwise.Packet
		err error
	}
	done := make(chan result, 1)

	go func() {
		header := make([]byte, sdnwise.HeaderSize)
		if _, err := io.ReadFull(b.rw, header); err != nil {
			done <- result{err: err}
			return
		}

		declared := int(header[sdnwise.LenIndex])
		if declared < sdnwise.HeaderSize || declared > sdnwise.MaxPacketLength {
			done <- result{err: sdnwise.ErrTruncatedFrame}
			return
		}

		frame := make([]byte, declared)
		copy(frame, header)
		if declared > sdnwise.HeaderSize {
			if _, err := io.ReadFull(b.rw, frame[sdnwise.HeaderSize:]); err != nil {
				done <- result{err: err}
				return
			}
		}

		h, p, err := b.pool.Parse(frame)
		done <- result{h: h, p: p, err: err}
	}()

	select {
	case <-ctx.Done():
		return sdnwise.NilHandle, nil, ctx.Err()
	case r := <-done:
		return r.h, r.p, r.err
	}
}

// Close releases the underlying transport.
func (b *Bridge) Close() error {
	if b.closer != nil {
		return b.closer.Close()
	}
	return nil
}

func (b *Bridge) logf(format string, args ...any) {
	if b.log != nil {
		b.log.Printf("sink: "+format, args...)
	}
}
