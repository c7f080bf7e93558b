//go:build !windows

package sink

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdnwise/node"
)

func TestBridgeExportAndReceiveRoundTrip(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	poolA := sdnwise.NewPool(4, nil)
	poolB := sdnwise.NewPool(4, nil)

	exporter := NewStreamBridge(clientConn, poolA, nil)
	receiver := NewStreamBridge(serverConn, poolB, nil)

	h, p, err := poolA.Allocate()
	require.NoError(t, err)
	p.Header.Net = 7
	p.Header.Typ = sdnwise.TypeData
	p.Header.Src = sdnwise.AddressFromUint16(1)
	p.Header.Dst = sdnwise.AddressFromUint16(2)
	p.Header.Len = sdnwise.HeaderSize

	go exporter.Export(p)
	poolA.Release(h)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, got, err := receiver.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint8(7), got.Header.Net)
	assert.Equal(t, sdnwise.TypeData, got.Header.Typ)
	assert.Equal(t, sdnwise.AddressFromUint16(2), got.Header.Dst)
}

func TestBridgeExportAndReceiveRoundTripWithPayload(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	poolA := sdnwise.NewPool(4, nil)
	poolB := sdnwise.NewPool(4, nil)

	exporter := NewStreamBridge(clientConn, poolA, nil)
	receiver := NewStreamBridge(serverConn, poolB, nil)

	h, p, err := poolA.Allocate()
	require.NoError(t, err)
	p.Header.Net = 7
	p.Header.Typ = sdnwise.TypeData
	p.Header.Src = sdnwise.AddressFromUint16(1)
	p.Header.Dst = sdnwise.AddressFromUint16(2)
	p.SetPayloadAt(0, 0x11)
	p.SetPayloadAt(1, 0x22)
	p.Header.Len = sdnwise.HeaderSize + 2

	go exporter.Export(p)
	poolA.Release(h)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, got, err := receiver.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, byte(0x11), got.PayloadAt(0))
	assert.Equal(t, byte(0x22), got.PayloadAt(1))
}

func TestBridgeReceiveRespectsContextCancellation(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	pool := sdnwise.NewPool(4, nil)
	receiver := NewStreamBridge(serverConn, pool, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := receiver.Receive(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
