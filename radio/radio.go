// Package radio defines the node's link-layer transmit/receive seam: the
// dispatcher and orchestrator depend on these interfaces, not on any
// concrete transport, so the same logic drives a real radio, a serial
// bridge in development, or a test double.
package radio

import (
	"context"

	"github.com/sdnwise/node"
)

// UnicastTransmitter sends a packet to the address in its header's Nxh
// field (the next hop, not necessarily the final destination).
type UnicastTransmitter interface {
	SendUnicast(pkt *sdnwise.Packet) error
}

// BroadcastTransmitter sends a packet to every neighbor within radio
// range, used for beacons and rebroadcasts.
type BroadcastTransmitter interface {
	SendBroadcast(pkt *sdnwise.Packet) error
}

// Transmitter is the union the dispatcher needs to forward packets.
type Transmitter interface {
	UnicastTransmitter
	BroadcastTransmitter
}

// Receiver yields inbound frames along with their link-layer metadata
// (RSSI, sender address), already parsed into a pool slot. Receive must
// return promptly with ctx.Err() once ctx is canceled, so the
// orchestrator's receive loop can shut down without leaking a goroutine
// blocked on a transport read.
type Receiver interface {
	Receive(ctx context.Context) (sdnwise.Handle, *sdnwise.Packet, error)
}
