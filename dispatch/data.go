package dispatch

import "github.com/sdnwise/node"

// DATA payload layout: a running hop count at byte 0, opaque message id
// at byte 1, application payload after that (§4.2).
const (
	dataHopsIndex      = 0
	dataMessageIDIndex = 1
)

// handleData implements handle_data: a packet addressed to this node at
// the network layer is consumed and its hop count folded into the
// running average; otherwise it is counted in PacketsUCSentTotal and
// handed to the flow table.
func (d *Dispatcher) handleData(h sdnwise.Handle, p *sdnwise.Packet) {
	hops := p.PayloadAt(dataHopsIndex)
	msgID := p.PayloadAt(dataMessageIDIndex)

	if p.Header.Dst == d.Config.MyAddress {
		if d.Log != nil {
			d.Log.Printf("RXU: [message_id: %d.%d, src: %s, dst: %s, ttl: %d]",
				p.Header.Src[1], msgID, p.Header.Src, p.Header.Dst, d.Config.PacketTTL-hops)
		}
		d.Stats.RecordDelivered(hops)
		d.release(h)
		return
	}

	d.Stats.PacketsUCSentTotal++
	if d.Log != nil {
		d.Log.Printf("RXU: [message_id: %d.%d, src: %s, dst: %s, ttl: %d]",
			p.Header.Src[1], msgID, p.Header.Src, p.Header.Dst, d.Config.PacketTTL-hops)
	}
	d.matchAndSend(h, p)
}
