package dispatch

import (
	"github.com/sdnwise/node"
	"github.com/sdnwise/node/flowtable"
)

// handleResponse implements handle_response: a RESPONSE addressed to
// this node carries a single flow table entry (the controller's answer
// to an earlier ASK), which is installed directly; anything
// else is forwarded.
func (d *Dispatcher) handleResponse(h sdnwise.Handle, p *sdnwise.Packet) {
	if p.Header.Dst != d.Config.MyAddress {
		d.matchAndSend(h, p)
		return
	}

	if p.PayloadLen() >= flowtable.MinEntryWireSize {
		e, err := flowtable.DecodeEntry(p.Payload[:p.PayloadLen()])
		if err != nil {
			if d.Log != nil {
				d.Log.Printf("dispatch: decoding entry from response: %v", err)
			}
			d.release(h)
			return
		}
		if _, err := d.Flows.Add(e); err != nil && d.Log != nil {
			d.Log.Printf("dispatch: installing entry from response: %v", err)
		}
	}
	d.release(h)
}
