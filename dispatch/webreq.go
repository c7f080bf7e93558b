package dispatch

import "github.com/sdnwise/node"

// handleWebReq implements handle_web_req: a WEB_REQ packet carries an
// opaque HTTP-bridge payload for the sink's web interface. A request
// addressed to this node is turned into a reply in place (addresses
// swapped, routed back toward the sink) and sent on; anything else is
// just forwarded.
func (d *Dispatcher) handleWebReq(h sdnwise.Handle, p *sdnwise.Packet) {
	msgID := p.PayloadAt(0)

	if d.Log != nil {
		d.Log.Printf("WEB: [message_id: %d, src: %s, dst: %s]", msgID, p.Header.Src, p.Header.Dst)
	}

	if p.Header.Dst == d.Config.MyAddress {
		p.Header.Dst = p.Header.Src
		p.Header.Src = d.Config.MyAddress
		p.Header.Nxh = d.Config.NxhVsSink
		// The original firmware stamps a fixed two-byte status code into
		// the reply payload at this point; the meaning is undocumented
		// upstream, so it is carried forward unchanged here.
		p.SetPayloadAt(1, 5)
		p.SetPayloadAt(2, 5)
		d.matchAndSend(h, p)
		return
	}

	if d.Log != nil {
		d.Log.Printf("FWD: [message_id: %d, src: %s, dst: %s]", msgID, p.Header.Src, p.Header.Dst)
	}
	d.matchAndSend(h, p)
}
