package dispatch

import "github.com/sdnwise/node"

// handleReport implements handle_report: REQUEST and REPORT packets
// addressed to this node are either exported to the controller, if this
// node is the sink, or forwarded one hop closer to the sink otherwise
// (§4.6). Unlike DATA, a REPORT never consults the flow table — its
// route toward the sink is always the tree's current next hop.
func (d *Dispatcher) handleReport(h sdnwise.Handle, p *sdnwise.Packet) {
	if d.Config.IsSink {
		if d.Sink != nil {
			d.Sink.Export(p)
		}
		d.release(h)
		return
	}

	p.Header.Nxh = d.Config.NxhVsSink
	if err := d.Radio.SendUnicast(p); err != nil && d.Log != nil {
		d.Log.Printf("dispatch: report forward failed: %v", err)
	}
	d.release(h)
}
