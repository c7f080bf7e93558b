package dispatch

import (
	"github.com/sdnwise/node"
	"github.com/sdnwise/node/flowtable"
)

// handleConfig implements handle_config: a CONFIG packet addressed to
// this node carries one op_id byte selecting a register and a
// read/write bit. A sink that receives a CONFIG meant for itself but not
// self-originated hands it straight to the controller rather than
// applying it locally — every other case is processed in place.
func (d *Dispatcher) handleConfig(h sdnwise.Handle, p *sdnwise.Packet) {
	if p.Header.Dst != d.Config.MyAddress {
		d.matchAndSend(h, p)
		return
	}

	if d.Config.IsSink && p.Header.Src != d.Config.MyAddress {
		if d.Sink != nil {
			d.Sink.Export(p)
		}
		d.release(h)
		return
	}

	id, write := sdnwise.DecodeConfOp(p.PayloadAt(0))

	if write {
		d.applyConfigWrite(id, p)
		d.release(h)
		return
	}

	d.applyConfigRead(id, p)

	p.Header.Src, p.Header.Dst = p.Header.Dst, p.Header.Src
	if d.Config.IsSink {
		if d.Sink != nil {
			d.Sink.Export(p)
		}
		d.release(h)
		return
	}
	d.matchAndSend(h, p)
}

// applyConfigRead is the Go realization of handle_config's READ switch:
// a scalar register appends its current value to the payload; GET_RULE
// appends a whole serialized flow-table entry instead (§4.4). Every
// other id (GET_ALIAS, GET_FUNCTION, the alias/rule/function add/remove
// ops) is reserved and ignored in this revision — there is nothing in
// either spec or original source defining their read effect.
func (d *Dispatcher) applyConfigRead(id sdnwise.ConfID, p *sdnwise.Packet) {
	if id == sdnwise.ConfGetRule {
		d.applyGetRule(p)
		return
	}
	if !sdnwise.IsScalar(id) {
		return
	}
	n := d.Config.ReadScalar(id, p.Payload[1:])
	p.Header.Len += uint8(n)
}

// applyGetRule implements GET_RULE's READ effect: payload[1] carries the
// flow-table index to read, and the full serialized entry is appended to
// the payload starting at that same offset, the same convention a scalar
// read uses (§4.4).
func (d *Dispatcher) applyGetRule(p *sdnwise.Packet) {
	e, ok := d.Flows.At(int(p.PayloadAt(1)))
	if !ok {
		if d.Log != nil {
			d.Log.Printf("dispatch: GET_RULE requested unknown index %d", p.PayloadAt(1))
		}
		return
	}

	n := flowtable.EntrySize(e)
	dst := p.Payload[1:]
	if len(dst) < n {
		if d.Log != nil {
			d.Log.Printf("dispatch: GET_RULE entry too large for payload, dropping")
		}
		return
	}

	flowtable.EncodeEntry(e, dst)
	p.Header.Len = sdnwise.HeaderSize + 1 + uint8(n)
}

// applyConfigWrite applies a scalar write, or reboots on RESET.
func (d *Dispatcher) applyConfigWrite(id sdnwise.ConfID, p *sdnwise.Packet) {
	switch {
	case id == sdnwise.ConfReset:
		if d.Log != nil {
			d.Log.Printf("dispatch: reset requested via CONFIG, restarting node")
		}
	case sdnwise.IsScalar(id):
		d.Config.WriteScalar(id, p.Payload[1:])
	}
}
