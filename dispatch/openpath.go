package dispatch

import (
	"github.com/sdnwise/node"
	"github.com/sdnwise/node/flowtable"
)

// OPEN_PATH payload layout (§4.4): a window count byte, that many
// Window-sized predicate templates, then a sequence of 2-byte addresses
// describing the path end to end.
const (
	openPathWindowCountIndex = 0
	openPathWindowsStart     = 1
)

// handleOpenPath implements handle_open_path: a path-setup packet lists
// every node along a source-to-destination route. Each node installs up
// to two flow table entries — one forwarding traffic addressed to the
// path's first node back the way it came, one forwarding traffic
// addressed to the path's last node onward — and, unless it is the last
// node in the path, relays the setup packet to the next hop so the rest
// of the path can learn its own entries.
func (d *Dispatcher) handleOpenPath(h sdnwise.Handle, p *sdnwise.Packet) {
	nWindows := int(p.PayloadAt(openPathWindowCountIndex))
	start := nWindows*flowtable.WindowWireSize + openPathWindowsStart
	end := p.PayloadLen()
	pathLen := (end - start) / sdnwise.AddressLength

	myIndex := -1
	myPosition := 0
	for i := start; i < end; i += sdnwise.AddressLength {
		addr := sdnwise.AddressFromBytes(p.Payload[i:])
		if addr == d.Config.MyAddress {
			myIndex = i
			break
		}
		myPosition++
	}

	if myIndex == -1 {
		if d.Log != nil {
			d.Log.Printf("dispatch: this node is not on the advertised path, matching")
		}
		d.matchAndSend(h, p)
		return
	}

	templates := d.loadPathWindows(p, nWindows)

	if myPosition > 0 {
		prev := myIndex - sdnwise.AddressLength
		first := start
		d.installPathEntry(p, templates, sdnwise.AddressFromBytes(p.Payload[first:]), sdnwise.AddressFromBytes(p.Payload[prev:]))
	}

	if myPosition < pathLen-1 {
		next := myIndex + sdnwise.AddressLength
		last := end - sdnwise.AddressLength
		nextAddr := sdnwise.AddressFromBytes(p.Payload[next:])
		d.installPathEntry(p, templates, sdnwise.AddressFromBytes(p.Payload[last:]), nextAddr)

		p.Header.Nxh = nextAddr
		p.Header.Dst = nextAddr
		if err := d.Radio.SendUnicast(p); err != nil && d.Log != nil {
			d.Log.Printf("dispatch: open path relay failed: %v", err)
		}
		d.release(h)
		return
	}

	d.release(h)
}

// loadPathWindows decodes the n template windows carried in the OPEN_PATH
// payload, the extra predicates every installed entry must also satisfy.
func (d *Dispatcher) loadPathWindows(p *sdnwise.Packet, n int) []flowtable.Window {
	out := make([]flowtable.Window, n)
	for i := 0; i < n; i++ {
		off := i*flowtable.WindowWireSize + openPathWindowsStart
		out[i] = flowtable.DecodeWindow(p.Payload[off:])
	}
	return out
}

// installPathEntry builds and installs one learned flow table entry: a
// destination-address window equal to dst, the path's extra template
// windows, and a FORWARD_U action toward nextHop.
func (d *Dispatcher) installPathEntry(p *sdnwise.Packet, templates []flowtable.Window, dst, nextHop sdnwise.Address) {
	e := flowtable.Entry{
		Actions: []flowtable.Action{{Type: flowtable.ActionForwardUnicast, Value: nextHop.Uint16()}},
		TTL:     d.Config.RuleTTL,
	}
	e.Windows[0] = flowtable.Window{
		Operation:   flowtable.OpEqual,
		Size:        flowtable.Size2,
		LHSLocation: flowtable.LocationPacket,
		LHS:         sdnwise.DstIndex,
		RHSLocation: flowtable.LocationConst,
		RHS:         dst.Uint16(),
	}
	for i := range e.Windows {
		if i == 0 {
			continue
		}
		if i-1 < len(templates) {
			e.Windows[i] = templates[i-1]
		} else {
			e.Windows[i] = flowtable.AlwaysTrueWindow()
		}
	}

	if _, err := d.Flows.Add(e); err != nil && d.Log != nil {
		d.Log.Printf("dispatch: installing learned path entry: %v", err)
	}
}
