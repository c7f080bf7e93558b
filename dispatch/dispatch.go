// Package dispatch implements the node's packet-handling state machine:
// the top-level handle_packet filter and its per-type handlers, ported
// from the original firmware's packet-handler.c.
package dispatch

import (
	"log"

	"github.com/sdnwise/node"
	"github.com/sdnwise/node/flowtable"
	"github.com/sdnwise/node/neighbor"
	"github.com/sdnwise/node/radio"
)

// Sink receives packets this node has nowhere else to forward — either
// because it is itself the sink (print/export to the controller) or
// because a CONFIG read response must leave the network entirely when
// this node is the sink's own local console.
type Sink interface {
	Export(pkt *sdnwise.Packet)
}

// Dispatcher holds everything handle_packet and its sub-handlers need:
// node configuration, the packet pool, the neighbor and flow tables, and
// the outward-facing radio and sink. One Dispatcher exists per node, and
// — like the original firmware's single-threaded Contiki processes — it
// is only ever driven from the orchestrator's cooperative event loop, so
// none of its methods take a lock.
type Dispatcher struct {
	Config    *sdnwise.Config
	Pool      *sdnwise.Pool
	Neighbors *neighbor.Table
	Flows     *flowtable.Table
	Stats     *sdnwise.Counters
	Radio     radio.Transmitter
	Sink      Sink
	Log       *log.Logger
}

// New builds a Dispatcher from its collaborators.
func New(cfg *sdnwise.Config, pool *sdnwise.Pool, neighbors *neighbor.Table, flows *flowtable.Table, stats *sdnwise.Counters, r radio.Transmitter, sink Sink, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		Config:    cfg,
		Pool:      pool,
		Neighbors: neighbors,
		Flows:     flows,
		Stats:     stats,
		Radio:     r,
		Sink:      sink,
		Log:       logger,
	}
}

// Handle is the top-level entry point, the Go realization of
// handle_packet: it filters on RSSI and network id, special-cases
// BEACON (which is processed regardless of next-hop addressing), then —
// for every other type addressed to this node at the link layer — counts
// the receive and dispatches to the type-specific handler. Anything that
// fails the filter, or that is link-layer addressed to someone else, is
// dropped and its handle released (§4.1, §7).
func (d *Dispatcher) Handle(h sdnwise.Handle) {
	p, err := d.Pool.Get(h)
	if err != nil {
		if d.Log != nil {
			d.Log.Printf("dispatch: %v", err)
		}
		return
	}

	if p.Info.RSSI < d.Config.RSSIMin || p.Header.Net != d.Config.MyNet {
		d.release(h)
		return
	}

	if p.Header.Typ == sdnwise.TypeBeacon {
		d.handleBeacon(h, p)
		return
	}

	if p.Header.Nxh != d.Config.MyAddress {
		if d.Log != nil {
			d.Log.Printf("dispatch: dropped packet not addressed to this node at link layer")
		}
		d.release(h)
		return
	}

	d.Neighbors.RxInc(p.Info.Sender)
	d.Stats.RecordUnicastReceived()

	switch p.Header.Typ {
	case sdnwise.TypeData:
		d.handleData(h, p)
	case sdnwise.TypeResponse:
		d.handleResponse(h, p)
	case sdnwise.TypeOpenPath:
		d.handleOpenPath(h, p)
	case sdnwise.TypeConfig:
		d.handleConfig(h, p)
	case sdnwise.TypeWebReq:
		d.handleWebReq(h, p)
	default:
		// REQUEST and REPORT share the same "forward toward the sink,
		// or print if this node is the sink" treatment (§4.6).
		d.handleReport(h, p)
	}
}

// release returns h to the pool, logging but not panicking on an
// already-released handle.
func (d *Dispatcher) release(h sdnwise.Handle) {
	if err := d.Pool.Release(h); err != nil && d.Log != nil {
		d.Log.Printf("dispatch: %v", err)
	}
}

// Forward runs the flow table against a locally originated packet and
// applies whatever it finds, the same as matchAndSend but exported for
// callers outside the package (the orchestrator's message generator)
// that build a packet and want it routed without going through the
// link-layer-addressed filtering of Handle.
func (d *Dispatcher) Forward(h sdnwise.Handle, p *sdnwise.Packet) {
	d.matchAndSend(h, p)
}

// matchAndSend runs the flow table against p and applies whatever it
// finds, the Go realization of match_packet: FORWARD_U sets the next hop
// and unicasts, FORWARD_B broadcasts, DROP releases the handle, and ASK
// hands the packet to the sink as an escalation when no local policy
// resolves it. MODIFY never reaches this switch — Flows.Match already
// applied it in place and continued on to whichever of these four
// actions follows it in the entry's action list (§4.3). A table with no
// matching entry at all is treated the same as DROP.
func (d *Dispatcher) matchAndSend(h sdnwise.Handle, p *sdnwise.Packet) {
	res := d.Flows.Match(p, d.Config)
	if !res.Matched {
		if d.Log != nil {
			d.Log.Printf("dispatch: no flow table entry matched, dropping")
		}
		d.release(h)
		return
	}

	switch res.Action.Type {
	case flowtable.ActionForwardUnicast:
		p.Header.Nxh = res.Target
		if err := d.Radio.SendUnicast(p); err != nil && d.Log != nil {
			d.Log.Printf("dispatch: unicast send failed: %v", err)
		}
		d.release(h)
	case flowtable.ActionForwardBroadcast:
		p.Header.Dst = sdnwise.BroadcastAddress
		if err := d.Radio.SendBroadcast(p); err != nil && d.Log != nil {
			d.Log.Printf("dispatch: broadcast send failed: %v", err)
		}
		d.release(h)
	case flowtable.ActionAsk:
		if d.Sink != nil {
			d.Sink.Export(p)
		}
		d.release(h)
	default: // ActionDrop
		d.release(h)
	}
}
