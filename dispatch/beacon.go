package dispatch

import "github.com/sdnwise/node"

// Beacon payload layout (§4.4): hop count, battery, tree version, depth
// (duplicate of hop count, carried for parity with the original wire
// format) and a type tag distinguishing tree beacons from any future
// beacon subtype.
const (
	beaconHopsIndex         = 0
	beaconBattIndex         = 1
	beaconTreeVersionIndex  = 2
	beaconDepthIndex        = 3
	beaconTypeIndex         = 4
	beaconTypeTree     byte = 0
)

// handleBeacon implements handle_beacon: every beacon updates the
// neighbor table regardless of content, but only a tree beacon carrying
// a better (or authoritatively rolled-back) tree can update this node's
// position in the routing tree. The sink never updates its own tree
// state from a beacon it did not originate.
func (d *Dispatcher) handleBeacon(h sdnwise.Handle, p *sdnwise.Packet) {
	d.Neighbors.Add(p.Header.Src, p.Info.RSSI)

	if p.PayloadAt(beaconTypeIndex) != beaconTypeTree {
		d.release(h)
		return
	}

	if !d.Config.IsSink {
		tv := p.PayloadAt(beaconTreeVersionIndex)
		hops := p.PayloadAt(beaconDepthIndex)

		// Signed 8-bit wraparound check (§9 open question): a received
		// version more than 2 behind the current one, in the 8-bit
		// signed sense, is an authoritative rollback (the sink reset
		// its tree), not a stale duplicate to be ignored.
		diff := int8(tv) - int8(d.Config.TreeVersion)
		if diff < -2 {
			d.Config.TreeVersion = tv
			d.release(h)
			return
		}

		switch {
		case tv > d.Config.TreeVersion:
			d.adoptParent(p, tv, hops)
			d.BroadcastTreeBeacon()
		case tv == d.Config.TreeVersion:
			if hops+1 < d.Config.HopsFromSink {
				d.adoptParent(p, tv, hops)
				d.BroadcastTreeBeacon()
			}
		}
	}

	d.release(h)
}

// adoptParent records p's sender as this node's new parent toward the
// sink, at the given tree version and upstream hop count.
func (d *Dispatcher) adoptParent(p *sdnwise.Packet, treeVersion, hopsFromSink uint8) {
	d.Config.TreeVersion = treeVersion
	d.Config.HopsFromSink = hopsFromSink + 1
	d.Config.NxhVsSink = p.Header.Src
	d.Config.DistanceFromSink = p.Info.RSSI
	d.Config.SinkAddress = p.Header.Nxh
}

// BroadcastTreeBeacon builds and broadcasts this node's own tree beacon,
// advertising its (possibly just-updated) position so children can in
// turn update theirs — send_updated_tree_message in the original. The
// orchestrator's beacon timer calls this directly for the periodic
// advertisement; handleBeacon calls it again whenever a neighbor's
// beacon changes this node's own position in the tree.
func (d *Dispatcher) BroadcastTreeBeacon() {
	h, out, err := d.Pool.Allocate()
	if err != nil {
		if d.Log != nil {
			d.Log.Printf("dispatch: tree rebroadcast dropped, pool exhausted: %v", err)
		}
		return
	}

	out.Header.Net = d.Config.MyNet
	out.Header.Dst = sdnwise.BroadcastAddress
	out.Header.Src = d.Config.MyAddress
	out.Header.Typ = sdnwise.TypeBeacon
	out.Header.Nxh = d.Config.SinkAddress
	out.Header.TTL = d.Config.PacketTTL
	out.Header.Len = sdnwise.HeaderSize + beaconTypeIndex + 1

	out.SetPayloadAt(beaconHopsIndex, d.Config.HopsFromSink)
	out.SetPayloadAt(beaconBattIndex, 0)
	out.SetPayloadAt(beaconTreeVersionIndex, d.Config.TreeVersion)
	out.SetPayloadAt(beaconDepthIndex, d.Config.HopsFromSink)
	out.SetPayloadAt(beaconTypeIndex, beaconTypeTree)

	if d.Log != nil {
		d.Log.Printf("TREE: [id: %d, depth: %d, next_hop: %s]",
			d.Config.TreeVersion, d.Config.HopsFromSink, d.Config.NxhVsSink)
	}

	if err := d.Radio.SendBroadcast(out); err != nil && d.Log != nil {
		d.Log.Printf("dispatch: tree rebroadcast failed: %v", err)
	}
	d.release(h)
}
