package orchestrator

import "github.com/sdnwise/node"

// sendReport builds a REPORT packet — sensor readings followed by the
// whole neighbor table — and routes it toward the sink, the Go
// realization of create_report()+rf_unicast_send (§4.2, Supplemented
// features).
func (n *Node) sendReport() {
	h, p, err := n.Pool.Allocate()
	if err != nil {
		if n.Log != nil {
			n.Log.Printf("orchestrator: report dropped, pool exhausted: %v", err)
		}
		return
	}

	p.Header.Net = n.Config.MyNet
	p.Header.Src = n.Config.MyAddress
	p.Header.Dst = n.Config.SinkAddress
	p.Header.Typ = sdnwise.TypeReport
	p.Header.Nxh = n.Config.NxhVsSink
	p.Header.TTL = n.Config.PacketTTL

	if n.Sensors != nil {
		battery, temperature, humidity, light1, light2 := n.Sensors.ReadSensors()
		p.SetPayloadAt(0, battery)
		p.SetPayloadAt(1, temperature)
		p.SetPayloadAt(2, humidity)
		p.SetPayloadAt(3, light1)
		p.SetPayloadAt(4, light2)
	}

	written := n.Neighbors.FillReport(p, sdnwise.ReportInitIndex)
	p.Header.Len = sdnwise.HeaderSize + sdnwise.ReportInitIndex + uint8(written)

	if n.Config.IsSink {
		n.Pool.Release(h)
		return
	}

	if err := n.Radio.SendUnicast(p); err != nil && n.Log != nil {
		n.Log.Printf("orchestrator: report send failed: %v", err)
	}
	n.Pool.Release(h)
}

// sendMessage generates one synthetic DATA packet toward this node's
// configured destination, the Go realization of message_proc's
// MESSAGE_TIMER_EVENT handling. Only a node designated as a traffic
// source (IsSource) or running in MULTI mode (every node has its own
// destination) ever does this.
func (n *Node) sendMessage() {
	if !n.params.IsSource && !n.params.Multi {
		return
	}

	h, p, err := n.Pool.Allocate()
	if err != nil {
		if n.Log != nil {
			n.Log.Printf("orchestrator: message dropped, pool exhausted: %v", err)
		}
		return
	}

	p.Header.Net = n.Config.MyNet
	p.Header.Src = n.Config.MyAddress
	p.Header.Dst = n.params.Dst
	p.Header.Typ = sdnwise.TypeData
	p.Header.Nxh = n.Config.NxhVsSink
	p.Header.TTL = n.Config.PacketTTL
	p.SetPayloadAt(0, 0)
	p.Header.Len = sdnwise.HeaderSize + 1

	n.Dispatcher.Stats.PacketsUCSentAsSrc++
	n.Dispatcher.Stats.PacketsUCSentTotal++

	if n.Log != nil {
		n.Log.Printf("TXU: [src: %s, dst: %s, ttl: %d]", p.Header.Src, p.Header.Dst, p.Header.TTL)
	}

	n.Dispatcher.Forward(h, p)
}

// printStatistics logs the node's counters, matching statistics_proc's
// STATISTICS_PRINT_EVENT line, with the original's unguarded
// stat.hop_sum/stat.packets_uc_received_total division replaced by
// Counters' own divide-by-zero-safe average (§9 open question).
func (n *Node) printStatistics() {
	if n.Log == nil {
		return
	}
	s := n.Dispatcher.Stats
	n.Log.Printf(
		"STATS: [avg_hops: %.2f, tx_uc_total: %d, tx_uc_src: %d, tx_bc: %d, rx_uc_total: %d, rx_uc_dst: %d, rx_bc: %d]",
		s.AvgHopCountOverTotal(), s.PacketsUCSentTotal, s.PacketsUCSentAsSrc, s.PacketsBCSent,
		s.PacketsUCReceivedTotal, s.PacketsUCReceivedAsDst, s.PacketsBCReceived,
	)
}
