package sdnwise

// Counters mirrors the original firmware's statistics_t (statistics.h) in
// full, not just the fields the spec's open question calls out.
type Counters struct {
	PacketsUCReceivedTotal uint16
	PacketsUCReceivedAsDst uint16
	PacketsBCReceived      uint16
	PacketsUCSentTotal     uint16
	PacketsUCSentAsSrc     uint16
	PacketsBCSent          uint16
	PacketsUCRetransmit    uint16
	HopSum                 uint16
}

// RecordUnicastReceived accounts for any unicast packet the node accepts
// at the link layer, regardless of final destination.
func (c *Counters) RecordUnicastReceived() {
	c.PacketsUCReceivedTotal++
}

// RecordDelivered accounts for a unicast packet consumed locally, folding
// its hop count into the running average.
func (c *Counters) RecordDelivered(hops uint8) {
	c.PacketsUCReceivedAsDst++
	c.HopSum += uint16(hops)
}

// AvgHopCountOverTotal guards the division the original prints in its
// statistics_timer line, which can run before any packet has ever been
// received (§9 open question: "may divide by zero on first print").
func (c *Counters) AvgHopCountOverTotal() float64 {
	if c.PacketsUCReceivedTotal == 0 {
		return 0
	}
	return float64(c.HopSum) / float64(c.PacketsUCReceivedTotal)
}

// AvgHopCountOverDelivered mirrors handle_data's own running average,
// computed over packets actually delivered to this node rather than all
// unicast traffic received.
func (c *Counters) AvgHopCountOverDelivered() float64 {
	if c.PacketsUCReceivedAsDst == 0 {
		return 0
	}
	return float64(c.HopSum) / float64(c.PacketsUCReceivedAsDst)
}
