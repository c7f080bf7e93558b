package flowtable

import "github.com/sdnwise/node"

// ActionType is the effect a matched flow-table entry applies (§4.3).
type ActionType uint8

const (
	ActionForwardUnicast ActionType = iota
	ActionForwardBroadcast
	ActionDrop
	ActionModify
	ActionAsk
	ActionMatch
)

// DynamicRef names a live node register an action's target should be
// resolved against at match time, rather than a value frozen into the
// entry when it was installed. This is what lets the default
// forward-toward-sink rule keep working after the tree rebuilds and
// NxhVsSink changes, without reinstalling the rule (§9 Design Notes).
type DynamicRef uint8

const (
	DynamicNone DynamicRef = iota
	DynamicNextHopToSink
)

// Action is one effect of a flow-table entry's action list (§3: an entry
// carries actions[0..m], not a single action). MODIFY is the one type
// that does not end the list: Table.applyActions keeps walking past it to
// whatever terminal action follows (§4.3).
type Action struct {
	Type ActionType
	// Value is the static operand: a next-hop address (as Uint16) for
	// FORWARD_U, the value to write for MODIFY, a rule index for MATCH.
	Value uint16
	// Dynamic, when non-zero, overrides Value by resolving against
	// status at match time.
	Dynamic DynamicRef
	// Offset/Width locate a MODIFY write within the packet, addressed the
	// same flat way as Window's PACKET operands (packet.go's ByteAt).
	Offset uint16
	Width  Size
}

// resolveTarget returns the effective next-hop/target value for FORWARD_U,
// preferring Dynamic resolution over the static Value.
func (a Action) resolveTarget(status StatusProvider) sdnwise.Address {
	if a.Dynamic == DynamicNextHopToSink {
		return status.NextHopToSink()
	}
	return sdnwise.AddressFromUint16(a.Value)
}

// apply performs a's effect on p in place. It is called only for MODIFY,
// the sole action type with an in-place effect rather than a terminal
// forwarding/drop/escalation outcome.
func (a Action) apply(p *sdnwise.Packet) {
	if a.Width == Size2 {
		p.SetUint16At(int(a.Offset), a.Value)
		return
	}
	p.SetByteAt(int(a.Offset), byte(a.Value))
}
