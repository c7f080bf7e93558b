// Package flowtable implements the node's flow-table matching engine: an
// ordered list of rules, each a set of window predicates plus an action,
// matched against an incoming packet the way the original firmware's
// rule-matching.c walks its rule array.
package flowtable

import (
	"github.com/sdnwise/node"
)

// Operation is a window predicate's comparison operator (§4.3).
type Operation uint8

const (
	OpEqual Operation = iota
	OpNotEqual
	OpLess
	OpLessOrEqual
	OpGreater
	OpGreaterOrEqual
)

// Size selects how many bytes of the operand a window predicate compares.
type Size uint8

const (
	Size1 Size = 1
	Size2 Size = 2
)

// Location selects where a window operand's value comes from (§4.3).
type Location uint8

const (
	LocationNull Location = iota
	LocationConst
	LocationPacket
	LocationStatus
)

// StatusProvider resolves Location STATUS operands against live node
// registers (config.go's Config.Status) and supplies the current next hop
// toward the sink for dynamically-resolved actions.
type StatusProvider interface {
	Status(index uint16) uint16
	NextHopToSink() sdnwise.Address
}

// Window is one predicate of a flow-table entry: compare the value at
// (LHSLocation, LHS) against (RHSLocation, RHS) using Operation, reading
// Size bytes for each operand.
type Window struct {
	Operation    Operation
	Size         Size
	LHSLocation  Location
	LHS          uint16
	RHSLocation  Location
	RHS          uint16
}

// AlwaysTrueWindow returns a window that matches every packet, used to pad
// unused window slots of a rule and to build default catch-all entries.
func AlwaysTrueWindow() Window {
	return Window{
		Operation:   OpEqual,
		Size:        Size1,
		LHSLocation: LocationConst,
		LHS:         0,
		RHSLocation: LocationConst,
		RHS:         0,
	}
}

// operand resolves one side of a window against a packet and status
// provider. PACKET-located operands address the whole serialized frame —
// header then payload — not just the payload, so a window can match
// directly on header fields such as destination address (§4.3, the
// DST_INDEX example of scenario S2).
func operand(loc Location, value uint16, size Size, p *sdnwise.Packet, status StatusProvider) uint16 {
	switch loc {
	case LocationConst:
		return value
	case LocationPacket:
		if size == Size2 {
			return p.Uint16At(int(value))
		}
		return uint16(p.ByteAt(int(value)))
	case LocationStatus:
		return status.Status(value)
	default:
		return 0
	}
}

// Evaluate applies the window's operator to its two resolved operands.
func (w Window) Evaluate(p *sdnwise.Packet, status StatusProvider) bool {
	lhs := operand(w.LHSLocation, w.LHS, w.Size, p, status)
	rhs := operand(w.RHSLocation, w.RHS, w.Size, p, status)

	switch w.Operation {
	case OpEqual:
		return lhs == rhs
	case OpNotEqual:
		return lhs != rhs
	case OpLess:
		return lhs < rhs
	case OpLessOrEqual:
		return lhs <= rhs
	case OpGreater:
		return lhs > rhs
	case OpGreaterOrEqual:
		return lhs >= rhs
	default:
		return false
	}
}
