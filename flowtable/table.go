package flowtable

import (
	"errors"
	"time"

	"github.com/sdnwise/node"
)

// ErrTableFull is returned by Add when the table has no room for another
// entry.
var ErrTableFull = errors.New("flowtable: table full")

// WindowCount is the fixed number of predicate slots per entry (§3).
const WindowCount = sdnwise.WindowSize

// MaxActionsPerEntry bounds the action list an entry can carry (§3:
// actions[0..m]) — generous enough for any chain this node installs
// itself (a MODIFY or two followed by a terminal FORWARD_U/ASK/DROP)
// while keeping a malformed ADD_RULE/RESPONSE payload from decoding an
// unbounded list.
const MaxActionsPerEntry = 4

// Entry is one flow-table rule: up to WindowCount windows, all of which
// must evaluate true for the entry to match, plus the ordered list of
// actions to execute once it does.
type Entry struct {
	Windows [WindowCount]Window
	Actions []Action
	TTL     uint8
	created time.Time
}

// Table is the node's ordered rule list, matched top to bottom exactly
// like the original firmware's linear scan over its rule array.
type Table struct {
	entries  []Entry
	capacity int
	now      func() time.Time
}

// NewTable builds an empty table with room for capacity entries.
func NewTable(capacity int) *Table {
	return &Table{capacity: capacity, now: time.Now}
}

// DefaultEntries returns the two rules every node installs at boot
// (§4.3): dst == my_address with a MATCH action, and a catch-all that
// forwards everything else toward the sink using the live NxhVsSink
// register. Match re-enters the scan from the top, so a self-addressed
// packet keeps hitting the first rule until the MATCH bound is spent and
// is then reported as unmatched; rules added after the defaults are not
// reached for it. Both carry TTL 0 so Purge never evicts them.
func DefaultEntries() [2]Entry {
	var localConsumption Entry
	localConsumption.Windows[0] = Window{
		Operation:   OpEqual,
		Size:        Size2,
		LHSLocation: LocationPacket,
		LHS:         sdnwise.DstIndex,
		RHSLocation: LocationStatus,
		RHS:         uint16(sdnwise.ConfMyAddress),
	}
	for i := 1; i < WindowCount; i++ {
		localConsumption.Windows[i] = AlwaysTrueWindow()
	}
	localConsumption.Actions = []Action{{Type: ActionMatch}}

	var forwardToSink Entry
	for i := range forwardToSink.Windows {
		forwardToSink.Windows[i] = AlwaysTrueWindow()
	}
	forwardToSink.Actions = []Action{{Type: ActionForwardUnicast, Dynamic: DynamicNextHopToSink}}

	return [2]Entry{localConsumption, forwardToSink}
}

// Len returns the number of installed entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Add appends an entry, failing with ErrTableFull once capacity is
// reached (§4.3: "installing past capacity evicts nothing and is
// rejected").
func (t *Table) Add(e Entry) (int, error) {
	if len(t.entries) >= t.capacity {
		return -1, ErrTableFull
	}
	e.created = t.now()
	t.entries = append(t.entries, e)
	return len(t.entries) - 1, nil
}

// Remove deletes the entry at index, preserving order.
func (t *Table) Remove(index int) {
	if index < 0 || index >= len(t.entries) {
		return
	}
	t.entries = append(t.entries[:index], t.entries[index+1:]...)
}

// At returns the entry at index and whether index was valid.
func (t *Table) At(index int) (Entry, bool) {
	if index < 0 || index >= len(t.entries) {
		return Entry{}, false
	}
	return t.entries[index], true
}

// Purge evicts entries older than their TTL (seconds), returning the
// count removed. A zero TTL entry never expires.
func (t *Table) Purge() int {
	now := t.now()
	kept := t.entries[:0]
	removed := 0
	for _, e := range t.entries {
		if e.TTL != 0 && now.Sub(e.created) > time.Duration(e.TTL)*time.Second {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	t.entries = kept
	return removed
}

// matches reports whether every window of e evaluates true against p.
func (e Entry) matches(p *sdnwise.Packet, status StatusProvider) bool {
	for _, w := range e.Windows {
		if !w.Evaluate(p, status) {
			return false
		}
	}
	return true
}

// MatchResult is the outcome of Match: which terminal action fired, and
// the resolved forwarding target where applicable. MODIFY never appears
// here — applyActions executes it in place and keeps walking the list.
type MatchResult struct {
	Matched    bool
	EntryIndex int
	Action     Action
	Target     sdnwise.Address
}

// applyActions walks e's action list against p: MODIFY mutates the
// packet in place and continues to the next action (§4.3, "mutate in
// place; continue action list"); every other type is terminal and stops
// the walk. MATCH is reported back via the rescan bool rather than a
// MatchResult, so the caller can re-enter the table scan. An action list
// exhausted without a terminal action (e.g. MODIFY-only) falls back to
// DROP — there is nothing left to submit.
func (e Entry) applyActions(p *sdnwise.Packet, status StatusProvider) (res MatchResult, rescan bool) {
	for _, a := range e.Actions {
		switch a.Type {
		case ActionModify:
			a.apply(p)
			continue
		case ActionMatch:
			return MatchResult{}, true
		default:
			return MatchResult{Matched: true, Action: a, Target: a.resolveTarget(status)}, false
		}
	}
	return MatchResult{Matched: true, Action: Action{Type: ActionDrop}}, false
}

// Match scans the table in order for the first entry whose windows all
// evaluate true, then executes its action list. A MATCH action re-enters
// the scan from the top; the original firmware's rule-matching.c can loop
// forever on a pathological MATCH chain, so here the re-entry is bounded
// to the table's own entry count — once exceeded, the scan stops and
// reports no match, rather than spinning (§4.3 edge case, §9 Design
// Notes).
func (t *Table) Match(p *sdnwise.Packet, status StatusProvider) MatchResult {
	limit := len(t.entries)
rescan:
	for steps := 0; steps <= limit; steps++ {
		for i, e := range t.entries {
			if !e.matches(p, status) {
				continue
			}
			res, needsRescan := e.applyActions(p, status)
			if needsRescan {
				continue rescan
			}
			res.EntryIndex = i
			return res
		}
		return MatchResult{}
	}
	return MatchResult{}
}
