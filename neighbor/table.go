// Package neighbor implements the one-hop neighbor table: who has been
// heard from recently, at what signal strength, and how much unicast
// traffic has crossed each link since the last report.
package neighbor

import (
	"time"

	"github.com/sdnwise/node"
)

// Entry is one neighbor table row (§3, "Neighbor"). LastSeen supports the
// entry-level aging the spec mandates in place of the original firmware's
// TODO'd purge_neighbor_table, which simply deleted the whole table
// (§9 open question).
type Entry struct {
	Address  sdnwise.Address
	RSSI     uint8
	RxCount  uint8
	TxCount  uint8
	LastSeen time.Time
}

// Table is an insertion-ordered, fixed-capacity neighbor list. Capacity is
// derived from the report payload budget (§4.2) so that FillReport can
// always write the whole table into a single report packet:
// (MaxPayloadLength-10)/NeighborLength.
type Table struct {
	entries  []Entry
	capacity int
	now      func() time.Time
}

// Capacity computes the neighbor table capacity per §4.2.
func Capacity() int {
	return (sdnwise.MaxPayloadLength - 10) / sdnwise.NeighborLength
}

// NewTable builds an empty table sized per Capacity.
func NewTable() *Table {
	return &Table{
		capacity: Capacity(),
		now:      time.Now,
	}
}

// indexOf returns the slice index of addr, or -1.
func (t *Table) indexOf(addr sdnwise.Address) int {
	for i := range t.entries {
		if t.entries[i].Address == addr {
			return i
		}
	}
	return -1
}

// Contains reports whether addr has an entry.
func (t *Table) Contains(addr sdnwise.Address) bool {
	return t.indexOf(addr) >= 0
}

// Add inserts a new neighbor or, if already present, overwrites its RSSI
// and last-seen time (§4.2: "if present, overwrite RSSI; else allocate a
// new slot, failing silently if the pool is exhausted").
func (t *Table) Add(addr sdnwise.Address, rssi uint8) {
	now := t.now()
	if i := t.indexOf(addr); i >= 0 {
		t.entries[i].RSSI = rssi
		t.entries[i].LastSeen = now
		return
	}
	if len(t.entries) >= t.capacity {
		return
	}
	t.entries = append(t.entries, Entry{
		Address:  addr,
		RSSI:     rssi,
		LastSeen: now,
	})
}

// RxInc increments the receive counter for addr, a no-op if addr is not a
// known neighbor (mirrors rx_count_inc in neighbor-table.c).
func (t *Table) RxInc(addr sdnwise.Address) {
	if i := t.indexOf(addr); i >= 0 {
		t.entries[i].RxCount++
	}
}

// TxInc increments the transmit counter for addr.
func (t *Table) TxInc(addr sdnwise.Address) {
	if i := t.indexOf(addr); i >= 0 {
		t.entries[i].TxCount++
	}
}

// ResetCounts zeroes rx/tx counters for every neighbor, matching
// reset_rx_tx_counts in neighbor-table.c.
func (t *Table) ResetCounts() {
	for i := range t.entries {
		t.entries[i].RxCount = 0
		t.entries[i].TxCount = 0
	}
}

// Len returns the current neighbor count.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the table in insertion order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// FillReport writes the neighbor count followed by each neighbor's
// address, RSSI, rx_count and tx_count into p's payload starting at
// offset, then empties the table (§4.2). It returns the number of payload
// bytes written.
func (t *Table) FillReport(p *sdnwise.Packet, offset int) int {
	i := offset
	p.SetPayloadAt(i, byte(len(t.entries)&0xFF))
	i++
	for _, n := range t.entries {
		addr := n.Address.Bytes()
		p.SetPayloadAt(i, addr[0])
		i++
		p.SetPayloadAt(i, addr[1])
		i++
		p.SetPayloadAt(i, n.RSSI)
		i++
		p.SetPayloadAt(i, n.RxCount)
		i++
		p.SetPayloadAt(i, n.TxCount)
		i++
	}
	t.entries = t.entries[:0]
	return i - offset
}

// Purge evicts neighbors not heard from within maxAge, returning the
// number removed. This realizes the spec's entry-level aging (§9 open
// question) — distinct from FillReport's unconditional clear, which is
// the report protocol's own explicit behavior, not an aging policy.
func (t *Table) Purge(maxAge time.Duration) int {
	now := t.now()
	kept := t.entries[:0]
	removed := 0
	for _, n := range t.entries {
		if now.Sub(n.LastSeen) > maxAge {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	t.entries = kept
	return removed
}
