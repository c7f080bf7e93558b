package flowtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdnwise/node"
)

func newEntryWithActions(actions ...Action) Entry {
	e := Entry{Actions: actions}
	for i := range e.Windows {
		e.Windows[i] = AlwaysTrueWindow()
	}
	return e
}

func TestTableMatchFirstEntryWins(t *testing.T) {
	tbl := NewTable(4)
	_, err := tbl.Add(newEntryWithActions(Action{Type: ActionDrop}))
	require.NoError(t, err)
	_, err = tbl.Add(newEntryWithActions(Action{Type: ActionForwardUnicast, Value: 9}))
	require.NoError(t, err)

	p := &sdnwise.Packet{}
	res := tbl.Match(p, fakeStatus{})
	assert.True(t, res.Matched)
	assert.Equal(t, ActionDrop, res.Action.Type)
	assert.Equal(t, 0, res.EntryIndex)
}

func TestTableMatchNoEntriesMatch(t *testing.T) {
	tbl := NewTable(2)
	e := newEntryWithActions(Action{Type: ActionDrop})
	e.Windows[0] = Window{Operation: OpEqual, Size: Size1, LHSLocation: LocationConst, LHS: 1, RHSLocation: LocationConst, RHS: 2}
	_, err := tbl.Add(e)
	require.NoError(t, err)

	res := tbl.Match(&sdnwise.Packet{}, fakeStatus{})
	assert.False(t, res.Matched)
}

func TestTableAddRejectsOverCapacity(t *testing.T) {
	tbl := NewTable(1)
	_, err := tbl.Add(newEntryWithActions(Action{Type: ActionDrop}))
	require.NoError(t, err)
	_, err = tbl.Add(newEntryWithActions(Action{Type: ActionDrop}))
	assert.ErrorIs(t, err, ErrTableFull)
}

func TestTableMatchResolvesDynamicTarget(t *testing.T) {
	tbl := NewTable(1)
	_, err := tbl.Add(newEntryWithActions(Action{Type: ActionForwardUnicast, Dynamic: DynamicNextHopToSink}))
	require.NoError(t, err)

	status := fakeStatus{nxh: sdnwise.AddressFromUint16(77)}
	res := tbl.Match(&sdnwise.Packet{}, status)
	require.True(t, res.Matched)
	assert.Equal(t, status.nxh, res.Target)
}

func TestTableMatchBoundsMatchLoop(t *testing.T) {
	tbl := NewTable(2)
	// Two entries that each point MATCH at the other: this must terminate
	// rather than loop forever (§4.3 edge case).
	_, err := tbl.Add(newEntryWithActions(Action{Type: ActionMatch}))
	require.NoError(t, err)
	_, err = tbl.Add(newEntryWithActions(Action{Type: ActionMatch}))
	require.NoError(t, err)

	res := tbl.Match(&sdnwise.Packet{}, fakeStatus{})
	assert.False(t, res.Matched)
}

func TestTableRemoveAndAt(t *testing.T) {
	tbl := NewTable(2)
	idx, _ := tbl.Add(newEntryWithActions(Action{Type: ActionDrop}))
	tbl.Remove(idx)
	assert.Equal(t, 0, tbl.Len())
	_, ok := tbl.At(idx)
	assert.False(t, ok)
}

// TestTableMatchModifyContinuesActionList is the core assertion of §4.3's
// action-list semantics: MODIFY does not terminate the match the way
// every other action type does, it mutates the packet and falls through
// to whatever comes next in the same entry.
func TestTableMatchModifyContinuesActionList(t *testing.T) {
	tbl := NewTable(1)
	_, err := tbl.Add(newEntryWithActions(
		Action{Type: ActionModify, Value: 0xAB, Offset: sdnwise.PayloadIndex, Width: Size1},
		Action{Type: ActionForwardUnicast, Value: 42},
	))
	require.NoError(t, err)

	p := &sdnwise.Packet{}
	res := tbl.Match(p, fakeStatus{})

	require.True(t, res.Matched)
	assert.Equal(t, ActionForwardUnicast, res.Action.Type)
	assert.Equal(t, sdnwise.AddressFromUint16(42), res.Target)
	assert.Equal(t, byte(0xAB), p.PayloadAt(0))
}

// TestTableMatchActionListExhaustedDefaultsToDrop covers an entry whose
// action list is entirely MODIFYs: there is nothing left to submit once
// the list runs out, so the match falls back to DROP rather than leaving
// the caller with an undefined terminal action.
func TestTableMatchActionListExhaustedDefaultsToDrop(t *testing.T) {
	tbl := NewTable(1)
	_, err := tbl.Add(newEntryWithActions(Action{Type: ActionModify, Value: 1, Offset: sdnwise.PayloadIndex}))
	require.NoError(t, err)

	res := tbl.Match(&sdnwise.Packet{}, fakeStatus{})
	require.True(t, res.Matched)
	assert.Equal(t, ActionDrop, res.Action.Type)
}

func TestDefaultEntriesForwardTowardSinkByDefault(t *testing.T) {
	tbl := NewTable(4)
	for _, e := range DefaultEntries() {
		_, err := tbl.Add(e)
		require.NoError(t, err)
	}

	p := &sdnwise.Packet{}
	p.Header.Dst = sdnwise.AddressFromUint16(99)
	status := fakeStatus{nxh: sdnwise.AddressFromUint16(3)}

	res := tbl.Match(p, status)
	require.True(t, res.Matched)
	assert.Equal(t, ActionForwardUnicast, res.Action.Type)
	assert.Equal(t, status.nxh, res.Target)
}
