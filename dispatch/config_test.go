package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdnwise/node"
	"github.com/sdnwise/node/flowtable"
)

// TestApplyGetRuleAppendsSerializedEntry covers GET_RULE's READ effect
// (§4.4): the rule index in payload[1] selects a flow-table entry, whose
// full wire form is appended at that same offset.
func TestApplyGetRuleAppendsSerializedEntry(t *testing.T) {
	d, _, _ := newTestDispatcher(true)

	entry := flowtable.Entry{
		Actions: []flowtable.Action{{Type: flowtable.ActionForwardUnicast, Value: 42}},
		TTL:     15,
	}
	for i := range entry.Windows {
		entry.Windows[i] = flowtable.AlwaysTrueWindow()
	}
	idx, err := d.Flows.Add(entry)
	require.NoError(t, err)

	h, p, err := d.Pool.Allocate()
	require.NoError(t, err)
	p.SetPayloadAt(1, byte(idx))
	p.Header.Len = sdnwise.HeaderSize + 2

	d.applyGetRule(p)

	want := flowtable.EntrySize(entry)
	assert.Equal(t, uint8(sdnwise.HeaderSize+1)+uint8(want), p.Header.Len)

	got, err := flowtable.DecodeEntry(p.Payload[1 : 1+want])
	require.NoError(t, err)
	assert.Equal(t, entry.Actions, got.Actions)
	assert.Equal(t, entry.TTL, got.TTL)

	d.release(h)
}

// TestApplyGetRuleUnknownIndexLeavesPayloadUntouched covers the
// out-of-range case: no entry exists at the requested index, so nothing
// is appended and the header length is unchanged.
func TestApplyGetRuleUnknownIndexLeavesPayloadUntouched(t *testing.T) {
	d, _, _ := newTestDispatcher(true)

	h, p, err := d.Pool.Allocate()
	require.NoError(t, err)
	p.SetPayloadAt(1, 3)
	p.Header.Len = sdnwise.HeaderSize + 2

	d.applyGetRule(p)

	assert.Equal(t, uint8(sdnwise.HeaderSize+2), p.Header.Len)
	d.release(h)
}

// TestHandleConfigGetRuleRoundTrip drives GET_RULE through handleConfig
// end to end on a sink node reading its own rule table: the reply is
// exported to the controller with the serialized entry appended and
// src/dst swapped for the return trip.
func TestHandleConfigGetRuleRoundTrip(t *testing.T) {
	d, _, sink := newTestDispatcher(true)

	entry := flowtable.Entry{
		Actions: []flowtable.Action{{Type: flowtable.ActionDrop}},
		TTL:     5,
	}
	for i := range entry.Windows {
		entry.Windows[i] = flowtable.AlwaysTrueWindow()
	}
	idx, err := d.Flows.Add(entry)
	require.NoError(t, err)

	h, p, err := d.Pool.Allocate()
	require.NoError(t, err)
	p.Header.Net = d.Config.MyNet
	p.Header.Typ = sdnwise.TypeConfig
	p.Header.Src = d.Config.MyAddress
	p.Header.Dst = d.Config.MyAddress
	p.Header.Nxh = d.Config.MyAddress
	p.Info.RSSI = 200
	p.SetPayloadAt(0, sdnwise.EncodeConfOp(sdnwise.ConfGetRule, false))
	p.SetPayloadAt(1, byte(idx))
	p.Header.Len = sdnwise.HeaderSize + 2

	d.Handle(h)

	require.Len(t, sink.exported, 1)
	got, err := flowtable.DecodeEntry(sink.exported[0].Payload[1:sink.exported[0].PayloadLen()])
	require.NoError(t, err)
	assert.Equal(t, entry.Actions, got.Actions)
}

// TestApplyConfigReadReservedIDIsNoOp covers the explicitly reserved ops
// (GET_ALIAS et al.): they silently leave the payload untouched.
func TestApplyConfigReadReservedIDIsNoOp(t *testing.T) {
	d, _, _ := newTestDispatcher(true)

	h, p, err := d.Pool.Allocate()
	require.NoError(t, err)
	p.Header.Len = sdnwise.HeaderSize + 1

	d.applyConfigRead(sdnwise.ConfGetAlias, p)

	assert.Equal(t, uint8(sdnwise.HeaderSize+1), p.Header.Len)
	d.release(h)
}
