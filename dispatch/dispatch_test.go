package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdnwise/node"
	"github.com/sdnwise/node/flowtable"
	"github.com/sdnwise/node/neighbor"
)

type fakeRadio struct {
	unicast   []*sdnwise.Packet
	broadcast []*sdnwise.Packet
}

func (f *fakeRadio) SendUnicast(p *sdnwise.Packet) error {
	f.unicast = append(f.unicast, p)
	return nil
}

func (f *fakeRadio) SendBroadcast(p *sdnwise.Packet) error {
	f.broadcast = append(f.broadcast, p)
	return nil
}

type fakeSink struct {
	exported []*sdnwise.Packet
}

func (f *fakeSink) Export(p *sdnwise.Packet) {
	f.exported = append(f.exported, p)
}

func newTestDispatcher(isSink bool) (*Dispatcher, *fakeRadio, *fakeSink) {
	cfg := sdnwise.NewConfig(sdnwise.StaticParams{
		Sink:      isSink,
		MyNet:     1,
		MyAddress: sdnwise.AddressFromUint16(1),
		RSSIMin:   0,
		TTL:       10,
		RuleTTL:   30,
	})
	pool := sdnwise.NewPool(8, nil)
	radio := &fakeRadio{}
	sink := &fakeSink{}
	d := New(cfg, pool, neighbor.NewTable(), flowtable.NewTable(16), &sdnwise.Counters{}, radio, sink, nil)
	return d, radio, sink
}

func TestHandleDropsWrongNetwork(t *testing.T) {
	d, _, _ := newTestDispatcher(false)
	h, p, err := d.Pool.Allocate()
	require.NoError(t, err)
	p.Header.Net = 99
	p.Header.Typ = sdnwise.TypeData

	d.Handle(h)
	_, err = d.Pool.Get(h)
	assert.ErrorIs(t, err, sdnwise.ErrStaleHandle)
}

func TestHandleBeaconUpdatesTreeOnBetterParent(t *testing.T) {
	d, radio, _ := newTestDispatcher(false)
	d.Config.TreeVersion = 0
	d.Config.HopsFromSink = 255

	h, p, err := d.Pool.Allocate()
	require.NoError(t, err)
	p.Header.Net = d.Config.MyNet
	p.Header.Typ = sdnwise.TypeBeacon
	p.Header.Src = sdnwise.AddressFromUint16(2)
	p.Header.Nxh = sdnwise.AddressFromUint16(2)
	p.Info.RSSI = 200
	p.SetPayloadAt(beaconTreeVersionIndex, 1)
	p.SetPayloadAt(beaconDepthIndex, 0)
	p.SetPayloadAt(beaconTypeIndex, beaconTypeTree)

	d.Handle(h)

	assert.Equal(t, uint8(1), d.Config.TreeVersion)
	assert.Equal(t, uint8(1), d.Config.HopsFromSink)
	assert.Equal(t, sdnwise.AddressFromUint16(2), d.Config.NxhVsSink)
	require.Len(t, radio.broadcast, 1)
}

func TestHandleDataConsumedLocally(t *testing.T) {
	d, _, _ := newTestDispatcher(false)
	h, p, err := d.Pool.Allocate()
	require.NoError(t, err)
	p.Header.Net = d.Config.MyNet
	p.Header.Typ = sdnwise.TypeData
	p.Header.Dst = d.Config.MyAddress
	p.Header.Nxh = d.Config.MyAddress
	p.Info.RSSI = 200
	p.SetPayloadAt(dataHopsIndex, 2)

	d.Handle(h)

	assert.Equal(t, uint16(1), d.Stats.PacketsUCReceivedAsDst)
}

func TestHandleDataForwardedUsesFlowTable(t *testing.T) {
	d, radio, _ := newTestDispatcher(false)
	target := sdnwise.AddressFromUint16(9)
	e := flowtable.Entry{Actions: []flowtable.Action{{Type: flowtable.ActionForwardUnicast, Value: target.Uint16()}}}
	for i := range e.Windows {
		e.Windows[i] = flowtable.AlwaysTrueWindow()
	}
	_, err := d.Flows.Add(e)
	require.NoError(t, err)

	h, p, err := d.Pool.Allocate()
	require.NoError(t, err)
	p.Header.Net = d.Config.MyNet
	p.Header.Typ = sdnwise.TypeData
	p.Header.Dst = sdnwise.AddressFromUint16(5)
	p.Header.Nxh = d.Config.MyAddress
	p.Info.RSSI = 200

	d.Handle(h)

	require.Len(t, radio.unicast, 1)
	assert.Equal(t, target, radio.unicast[0].Header.Nxh)
}

func TestHandleReportSinkExports(t *testing.T) {
	d, _, sink := newTestDispatcher(true)
	h, p, err := d.Pool.Allocate()
	require.NoError(t, err)
	p.Header.Net = d.Config.MyNet
	p.Header.Typ = sdnwise.TypeReport
	p.Header.Nxh = d.Config.MyAddress
	p.Info.RSSI = 200

	d.Handle(h)

	assert.Len(t, sink.exported, 1)
}

func TestHandleReportNonSinkForwards(t *testing.T) {
	d, radio, _ := newTestDispatcher(false)
	d.Config.NxhVsSink = sdnwise.AddressFromUint16(3)

	h, p, err := d.Pool.Allocate()
	require.NoError(t, err)
	p.Header.Net = d.Config.MyNet
	p.Header.Typ = sdnwise.TypeReport
	p.Header.Nxh = d.Config.MyAddress
	p.Info.RSSI = 200

	d.Handle(h)

	require.Len(t, radio.unicast, 1)
	assert.Equal(t, d.Config.NxhVsSink, radio.unicast[0].Header.Nxh)
}
