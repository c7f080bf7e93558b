package sdnwise

import "encoding/binary"

// MaxDistance is the sentinel "no known path" RSSI-distance value used
// when a report period's reset countdown reaches zero without a fresher
// beacon having arrived (§4.5, report_timer task).
const MaxDistance = 0xFF

// Config is the single mutable per-node configuration record (§3). The
// original firmware keeps this as a module-global `conf`; here it is a
// field of Node (Design Notes §9, "scoped service locator") and every
// dispatcher handler takes it by pointer, never reaching for a global.
type Config struct {
	MyNet     uint8
	MyAddress Address

	PacketTTL uint8
	RSSIMin   uint8

	BeaconPeriod uint8 // seconds
	ReportPeriod uint8 // seconds
	ResetPeriod  uint16
	RuleTTL      uint8

	// Tree state, mutated only by the dispatcher (§4.4, handle_beacon).
	TreeVersion      uint8
	HopsFromSink     uint8
	NxhVsSink        Address
	DistanceFromSink uint8
	SinkAddress      Address

	IsSink   bool
	IsActive bool

	resetCountdown uint16
}

// NewConfig builds a Config from StaticParams, the compile-time parameters
// of §6, seeding the mutable fields the dispatcher subsequently updates.
func NewConfig(s StaticParams) *Config {
	c := &Config{
		MyNet:        s.MyNet,
		MyAddress:    s.MyAddress,
		PacketTTL:    s.TTL,
		RSSIMin:      s.RSSIMin,
		BeaconPeriod: s.BeaconPeriod,
		ReportPeriod: s.ReportPeriod,
		ResetPeriod:  s.ResetPeriod,
		RuleTTL:      s.RuleTTL,
		IsSink:       s.Sink,
	}
	c.resetCountdown = s.ResetPeriod
	if s.Sink {
		c.IsActive = true
		c.SinkAddress = s.MyAddress
		c.NxhVsSink = s.MyAddress
		c.DistanceFromSink = 0
		c.HopsFromSink = 0
	} else {
		c.DistanceFromSink = MaxDistance
	}
	return c
}

// StaticParams mirrors the original's compile-time #defines (§6): SINK,
// MULTI, SRC, DST, periods, TTL, network size, message timing. It is
// populated from flags/config file by cmd/sdnwise-node rather than
// baked in at compile time.
type StaticParams struct {
	Sink bool
	// Multi makes every node a traffic source (see orchestrator.Params),
	// each sending to its own configured Dst.
	Multi bool

	MyNet     uint8
	MyAddress Address
	// Src names the single node that generates traffic when Multi is
	// false (the original's compile-time SRC node id).
	Src Address
	Dst Address

	// Index is this node's 1-based position in Destinations. Nothing in
	// this module reads it.
	Index int

	BeaconPeriod uint8
	ReportPeriod uint8
	ResetPeriod  uint16
	TTL          uint8
	RSSIMin      uint8
	RuleTTL      uint8

	NetworkSize              int
	MessageInterval          int
	InitialMessageDelay      int
	StatisticsPrintInterval  int
	PurgeFlowTableInterval   int

	// Destinations maps a node's 1-based position to its MULTI-mode
	// destination, carried from the original's per-index destinations[]
	// table (sdn-wise.c). Nothing in this module reads it; generated
	// traffic always goes to Dst.
	Destinations []Address
}

// ResetCountdownTick implements the report_timer task's per-period
// bookkeeping (§4.5): decrement the countdown, and when it reaches zero
// reset DistanceFromSink to MaxDistance so a stale tree entry is
// eventually abandoned if no fresher beacon arrives.
func (c *Config) ResetCountdownTick() {
	if c.IsSink {
		return
	}
	if c.resetCountdown > 0 {
		c.resetCountdown--
	}
	if c.resetCountdown == 0 {
		c.DistanceFromSink = MaxDistance
		c.resetCountdown = c.ResetPeriod
	}
}

// Status implements flowtable.StatusProvider: window predicates with
// Location STATUS resolve against these node registers.
func (c *Config) Status(index uint16) uint16 {
	switch ConfID(index) {
	case ConfMyNet:
		return uint16(c.MyNet)
	case ConfMyAddress:
		return c.MyAddress.Uint16()
	case ConfPacketTTL:
		return uint16(c.PacketTTL)
	case ConfRSSIMin:
		return uint16(c.RSSIMin)
	case ConfBeaconPeriod:
		return uint16(c.BeaconPeriod)
	case ConfReportPeriod:
		return uint16(c.ReportPeriod)
	case ConfResetPeriod:
		return c.ResetPeriod
	case ConfRuleTTL:
		return uint16(c.RuleTTL)
	default:
		return 0
	}
}

// NextHopToSink implements flowtable.StatusProvider, giving the live next
// hop toward the sink for the default catch-all flow-table rule.
func (c *Config) NextHopToSink() Address {
	return c.NxhVsSink
}

// ConfID identifies a CONFIG packet's target register (§4.4, handle_config).
type ConfID uint8

const (
	ConfReset ConfID = iota
	ConfMyNet
	ConfMyAddress
	ConfPacketTTL
	ConfRSSIMin
	ConfBeaconPeriod
	ConfReportPeriod
	ConfResetPeriod
	ConfRuleTTL
	ConfAddAlias
	ConfRemAlias
	ConfGetAlias
	ConfAddRule
	ConfRemRule
	ConfGetRule
	ConfAddFunction
	ConfRemFunction
	ConfGetFunction
)

// confReadWriteBit high bit of a CONFIG payload's op_id byte selects
// write(1) vs read(0); the low seven bits select the ConfID.
const confReadWriteBit = 0x80

// DecodeConfOp splits a CONFIG payload op_id byte into its id and
// write flag.
func DecodeConfOp(b byte) (id ConfID, write bool) {
	return ConfID(b & 0x7F), b&confReadWriteBit != 0
}

// EncodeConfOp is the inverse of DecodeConfOp.
func EncodeConfOp(id ConfID, write bool) byte {
	b := byte(id) & 0x7F
	if write {
		b |= confReadWriteBit
	}
	return b
}

// scalarWidth and the Read/Write methods below replace the original's
// parallel conf_ptr[]/conf_size[] arrays — sized [RULE_TTL+1] but indexed
// by ids up to GET_FUNCTION, an out-of-bounds read in the source (§9 open
// question) — with a tagged switch that can never index past a known id.
func scalarWidth(id ConfID) int {
	switch id {
	case ConfMyNet, ConfPacketTTL, ConfRSSIMin, ConfBeaconPeriod, ConfReportPeriod, ConfRuleTTL:
		return 1
	case ConfMyAddress, ConfResetPeriod:
		return 2
	default:
		return 0
	}
}

// IsScalar reports whether id names one of the 8 scalar registers
// (testable property §8 item 7).
func IsScalar(id ConfID) bool {
	return scalarWidth(id) > 0
}

// ReadScalar appends id's current value, big-endian, to dst and returns
// the number of bytes written.
func (c *Config) ReadScalar(id ConfID, dst []byte) int {
	switch id {
	case ConfMyNet:
		dst[0] = c.MyNet
		return 1
	case ConfMyAddress:
		copy(dst, c.MyAddress.Bytes())
		return 2
	case ConfPacketTTL:
		dst[0] = c.PacketTTL
		return 1
	case ConfRSSIMin:
		dst[0] = c.RSSIMin
		return 1
	case ConfBeaconPeriod:
		dst[0] = c.BeaconPeriod
		return 1
	case ConfReportPeriod:
		dst[0] = c.ReportPeriod
		return 1
	case ConfResetPeriod:
		binary.BigEndian.PutUint16(dst, c.ResetPeriod)
		return 2
	case ConfRuleTTL:
		dst[0] = c.RuleTTL
		return 1
	default:
		return 0
	}
}

// WriteScalar applies a big-endian value from src to id.
func (c *Config) WriteScalar(id ConfID, src []byte) {
	switch id {
	case ConfMyNet:
		c.MyNet = src[0]
	case ConfMyAddress:
		c.MyAddress = AddressFromBytes(src)
	case ConfPacketTTL:
		c.PacketTTL = src[0]
	case ConfRSSIMin:
		c.RSSIMin = src[0]
	case ConfBeaconPeriod:
		c.BeaconPeriod = src[0]
	case ConfReportPeriod:
		c.ReportPeriod = src[0]
	case ConfResetPeriod:
		c.ResetPeriod = binary.BigEndian.Uint16(src)
	case ConfRuleTTL:
		c.RuleTTL = src[0]
	}
}
