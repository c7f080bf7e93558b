// Command sdnwise-node runs a single SDN-WISE data-plane node: it parses
// its static configuration from flags and an optional TOML file, wires
// up the packet pool, neighbor and flow tables, dispatcher and
// orchestrator, and runs until interrupted.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	flag "github.com/spf13/pflag"

	"github.com/sdnwise/node"
	"github.com/sdnwise/node/dispatch"
	"github.com/sdnwise/node/flowtable"
	"github.com/sdnwise/node/neighbor"
	"github.com/sdnwise/node/orchestrator"
	"github.com/sdnwise/node/sink"
)

// fileConfig is the shape of an optional TOML config file, layered
// under flag values (flags win when both are set).
type fileConfig struct {
	Sink      bool   `toml:"sink"`
	Multi     bool   `toml:"multi"`
	Net       uint8  `toml:"net"`
	Address   uint16 `toml:"address"`
	Src       uint16 `toml:"src"`
	Dst       uint16 `toml:"dst"`
	Listen    string `toml:"listen"`
	Serial    string `toml:"serial"`
	BaudRate  uint32 `toml:"baud_rate"`
	PoolSize  int    `toml:"pool_size"`
	FlowTable int    `toml:"flow_table_size"`
}

func main() {
	var (
		configPath   = flag.String("config", "", "path to an optional TOML config file")
		isSink       = flag.Bool("sink", false, "run this node as the network sink")
		multi        = flag.Bool("multi", false, "enable per-node MULTI destination mode")
		net          = flag.Uint8("net", 1, "network id")
		address      = flag.Uint16("address", 0, "this node's address")
		src          = flag.Uint16("src", 0, "the single traffic-source node's address")
		dst          = flag.Uint16("dst", 0, "destination address for generated traffic")
		listenAddr   = flag.String("listen", "", "TCP address to accept a development controller connection on")
		serialPort   = flag.String("serial", "", "serial device path for the sink's controller bridge")
		baudRate     = flag.Uint32("baud", 115200, "serial baud rate")
		poolSize     = flag.Int("pool-size", 32, "packet pool capacity")
		flowTableCap = flag.Int("flow-table-size", 32, "flow table capacity")

		beaconPeriod = flag.Uint8("beacon-period", 10, "beacon period, seconds")
		reportPeriod = flag.Uint8("report-period", 30, "report period, seconds")
		resetPeriod  = flag.Uint16("reset-period", 10, "tree reset countdown, report periods")
		packetTTL    = flag.Uint8("ttl", 10, "default packet TTL")
		rssiMin      = flag.Uint8("rssi-min", 0, "minimum accepted RSSI")
		ruleTTL      = flag.Uint8("rule-ttl", 60, "default installed flow table entry TTL, seconds")

		messageInterval     = flag.Duration("message-interval", 30*time.Second, "synthetic traffic generation interval")
		initialMessageDelay = flag.Duration("initial-message-delay", 5*time.Second, "delay before the first generated message")
		statsInterval       = flag.Duration("stats-interval", time.Minute, "statistics print interval")
		purgeInterval       = flag.Duration("purge-interval", time.Minute, "flow/neighbor table purge interval")
	)
	flag.Parse()

	var fc fileConfig
	if *configPath != "" {
		if _, err := toml.DecodeFile(*configPath, &fc); err != nil {
			log.Fatalf("sdnwise-node: reading config file: %v", err)
		}
	}
	if fc.Sink {
		*isSink = true
	}
	if fc.Multi {
		*multi = true
	}
	if fc.Net != 0 {
		*net = fc.Net
	}
	if fc.Address != 0 {
		*address = fc.Address
	}
	if fc.Listen != "" {
		*listenAddr = fc.Listen
	}
	if fc.Serial != "" {
		*serialPort = fc.Serial
	}
	if fc.BaudRate != 0 {
		*baudRate = fc.BaudRate
	}
	if fc.PoolSize != 0 {
		*poolSize = fc.PoolSize
	}
	if fc.FlowTable != 0 {
		*flowTableCap = fc.FlowTable
	}
	if fc.Src != 0 {
		*src = fc.Src
	}
	if fc.Dst != 0 {
		*dst = fc.Dst
	}
	// Parse the command line again so explicitly given flags win over
	// values taken from the file.
	_ = flag.CommandLine.Parse(os.Args[1:])

	logger := log.New(os.Stderr, "sdnwise-node: ", log.LstdFlags|log.Lmicroseconds)

	cfg := sdnwise.NewConfig(sdnwise.StaticParams{
		Sink:         *isSink,
		Multi:        *multi,
		MyNet:        *net,
		MyAddress:    sdnwise.AddressFromUint16(*address),
		Src:          sdnwise.AddressFromUint16(*src),
		Dst:          sdnwise.AddressFromUint16(*dst),
		BeaconPeriod: *beaconPeriod,
		ReportPeriod: *reportPeriod,
		ResetPeriod:  *resetPeriod,
		TTL:          *packetTTL,
		RSSIMin:      *rssiMin,
		RuleTTL:      *ruleTTL,
	})

	pool := sdnwise.NewPool(*poolSize, logger)
	neighbors := neighbor.NewTable()
	flows := flowtable.NewTable(*flowTableCap)
	for _, e := range flowtable.DefaultEntries() {
		if _, err := flows.Add(e); err != nil {
			log.Fatalf("sdnwise-node: installing default flow table entries: %v", err)
		}
	}
	stats := &sdnwise.Counters{}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var sinkExporter dispatch.Sink
	var receiver interface {
		Receive(context.Context) (sdnwise.Handle, *sdnwise.Packet, error)
	}

	if *isSink {
		bridge, closeFn, err := openControllerBridge(ctx, *serialPort, *listenAddr, *baudRate, pool, logger)
		if err != nil {
			log.Fatalf("sdnwise-node: opening controller bridge: %v", err)
		}
		defer closeFn()
		sinkExporter = bridge
		receiver = bridge
	} else {
		receiver = noopReceiver{}
	}

	d := dispatch.New(cfg, pool, neighbors, flows, stats, noopRadio{}, sinkExporter, logger)

	node := orchestrator.New(d, pool, neighbors, flows, noopRadio{}, receiver, nil, logger, orchestrator.Params{
		MessageInterval:         *messageInterval,
		InitialMessageDelay:     *initialMessageDelay,
		StatisticsPrintInterval: *statsInterval,
		PurgeInterval:           *purgeInterval,
		IsSource:                cfg.MyAddress == sdnwise.AddressFromUint16(*src),
		Multi:                   *multi,
		Dst:                     sdnwise.AddressFromUint16(*dst),
	})

	logger.Printf("starting node net=%d address=%s sink=%v", cfg.MyNet, cfg.MyAddress, cfg.IsSink)
	node.Run(ctx)
	logger.Printf("node stopped")
}

// openControllerBridge prefers a serial device when given one, falling
// back to a development TCP listener.
func openControllerBridge(ctx context.Context, serialPort, listenAddr string, baud uint32, pool *sdnwise.Pool, logger *log.Logger) (*sink.Bridge, func(), error) {
	if serialPort != "" {
		b, err := sink.NewSerialBridge(serialPort, baud, pool, logger)
		if err != nil {
			return nil, nil, err
		}
		return b, func() { b.Close() }, nil
	}

	if listenAddr == "" {
		listenAddr = "127.0.0.1:0"
	}
	l, err := sink.NewListener(listenAddr, pool, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Printf("waiting for controller connection on %s", l.Addr())
	b, err := l.Accept(ctx)
	if err != nil {
		l.Close()
		return nil, nil, fmt.Errorf("sdnwise-node: accepting controller connection: %w", err)
	}
	return b, func() { b.Close(); l.Close() }, nil
}

// noopRadio is the radio seam for a build with no real transport wired
// in yet; it silently drops every packet.
type noopRadio struct{}

func (noopRadio) SendUnicast(*sdnwise.Packet) error   { return nil }
func (noopRadio) SendBroadcast(*sdnwise.Packet) error { return nil }

// noopReceiver never yields packets; a non-sink node's radio.Receiver is
// supplied by the platform-specific transport this binary is linked
// against.
type noopReceiver struct{}

func (noopReceiver) Receive(ctx context.Context) (sdnwise.Handle, *sdnwise.Packet, error) {
	<-ctx.Done()
	return sdnwise.NilHandle, nil, ctx.Err()
}
