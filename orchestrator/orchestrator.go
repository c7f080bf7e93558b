// Package orchestrator drives a node's cooperative task set: beacon,
// report, message and statistics timers, the radio receive loop, and the
// single select loop that serializes everything into calls on the
// dispatcher. It is the Go realization of the original firmware's
// Contiki AUTOSTART_PROCESSES set (main_proc, *_timer_proc, message_proc,
// statistics_proc) — one goroutine per timer, one goroutine for receive,
// and exactly one goroutine ever touching shared node state.
package orchestrator

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/sdnwise/node"
	"github.com/sdnwise/node/dispatch"
	"github.com/sdnwise/node/flowtable"
	"github.com/sdnwise/node/neighbor"
	"github.com/sdnwise/node/radio"
)

// SensorReader supplies the five sensor fields a REPORT packet carries
// (§4.2, Supplemented features): battery, temperature, humidity and two
// light channels. A node with no real sensors can wire in a reader that
// always returns zeros.
type SensorReader interface {
	ReadSensors() (battery, temperature, humidity, light1, light2 uint8)
}

// Params configures the timers and traffic-generation policy of a Node;
// it mirrors the original's compile-time NETWORK_SIZE/MESSAGE_INTERVAL/
// INITIAL_MESSAGE_DELAY/STATISTICS_PRINT_INTERVALL/#defines, supplied at
// runtime instead.
type Params struct {
	MessageInterval         time.Duration
	InitialMessageDelay     time.Duration
	StatisticsPrintInterval time.Duration
	PurgeInterval           time.Duration

	// IsSource enables synthetic DATA traffic generation from this node
	// (message_proc), mirroring the original's "node_id == SRC" check
	// when Multi is false.
	IsSource bool
	Multi    bool
	Dst      sdnwise.Address
}

// Node wires a Dispatcher to its timers, radio, and sensors, and runs
// the single event loop that drives them all (§5).
type Node struct {
	Dispatcher *dispatch.Dispatcher
	Config     *sdnwise.Config
	Pool       *sdnwise.Pool
	Neighbors  *neighbor.Table
	Flows      *flowtable.Table
	Radio      radio.Transmitter
	Receiver   radio.Receiver
	Sensors    SensorReader
	Log        *log.Logger

	params Params
	events chan event
}

// New builds a Node. d, cfg, pool, neighbors, flows and r must be the
// same instances d's Dispatcher was constructed with.
func New(d *dispatch.Dispatcher, pool *sdnwise.Pool, neighbors *neighbor.Table, flows *flowtable.Table, r radio.Transmitter, recv radio.Receiver, sensors SensorReader, logger *log.Logger, params Params) *Node {
	return &Node{
		Dispatcher: d,
		Config:     d.Config,
		Pool:       pool,
		Neighbors:  neighbors,
		Flows:      flows,
		Radio:      r,
		Receiver:   recv,
		Sensors:    sensors,
		Log:        logger,
		params:     params,
		events:     make(chan event, 64),
	}
}

// Run starts every timer goroutine and the receive loop, then drives the
// single select loop until ctx is canceled. It blocks until every
// goroutine it started has returned.
func (n *Node) Run(ctx context.Context) {
	var wg sync.WaitGroup

	start := func(fn func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(ctx)
		}()
	}

	start(func(ctx context.Context) {
		runReceiveLoop(ctx, n.events, func(ctx context.Context) (sdnwise.Handle, error) {
			h, _, err := n.Receiver.Receive(ctx)
			return h, err
		})
	})

	start(func(ctx context.Context) {
		runTicker(ctx, n.events, func() time.Duration {
			period := time.Duration(n.Config.BeaconPeriod) * time.Second
			if n.Config.IsSink {
				period *= 3
			}
			return period
		}, eventBeaconTick)
	})

	start(func(ctx context.Context) {
		runTicker(ctx, n.events, func() time.Duration {
			return time.Duration(n.Config.ReportPeriod) * time.Second
		}, eventReportTick)
	})

	if !n.Config.IsSink {
		start(func(ctx context.Context) {
			if n.params.InitialMessageDelay > 0 {
				select {
				case <-time.After(n.params.InitialMessageDelay):
				case <-ctx.Done():
					return
				}
			}
			runTicker(ctx, n.events, func() time.Duration {
				return n.params.MessageInterval
			}, eventMessageTick)
		})

		start(func(ctx context.Context) {
			runTicker(ctx, n.events, func() time.Duration {
				return n.params.StatisticsPrintInterval
			}, eventStatisticsTick)
		})
	}

	start(func(ctx context.Context) {
		runTicker(ctx, n.events, func() time.Duration {
			return n.params.PurgeInterval
		}, eventPurgeTick)
	})

	n.loop(ctx)
	wg.Wait()
}

// loop is the orchestrator's single select loop: every event it reads is
// handled to completion before the next is read, so Dispatcher, Config,
// Pool, and the tables are never touched concurrently.
func (n *Node) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-n.events:
			n.handle(ev)
		}
	}
}

func (n *Node) handle(ev event) {
	switch ev.kind {
	case eventPacket:
		broadcast := false
		if p, err := n.Pool.Get(ev.handle); err == nil {
			broadcast = p.Header.Dst.IsBroadcast()
		}
		n.Dispatcher.Handle(ev.handle)
		if broadcast && !n.Config.IsActive {
			n.activate()
		}
	case eventBeaconTick:
		if n.Config.IsSink || n.Config.IsActive {
			n.Dispatcher.BroadcastTreeBeacon()
		}
	case eventReportTick:
		if n.Config.IsSink || n.Config.IsActive {
			n.sendReport()
			n.Config.ResetCountdownTick()
		}
	case eventMessageTick:
		if n.Config.IsActive {
			n.sendMessage()
		}
	case eventStatisticsTick:
		if n.Config.IsActive {
			n.printStatistics()
		}
	case eventPurgeTick:
		n.Flows.Purge()
		n.Neighbors.Purge(time.Duration(n.Config.ResetPeriod) * time.Second)
	}
}

// activate mirrors the original's RF_B_RECEIVE_EVENT handling in
// main_proc: the first broadcast a freshly joined node overhears flips
// it from dormant to active, which is when its own report/beacon/
// statistics timers are meant to start running. Timers here run
// regardless of activation and simply no-op their payload-producing
// side when inactive, since Go has no equivalent to re-posting
// ACTIVATE_EVENT into an already-running goroutine's wait state.
func (n *Node) activate() {
	n.Config.IsActive = true
}
