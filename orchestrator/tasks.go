package orchestrator

import (
	"context"
	"time"

	"github.com/sdnwise/node"
)

// eventKind tags what woke the orchestrator's single select loop.
type eventKind int

const (
	eventPacket eventKind = iota
	eventBeaconTick
	eventReportTick
	eventMessageTick
	eventStatisticsTick
	eventPurgeTick
	eventActivate
)

// event is the orchestrator's one mailbox item type. Every goroutine that
// can cause node state to change — the radio receive loop, each periodic
// timer — only ever produces events; none of them touch Dispatcher,
// Config, Pool or the tables directly. That keeps every actual state
// mutation on the single goroutine running Node.Run, the same guarantee
// the original firmware's single-threaded Contiki process model gave for
// free (§5 of the design).
type event struct {
	kind   eventKind
	handle sdnwise.Handle
}

// runTicker posts an event of the given kind every period until ctx is
// done, the Go realization of an etimer_set/PROCESS_WAIT_EVENT_UNTIL
// loop such as beacon_timer_proc or report_timer_proc.
func runTicker(ctx context.Context, events chan<- event, period func() time.Duration, kind eventKind) {
	for {
		d := period()
		if d <= 0 {
			d = time.Second
		}
		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
		select {
		case events <- event{kind: kind}:
		case <-ctx.Done():
			return
		}
	}
}

// runReceiveLoop pulls inbound frames off r and posts one eventPacket per
// frame, the Go realization of unicast_rx_callback/broadcast_rx_callback
// posting NEW_PACKET_EVENT to packet_handler_proc.
func runReceiveLoop(ctx context.Context, events chan<- event, receive func(context.Context) (sdnwise.Handle, error)) {
	for {
		if ctx.Err() != nil {
			return
		}
		h, err := receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		select {
		case events <- event{kind: eventPacket, handle: h}:
		case <-ctx.Done():
			return
		}
	}
}
