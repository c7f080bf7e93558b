package sdnwise

import (
	"errors"
	"log"
)

// ErrPoolExhausted is returned when Allocate finds no free slot.
var ErrPoolExhausted = errors.New("sdnwise: packet pool exhausted")

// ErrStaleHandle is returned by Get/Release when a Handle refers to a slot
// that has since been reused (use-after-free) or was never allocated.
var ErrStaleHandle = errors.New("sdnwise: stale packet handle")

// Handle is an opaque reference into a Pool. The zero Handle never refers
// to a live packet. Handles replace the original's raw packet_t pointers
// (Design Notes §9: "owned vector + generational index").
type Handle struct {
	index      uint32
	generation uint32
}

// NilHandle is the zero-value handle, never valid.
var NilHandle = Handle{}

// IsNil reports whether h is the zero handle.
func (h Handle) IsNil() bool {
	return h == NilHandle
}

type slot struct {
	packet     Packet
	generation uint32
	used       bool
}

// Pool is a fixed-capacity arena of packet slots with a free list. It
// replaces the original firmware's Contiki MEMB intrusive-free-list
// allocator (packet-buffer.c) with a slice-backed arena addressed by
// generational handles, so a release of an already-released handle is
// detected rather than silently corrupting the free list.
//
// Pool methods assume single-threaded-cooperative access: the
// orchestrator's event loop is the only goroutine that ever touches a
// Pool (see orchestrator.Node), so no internal locking is required.
type Pool struct {
	slots []slot
	free  []uint32
	used  int
	log   *log.Logger
}

// NewPool creates a pool with room for capacity packets.
func NewPool(capacity int, logger *log.Logger) *Pool {
	p := &Pool{
		slots: make([]slot, capacity),
		free:  make([]uint32, capacity),
		log:   logger,
	}
	for i := 0; i < capacity; i++ {
		p.free[i] = uint32(capacity - 1 - i)
		// Generations start at 1 so no live handle equals NilHandle.
		p.slots[i].generation = 1
	}
	return p
}

// Cap returns the pool's total capacity.
func (p *Pool) Cap() int {
	return len(p.slots)
}

// Len returns the number of currently allocated (in-use) packets.
func (p *Pool) Len() int {
	return p.used
}

// Allocate reserves a zeroed packet slot, returning ErrPoolExhausted if
// none remain (the original's "allocation failure", handled by the caller
// dropping the incoming frame and logging once — see §7 of the spec).
func (p *Pool) Allocate() (Handle, *Packet, error) {
	if len(p.free) == 0 {
		return NilHandle, nil, ErrPoolExhausted
	}
	idx := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]

	s := &p.slots[idx]
	s.packet = Packet{}
	s.used = true
	p.used++

	return Handle{index: idx, generation: s.generation}, &s.packet, nil
}

// Get resolves a handle to its packet, or ErrStaleHandle if the handle no
// longer refers to a live allocation.
func (p *Pool) Get(h Handle) (*Packet, error) {
	if int(h.index) >= len(p.slots) {
		return nil, ErrStaleHandle
	}
	s := &p.slots[h.index]
	if !s.used || s.generation != h.generation {
		return nil, ErrStaleHandle
	}
	return &s.packet, nil
}

// Release returns a packet to the pool. A double free — releasing a
// handle whose generation no longer matches the live slot — is reported
// as an error for the caller to log, per §7 ("Double free of packet: Log
// reference-count error; continue"); it never panics.
func (p *Pool) Release(h Handle) error {
	if int(h.index) >= len(p.slots) {
		return ErrStaleHandle
	}
	s := &p.slots[h.index]
	if !s.used || s.generation != h.generation {
		if p.log != nil {
			p.log.Printf("pool: double free detected for handle index=%d generation=%d", h.index, h.generation)
		}
		return ErrStaleHandle
	}
	s.used = false
	s.generation++
	p.used--
	p.free = append(p.free, h.index)
	return nil
}
