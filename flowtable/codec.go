package flowtable

import (
	"encoding/binary"
	"errors"
)

// WindowWireSize is the encoded byte length of a single Window, matching
// the original firmware's rule_ttl_t wire layout: op(1) size(1)
// lhs_location(1) lhs(2) rhs_location(1) rhs(2).
const WindowWireSize = 8

// ActionWireSize is the encoded byte length of a single Action: type(1)
// value(2) offset(2) width(1).
const ActionWireSize = 6

// MinEntryWireSize is the smallest a self-describing encoded Entry can
// be: all windows, a zero action-count byte, and a TTL byte.
const MinEntryWireSize = WindowCount*WindowWireSize + 1 + 1

// MaxEntryWireSize bounds how large a self-describing encoded Entry can
// be: one carrying MaxActionsPerEntry actions. DecodeEntry rejects a
// larger action count by checking MaxActionsPerEntry directly.
const MaxEntryWireSize = WindowCount*WindowWireSize + 1 + MaxActionsPerEntry*ActionWireSize + 1

// ErrTruncatedEntry is returned by DecodeEntry when src is too short for
// the action count it declares, or declares more actions than
// MaxActionsPerEntry.
var ErrTruncatedEntry = errors.New("flowtable: truncated or malformed entry")

// EncodeWindow writes w's wire form into dst, which must be at least
// WindowWireSize bytes.
func EncodeWindow(w Window, dst []byte) {
	dst[0] = byte(w.Operation)
	dst[1] = byte(w.Size)
	dst[2] = byte(w.LHSLocation)
	binary.BigEndian.PutUint16(dst[3:], w.LHS)
	dst[5] = byte(w.RHSLocation)
	binary.BigEndian.PutUint16(dst[6:], w.RHS)
}

// DecodeWindow reads a Window from its wire form.
func DecodeWindow(src []byte) Window {
	return Window{
		Operation:   Operation(src[0]),
		Size:        Size(src[1]),
		LHSLocation: Location(src[2]),
		LHS:         binary.BigEndian.Uint16(src[3:]),
		RHSLocation: Location(src[5]),
		RHS:         binary.BigEndian.Uint16(src[6:]),
	}
}

// EncodeAction writes a's wire form into dst, which must be at least
// ActionWireSize bytes. Dynamic is not encoded: a dynamic action is
// written with its static Value field, not the target it resolves to.
func EncodeAction(a Action, dst []byte) {
	dst[0] = byte(a.Type)
	binary.BigEndian.PutUint16(dst[1:], a.Value)
	binary.BigEndian.PutUint16(dst[3:], a.Offset)
	dst[5] = byte(a.Width)
}

// DecodeAction reads an Action from its wire form. Dynamic is left
// DynamicNone; a dynamic binding is established by the installer, not the
// wire format.
func DecodeAction(src []byte) Action {
	return Action{
		Type:   ActionType(src[0]),
		Value:  binary.BigEndian.Uint16(src[1:]),
		Offset: binary.BigEndian.Uint16(src[3:]),
		Width:  Size(src[5]),
	}
}

// EntrySize returns the exact encoded length of e: all windows, an
// action-count byte, e's actions, and a TTL byte.
func EntrySize(e Entry) int {
	return WindowCount*WindowWireSize + 1 + len(e.Actions)*ActionWireSize + 1
}

// EncodeEntry writes e's full wire form (windows, action count, actions,
// TTL) into dst, which must be at least EntrySize(e) bytes.
func EncodeEntry(e Entry, dst []byte) {
	off := 0
	for _, w := range e.Windows {
		EncodeWindow(w, dst[off:])
		off += WindowWireSize
	}
	dst[off] = uint8(len(e.Actions))
	off++
	for _, a := range e.Actions {
		EncodeAction(a, dst[off:])
		off += ActionWireSize
	}
	dst[off] = e.TTL
}

// DecodeEntry reads a self-describing Entry from its wire form, the
// shape a RESPONSE payload and a CONFIG GET_RULE reply carry. It
// fails with ErrTruncatedEntry if src is too short for the windows, the
// declared action count, or the trailing TTL byte, or if the declared
// count exceeds MaxActionsPerEntry.
func DecodeEntry(src []byte) (Entry, error) {
	var e Entry
	off := 0
	for i := range e.Windows {
		if off+WindowWireSize > len(src) {
			return Entry{}, ErrTruncatedEntry
		}
		e.Windows[i] = DecodeWindow(src[off:])
		off += WindowWireSize
	}

	if off >= len(src) {
		return Entry{}, ErrTruncatedEntry
	}
	count := int(src[off])
	off++
	if count > MaxActionsPerEntry {
		return Entry{}, ErrTruncatedEntry
	}

	e.Actions = make([]Action, count)
	for i := 0; i < count; i++ {
		if off+ActionWireSize > len(src) {
			return Entry{}, ErrTruncatedEntry
		}
		e.Actions[i] = DecodeAction(src[off:])
		off += ActionWireSize
	}

	if off >= len(src) {
		return Entry{}, ErrTruncatedEntry
	}
	e.TTL = src[off]
	return e, nil
}
