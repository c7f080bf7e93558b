package sdnwise

import "errors"

// ErrTruncatedFrame is returned by Parse when the supplied bytes are too
// short to contain a well-formed header plus the declared payload.
var ErrTruncatedFrame = errors.New("sdnwise: truncated frame")

// Parse decodes a wire frame into a freshly allocated pool slot. It
// returns (NilHandle, nil, err) on allocation failure or on a length
// inconsistency (a truncated frame, or a declared length exceeding what a
// pool slot can hold) — both are silent-drop conditions per §7.
func (p *Pool) Parse(b []byte) (Handle, *Packet, error) {
	if len(b) < HeaderSize {
		return NilHandle, nil, ErrTruncatedFrame
	}
	declared := int(b[LenIndex])
	if declared < HeaderSize || declared > MaxPacketLength {
		return NilHandle, nil, ErrTruncatedFrame
	}
	if len(b) < declared {
		return NilHandle, nil, ErrTruncatedFrame
	}

	h, pkt, err := p.Allocate()
	if err != nil {
		return NilHandle, nil, err
	}

	pkt.Header.Net = b[NetIndex]
	pkt.Header.Len = b[LenIndex]
	pkt.Header.Typ = Type(b[TypIndex])
	pkt.Header.Src = AddressFromBytes(b[SrcIndex:])
	pkt.Header.Dst = AddressFromBytes(b[DstIndex:])
	pkt.Header.Nxh = AddressFromBytes(b[NxhIndex:])
	pkt.Header.TTL = b[TTLIndex]

	n := declared - HeaderSize
	copy(pkt.Payload[:n], b[HeaderSize:declared])

	return h, pkt, nil
}

// Serialize yields the first p.Header.Len bytes of the wire representation
// of p: header fields in wire order followed by the payload, addresses
// big-endian.
func Serialize(p *Packet) []byte {
	n := int(p.Header.Len)
	if n < HeaderSize {
		n = HeaderSize
	}
	if n > MaxPacketLength {
		n = MaxPacketLength
	}

	out := make([]byte, n)
	out[NetIndex] = p.Header.Net
	out[LenIndex] = p.Header.Len
	out[TypIndex] = byte(p.Header.Typ)
	copy(out[SrcIndex:], p.Header.Src.Bytes())
	copy(out[DstIndex:], p.Header.Dst.Bytes())
	copy(out[NxhIndex:], p.Header.Nxh.Bytes())
	out[TTLIndex] = p.Header.TTL

	copy(out[HeaderSize:], p.Payload[:n-HeaderSize])
	return out
}
