package sdnwise

import (
	"errors"
	"testing"
)

func TestSerializeParseRoundTrip(t *testing.T) {
	p := NewPool(2, nil)
	_, pkt, err := p.Allocate()
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}

	pkt.Header.Net = 4
	pkt.Header.Typ = TypeData
	pkt.Header.Src = AddressFromUint16(10)
	pkt.Header.Dst = AddressFromUint16(20)
	pkt.Header.Nxh = AddressFromUint16(30)
	pkt.Header.TTL = 8
	pkt.SetPayloadAt(0, 0xAB)
	pkt.SetPayloadAt(1, 0xCD)
	pkt.Header.Len = HeaderSize + 2

	wire := Serialize(pkt)
	if len(wire) != int(pkt.Header.Len) {
		t.Fatalf("Serialize() length = %d, want %d", len(wire), pkt.Header.Len)
	}

	_, got, err := p.Parse(wire)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Header.Net != 4 || got.Header.Typ != TypeData {
		t.Fatalf("Parse() header = %+v, want net=4 typ=DATA", got.Header)
	}
	if got.Header.Src != AddressFromUint16(10) || got.Header.Dst != AddressFromUint16(20) {
		t.Fatalf("Parse() src/dst = %v/%v, want 10/20", got.Header.Src, got.Header.Dst)
	}
	if got.PayloadAt(0) != 0xAB || got.PayloadAt(1) != 0xCD {
		t.Fatalf("Parse() payload = [%x %x], want [ab cd]", got.PayloadAt(0), got.PayloadAt(1))
	}
}

func TestParseTruncatedHeader(t *testing.T) {
	p := NewPool(1, nil)
	_, _, err := p.Parse(make([]byte, HeaderSize-1))
	if !errors.Is(err, ErrTruncatedFrame) {
		t.Fatalf("Parse() error = %v, want ErrTruncatedFrame", err)
	}
}

func TestParseDeclaredLengthExceedsBuffer(t *testing.T) {
	p := NewPool(1, nil)
	buf := make([]byte, HeaderSize)
	buf[LenIndex] = HeaderSize + 5
	_, _, err := p.Parse(buf)
	if !errors.Is(err, ErrTruncatedFrame) {
		t.Fatalf("Parse() error = %v, want ErrTruncatedFrame", err)
	}
}

func TestParseDeclaredLengthBelowHeaderSize(t *testing.T) {
	p := NewPool(1, nil)
	buf := make([]byte, HeaderSize)
	buf[LenIndex] = HeaderSize - 1
	_, _, err := p.Parse(buf)
	if !errors.Is(err, ErrTruncatedFrame) {
		t.Fatalf("Parse() error = %v, want ErrTruncatedFrame", err)
	}
}

func TestParseDeclaredLengthExceedsMaxPacket(t *testing.T) {
	p := NewPool(1, nil)
	buf := make([]byte, MaxPacketLength+10)
	buf[LenIndex] = MaxPacketLength + 1
	_, _, err := p.Parse(buf)
	if !errors.Is(err, ErrTruncatedFrame) {
		t.Fatalf("Parse() error = %v, want ErrTruncatedFrame", err)
	}
}

func TestParsePropagatesPoolExhaustion(t *testing.T) {
	p := NewPool(0, nil)
	buf := make([]byte, HeaderSize)
	buf[LenIndex] = HeaderSize
	_, _, err := p.Parse(buf)
	if !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("Parse() error = %v, want ErrPoolExhausted", err)
	}
}

func TestSerializeClampsToHeaderSizeMinimum(t *testing.T) {
	p := &Packet{Header: Header{Len: 2}}
	if got := Serialize(p); len(got) != HeaderSize {
		t.Fatalf("Serialize() length = %d, want %d", len(got), HeaderSize)
	}
}
