package sdnwise

import "fmt"

// AddressLength is the wire width of a node address in bytes.
const AddressLength = 2

// Address is a fixed-width node identifier, big-endian on the wire.
type Address [AddressLength]byte

// BroadcastAddress is the reserved all-ones value meaning "every neighbor".
var BroadcastAddress = Address{0xFF, 0xFF}

// AddressFromBytes reads a big-endian address from the first AddressLength
// bytes of b. It panics if b is shorter than AddressLength, mirroring the
// original firmware's unchecked array access at call sites that have
// already validated packet length.
func AddressFromBytes(b []byte) Address {
	var a Address
	copy(a[:], b[:AddressLength])
	return a
}

// AddressFromUint16 builds an Address from its big-endian 16-bit value.
func AddressFromUint16(v uint16) Address {
	return Address{byte(v >> 8), byte(v)}
}

// Uint16 returns the address as a big-endian 16-bit value.
func (a Address) Uint16() uint16 {
	return MergeBytes(a[0], a[1])
}

// MergeBytes combines two bytes into a big-endian 16-bit value, the same
// merge the open-path learning code performs on adjacent payload bytes.
func MergeBytes(hi, lo byte) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}

// IsBroadcast reports whether a is the reserved broadcast address.
func (a Address) IsBroadcast() bool {
	return a == BroadcastAddress
}

// Equal reports byte-wise equality.
func (a Address) Equal(other Address) bool {
	return a == other
}

// Compare returns -1, 0 or 1 using byte-wise ordering, matching the
// original's address_cmp semantics extended to a total order.
func (a Address) Compare(other Address) int {
	for i := range a {
		if a[i] != other[i] {
			if a[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Bytes returns the big-endian wire representation.
func (a Address) Bytes() []byte {
	return []byte{a[0], a[1]}
}

func (a Address) String() string {
	return fmt.Sprintf("%d.%d", a[0], a[1])
}
