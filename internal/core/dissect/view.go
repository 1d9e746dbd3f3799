package dissect

import "net/netip"

// view is a non-owning, bounds-checked window over a raw record buffer.
// Every accessor returns ok=false instead of reading past the end, so a
// hostile or truncated capture can never cause an out-of-range read.
//
// Accessors are named for the byte order they decode: be* fields arrive in
// network byte order, le* fields are little-endian pcap record metadata.
type view []byte

func (v view) byteAt(off int) (byte, bool) {
	if off < 0 || off >= len(v) {
		return 0, false
	}
	return v[off], true
}

// be16 decodes a 16-bit network byte order field at off.
func (v view) be16(off int) (uint16, bool) {
	if off < 0 || off+2 > len(v) {
		return 0, false
	}
	return uint16(v[off])<<8 | uint16(v[off+1]), true
}

// be32 decodes a 32-bit network byte order field at off.
func (v view) be32(off int) (uint32, bool) {
	if off < 0 || off+4 > len(v) {
		return 0, false
	}
	return uint32(v[off])<<24 | uint32(v[off+1])<<16 | uint32(v[off+2])<<8 | uint32(v[off+3]), true
}

// le32 decodes a 32-bit little-endian field at off.
func (v view) le32(off int) (uint32, bool) {
	if off < 0 || off+4 > len(v) {
		return 0, false
	}
	return uint32(v[off]) | uint32(v[off+1])<<8 | uint32(v[off+2])<<16 | uint32(v[off+3])<<24, true
}

// addr4 decodes a 4-byte IPv4 address at off.
func (v view) addr4(off int) (netip.Addr, bool) {
	if off < 0 || off+4 > len(v) {
		return netip.Addr{}, false
	}
	return netip.AddrFrom4([4]byte{v[off], v[off+1], v[off+2], v[off+3]}), true
}
