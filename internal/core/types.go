// Package core defines core data structures with zero external dependencies.
package core

import (
	"net/netip"
	"time"
)

// RecordHeader is the fixed 16-byte header that prefixes every record in a
// classic libpcap capture stream. Fields are little-endian on the wire, as
// written by little-endian capture hosts.
type RecordHeader struct {
	TsSec   uint32 // Timestamp seconds
	TsUsec  uint32 // Timestamp micro/nanoseconds depending on file magic
	InclLen uint32 // Bytes of packet data actually stored in the file
	OrigLen uint32 // Original length of the packet on the wire
}

// Time converts the record timestamp to time.Time.
// nanos selects nanosecond-resolution interpretation of TsUsec.
func (h RecordHeader) Time(nanos bool) time.Time {
	if nanos {
		return time.Unix(int64(h.TsSec), int64(h.TsUsec))
	}
	return time.Unix(int64(h.TsSec), int64(h.TsUsec)*1000)
}

// StreamKey identifies an RTP media stream within a capture.
type StreamKey struct {
	SSRC    uint32
	SrcIP   netip.Addr
	DstIP   netip.Addr
	SrcPort uint16
	DstPort uint16
}
