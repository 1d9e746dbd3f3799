// Package rtp parses RTP fixed headers (RFC 3550 §5.1).
//
// Only header parsing and a lightweight classification heuristic live here;
// sequencing and media decoding belong to the extraction layer.
package rtp

import (
	"encoding/binary"
	"fmt"

	"github.com/igorolhovskiy/rtpproxy/internal/core"
)

const (
	headerLen = 12 // Fixed RTP header size
	csrcLen   = 4

	// rtcpPayloadTypeMin / Max define the RTCP PT range per RFC 5761.
	rtcpPayloadTypeMin = 200
	rtcpPayloadTypeMax = 209
)

// Header is a parsed RTP fixed header.
type Header struct {
	Version     uint8
	Padding     bool
	Extension   bool
	Marker      bool
	PayloadType uint8
	Sequence    uint16
	Timestamp   uint32
	SSRC        uint32
	CSRCCount   uint8
}

// Parse decodes the RTP header of b and returns it together with the media
// payload that follows the header, CSRC list, and extension. Padding bytes,
// when flagged, are stripped from the payload.
func Parse(b []byte) (Header, []byte, error) {
	if len(b) < headerLen {
		return Header{}, nil, fmt.Errorf("%w: %d bytes", core.ErrRTPTooShort, len(b))
	}

	h := Header{
		// Byte 0: V(2) P(1) X(1) CC(4)
		Version:   (b[0] >> 6) & 0x3,
		Padding:   b[0]&0x20 != 0,
		Extension: b[0]&0x10 != 0,
		CSRCCount: b[0] & 0x0F,
		// Byte 1: M(1) PT(7)
		Marker:      b[1]&0x80 != 0,
		PayloadType: b[1] & 0x7F,
		Sequence:    binary.BigEndian.Uint16(b[2:4]),
		Timestamp:   binary.BigEndian.Uint32(b[4:8]),
		SSRC:        binary.BigEndian.Uint32(b[8:12]),
	}
	if h.Version != 2 {
		return Header{}, nil, fmt.Errorf("%w: version %d", core.ErrBadRTPVersion, h.Version)
	}

	off := headerLen + int(h.CSRCCount)*csrcLen
	if len(b) < off {
		return Header{}, nil, fmt.Errorf("%w: truncated CSRC list", core.ErrRTPTooShort)
	}

	if h.Extension {
		// Extension header: 2 bytes profile, 2 bytes length in 32-bit words.
		if len(b) < off+4 {
			return Header{}, nil, fmt.Errorf("%w: truncated extension header", core.ErrRTPTooShort)
		}
		extWords := int(binary.BigEndian.Uint16(b[off+2 : off+4]))
		off += 4 + extWords*4
		if len(b) < off {
			return Header{}, nil, fmt.Errorf("%w: truncated extension body", core.ErrRTPTooShort)
		}
	}

	payload := b[off:]
	if h.Padding && len(payload) > 0 {
		pad := int(payload[len(payload)-1])
		if pad == 0 || pad > len(payload) {
			return Header{}, nil, fmt.Errorf("%w: bad padding count %d", core.ErrRTPTooShort, pad)
		}
		payload = payload[:len(payload)-pad]
	}
	return h, payload, nil
}

// LooksLikeRTP reports whether b passes lightweight RTP header checks:
// minimum length, V=2, and a payload type outside the RTCP range.
func LooksLikeRTP(b []byte) bool {
	if len(b) < headerLen {
		return false
	}
	if (b[0]>>6)&0x3 != 2 {
		return false
	}
	return !IsRTCP(b)
}

// IsRTCP reports whether b carries an RTCP packet, distinguished from RTP
// by payload-type values 200–209 in the unmasked second byte.
func IsRTCP(b []byte) bool {
	if len(b) < 2 {
		return false
	}
	return b[1] >= rtcpPayloadTypeMin && b[1] <= rtcpPayloadTypeMax
}
