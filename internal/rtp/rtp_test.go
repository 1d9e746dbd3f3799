package rtp

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/igorolhovskiy/rtpproxy/internal/core"
)

// makeRTP builds an RTP packet.
//
//	byte 0: V=2  P=pad  X=ext  CC=cc
//	byte 1: M=marker  PT=pt
//	bytes 2-3: sequence
//	bytes 4-7: timestamp
//	bytes 8-11: ssrc
func makeRTP(pt uint8, seq uint16, ts uint32, ssrc uint32, marker bool, payload []byte) []byte {
	b := make([]byte, headerLen+len(payload))
	b[0] = 0x80
	b[1] = pt & 0x7F
	if marker {
		b[1] |= 0x80
	}
	binary.BigEndian.PutUint16(b[2:4], seq)
	binary.BigEndian.PutUint32(b[4:8], ts)
	binary.BigEndian.PutUint32(b[8:12], ssrc)
	copy(b[headerLen:], payload)
	return b
}

func TestParseBasic(t *testing.T) {
	payload := []byte{0x11, 0x22, 0x33}
	pkt := makeRTP(0, 4660, 160000, 0xDEADBEEF, true, payload)

	h, got, err := Parse(pkt)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if h.Version != 2 || h.PayloadType != 0 || !h.Marker {
		t.Errorf("Unexpected header: %+v", h)
	}
	if h.Sequence != 4660 || h.Timestamp != 160000 || h.SSRC != 0xDEADBEEF {
		t.Errorf("Unexpected header: %+v", h)
	}
	if len(got) != len(payload) || got[0] != 0x11 {
		t.Errorf("Payload mismatch: %x", got)
	}
}

func TestParseCSRCList(t *testing.T) {
	pkt := makeRTP(8, 1, 2, 3, false, make([]byte, 12))
	pkt[0] |= 0x02 // CC=2
	// Payload now starts 8 bytes later; the first 8 payload bytes act as CSRCs.

	h, payload, err := Parse(pkt)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if h.CSRCCount != 2 {
		t.Errorf("Expected CC=2, got %d", h.CSRCCount)
	}
	if len(payload) != 4 {
		t.Errorf("Expected 4 payload bytes after CSRC list, got %d", len(payload))
	}
}

func TestParseExtension(t *testing.T) {
	// Extension: profile 0xBEDE, 1 word of data.
	ext := []byte{0xBE, 0xDE, 0x00, 0x01, 0xAA, 0xBB, 0xCC, 0xDD}
	media := []byte{0x01, 0x02}
	pkt := makeRTP(0, 1, 2, 3, false, append(ext, media...))
	pkt[0] |= 0x10 // X=1

	h, payload, err := Parse(pkt)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !h.Extension {
		t.Error("Expected extension flag")
	}
	if len(payload) != 2 || payload[0] != 0x01 {
		t.Errorf("Expected media after extension, got %x", payload)
	}
}

func TestParsePadding(t *testing.T) {
	media := []byte{0x01, 0x02, 0x03, 0x00, 0x00, 0x03} // 3 padding bytes
	pkt := makeRTP(0, 1, 2, 3, false, media)
	pkt[0] |= 0x20 // P=1

	_, payload, err := Parse(pkt)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(payload) != 3 {
		t.Errorf("Expected 3 bytes after stripping padding, got %d", len(payload))
	}
}

func TestParseTooShort(t *testing.T) {
	if _, _, err := Parse(make([]byte, 11)); !errors.Is(err, core.ErrRTPTooShort) {
		t.Fatalf("Expected ErrRTPTooShort, got %v", err)
	}
}

func TestParseBadVersion(t *testing.T) {
	pkt := makeRTP(0, 1, 2, 3, false, nil)
	pkt[0] = 0x40 // V=1
	if _, _, err := Parse(pkt); !errors.Is(err, core.ErrBadRTPVersion) {
		t.Fatalf("Expected ErrBadRTPVersion, got %v", err)
	}
}

func TestLooksLikeRTP(t *testing.T) {
	if !LooksLikeRTP(makeRTP(0, 1, 2, 3, false, nil)) {
		t.Error("PCMU packet should look like RTP")
	}
	if LooksLikeRTP([]byte{0x12, 0x00}) {
		t.Error("V=0 must not look like RTP")
	}
	rtcp := makeRTP(0, 1, 2, 3, false, nil)
	rtcp[1] = 200 // SR
	if LooksLikeRTP(rtcp) {
		t.Error("RTCP SR must not look like RTP")
	}
	if !IsRTCP(rtcp) {
		t.Error("PT 200 is RTCP")
	}
}
