package pcap

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/google/gopacket/layers"

	"github.com/igorolhovskiy/rtpproxy/internal/core"
)

func globalHeader(magic, snapLen, linkType uint32) []byte {
	b := make([]byte, globalHeaderLen)
	binary.LittleEndian.PutUint32(b[0:4], magic)
	binary.LittleEndian.PutUint16(b[4:6], 2) // Version 2.4
	binary.LittleEndian.PutUint16(b[6:8], 4)
	binary.LittleEndian.PutUint32(b[16:20], snapLen)
	binary.LittleEndian.PutUint32(b[20:24], linkType)
	return b
}

func rawRecord(tsSec uint32, body []byte) []byte {
	b := make([]byte, recordHeaderLen+len(body))
	binary.LittleEndian.PutUint32(b[0:4], tsSec)
	binary.LittleEndian.PutUint32(b[4:8], 500)
	binary.LittleEndian.PutUint32(b[8:12], uint32(len(body)))
	binary.LittleEndian.PutUint32(b[12:16], uint32(len(body)))
	copy(b[recordHeaderLen:], body)
	return b
}

func TestReaderIteratesRecords(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(globalHeader(magicMicros, 65535, 113))
	rec1 := rawRecord(100, []byte{0x01, 0x02, 0x03})
	rec2 := rawRecord(200, []byte{0xAA})
	buf.Write(rec1)
	buf.Write(rec2)

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if r.LinkType() != layers.LinkTypeLinuxSLL {
		t.Errorf("Expected link type LinuxSLL, got %v", r.LinkType())
	}
	if r.SnapLen() != 65535 {
		t.Errorf("Expected snap length 65535, got %d", r.SnapLen())
	}
	if r.Nanos() {
		t.Error("Expected microsecond resolution")
	}

	got1, err := r.Next()
	if err != nil {
		t.Fatalf("First record: %v", err)
	}
	if !bytes.Equal(got1, rec1) {
		t.Errorf("First record mismatch: %x", got1)
	}

	hdr, err := ParseRecordHeader(got1)
	if err != nil {
		t.Fatalf("ParseRecordHeader: %v", err)
	}
	if hdr.TsSec != 100 || hdr.InclLen != 3 {
		t.Errorf("Unexpected header: %+v", hdr)
	}

	got2, err := r.Next()
	if err != nil {
		t.Fatalf("Second record: %v", err)
	}
	if !bytes.Equal(got2, rec2) {
		t.Errorf("Second record mismatch: %x", got2)
	}

	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("Expected io.EOF, got %v", err)
	}
}

func TestReaderNanosecondMagic(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(globalHeader(magicNanos, 65535, 1))

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if !r.Nanos() {
		t.Error("Expected nanosecond resolution")
	}
	if r.LinkType() != layers.LinkTypeEthernet {
		t.Errorf("Expected Ethernet, got %v", r.LinkType())
	}
}

func TestReaderRejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(globalHeader(0xdeadbeef, 65535, 1))

	if _, err := NewReader(&buf); !errors.Is(err, core.ErrBadMagic) {
		t.Fatalf("Expected ErrBadMagic, got %v", err)
	}
}

func TestReaderRejectsBigEndian(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(globalHeader(magicMicrosSwapped, 65535, 1))

	if _, err := NewReader(&buf); !errors.Is(err, core.ErrBigEndianFile) {
		t.Fatalf("Expected ErrBigEndianFile, got %v", err)
	}
}

func TestReaderTruncatedBody(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(globalHeader(magicMicros, 65535, 1))
	rec := rawRecord(100, []byte{1, 2, 3, 4})
	buf.Write(rec[:len(rec)-2]) // Cut the body short

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if _, err := r.Next(); !errors.Is(err, core.ErrRecordTooShort) {
		t.Fatalf("Expected ErrRecordTooShort, got %v", err)
	}
}

func TestReaderBoundsInclLen(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(globalHeader(magicMicros, 64, 1))
	rec := make([]byte, recordHeaderLen)
	binary.LittleEndian.PutUint32(rec[8:12], 1<<20) // Hostile incl_len
	buf.Write(rec)

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if _, err := r.Next(); !errors.Is(err, core.ErrRecordTooLong) {
		t.Fatalf("Expected ErrRecordTooLong, got %v", err)
	}
}

func TestWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, 65535, layers.LinkTypeEthernet)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	hdr := core.RecordHeader{TsSec: 1700000000, TsUsec: 250000}
	data := []byte{0xCA, 0xFE, 0xBA, 0xBE}
	if err := w.WritePacket(hdr.Time(false), len(data), data); err != nil {
		t.Fatalf("WritePacket failed: %v", err)
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	rec, err := r.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	got, err := ParseRecordHeader(rec)
	if err != nil {
		t.Fatalf("ParseRecordHeader: %v", err)
	}
	if got.TsSec != 1700000000 || got.TsUsec != 250000 {
		t.Errorf("Timestamp mismatch: %+v", got)
	}
	if !bytes.Equal(rec[recordHeaderLen:], data) {
		t.Errorf("Body mismatch: %x", rec[recordHeaderLen:])
	}
}
