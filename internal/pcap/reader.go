// Package pcap reads and writes classic libpcap capture files.
//
// The reader hands out whole raw records (16-byte record header plus
// captured bytes) because that is the exact input shape the dissector
// consumes. It does not interpret link framing itself.
package pcap

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/gopacket/layers"

	"github.com/igorolhovskiy/rtpproxy/internal/core"
)

const (
	globalHeaderLen = 24
	recordHeaderLen = 16

	magicMicros = 0xa1b2c3d4 // Little-endian, microsecond timestamps
	magicNanos  = 0xa1b23c4d // Little-endian, nanosecond timestamps

	// The same magics as seen when a big-endian file is read little-endian.
	magicMicrosSwapped = 0xd4c3b2a1
	magicNanosSwapped  = 0x4d3cb2a1

	// Cap on a single record when the file declares no snap length.
	defaultMaxRecord = 262144
)

// Reader iterates the records of a little-endian pcap file.
type Reader struct {
	br       *bufio.Reader
	linkType layers.LinkType
	snapLen  uint32
	nanos    bool
}

// NewReader parses the 24-byte global header and prepares record iteration.
// Big-endian captures are rejected; the record dissector assumes
// little-endian record metadata throughout.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)

	hdr := make([]byte, globalHeaderLen)
	if _, err := io.ReadFull(br, hdr); err != nil {
		return nil, fmt.Errorf("read global header: %w", err)
	}

	var nanos bool
	switch binary.LittleEndian.Uint32(hdr[0:4]) {
	case magicMicros:
	case magicNanos:
		nanos = true
	case magicMicrosSwapped, magicNanosSwapped:
		return nil, core.ErrBigEndianFile
	default:
		return nil, core.ErrBadMagic
	}

	return &Reader{
		br:       br,
		linkType: layers.LinkType(binary.LittleEndian.Uint32(hdr[20:24])),
		snapLen:  binary.LittleEndian.Uint32(hdr[16:20]),
		nanos:    nanos,
	}, nil
}

// LinkType reports the capture's declared link-layer type.
func (r *Reader) LinkType() layers.LinkType { return r.linkType }

// SnapLen reports the capture's declared snap length.
func (r *Reader) SnapLen() uint32 { return r.snapLen }

// Nanos reports whether record timestamps carry nanosecond resolution.
func (r *Reader) Nanos() bool { return r.nanos }

// Next returns the next raw record: record header plus incl_len captured
// bytes, in a freshly allocated buffer safe to alias past the next call.
// Returns io.EOF at a clean end of file.
func (r *Reader) Next() ([]byte, error) {
	hdr := make([]byte, recordHeaderLen)
	if _, err := io.ReadFull(r.br, hdr); err != nil {
		if err == io.EOF {
			return nil, io.EOF // Clean end of file
		}
		return nil, fmt.Errorf("%w: mid-header end of file", core.ErrRecordTooShort)
	}

	inclLen := binary.LittleEndian.Uint32(hdr[8:12])
	max := r.snapLen
	if max == 0 {
		max = defaultMaxRecord
	}
	if inclLen > max {
		return nil, fmt.Errorf("%w: incl_len %d, snap length %d", core.ErrRecordTooLong, inclLen, max)
	}

	rec := make([]byte, recordHeaderLen+int(inclLen))
	copy(rec, hdr)
	if _, err := io.ReadFull(r.br, rec[recordHeaderLen:]); err != nil {
		return nil, fmt.Errorf("%w: %d byte body", core.ErrRecordTooShort, inclLen)
	}
	return rec, nil
}

// ParseRecordHeader decodes the little-endian record header prefix of a
// raw record.
func ParseRecordHeader(rec []byte) (core.RecordHeader, error) {
	if len(rec) < recordHeaderLen {
		return core.RecordHeader{}, core.ErrRecordTooShort
	}
	return core.RecordHeader{
		TsSec:   binary.LittleEndian.Uint32(rec[0:4]),
		TsUsec:  binary.LittleEndian.Uint32(rec[4:8]),
		InclLen: binary.LittleEndian.Uint32(rec[8:12]),
		OrigLen: binary.LittleEndian.Uint32(rec[12:16]),
	}, nil
}
