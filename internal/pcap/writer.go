package pcap

import (
	"io"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// Writer emits a little-endian pcap file via gopacket's pcapgo writer.
type Writer struct {
	pw      *pcapgo.Writer
	snapLen uint32
}

// NewWriter writes the global header and returns a record writer.
func NewWriter(w io.Writer, snapLen uint32, linkType layers.LinkType) (*Writer, error) {
	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(snapLen, linkType); err != nil {
		return nil, err
	}
	return &Writer{pw: pw, snapLen: snapLen}, nil
}

// WritePacket writes one packet with the given timestamp and original
// on-wire length.
func (w *Writer) WritePacket(ts time.Time, origLen int, data []byte) error {
	ci := gopacket.CaptureInfo{
		Timestamp:     ts,
		CaptureLength: len(data),
		Length:        origLen,
	}
	return w.pw.WritePacket(ci, data)
}
