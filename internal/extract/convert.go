package extract

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/gopacket/layers"

	"github.com/igorolhovskiy/rtpproxy/internal/core"
	"github.com/igorolhovskiy/rtpproxy/internal/core/dissect"
	"github.com/igorolhovskiy/rtpproxy/internal/pcap"
	"github.com/igorolhovskiy/rtpproxy/internal/rtp"
)

// Placeholder MACs for synthesized Ethernet headers; the originals are
// not recoverable from loopback or cooked captures.
var (
	normDstMAC = [6]byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05}
	normSrcMAC = [6]byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x06}
)

const normHeaderLen = 14 + 20 + 8 // Ethernet + optionless IPv4 + UDP

// normalizeFrame rebuilds a dissected record as a canonical Ethernet
// frame: synthetic MACs, a 20-byte IPv4 header with options stripped and
// checksum zeroed, and the original UDP payload.
func normalizeFrame(d dissect.Dissection, payload []byte) []byte {
	b := make([]byte, normHeaderLen+len(payload))

	copy(b[0:6], normDstMAC[:])
	copy(b[6:12], normSrcMAC[:])
	binary.BigEndian.PutUint16(b[12:14], 0x0800)

	ip := b[14:34]
	ip[0] = 0x45 // Version 4, IHL 5
	binary.BigEndian.PutUint16(ip[2:4], uint16(20+8+len(payload)))
	ip[8] = 64 // TTL
	ip[9] = 17 // UDP
	src := d.SrcIP.As4()
	dst := d.DstIP.As4()
	copy(ip[12:16], src[:])
	copy(ip[16:20], dst[:])

	udp := b[34:42]
	binary.BigEndian.PutUint16(udp[0:2], d.SrcPort)
	binary.BigEndian.PutUint16(udp[2:4], d.DstPort)
	binary.BigEndian.PutUint16(udp[4:6], uint16(8+len(payload)))

	copy(b[42:], payload)
	return b
}

// Convert rewrites every IPv4/UDP record of r as an Ethernet-framed
// record in out, dropping everything else. This reframes loopback and
// Linux cooked captures for tools that only accept Ethernet captures.
// Returns the number of packets written.
func Convert(r *pcap.Reader, out io.Writer) (int, error) {
	w, err := pcap.NewWriter(out, r.SnapLen(), layers.LinkTypeEthernet)
	if err != nil {
		return 0, fmt.Errorf("write output header: %w", err)
	}

	written := 0
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return written, nil
		}
		if errors.Is(err, core.ErrRecordTooShort) {
			slog.Warn("capture truncated mid-record, stopping conversion", "written", written)
			return written, nil
		}
		if err != nil {
			return written, fmt.Errorf("read record: %w", err)
		}

		d, outcome := dissect.Dissect(rec, r.LinkType())
		if outcome != dissect.OutcomeOK {
			continue
		}
		frame := normalizeFrame(d, boundedPayload(d))
		if err := w.WritePacket(d.Record.Time(r.Nanos()), len(frame), frame); err != nil {
			return written, fmt.Errorf("write packet: %w", err)
		}
		written++
	}
}

// Split demultiplexes the capture's RTP packets into one Ethernet-framed
// pcap per SSRC. openOut is called once per new SSRC to create the
// destination; Split closes every destination before returning. Returns
// packet counts per SSRC.
func Split(r *pcap.Reader, openOut func(ssrc uint32) (io.WriteCloser, error)) (map[uint32]int, error) {
	type dest struct {
		wc io.WriteCloser
		w  *pcap.Writer
	}
	dests := make(map[uint32]*dest)
	counts := make(map[uint32]int)

	closeAll := func() {
		for _, d := range dests {
			d.wc.Close()
		}
	}
	defer closeAll()

	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return counts, nil
		}
		if errors.Is(err, core.ErrRecordTooShort) {
			slog.Warn("capture truncated mid-record, stopping split")
			return counts, nil
		}
		if err != nil {
			return counts, fmt.Errorf("read record: %w", err)
		}

		d, outcome := dissect.Dissect(rec, r.LinkType())
		if outcome != dissect.OutcomeOK {
			continue
		}
		payload := boundedPayload(d)
		if rtp.IsRTCP(payload) || !rtp.LooksLikeRTP(payload) {
			continue
		}
		h, _, err := rtp.Parse(payload)
		if err != nil {
			continue
		}

		dst, ok := dests[h.SSRC]
		if !ok {
			wc, err := openOut(h.SSRC)
			if err != nil {
				return counts, fmt.Errorf("open output for 0x%08x: %w", h.SSRC, err)
			}
			w, err := pcap.NewWriter(wc, r.SnapLen(), layers.LinkTypeEthernet)
			if err != nil {
				wc.Close()
				return counts, fmt.Errorf("write header for 0x%08x: %w", h.SSRC, err)
			}
			dst = &dest{wc: wc, w: w}
			dests[h.SSRC] = dst
			slog.Info("new stream output", "ssrc", fmt.Sprintf("0x%08x", h.SSRC))
		}

		frame := normalizeFrame(d, payload)
		if err := dst.w.WritePacket(d.Record.Time(r.Nanos()), len(frame), frame); err != nil {
			return counts, fmt.Errorf("write packet for 0x%08x: %w", h.SSRC, err)
		}
		counts[h.SSRC]++
	}
}
