// Package extract walks a capture, dissects its records and assembles RTP
// media streams for reporting, splitting and audio extraction.
package extract

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/google/gopacket/layers"

	"github.com/igorolhovskiy/rtpproxy/internal/config"
	"github.com/igorolhovskiy/rtpproxy/internal/core"
	"github.com/igorolhovskiy/rtpproxy/internal/core/dissect"
	"github.com/igorolhovskiy/rtpproxy/internal/pcap"
	"github.com/igorolhovskiy/rtpproxy/internal/rtp"
)

// Packet is one RTP packet attributed to a stream. Payload aliases the
// record buffer handed out by the reader, which stays valid for the life
// of the session.
type Packet struct {
	Seq       uint16
	Timestamp uint32
	Time      time.Time
	Payload   []byte
}

// Stream collects the packets of one SSRC/4-tuple media flow in arrival
// order.
type Stream struct {
	Key         core.StreamKey
	PayloadType uint8
	Packets     []Packet
	First, Last time.Time
}

// Duration is the wall-clock span between the first and last packet.
func (st *Stream) Duration() time.Duration {
	if len(st.Packets) < 2 {
		return 0
	}
	return st.Last.Sub(st.First)
}

// Counters summarize how the session classified the capture's records.
type Counters struct {
	Records   int // Total records read
	Truncated int // Dissector reported a short record
	NonIP     int // Recognized framing, non-IPv4 payload
	RTCP      int // IPv4/UDP but RTCP
	NonRTP    int // IPv4/UDP but not parseable as RTP
	RTP       int // Attributed to a stream
}

// Session accumulates streams across one capture scan.
type Session struct {
	cfg      *config.Config
	linkType layers.LinkType
	nanos    bool

	streams map[core.StreamKey]*Stream
	order   []core.StreamKey // First-seen order, for deterministic output

	Counters Counters
}

// NewSession creates an empty session.
func NewSession(cfg *config.Config) *Session {
	return &Session{
		cfg:     cfg,
		streams: make(map[core.StreamKey]*Stream),
	}
}

// Scan reads every record of r, dissects it and attributes RTP packets to
// streams. A capture cut off mid-record (a killed tcpdump leaves these)
// ends the scan without error.
func (s *Session) Scan(r *pcap.Reader) error {
	s.linkType = r.LinkType()
	s.nanos = r.Nanos()

	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, core.ErrRecordTooShort) {
			slog.Warn("capture truncated mid-record, stopping scan",
				"records", s.Counters.Records)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read record: %w", err)
		}
		s.Counters.Records++
		s.consume(rec)
	}
}

// consume classifies one raw record.
func (s *Session) consume(rec []byte) {
	d, outcome := dissect.Dissect(rec, s.linkType)
	switch outcome {
	case dissect.OutcomeTruncated:
		s.Counters.Truncated++
		return
	case dissect.OutcomeUnknown:
		s.Counters.NonIP++
		return
	}

	payload := boundedPayload(d)
	if rtp.IsRTCP(payload) {
		s.Counters.RTCP++
		return
	}
	h, media, err := rtp.Parse(payload)
	if err != nil {
		s.Counters.NonRTP++
		return
	}
	s.Counters.RTP++

	key := core.StreamKey{
		SSRC:    h.SSRC,
		SrcIP:   d.SrcIP,
		DstIP:   d.DstIP,
		SrcPort: d.SrcPort,
		DstPort: d.DstPort,
	}
	ts := d.Record.Time(s.nanos)

	st, ok := s.streams[key]
	if !ok {
		st = &Stream{Key: key, PayloadType: h.PayloadType, First: ts}
		s.streams[key] = st
		s.order = append(s.order, key)
		slog.Debug("new RTP stream",
			"ssrc", fmt.Sprintf("0x%08x", h.SSRC),
			"src", fmt.Sprintf("%s:%d", d.SrcIP, d.SrcPort),
			"dst", fmt.Sprintf("%s:%d", d.DstIP, d.DstPort),
			"payload_type", h.PayloadType)
	}
	st.Last = ts
	st.Packets = append(st.Packets, Packet{
		Seq:       h.Sequence,
		Timestamp: h.Timestamp,
		Time:      ts,
		Payload:   media,
	})
}

// Streams returns the collected streams in first-seen order, dropping
// those below the configured minimum packet count.
func (s *Session) Streams() []*Stream {
	out := make([]*Stream, 0, len(s.order))
	for _, key := range s.order {
		st := s.streams[key]
		if len(st.Packets) < s.cfg.Audio.MinPackets {
			continue
		}
		out = append(out, st)
	}
	return out
}

// boundedPayload bounds the declared payload length by the physical
// buffer, per the dissector's caller contract.
func boundedPayload(d dissect.Dissection) []byte {
	n := d.PayloadLen
	if n > len(d.Payload) {
		n = len(d.Payload)
	}
	return d.Payload[:n]
}

// orderedBySeq returns the stream's packets sorted by wraparound-aware
// sequence distance from the first packet. Arrival order breaks ties.
func orderedBySeq(st *Stream) []Packet {
	if len(st.Packets) == 0 {
		return nil
	}
	base := st.Packets[0].Seq
	out := make([]Packet, len(st.Packets))
	copy(out, st.Packets)
	sort.SliceStable(out, func(i, j int) bool {
		di := int16(out[i].Seq - base)
		dj := int16(out[j].Seq - base)
		return di < dj
	})
	return out
}
