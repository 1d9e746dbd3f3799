package extract

import (
	"fmt"

	"github.com/igorolhovskiy/rtpproxy/internal/audio"
)

// Report is the analyze command's output, marshaled to YAML or JSON.
type Report struct {
	LinkType     string         `yaml:"link_type" json:"link_type"`
	Records      int            `yaml:"records" json:"records"`
	Truncated    int            `yaml:"truncated" json:"truncated"`
	NonIP        int            `yaml:"non_ip" json:"non_ip"`
	RTCPPackets  int            `yaml:"rtcp_packets" json:"rtcp_packets"`
	NonRTP       int            `yaml:"non_rtp" json:"non_rtp"`
	RTPPackets   int            `yaml:"rtp_packets" json:"rtp_packets"`
	StreamCount  int            `yaml:"stream_count" json:"stream_count"`
	Streams      []StreamReport `yaml:"streams" json:"streams"`
}

// StreamReport describes one RTP stream.
type StreamReport struct {
	SSRC        string  `yaml:"ssrc" json:"ssrc"`
	Source      string  `yaml:"source" json:"source"`
	Destination string  `yaml:"destination" json:"destination"`
	PayloadType uint8   `yaml:"payload_type" json:"payload_type"`
	Codec       string  `yaml:"codec" json:"codec"`
	Packets     int     `yaml:"packets" json:"packets"`
	Duration    float64 `yaml:"duration_seconds" json:"duration_seconds"`
}

// Report summarizes the session after a scan.
func (s *Session) Report() *Report {
	rep := &Report{
		LinkType:    s.linkType.String(),
		Records:     s.Counters.Records,
		Truncated:   s.Counters.Truncated,
		NonIP:       s.Counters.NonIP,
		RTCPPackets: s.Counters.RTCP,
		NonRTP:      s.Counters.NonRTP,
		RTPPackets:  s.Counters.RTP,
	}
	for _, st := range s.Streams() {
		codec := "unsupported"
		if c, ok := audio.CodecForPayloadType(st.PayloadType); ok {
			codec = c.String()
		}
		rep.Streams = append(rep.Streams, StreamReport{
			SSRC:        fmt.Sprintf("0x%08x", st.Key.SSRC),
			Source:      fmt.Sprintf("%s:%d", st.Key.SrcIP, st.Key.SrcPort),
			Destination: fmt.Sprintf("%s:%d", st.Key.DstIP, st.Key.DstPort),
			PayloadType: st.PayloadType,
			Codec:       codec,
			Packets:     len(st.Packets),
			Duration:    st.Duration().Seconds(),
		})
	}
	rep.StreamCount = len(rep.Streams)
	return rep
}
