package extract

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/igorolhovskiy/rtpproxy/internal/audio"
)

// WriteWAVFiles decodes every supported stream to a mono PCM-16 WAV file
// under dir, named <prefix>_0x<ssrc>.wav. Streams with payload types
// outside G.711 are skipped with a warning. Returns the written paths.
func (s *Session) WriteWAVFiles(dir, prefix string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var paths []string
	for _, st := range s.Streams() {
		codec, ok := audio.CodecForPayloadType(st.PayloadType)
		if !ok {
			slog.Warn("skipping stream with unsupported payload type",
				"ssrc", fmt.Sprintf("0x%08x", st.Key.SSRC),
				"payload_type", st.PayloadType)
			continue
		}

		var samples []int16
		for _, pkt := range orderedBySeq(st) {
			samples = append(samples, codec.Decode(pkt.Payload)...)
		}
		if len(samples) == 0 {
			slog.Warn("stream produced no samples",
				"ssrc", fmt.Sprintf("0x%08x", st.Key.SSRC))
			continue
		}

		wav, err := audio.EncodeWAV(samples, s.cfg.Audio.SampleRate)
		if err != nil {
			return paths, fmt.Errorf("encode stream 0x%08x: %w", st.Key.SSRC, err)
		}

		path := filepath.Join(dir, fmt.Sprintf("%s_0x%08x.wav", prefix, st.Key.SSRC))
		if err := os.WriteFile(path, wav, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		slog.Info("wrote stream audio",
			"path", path,
			"codec", codec.String(),
			"packets", len(st.Packets),
			"duration", st.Duration().String())
		paths = append(paths, path)
	}
	return paths, nil
}
