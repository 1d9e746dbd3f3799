// Package audio decodes G.711 telephony payloads and encodes WAV output.
package audio

// SampleRate is the G.711 narrowband sampling rate.
const SampleRate = 8000

// Codec identifies a supported media codec.
type Codec int

const (
	CodecPCMU Codec = iota // G.711 µ-law
	CodecPCMA              // G.711 A-law
)

func (c Codec) String() string {
	switch c {
	case CodecPCMU:
		return "pcmu"
	case CodecPCMA:
		return "pcma"
	default:
		return "unknown"
	}
}

// CodecForPayloadType maps static RTP payload types (RFC 3551 §6) to
// codecs. Only the G.711 variants are supported.
func CodecForPayloadType(pt uint8) (Codec, bool) {
	switch pt {
	case 0:
		return CodecPCMU, true
	case 8:
		return CodecPCMA, true
	default:
		return 0, false
	}
}

// Decode expands one codec frame into linear PCM-16 samples.
func (c Codec) Decode(b []byte) []int16 {
	out := make([]int16, len(b))
	switch c {
	case CodecPCMA:
		for i, s := range b {
			out[i] = alawToLinear(s)
		}
	default:
		for i, s := range b {
			out[i] = ulawToLinear(s)
		}
	}
	return out
}

const ulawBias = 0x84

// ulawToLinear expands one µ-law sample (G.711 §A.1).
func ulawToLinear(u byte) int16 {
	u = ^u
	exp := (u >> 4) & 0x07
	mant := int16(u & 0x0F)
	mag := (mant<<3+ulawBias)<<exp - ulawBias
	if u&0x80 != 0 {
		return -mag
	}
	return mag
}

// alawToLinear expands one A-law sample (G.711 §A.2). The sign bit set
// marks a positive sample in A-law's inverted-bit encoding.
func alawToLinear(a byte) int16 {
	a ^= 0x55
	seg := (a >> 4) & 0x07
	mag := int16(a&0x0F) << 4
	if seg == 0 {
		mag += 8
	} else {
		mag = (mag + 0x108) << (seg - 1)
	}
	if a&0x80 != 0 {
		return mag
	}
	return -mag
}
