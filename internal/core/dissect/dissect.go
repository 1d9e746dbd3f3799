// Package dissect locates the RTP payload inside one raw capture record.
//
// A record is the 16-byte pcap record header followed by the captured link
// frame. Dissect strips the link framing (loopback/null, Linux cooked, or
// Ethernet), finds the encapsulated IPv4/UDP header pair and reports where
// the UDP payload starts, how long the declared payload is, and the
// addressing 4-tuple. It performs no I/O and no allocation and keeps no
// state between calls.
package dissect

import (
	"net/netip"

	"github.com/google/gopacket/layers"

	"github.com/igorolhovskiy/rtpproxy/internal/core"
)

const (
	recordHeaderLen = 16

	nullLinkLen = 4  // 4-byte address family
	sllLinkLen  = 16 // Linux cooked capture header
	ethLinkLen  = 14 // Ethernet header without VLAN tags

	ipv4HeaderLen = 20 // No options
	udpHeaderLen  = 8

	afInet        = 2      // Loopback address family for IPv4
	etherTypeIPv4 = 0x0800 // Ethertype / cooked protocol for IPv4
)

// Outcome classifies a dissection attempt. Every outcome is a value
// returned to the caller; there is no fatal class.
type Outcome int

const (
	// OutcomeOK: recognized framing, IPv4 discriminator, both network
	// headers within the declared lengths. The Dissection is fully
	// populated.
	OutcomeOK Outcome = iota

	// OutcomeUnknown: recognized framing but a non-IPv4 payload. Only
	// HeaderLen is populated, set to the declared record length so the
	// caller can skip the record without inspecting its body.
	OutcomeUnknown

	// OutcomeTruncated: the buffer was shorter than required at some
	// checked boundary. Fields set before the failing check keep their
	// values; everything else stays zero.
	OutcomeTruncated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeUnknown:
		return "unknown"
	case OutcomeTruncated:
		return "truncated"
	default:
		return "invalid"
	}
}

// Dissection is the result of dissecting one record. It aliases the input
// buffer (Payload is a subslice) and must not outlive it.
type Dissection struct {
	Record core.RecordHeader // Copy of the pcap record header (OK only)

	// HeaderLen is the number of bytes consumed ahead of the payload:
	// record header + link header, plus the fixed IPv4/UDP pair for the
	// loopback and Ethernet framings. On OutcomeUnknown it is instead the
	// declared record length (record header + incl_len), the skip distance.
	HeaderLen int

	// PayloadLen is derived from the declared incl_len and may exceed
	// len(Payload) when the capture overstates its own length; callers
	// must bound by the physical buffer.
	PayloadLen int

	Payload []byte // Physical bytes from payload start to end of buffer

	SrcIP   netip.Addr
	DstIP   netip.Addr
	SrcPort uint16 // Host byte order
	DstPort uint16
}

// framing describes one link-layer variant: where its discriminator lives,
// what value marks IPv4, and whether the IPv4/UDP pair is treated as a
// fixed 28-byte aggregate (no IP options) or sized from the IP header
// itself. Only the Linux cooked framing tolerates IP options.
type framing struct {
	linkLen   int
	minLen    int    // Minimum record size checked before any field read
	discOff   int    // Discriminator offset from record start
	discWide  bool   // 4-byte discriminator (loopback address family)
	discWant  uint32 // IPv4 marker in host byte order after conversion
	fixedPair bool
}

var (
	framingNull = framing{
		linkLen:   nullLinkLen,
		minLen:    recordHeaderLen + nullLinkLen + ipv4HeaderLen + udpHeaderLen,
		discOff:   recordHeaderLen,
		discWide:  true,
		discWant:  afInet,
		fixedPair: true,
	}
	framingSLL = framing{
		linkLen:  sllLinkLen,
		minLen:   recordHeaderLen + sllLinkLen,
		discOff:  recordHeaderLen + 14, // Protocol field of the cooked header
		discWant: etherTypeIPv4,
	}
	framingEthernet = framing{
		linkLen:   ethLinkLen,
		minLen:    recordHeaderLen + ethLinkLen + ipv4HeaderLen + udpHeaderLen,
		discOff:   recordHeaderLen + 12, // Ethertype
		discWant:  etherTypeIPv4,
		fixedPair: true,
	}
)

// framingFor selects the link framing. Tags other than the two named
// specializations fall through to the generic Ethernet path.
func framingFor(lt layers.LinkType) framing {
	switch lt {
	case layers.LinkTypeNull:
		return framingNull
	case layers.LinkTypeLinuxSLL:
		return framingSLL
	default:
		return framingEthernet
	}
}

// Dissect examines one raw capture record under the given link type.
//
// The returned Dissection is zero-initialized and populated only as far as
// validation progressed; no field beyond HeaderLen is meaningful unless the
// outcome is OutcomeOK. Safe for concurrent use on independent buffers.
func Dissect(buf []byte, linkType layers.LinkType) (Dissection, Outcome) {
	var d Dissection
	f := framingFor(linkType)
	v := view(buf)

	if len(buf) < f.minLen {
		return d, OutcomeTruncated
	}

	// incl_len is needed even when the payload turns out to be non-IP:
	// it is the skip distance reported on OutcomeUnknown.
	inclLen, _ := v.le32(8)

	var disc uint32
	if f.discWide {
		disc, _ = v.be32(f.discOff)
	} else {
		d16, _ := v.be16(f.discOff)
		disc = uint32(d16)
	}
	if disc != f.discWant {
		d.HeaderLen = recordHeaderLen + int(inclLen)
		return d, OutcomeUnknown
	}

	tsSec, _ := v.le32(0)
	tsUsec, _ := v.le32(4)
	origLen, _ := v.le32(12)
	d.Record = core.RecordHeader{
		TsSec:   tsSec,
		TsUsec:  tsUsec,
		InclLen: inclLen,
		OrigLen: origLen,
	}

	d.HeaderLen = f.minLen
	d.PayloadLen = int(inclLen) + recordHeaderLen - d.HeaderLen
	if d.PayloadLen < 0 {
		return d, OutcomeTruncated
	}

	ipOff := recordHeaderLen + f.linkLen
	ipLen := ipv4HeaderLen
	if !f.fixedPair {
		ihl, ok := v.byteAt(ipOff)
		if !ok {
			return d, OutcomeTruncated
		}
		ipLen = int(ihl&0x0f) * 4
		if d.PayloadLen < ipLen+udpHeaderLen {
			return d, OutcomeTruncated
		}
		d.PayloadLen -= ipLen + udpHeaderLen
	}

	udpOff := ipOff + ipLen
	payloadOff := udpOff + udpHeaderLen

	srcIP, ok1 := v.addr4(ipOff + 12)
	dstIP, ok2 := v.addr4(ipOff + 16)
	srcPort, ok3 := v.be16(udpOff)
	dstPort, ok4 := v.be16(udpOff + 2)
	if !ok1 || !ok2 || !ok3 || !ok4 || payloadOff > len(buf) {
		return d, OutcomeTruncated
	}

	d.SrcIP = srcIP
	d.DstIP = dstIP
	d.SrcPort = srcPort
	d.DstPort = dstPort
	d.Payload = buf[payloadOff:]
	return d, OutcomeOK
}
