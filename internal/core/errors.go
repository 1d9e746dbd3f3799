// Package core defines sentinel errors.
package core

import "errors"

var (
	// Capture file errors
	ErrBadMagic       = errors.New("rtpproxy: not a pcap file (bad magic)")
	ErrBigEndianFile  = errors.New("rtpproxy: big-endian capture files are not supported")
	ErrRecordTooShort = errors.New("rtpproxy: capture record too short")
	ErrRecordTooLong  = errors.New("rtpproxy: record length exceeds snap length")

	// RTP parsing errors
	ErrRTPTooShort   = errors.New("rtpproxy: packet too short for RTP header")
	ErrBadRTPVersion = errors.New("rtpproxy: unexpected RTP version")

	// Audio errors
	ErrUnknownCodec = errors.New("rtpproxy: no codec for payload type")
	ErrNoSamples    = errors.New("rtpproxy: no audio samples decoded")

	// Configuration errors
	ErrConfigInvalid = errors.New("rtpproxy: invalid configuration")
)
