package media

import (
	"github.com/pion/rtp"
)

// PT holds the RTP payload types this engine speaks: mono A-law,
// stereo A-law, and the telephone-event (DTMF) type negotiated in the
// SDP answer.
type PT struct {
	Mono   uint8
	Stereo uint8
	Event  uint8
}

// DefaultPT is the payload type assignment offered in every SDP answer:
// 8 for mono A-law (the static PCMA assignment), 9 for a locally
// defined stereo A-law type, 101 for telephone-event.
var DefaultPT = PT{Mono: 8, Stereo: 9, Event: 101}

// FrameSamples is the number of A-law octets in one 20ms frame at the
// 8000Hz sample rate this system always uses.
const FrameSamples = 160

// SilenceByte is the A-law encoding of analog silence.
const SilenceByte = 0x55

// Sender produces outbound RTP frames for one call, tracking sequence
// number and timestamp the way a single long-lived stream must.
type Sender struct {
	ssrc    uint32
	seq     uint16
	ts      uint32
	payload uint8
}

// NewSender creates a Sender for one call. ssrc is seeded from the
// call's own RTP port, matching the upstream device's use of the port
// number as the stream identity rather than a randomly chosen one;
// sequence number and timestamp both start at zero.
func NewSender(payloadType uint8, ssrc uint32) *Sender {
	return &Sender{ssrc: ssrc, payload: payloadType}
}

// Frame marshals one 20ms frame of samples (len(samples) bytes, usually
// FrameSamples or FrameSamples*2 for stereo) into a wire-ready RTP
// packet, advancing the sequence number and timestamp for the next
// call.
func (s *Sender) Frame(samples []byte, marker bool) ([]byte, error) {
	pkt := &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    s.payload,
			SequenceNumber: s.seq,
			Timestamp:      s.ts,
			SSRC:           s.ssrc,
			Marker:         marker,
		},
		Payload: samples,
	}
	s.seq++
	s.ts += uint32(len(samples))
	return pkt.Marshal()
}

// DTMFFrame marshals a telephone-event packet for the given digit
// (0-9, *=10, #=11) in the RFC 4733 layout: the event code in octet 0,
// the end-of-event flag in the high bit of octet 1, and a 16-bit
// duration in octets 2-3.
func (s *Sender) DTMFFrame(eventPT uint8, event byte, end bool, duration uint16) ([]byte, error) {
	payload := make([]byte, 4)
	payload[0] = event
	if end {
		payload[1] = 0x80
	}
	payload[2] = byte(duration >> 8)
	payload[3] = byte(duration)
	pkt := &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    eventPT,
			SequenceNumber: s.seq,
			Timestamp:      s.ts,
			SSRC:           s.ssrc,
			Marker:         end,
		},
		Payload: payload,
	}
	s.seq++
	return pkt.Marshal()
}

// Inbound is a decoded incoming RTP packet classified against the
// negotiated payload types.
type Inbound struct {
	PayloadType uint8
	Payload     []byte
	IsAudio     bool
	IsDTMF      bool
	DTMFEvent   byte
	DTMFEnd     bool
}

// ParseInbound unmarshals a received datagram and classifies it. It
// returns ok=false for anything too short or otherwise malformed to be
// RTP, matching the upstream device's silent discard of garbage
// packets.
func ParseInbound(buf []byte, pt PT) (Inbound, bool) {
	if len(buf) < 12 {
		return Inbound{}, false
	}
	var pkt rtp.Packet
	if err := pkt.Unmarshal(buf); err != nil {
		return Inbound{}, false
	}
	in := Inbound{PayloadType: pkt.PayloadType, Payload: pkt.Payload}
	switch pkt.PayloadType {
	case pt.Mono, pt.Stereo:
		in.IsAudio = true
	case pt.Event:
		in.IsDTMF = true
		if len(pkt.Payload) > 0 {
			in.DTMFEvent = pkt.Payload[0]
		}
		if len(pkt.Payload) > 1 {
			in.DTMFEnd = pkt.Payload[1]&0x80 != 0
		}
	}
	return in, true
}
