package media

import (
	"testing"

	"github.com/pion/rtp"
)

func TestSenderFrameAdvancesSeqAndTimestamp(t *testing.T) {
	s := NewSender(DefaultPT.Mono, 1234)
	samples := make([]byte, FrameSamples)
	for i := range samples {
		samples[i] = SilenceByte
	}

	b1, err := s.Frame(samples, false)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	b2, err := s.Frame(samples, false)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}

	var p1, p2 rtp.Packet
	if err := p1.Unmarshal(b1); err != nil {
		t.Fatalf("unmarshal p1: %v", err)
	}
	if err := p2.Unmarshal(b2); err != nil {
		t.Fatalf("unmarshal p2: %v", err)
	}
	if p1.SequenceNumber != 0 || p2.SequenceNumber != 1 {
		t.Fatalf("seq = %d, %d, want 0, 1", p1.SequenceNumber, p2.SequenceNumber)
	}
	if p1.Timestamp != 0 || p2.Timestamp != FrameSamples {
		t.Fatalf("ts = %d, %d, want 0, %d", p1.Timestamp, p2.Timestamp, FrameSamples)
	}
	if p1.SSRC != 1234 || p2.SSRC != 1234 {
		t.Fatalf("ssrc = %d, %d, want port-derived 1234", p1.SSRC, p2.SSRC)
	}
}

func TestDTMFFrameLayout(t *testing.T) {
	s := NewSender(DefaultPT.Mono, 1)
	b, err := s.DTMFFrame(DefaultPT.Event, 5, true, 160)
	if err != nil {
		t.Fatalf("DTMFFrame: %v", err)
	}
	var pkt rtp.Packet
	if err := pkt.Unmarshal(b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if pkt.PayloadType != DefaultPT.Event {
		t.Fatalf("PayloadType = %d, want %d", pkt.PayloadType, DefaultPT.Event)
	}
	if pkt.Payload[0] != 5 {
		t.Fatalf("event byte = %d, want 5", pkt.Payload[0])
	}
	if pkt.Payload[1]&0x80 == 0 {
		t.Fatal("end-of-event flag not set")
	}
	if duration := uint16(pkt.Payload[2])<<8 | uint16(pkt.Payload[3]); duration != 160 {
		t.Fatalf("duration = %d, want 160", duration)
	}
	if !pkt.Marker {
		t.Fatal("end DTMF frame should set the RTP marker bit")
	}
}

func TestParseInboundAudio(t *testing.T) {
	s := NewSender(DefaultPT.Mono, 1)
	samples := make([]byte, FrameSamples)
	raw, _ := s.Frame(samples, false)
	in, ok := ParseInbound(raw, DefaultPT)
	if !ok {
		t.Fatal("ParseInbound: not ok")
	}
	if !in.IsAudio || in.IsDTMF {
		t.Fatalf("classification = %+v, want audio", in)
	}
}

func TestParseInboundDTMF(t *testing.T) {
	s := NewSender(DefaultPT.Mono, 1)
	raw, _ := s.DTMFFrame(DefaultPT.Event, 11, true, 160) // '#'
	in, ok := ParseInbound(raw, DefaultPT)
	if !ok {
		t.Fatal("ParseInbound: not ok")
	}
	if !in.IsDTMF || in.IsAudio {
		t.Fatalf("classification = %+v, want DTMF", in)
	}
	if in.DTMFEvent != 11 || !in.DTMFEnd {
		t.Fatalf("DTMFEvent/End = %d/%v, want 11/true", in.DTMFEvent, in.DTMFEnd)
	}
}

func TestParseInboundRejectsShortPacket(t *testing.T) {
	if _, ok := ParseInbound([]byte{1, 2, 3}, DefaultPT); ok {
		t.Fatal("ParseInbound should reject a too-short buffer")
	}
}
