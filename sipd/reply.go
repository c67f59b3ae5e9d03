package sipd

import (
	"fmt"

	"github.com/revk/voip-answer/sip"
)

// replyBuilder composes one outbound message (a response or, for the
// fire-and-forget request the per-call goroutine sends once it has an
// outcome, a BYE/REFER) by copying key headers from the triggering
// request. It mirrors the original device's nested make_reply /
// send_reply helpers as a small struct instead of closures over a
// shared buffer, since the Go port keeps the request and the reply
// writer as explicit values passed into each call's goroutine.
type replyBuilder struct {
	rx  []byte
	w   *sip.Writer
	rport int
}

func newReplyBuilder(rx []byte, buf []byte, rport int) *replyBuilder {
	return &replyBuilder{rx: rx, w: sip.NewWriter(buf), rport: rport}
}

// copyHeaders appends the Via/From/To/Call-ID/CSeq set used on every
// reply. reversed swaps From/To (used when the parent originates a
// fresh request such as BYE/REFER rather than answering in place) and
// substitutes a dummy Via instead of copying the request's.
func (b *replyBuilder) copyHeaders(reversed bool) {
	if reversed {
		b.w.AddHeader("Via", []byte("SIP/2.0/UDP 0.0.0.0:5060"))
	} else {
		prev := 0
		for {
			v, resume, ok := sip.FindHeader(b.rx, "Via", "v", prev)
			if !ok {
				break
			}
			b.w.AddHeader("Via", v.Get(b.rx))
			prev = resume
		}
	}

	if v, _, ok := sip.FindHeader(b.rx, "From", "f", 0); ok {
		name := "f"
		if reversed {
			name = "t"
		}
		b.w.AddHeader(name, v.Get(b.rx))
	}
	if v, _, ok := sip.FindHeader(b.rx, "To", "t", 0); ok {
		name := "t"
		if reversed {
			name = "f"
		}
		b.w.AddHeader(name, v.Get(b.rx))
		if !reversed && b.rport >= 0 {
			b.w.AddExtra("tag", []byte(fmt.Sprintf("%d", b.rport)), true, ';', false, false)
		}
	}
	if v, _, ok := sip.FindHeader(b.rx, "Call-ID", "i", 0); ok {
		b.w.AddHeader("i", v.Get(b.rx))
	}
	if !reversed {
		if v, _, ok := sip.FindHeader(b.rx, "CSeq", "", 0); ok {
			b.w.AddHeader("CSeq", v.Get(b.rx))
		}
	}
}

// buildProvisional composes a bare "SIP/2.0 <code> <reason>" response
// with the standard copied headers and a zero Content-Length, used for
// 183 Call Progress and the plain 200 OK that precedes an SDP body.
func buildProvisional(rx []byte, buf []byte, rport int, code int, reason string) []byte {
	b := newReplyBuilder(rx, buf, rport)
	b.w.WriteStatusLine(code, reason)
	b.copyHeaders(false)
	b.w.AddHeader("l", []byte("0"))
	b.w.EndHeaders()
	return b.w.Bytes()
}

// buildAnswer composes the 200 OK that carries the SDP answer.
func buildAnswer(rx []byte, buf []byte, rport int, sdpBody []byte) []byte {
	b := newReplyBuilder(rx, buf, rport)
	b.w.WriteStatusLine(200, "OK")
	b.copyHeaders(false)
	b.w.AddHeader("c", []byte("application/sdp"))
	b.w.AddHeader("l", []byte(fmt.Sprintf("%d", len(sdpBody))))
	b.w.EndHeaders()
	b.w.AppendBody(sdpBody)
	return b.w.Bytes()
}

// buildBye composes an in-dialog BYE toward contact, the request the
// per-call goroutine sends once its program finishes normally.
func buildBye(rx []byte, buf []byte, contact []byte) []byte {
	b := newReplyBuilder(rx, buf, -1)
	b.w.WriteRequestLine("BYE", contact)
	b.copyHeaders(true)
	b.w.AddHeader("CSeq", []byte("1 BYE"))
	b.w.AddHeader("l", []byte("0"))
	b.w.EndHeaders()
	return b.w.Bytes()
}

// buildRefer composes a REFER toward contact's host with Refer-To set
// to the outcome token (a DTMF digit, a bare "#", or "#NNN" digits)
// placed in front of the original "@host" part of the contact URI.
func buildRefer(rx []byte, buf []byte, contact []byte, target string) []byte {
	b := newReplyBuilder(rx, buf, -1)
	b.w.WriteRequestLine("REFER", contact)
	b.copyHeaders(true)
	b.w.AddHeader("CSeq", []byte("1 REFER"))
	b.w.AddHeader("l", []byte("0"))
	host := contact
	for i, c := range contact {
		if c == '@' {
			host = contact[i:]
			break
		}
	}
	b.w.AddHeader("Refer-To", []byte(fmt.Sprintf("sip:%s%s", target, host)))
	b.w.AddHeader("Authorization", []byte(`Digest username="Voicemail"`))
	b.w.EndHeaders()
	return b.w.Bytes()
}
