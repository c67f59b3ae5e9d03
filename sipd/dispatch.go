package sipd

import (
	"context"
	"net"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/revk/voip-answer/engine"
	"github.com/revk/voip-answer/sip"
)

// Server owns the signaling socket and hands each new INVITE off to its
// own goroutine running the engine, exactly as the upstream device
// forks a child process per call.
type Server struct {
	listener *Listener
	cfg      engine.Config
	log      zerolog.Logger

	wg sync.WaitGroup
}

// NewServer builds a Server around an already-bound Listener.
func NewServer(l *Listener, cfg engine.Config, log zerolog.Logger) *Server {
	return &Server{listener: l, cfg: cfg, log: log}
}

// Serve loops receiving datagrams until ctx is canceled or the socket
// errors, dispatching each one. It blocks; call it from main's
// goroutine and cancel ctx to stop.
func (s *Server) Serve(ctx context.Context) error {
	buf := make([]byte, 2000)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		dg, err := s.listener.ReadFrom(buf)
		if err != nil {
			return err
		}
		rx := make([]byte, len(dg.Data))
		copy(rx, dg.Data)
		s.handle(ctx, rx, dg.Peer, dg.LocalIP, dg.Family)
	}
}

// Wait blocks until every in-flight call goroutine has finished.
func (s *Server) Wait() { s.wg.Wait() }

func (s *Server) handle(ctx context.Context, rx []byte, peer *net.UDPAddr, localIP net.IP, family string) {
	if len(rx) <= 4 || !isAlpha(rx[0]) {
		return
	}
	me := 0
	for me < len(rx) && isAlpha(rx[me]) {
		me++
	}
	method := string(rx[:me])
	switch strings.ToUpper(method) {
	case "SIP":
		return // a status line: a response we don't expect, ignore
	case "ACK":
		return // no reply needed
	}

	nonAnswer := -1 // -1 means "this is not a non-answer call"
	rport := -1

	if strings.EqualFold(method, "INVITE") && !hasToTag(rx) {
		nonAnswer = nonAnswerCode(rx)
		conn, port, err := allocateCallSocket()
		if err == nil {
			rport = port
			from, _ := headerAddress(rx, "From", "f")
			to, _ := headerAddress(rx, "To", "t")
			callID := headerValue(rx, "Call-ID", "i")
			req := buildRequest(rx)
			req.From, req.To, req.CallID = from, to, callID

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				defer conn.Close()
				s.runCall(ctx, conn, port, rx, peer, req, nonAnswer)
			}()
		}
	}

	txBuf := make([]byte, 1500)
	var txp []byte
	if nonAnswer >= 0 {
		txp = buildProvisional(rx, txBuf, -1, nonAnswer, "Call progress")
	} else {
		txp = buildProvisional(rx, txBuf, -1, 200, "OK")
	}
	if rport >= 0 {
		sdpBody, err := BuildAnswerSDP(localIP.String(), family, rport)
		if err == nil {
			txp = buildAnswer(rx, txBuf, rport, sdpBody)
		}
	}
	if len(txp) > 0 {
		s.listener.WriteTo(txp, peer)
	}
}

// runCall runs one call's engine to completion. A call-progress
// (non-answer) call always plays out its program the same as a normal
// one, but regardless of how it ends the dispatcher's only further
// reply is a final "<code> Done" status toward the same peer; an
// answered call instead sends a BYE or REFER request reflecting its
// outcome.
func (s *Server) runCall(ctx context.Context, conn *net.UDPConn, rport int, rx []byte, peer *net.UDPAddr, req engine.Request, nonAnswer int) {
	call := engine.NewCall(s.cfg, s.log, conn, rport, req)
	outcome := call.Run(ctx, nonAnswer >= 0)

	if nonAnswer >= 0 {
		buf := make([]byte, 1500)
		out := buildProvisional(rx, buf, -1, nonAnswer, "Done")
		s.listener.WriteTo(out, peer)
		return
	}
	if outcome.Absent {
		return
	}
	contact := contactURI(rx)
	if contact == nil {
		return
	}
	buf := make([]byte, 1500)
	var out []byte
	if outcome.IsRefer() {
		out = buildRefer(rx, buf, contact, outcome.Target)
	} else {
		out = buildBye(rx, buf, contact)
	}
	s.listener.WriteTo(out, peer)
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func hasToTag(rx []byte) bool {
	v, _, ok := sip.FindHeader(rx, "To", "t", 0)
	if !ok {
		return false
	}
	_, hasTag := sip.FindSemi(rx, v.Start, v.End, "tag")
	return hasTag
}

// nonAnswerCode inspects the request-URI's local part for a leading
// "N=" / "=" call-progress marker, without yet building the full
// Program (the engine does that once the call goroutine starts).
func nonAnswerCode(rx []byte) int {
	req, ok := sip.FindRequest(rx, 0, len(rx))
	if !ok {
		return -1
	}
	p, e := req.Start, req.End
	local, ok := sip.FindLocal(rx, p, e)
	if ok {
		p = local.Start
	}
	pos := p
	v := sip.ReadUnsigned(&pos, rx, e)
	if pos < e && rx[pos] == '=' {
		return v
	}
	return -1
}

func headerValue(rx []byte, name, short string) string {
	v, _, ok := sip.FindHeader(rx, name, short, 0)
	if !ok {
		return ""
	}
	return string(v.Get(rx))
}

// headerAddress returns a header's URI local part (the same "user" text
// the playback/record scripts receive as from/to arguments).
func headerAddress(rx []byte, name, short string) (string, bool) {
	v, _, ok := sip.FindHeader(rx, name, short, 0)
	if !ok {
		return "", false
	}
	uri, ok := sip.FindURI(rx, v.Start, v.End)
	if !ok {
		return "", false
	}
	local, ok := sip.FindLocal(rx, uri.Start, uri.End)
	if !ok {
		return "", false
	}
	return string(local.Get(rx)), true
}

// contactURI returns the Contact header's URI, the target of the BYE or
// REFER the parent sends once the call ends.
func contactURI(rx []byte) []byte {
	v, _, ok := sip.FindHeader(rx, "Contact", "m", 0)
	if !ok {
		return nil
	}
	uri, ok := sip.FindURI(rx, v.Start, v.End)
	if !ok {
		return nil
	}
	return uri.Get(rx)
}

// buildRequest extracts the request-URI local part and any X-Record
// header into an engine.Request, scheme already stripped.
func buildRequest(rx []byte) engine.Request {
	req := engine.Request{Buf: rx}
	r, ok := sip.FindRequest(rx, 0, len(rx))
	if !ok {
		return req
	}
	local, ok := sip.FindLocal(rx, r.Start, r.End)
	if !ok {
		local = r
	}
	req.LocalPart = local
	if v, _, ok := sip.FindHeader(rx, "X-Record", "", 0); ok {
		req.XRecord = v
		req.HasXRecord = true
	}
	return req
}

// allocateCallSocket binds an ephemeral UDP port for one call's RTP
// stream, the Go analogue of the upstream device's per-call socket().
func allocateCallSocket() (*net.UDPConn, int, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{})
	if err != nil {
		return nil, 0, err
	}
	port := conn.LocalAddr().(*net.UDPAddr).Port
	return conn, port, nil
}
