// Package engine drives one answered call: it owns the call's RTP
// socket, interprets its playback program (or X-Record instruction),
// runs the 20ms send/receive loop, and decides the call's outcome.
package engine

import (
	"context"
	"net"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/revk/voip-answer/media"
	"github.com/revk/voip-answer/sip"
)

// Config carries the parts of the call's behavior that come from the
// command line rather than from the SIP request itself.
type Config struct {
	Directory string // wav files and recordings are resolved relative to this
	Handlers  Handlers
	Debug     bool
}

// Request is everything about the triggering INVITE the call needs,
// already extracted from the raw datagram by the sipd package.
type Request struct {
	Buf       []byte
	LocalPart sip.Range // request-URI local part, "sip:" scheme stripped
	XRecord   sip.Range
	HasXRecord bool
	From      string
	To        string
	CallID    string
}

// Call is one in-progress answered call.
type Call struct {
	cfg     Config
	log     zerolog.Logger
	conn    *net.UDPConn
	port    int
	program media.Program
	xrecord *XRecord
	from, to, callID string
}

// NewCall builds a Call from a dispatched INVITE and the UDP socket the
// dispatcher already bound for it.
func NewCall(cfg Config, log zerolog.Logger, conn *net.UDPConn, port int, req Request) *Call {
	c := &Call{cfg: cfg, log: log, conn: conn, port: port, from: req.From, to: req.To, callID: req.CallID}
	if req.HasXRecord {
		xr := ParseXRecord(req.Buf, req.XRecord.Start, req.XRecord.End)
		c.xrecord = &xr
	} else {
		c.program = media.ParseProgram(req.Buf, req.LocalPart.Start, req.LocalPart.End)
	}
	return c
}

// idleWindow is how long the call waits for the first/next packet
// before giving up, distinguishing a call-progress (non-answer) wait
// from a normal answered call, and the shorter window used once media
// is already flowing.
type idleWindow struct {
	initial time.Duration
	refresh time.Duration
}

func (c *Call) idleWindow(nonAnswer bool) idleWindow {
	if nonAnswer {
		return idleWindow{initial: 300 * time.Second, refresh: 300 * time.Second}
	}
	return idleWindow{initial: 10 * time.Second, refresh: 5 * time.Second}
}

// resolvePath joins a bare file stem with the configured wav directory
// and its ".wav" extension.
func (c *Call) resolvePath(stem string) string {
	if c.cfg.Directory == "" {
		return stem + ".wav"
	}
	return filepath.Join(c.cfg.Directory, stem+".wav")
}

// Run drives the call to completion: receiving and (for X-Record)
// recording inbound RTP, sending 20ms frames of program-driven
// playback, and returning once the call reaches a terminal outcome or
// idle-times-out.
func (c *Call) Run(ctx context.Context, nonAnswer bool) Outcome {
	if c.xrecord != nil {
		return c.runRecordOnly(ctx)
	}
	return c.runPlayback(ctx, nonAnswer)
}
