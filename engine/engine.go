package engine

import (
	"context"
	"net"
	"os"
	"time"

	"github.com/revk/voip-answer/media"
)

// dtmfKeys maps an RFC 4733 telephone-event code to the token the
// original device reports as the call's REFER outcome.
var dtmfKeys = []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "*", "#"}

func dtmfKey(event byte) (string, bool) {
	if int(event) >= len(dtmfKeys) {
		return "", false
	}
	return dtmfKeys[event], true
}

// mediaResult is what the 20ms send/receive loop hands back: the
// outcome to report, how many RTP channels were actually seen, and -
// if a recording was active when the call ended - the recorder itself
// so the caller can finalize its header and dispatch a handler.
type mediaResult struct {
	outcome  Outcome
	channels int
	rec      *media.Recorder
	saved    bool
}

// runRecordOnly handles an X-Record call: no playback, just accumulate
// inbound audio into a file until the call idle-times-out, then
// dispatch the recording script for every recipient.
func (c *Call) runRecordOnly(ctx context.Context) Outcome {
	rec, err := c.createTempRecorder()
	if err != nil {
		c.log.Error().Err(err).Msg("cannot create recording")
		return AbsentOutcome()
	}
	c.log.Info().Str("path", rec.Path).Msg("recording")

	res := c.mediaLoop(ctx, false, nil, rec, false)
	if err := rec.Close(); err != nil {
		c.log.Error().Err(err).Str("path", rec.Path).Msg("recording write failed, discarding")
		os.Remove(rec.Path)
		return AbsentOutcome()
	}

	if res.channels == 0 {
		os.Remove(rec.Path)
		return AbsentOutcome()
	}
	c.cfg.Handlers.Dispatch(c.log, RecordingResult{
		Path:      rec.Path,
		Bytes:     rec.Bytes(),
		Channels:  res.channels,
		Saved:     false,
		XRecord:   c.xrecord,
		From:      c.from,
		To:        c.to,
		CallID:    c.callID,
		StartedAt: recordingStart(rec, res.channels),
	})
	return res.outcome
}

// runPlayback handles a program-driven call: rings/SITs, a repeated
// file sequence, and the trailing record/REFER/done operator.
func (c *Call) runPlayback(ctx context.Context, nonAnswer bool) Outcome {
	cur := media.NewCursor(&c.program)
	res := c.mediaLoop(ctx, nonAnswer, cur, nil, false)
	c.finishRecording(res)
	return res.outcome
}

func recordingStart(rec *media.Recorder, channels int) time.Time {
	if channels == 0 {
		channels = 1
	}
	return time.Now().Add(-time.Duration(rec.Bytes()/int64(channels)) * 125 * time.Microsecond)
}

// finishRecording closes and dispatches a recording that began mid-call
// via a program's trailing "=" operator (the X-Record case finalizes
// separately in runRecordOnly since it also needs the absent/timeout
// distinction before deciding whether to keep the file).
func (c *Call) finishRecording(res mediaResult) {
	if res.rec == nil {
		return
	}
	if err := res.rec.Close(); err != nil {
		c.log.Error().Err(err).Str("path", res.rec.Path).Msg("recording write failed, discarding")
		os.Remove(res.rec.Path)
		return
	}
	c.cfg.Handlers.Dispatch(c.log, RecordingResult{
		Path:      res.rec.Path,
		Bytes:     res.rec.Bytes(),
		Channels:  res.channels,
		Saved:     res.saved,
		From:      c.from,
		To:        c.to,
		CallID:    c.callID,
		StartedAt: recordingStart(res.rec, res.channels),
	})
}

// mediaLoop is the 20ms send/receive loop shared by both call shapes.
// When cur is non-nil the loop plays a program and may transition into
// recording mid-call (a trailing "=" operator); when rec is non-nil
// from the start the call is a plain X-Record recording from the
// first packet.
func (c *Call) mediaLoop(ctx context.Context, nonAnswer bool, cur *media.Cursor, rec *media.Recorder, saved bool) mediaResult {
	window := c.idleWindow(nonAnswer)
	deadline := time.Now().Add(window.initial)
	nextTick := time.Now().Add(20 * time.Millisecond)

	channels := 0
	var peer *net.UDPAddr
	sender := media.NewSender(media.DefaultPT.Mono, uint32(c.port))

	var file *os.File
	defer func() {
		if file != nil {
			file.Close()
		}
	}()

	dtmfEnabled := cur != nil && c.program.DTMFEnabled

	for {
		now := time.Now()
		if now.After(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			if channels == 0 {
				return mediaResult{outcome: AbsentOutcome(), channels: channels, rec: rec, saved: saved}
			}
			return mediaResult{outcome: ByeOutcome(), channels: channels, rec: rec, saved: saved}
		default:
		}

		if wait := nextTick.Sub(now); wait > 0 {
			c.conn.SetReadDeadline(now.Add(wait))
			buf := make([]byte, 2048)
			n, addr, err := c.conn.ReadFromUDP(buf)
			if err == nil && n > 12 {
				peer = addr
				if channels == 0 {
					channels = 1
				}
				in, ok := media.ParseInbound(buf[:n], media.DefaultPT)
				if ok {
					if channels == 1 && in.PayloadType == media.DefaultPT.Stereo {
						channels = 2
						if rec != nil {
							rec.Channels = 2
						}
						c.log.Info().Msg("stereo")
					}
					if rec != nil && in.IsAudio {
						rec.Write(buf[12:n])
					}
					if dtmfEnabled && in.IsDTMF {
						if key, ok := dtmfKey(in.DTMFEvent); ok {
							return mediaResult{outcome: ReferOutcome(key), channels: channels, rec: rec, saved: saved}
						}
					}
				}
				deadline = time.Now().Add(window.refresh)
			}
			continue
		}
		nextTick = nextTick.Add(20 * time.Millisecond)

		if channels != 1 || peer == nil {
			continue
		}

		frame := make([]byte, media.FrameSamples)
		filled := 0
		if cur != nil && rec == nil {
		fill:
			for filled < len(frame) {
				if file == nil {
					ev := cur.Next()
					switch ev.Kind {
					case media.EventFile:
						file = c.openFirstExisting(ev.Candidates)
						continue
					case media.EventRecord:
						newRec, path, isSaved, err := c.startProgramRecording(ev.Target)
						if err != nil {
							c.log.Warn().Err(err).Msg("cannot start recording")
							for i := filled; i < len(frame); i++ {
								frame[i] = media.SilenceByte
							}
							c.sendFrame(sender, frame, peer)
							return mediaResult{outcome: ByeOutcome(), channels: channels}
						}
						rec = newRec
						saved = isSaved
						c.log.Info().Str("path", path).Bool("saved", saved).Msg("recording")
						break fill
					case media.EventRefer:
						target := ev.Target
						if target == "" {
							target = "#" // a bare '#' refers the call to "#" itself
						}
						for i := filled; i < len(frame); i++ {
							frame[i] = media.SilenceByte
						}
						c.sendFrame(sender, frame, peer)
						return mediaResult{outcome: ReferOutcome(target), channels: channels, rec: rec, saved: saved}
					case media.EventDone:
						for i := filled; i < len(frame); i++ {
							frame[i] = media.SilenceByte
						}
						c.sendFrame(sender, frame, peer)
						return mediaResult{outcome: ByeOutcome(), channels: channels, rec: rec, saved: saved}
					}
					continue
				}
				n, err := file.Read(frame[filled:])
				if n > 0 {
					filled += n
				}
				if err != nil || n == 0 {
					file.Close()
					file = nil
				}
			}
		}
		for i := filled; i < len(frame); i++ {
			frame[i] = media.SilenceByte
		}
		c.sendFrame(sender, frame, peer)
	}

	if channels == 0 {
		return mediaResult{outcome: AbsentOutcome(), channels: 0, rec: rec, saved: saved}
	}
	return mediaResult{outcome: ByeOutcome(), channels: channels, rec: rec, saved: saved}
}

func (c *Call) sendFrame(sender *media.Sender, frame []byte, peer *net.UDPAddr) {
	pkt, err := sender.Frame(frame, false)
	if err != nil {
		c.log.Warn().Err(err).Msg("marshal RTP frame")
		return
	}
	if _, err := c.conn.WriteToUDP(pkt, peer); err != nil {
		c.log.Warn().Err(err).Msg("send RTP frame")
	}
}

// openFirstExisting tries each candidate stem in order (the "?"
// alternate chain) and returns the first one that opens.
func (c *Call) openFirstExisting(candidates []string) *os.File {
	for _, stem := range candidates {
		if f, err := media.OpenPlayback(c.resolvePath(stem)); err == nil {
			return f
		}
	}
	return nil
}

func (c *Call) createTempRecorder() (*media.Recorder, error) {
	dir := c.cfg.Directory
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, "voip-answer-*.wav")
	if err != nil {
		return nil, err
	}
	path := f.Name()
	f.Close()
	return media.CreateRecorder(path, 1)
}

// startProgramRecording begins a recording triggered by the program's
// trailing "=" operator: a named target ("=name") writes to that file
// stem, a bare "=" creates an anonymous temp file. Either way this is a
// program-driven save, so the caller always dispatches SaveScript once
// it finishes, regardless of the target name or how many bytes were
// written.
func (c *Call) startProgramRecording(target string) (rec *media.Recorder, path string, saved bool, err error) {
	if target == "" {
		rec, err = c.createTempRecorder()
		if err != nil {
			return nil, "", false, err
		}
		return rec, rec.Path, true, nil
	}
	path = c.resolvePath(target)
	rec, err = media.CreateRecorder(path, 1)
	if err != nil {
		return nil, "", false, err
	}
	return rec, path, true, nil
}
