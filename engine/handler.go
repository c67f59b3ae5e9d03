package engine

import (
	"fmt"
	"os/exec"
	"time"

	"github.com/rs/zerolog"
)

// Handlers names the external scripts a finished recording may invoke.
type Handlers struct {
	SaveScript string // invoked for a program "=" recording: saveScript <path>
	RecScript  string // invoked per X-Record recipient: recScript <from> <to> <name> <email>
}

// RecordingResult summarizes a finished recording for handler dispatch.
type RecordingResult struct {
	Path       string
	Bytes      int64
	Channels   int
	Saved      bool // true for any program "=" recording (named or anonymous); false for an X-Record recording
	XRecord    *XRecord
	From       string
	To         string
	CallID     string
	StartedAt  time.Time
}

// Dispatch runs the configured handler(s) for a finished recording,
// exactly mirroring which script fires for which recording shape: a
// program-driven save (with or without an explicit name) always goes
// to SaveScript; an X-Record-driven recording with data written goes
// to RecScript once per recipient.
func (h Handlers) Dispatch(log zerolog.Logger, r RecordingResult) {
	if r.Path == "" {
		return
	}
	env := recordingEnv(r)
	if r.Saved {
		if h.SaveScript == "" {
			return
		}
		runScript(log, h.SaveScript, []string{h.SaveScript, r.Path}, env)
		return
	}
	if r.Bytes == 0 || h.RecScript == "" || r.XRecord == nil {
		return
	}
	for name, value := range r.XRecord.Params {
		env = append(env, name+"="+value)
	}
	env = append(env, "wavpath="+r.Path)
	for _, rcpt := range r.XRecord.Recipients {
		args := []string{h.RecScript, r.From, r.To, rcpt.Name, rcpt.Address}
		recipientEnv := append(append([]string{}, env...), "name="+rcpt.Name, "email="+rcpt.Address)
		runScript(log, h.RecScript, args, recipientEnv)
	}
}

func recordingEnv(r RecordingResult) []string {
	seconds := 0
	if r.Channels > 0 {
		seconds = int(r.Bytes / int64(r.Channels) / 8000)
	}
	duration := fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
	started := r.StartedAt
	return []string{
		"from=" + r.From,
		"to=" + r.To,
		"i=" + r.CallID,
		"duration=" + duration,
		"channels=" + fmt.Sprintf("%d", r.Channels),
		"calltime=" + started.Format("2006-01-02T15:04:05.000Z"),
		"maildate=" + started.Format("Mon, 2 Jan 2006 15:04:05 -0700"),
	}
}

// runScript execs path in its own process, the Go replacement for the
// original device's fork+execve per recipient: the parent never blocks
// on it and its failure is only logged, never fatal to the call.
func runScript(log zerolog.Logger, path string, args []string, env []string) {
	cmd := exec.Command(path, args[1:]...)
	cmd.Env = env
	if err := cmd.Start(); err != nil {
		log.Warn().Err(err).Str("script", path).Msg("failed to start handler")
		return
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Warn().Err(err).Str("script", path).Msg("handler exited with error")
		}
	}()
}
