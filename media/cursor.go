package media

// silenceMinuteTicks is the number of consecutive '*' encounters the
// cursor absorbs as 100ms silence frames before it lets playback
// advance past the marker, giving roughly one minute of hold time
// between two successive ring-back-like pulses embedded mid-program.
const silenceMinuteTicks = 600

// EventKind is the result of advancing a Cursor by one file slot.
type EventKind int

const (
	// EventFile means Candidates holds one or more file stems (without
	// the ".wav" suffix) to try opening in order; the first that opens
	// successfully is played, others are skipped.
	EventFile EventKind = iota
	// EventRecord means playback stops and recording starts; Target
	// holds the requested file stem, or "" for an anonymous temp file.
	EventRecord
	// EventRefer means the call should be ended with a REFER toward
	// Target ("" means REFER with no explicit destination, i.e. a bare
	// "#").
	EventRefer
	// EventDone means the program is exhausted with no trailing
	// operator: the call should end normally (BYE).
	EventDone
)

// CursorEvent is one step of program interpretation.
type CursorEvent struct {
	Kind       EventKind
	Candidates []string
	Target     string
}

// Cursor walks a Program's Body left to right, handed out one playback
// decision per call to Next. Ring and SIT inserts are consumed first,
// then the dot-separated body is replayed Repeat times; a trailing '='
// starts a recording, a trailing '#' or "#NNN" ends the call with a
// REFER target, and plain exhaustion ends the call normally.
type Cursor struct {
	prog *Program

	started bool
	rp      int
	count   int
	ring    int
	sit     int
	minute  int
}

// NewCursor creates a Cursor positioned at the start of prog.
func NewCursor(prog *Program) *Cursor {
	return &Cursor{
		prog:   prog,
		count:  prog.Repeat,
		ring:   prog.Rings,
		sit:    prog.SITs,
		minute: silenceMinuteTicks,
	}
}

// Next advances the cursor by one playback slot and reports what the
// engine should do next.
func (c *Cursor) Next() CursorEvent {
	if c.ring > 0 {
		c.ring--
		return CursorEvent{Kind: EventFile, Candidates: []string{"aai"}}
	}
	if c.sit > 0 {
		c.sit--
		return CursorEvent{Kind: EventFile, Candidates: []string{"sit"}}
	}

	buf := c.prog.Buf
	e := c.prog.Body.End

	if !c.started || c.rp >= e || (c.rp < e && buf[c.rp] == '=') {
		if c.count <= 0 {
			if c.started && c.rp < e && buf[c.rp] == '=' {
				target := ""
				if c.rp+1 < e {
					target = string(buf[c.rp+1 : e])
				}
				return CursorEvent{Kind: EventRecord, Target: target}
			}
			return CursorEvent{Kind: EventDone}
		}
		c.rp = c.prog.Body.Start
		c.started = true
		c.count--
	}

	if c.rp >= e {
		return CursorEvent{Kind: EventDone}
	}

	if buf[c.rp] == '#' {
		j := c.rp + 1
		for j < e && isDigit(buf[j]) {
			j++
		}
		target := ""
		if j > c.rp+1 {
			target = string(buf[c.rp+1 : j])
		}
		c.rp = j
		return CursorEvent{Kind: EventRefer, Target: target}
	}

	if buf[c.rp] == '*' {
		// The C source tests "!minute--": it reads minute before
		// decrementing, so the tick where minute reaches zero still
		// plays once more before the next tick advances past the
		// marker - 600 play ticks per cycle, not 599.
		expired := c.minute == 0
		c.minute--
		if expired {
			c.minute = silenceMinuteTicks
			c.rp++
			return c.Next()
		}
		return CursorEvent{Kind: EventFile, Candidates: []string{"100ms"}}
	}

	start := c.rp
	j := c.rp
	for j < e && isFileChar(buf[j]) {
		j++
	}
	c.rp = j

	candidates := []string{}
	if j > start {
		candidates = append(candidates, string(buf[start:j]))
	} else {
		candidates = append(candidates, "100ms")
	}

	for c.rp < e && buf[c.rp] == '?' {
		c.rp++
		altStart := c.rp
		for c.rp < e && isFileChar(buf[c.rp]) {
			c.rp++
		}
		if c.rp > altStart {
			candidates = append(candidates, string(buf[altStart:c.rp]))
		}
	}

	if c.rp < e && buf[c.rp] == '.' {
		c.rp++
	}

	return CursorEvent{Kind: EventFile, Candidates: candidates}
}
