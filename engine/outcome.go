package engine

// Outcome is the result an answered call hands back to the dispatcher.
// It mirrors the three-way result the original device returns from its
// per-call handler: nothing at all when no media was ever exchanged,
// a bare completion asking for an in-dialog BYE, or a REFER target.
type Outcome struct {
	// Absent means no BYE or REFER should be sent: no RTP packet of any
	// kind ever arrived, or an X-Record call's recording could not be
	// created or written.
	Absent bool

	// Target is empty for a plain BYE, or the REFER destination
	// (a bare "#", a DTMF digit/"*"/"#", or digits from a "#NNN"
	// program suffix) otherwise. Only meaningful when Absent is false.
	Target string
}

// AbsentOutcome reports that nothing should be sent back for this call.
func AbsentOutcome() Outcome { return Outcome{Absent: true} }

// ByeOutcome reports a normal, complete call that should be ended with
// an in-dialog BYE.
func ByeOutcome() Outcome { return Outcome{} }

// ReferOutcome reports that the call should end with a REFER toward
// target.
func ReferOutcome(target string) Outcome { return Outcome{Target: target} }

// IsRefer reports whether this outcome asks for a REFER rather than a
// plain BYE.
func (o Outcome) IsRefer() bool { return !o.Absent && o.Target != "" }
