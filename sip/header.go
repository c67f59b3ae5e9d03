package sip

import "github.com/intuitivelabs/bytescase"

// FindHeader performs a case-insensitive header lookup by long name
// (e.g. "Call-ID"), by short name (e.g. "i"), or both — either may be
// passed as "" to disable that alternative. Continuation lines (folded
// values beginning with SP or HTAB) are absorbed into the returned
// range, which excludes the header's own terminating CRLF.
//
// prev re-enters the search after a previous hit, so callers iterate a
// multi-valued header (e.g. Via) by passing back the returned resume
// offset each time; pass prev=-1 to start from the top of the message.
// Scanning stops at the empty line ending the header block, at which
// point ok is false and resume is -1.
func FindHeader(buf []byte, name, short string, prev int) (value Range, resume int, ok bool) {
	i := 0
	if prev >= 0 {
		i = prev
	}
	for i < len(buf) {
		if atEmptyLine(buf, i) {
			return Range{}, -1, false
		}
		lineStart := i
		nameEnd := i
		for nameEnd < len(buf) && buf[nameEnd] != ':' && !isLWS(buf[nameEnd]) {
			nameEnd++
		}
		hdrName := buf[lineStart:nameEnd]
		j := nameEnd
		for j < len(buf) && isSpaceOrTab(buf[j]) {
			j++
		}
		if j >= len(buf) || buf[j] != ':' {
			// malformed line: skip it and keep scanning
			i = skipToNextLine(buf, lineStart)
			if i <= lineStart {
				return Range{}, -1, false
			}
			continue
		}
		j++
		for j < len(buf) && isSpaceOrTab(buf[j]) {
			j++
		}
		valStart := j
		valEnd, next := scanFoldedValue(buf, j)
		matches := (name != "" && bytescase.CmpEq(hdrName, []byte(name))) ||
			(short != "" && bytescase.CmpEq(hdrName, []byte(short)))
		if matches {
			return Range{Start: valStart, End: valEnd}, next, true
		}
		i = next
	}
	return Range{}, -1, false
}

// atEmptyLine reports whether the header block ends at offset i: a bare
// CRLF, CR, or LF with nothing preceding it on the line.
func atEmptyLine(buf []byte, i int) bool {
	if i >= len(buf) {
		return true
	}
	switch buf[i] {
	case '\r':
		return i+1 >= len(buf) || buf[i+1] == '\n' || buf[i+1] != ' '
	case '\n':
		return true
	}
	return false
}

// scanFoldedValue scans a header's value starting at valStart, absorbing
// any folded continuation lines, and returns the offset of the line's
// terminating CRLF (the logical end of the value) and the offset from
// which the next header line starts.
func scanFoldedValue(buf []byte, valStart int) (valEnd, next int) {
	i := valStart
	for {
		lineEnd := i
		for lineEnd < len(buf) && buf[lineEnd] != '\r' && buf[lineEnd] != '\n' {
			lineEnd++
		}
		crlfEnd := skipCRLF(buf, lineEnd)
		if crlfEnd < len(buf) && isSpaceOrTab(buf[crlfEnd]) {
			// folded continuation: absorb and keep scanning
			i = crlfEnd
			continue
		}
		return lineEnd, crlfEnd
	}
}

// skipCRLF advances past a CRLF, lone CR, or lone LF at offs.
func skipCRLF(buf []byte, offs int) int {
	if offs >= len(buf) {
		return offs
	}
	if buf[offs] == '\r' {
		if offs+1 < len(buf) && buf[offs+1] == '\n' {
			return offs + 2
		}
		return offs + 1
	}
	if buf[offs] == '\n' {
		return offs + 1
	}
	return offs
}

// skipToNextLine is used only to recover from a malformed header line
// that has no ':'; it advances past the next CRLF.
func skipToNextLine(buf []byte, offs int) int {
	i := offs
	for i < len(buf) && buf[i] != '\r' && buf[i] != '\n' {
		i++
	}
	return skipCRLF(buf, i)
}
