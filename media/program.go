// Package media implements the playback/record mini-language embedded
// in a call's request-URI local part, the program cursor that walks it
// frame by frame, and the WAV container the engine reads playback files
// from and writes recordings to.
package media

import "github.com/revk/voip-answer/sip"

// Progress describes the call-progress-only marker that may prefix a
// program: "N=" picks a specific status code, a bare "=" asks for
// call-progress signalling with the default code (183).
type Progress struct {
	Present bool
	Code    int // 0 means "use the default"
}

// Program is the parsed form of a request-URI local part. Only the
// leading ring/SIT/repeat-count prefix is stripped out eagerly; the
// mini-language inside Body (dot-separated file stems, '?' alternates,
// '*' silence markers, and the trailing '=' / '#' / "#NNN" operators)
// is interpreted lazily by a Cursor as playback proceeds, exactly as
// the upstream device's own program strings are meant to be walked
// left to right rather than pre-split.
type Program struct {
	Buf []byte

	Progress Progress
	Rings    int
	SITs     int
	Repeat   int // defaults to 1

	Body sip.Range

	// DTMFEnabled is true when the last byte of Body is '*' or '#':
	// any DTMF event received during the call immediately ends it with
	// the pressed key as outcome, independent of playback position.
	DTMFEnabled bool
}

// ParseProgram parses the local part of a request URI (already stripped
// of any leading "sip:" scheme) into a Program.
func ParseProgram(buf []byte, s, e int) Program {
	p := Program{Buf: buf, Repeat: 1}

	pos := s
	v := sip.ReadUnsigned(&pos, buf, e)
	if pos < e && buf[pos] == '=' {
		pos++
		p.Progress = Progress{Present: true, Code: v}
	} else {
		pos = s
	}

	for pos < e && buf[pos] == '-' {
		p.Rings++
		pos++
	}
	for pos < e && buf[pos] == '!' {
		p.SITs++
		pos++
	}

	repeatStart := pos
	v = sip.ReadUnsigned(&pos, buf, e)
	if pos < e && buf[pos] == '*' {
		pos++
		if v > 0 {
			p.Repeat = v
		}
	} else {
		pos = repeatStart
	}

	p.Body = sip.Range{Start: pos, End: e}
	if e > pos {
		last := buf[e-1]
		p.DTMFEnabled = last == '*' || last == '#'
	}
	return p
}
