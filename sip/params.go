package sip

import "github.com/intuitivelabs/bytescase"

// FindSemi locates a ';'-separated parameter by tag name (case
// insensitive) within [s,e). Angle-bracketed "<...>" content is treated
// as opaque (never scanned for parameters) and a ',' ends the search —
// this lets the scanner be handed a whole header value and still stop
// at the right place when the header is a comma-separated list of URIs.
//
// When the parameter is found with a value, the value's range is
// returned. When the parameter is found but valueless (bare ";tag"),
// the returned Range is empty but ok is true — callers must treat an
// empty-but-present range as "parameter present with no value", not as
// "parameter absent". That distinction is carried by ok, matching the
// convention the original C implementation encoded by returning the tag
// position itself.
func FindSemi(buf []byte, s, e int, tag string) (Range, bool) {
	return findParam(buf, s, e, tag, ';')
}

// FindComma is FindSemi for ','-separated parameters, as used in
// Digest-authentication-style header values; parameter values may be
// quoted.
func FindComma(buf []byte, s, e int, tag string) (Range, bool) {
	return findParam(buf, s, e, tag, ',')
}

func findParam(buf []byte, s, e int, tag string, sep byte) (Range, bool) {
	if s < 0 {
		return Range{}, false
	}
	e = effEnd(buf, s, e)
	i := s
	for i < e {
		switch buf[i] {
		case '"':
			i = skipQuoted(buf, i, e)
			continue
		case '<':
			i = skipAngle(buf, i, e)
			continue
		case ',':
			if sep != ',' {
				return Range{}, false
			}
		}
		if buf[i] != sep && buf[i] != ';' {
			i++
			continue
		}
		// at a separator: scan the name that follows
		i++
		for i < e && isSpaceOrTab(buf[i]) {
			i++
		}
		nameStart := i
		for i < e && buf[i] != '=' && buf[i] != sep && buf[i] != ';' && buf[i] != ',' && !isLWS(buf[i]) {
			i++
		}
		name := buf[nameStart:i]
		isTag := bytescase.CmpEq(name, []byte(tag))
		for i < e && isSpaceOrTab(buf[i]) {
			i++
		}
		if i < e && buf[i] == '=' {
			i++
			for i < e && isSpaceOrTab(buf[i]) {
				i++
			}
			var val Range
			if i < e && buf[i] == '"' {
				vs := i + 1
				ve := skipQuoted(buf, i, e)
				inner := ve
				if inner > vs && buf[inner-1] == '"' {
					inner--
				}
				val = Range{Start: vs, End: inner}
				i = ve
			} else {
				vs := i
				for i < e && buf[i] != sep && buf[i] != ';' && buf[i] != ',' {
					i++
				}
				val = Range{Start: vs, End: i}
			}
			if isTag {
				return val, true
			}
			continue
		}
		if isTag {
			return Range{Start: nameStart, End: nameStart}, true
		}
	}
	return Range{}, false
}

// skipAngle returns the offset just past a matching '>' for the '<' at
// buf[s], treating its contents as opaque to parameter scanning.
func skipAngle(buf []byte, s, e int) int {
	for i := s + 1; i < e; i++ {
		if buf[i] == '"' {
			i = skipQuoted(buf, i, e) - 1
			continue
		}
		if buf[i] == '>' {
			return i + 1
		}
	}
	return e
}

// FindList returns the next element of a comma-separated list starting
// at s, honoring quoted strings and "<...>" forms (commas inside either
// do not end the element). It returns the element range and the offset
// from which to resume scanning for the following element (past the
// separating comma, or e at the end of the list).
func FindList(buf []byte, s, e int) (Range, int, bool) {
	if s < 0 {
		return Range{}, -1, false
	}
	e = effEnd(buf, s, e)
	p := SkipSpace(buf, s, e)
	if p >= e {
		return Range{}, e, false
	}
	i := p
	for i < e {
		switch buf[i] {
		case '"':
			i = skipQuoted(buf, i, e)
			continue
		case '<':
			i = skipAngle(buf, i, e)
			continue
		case ',':
			return Range{Start: p, End: i}, i + 1, true
		}
		i++
	}
	return Range{Start: p, End: i}, i, true
}
