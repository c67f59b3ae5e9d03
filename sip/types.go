// Package sip implements a byte-range SIP message parser and composer.
//
// Every scanner here operates directly on a caller-owned buffer and
// returns sub-ranges into that buffer: nothing is copied or parsed into
// an intermediate tree. A Range is a half-open [Start, End) pair of byte
// offsets; callers combine scanners to walk a message header-by-header,
// parameter-by-parameter, without ever materialising an AST.
package sip

// Range is a half-open byte interval [Start, End) into some buffer that
// the caller supplies alongside it. A zero Range is not necessarily
// "absent" — see the ok return value of each scanner, which distinguishes
// "not found" from "found but empty" (e.g. a valueless ;tag parameter).
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes the range spans.
func (r Range) Len() int { return r.End - r.Start }

// Empty reports whether the range spans zero bytes.
func (r Range) Empty() bool { return r.Start == r.End }

// Get returns the byte slice buf[r.Start:r.End].
func (r Range) Get(buf []byte) []byte { return buf[r.Start:r.End] }

// linear whitespace classification, used uniformly wherever the grammar
// treats SP, HTAB, CR and LF as equivalent separators.
func isLWS(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isSpaceOrTab(c byte) bool {
	return c == ' ' || c == '\t'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c byte) bool {
	return isAlpha(c) || isDigit(c)
}

// isTokenChar matches the RFC 3261 token alphabet used by display names:
// alphanumerics plus -.!%*_+`'~
func isTokenChar(c byte) bool {
	if isAlnum(c) {
		return true
	}
	switch c {
	case '-', '.', '!', '%', '*', '_', '+', '`', '\'', '~':
		return true
	}
	return false
}

func isHostChar(c byte) bool {
	return isAlnum(c) || c == '.' || c == '-'
}
