package sip

// Deescape expands %HH escapes from src into dst, stopping once dst is
// full, and returns the number of bytes written. A %HH sequence with an
// invalid hex digit is copied through literally rather than decoded,
// mirroring how a stray '%' in a URI is tolerated elsewhere in this
// package. When dst has room for one more byte than was produced, that
// byte is set to NUL to ease passing the result to C-style APIs.
func Deescape(src []byte, dst []byte) int {
	n := 0
	i := 0
	for i < len(src) && n < len(dst) {
		c := src[i]
		if c == '%' && i+2 < len(src) {
			if b, ok := hexByte(src[i+1], src[i+2]); ok {
				dst[n] = b
				n++
				i += 3
				continue
			}
		}
		dst[n] = c
		n++
		i++
	}
	if n < len(dst) {
		dst[n] = 0
	}
	return n
}

// escByteAt returns the decoded byte at position i of buf and the offset
// just past it: either buf[i] and i+1, or, if buf[i:] begins a valid %HH
// escape, the decoded octet and i+3.
func escByteAt(buf []byte, i int) (byte, int) {
	if buf[i] == '%' && i+2 < len(buf) {
		if b, ok := hexByte(buf[i+1], buf[i+2]); ok {
			return b, i + 3
		}
	}
	return buf[i], i + 1
}

// EscCmp performs a three-way, percent-escape-aware comparison of two
// ranges of (possibly different) buffers. Absent ranges compare as
// ordered: both absent are equal, and an absent range is always less
// than a present one. %HH sequences decode to a single octet before
// comparison, so "%61" compares equal to "a".
func EscCmp(buf1 []byte, r1 Range, ok1 bool, buf2 []byte, r2 Range, ok2 bool) int {
	if !ok1 && !ok2 {
		return 0
	}
	if !ok1 {
		return -1
	}
	if !ok2 {
		return 1
	}
	i, j := r1.Start, r2.Start
	for i < r1.End && j < r2.End {
		var c1, c2 byte
		c1, i = escByteAt(buf1, i)
		c2, j = escByteAt(buf2, j)
		if c1 != c2 {
			if c1 < c2 {
				return -1
			}
			return 1
		}
	}
	switch {
	case i < r1.End:
		return 1
	case j < r2.End:
		return -1
	default:
		return 0
	}
}

// EscEscCmp is EscCmp for two ranges that are both already escaped (both
// sides decoded octet-by-octet before comparing), used to compare two
// raw URI components without unescaping either side first.
func EscEscCmp(buf1 []byte, r1 Range, ok1 bool, buf2 []byte, r2 Range, ok2 bool) int {
	return EscCmp(buf1, r1, ok1, buf2, r2, ok2)
}
