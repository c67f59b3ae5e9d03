package media

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// isFileChar reports whether c may appear inside a program's bare file
// stem: letters, digits, '+', '-' and '/' (the last lets a stem name a
// file in a subdirectory).
func isFileChar(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c == '+' || c == '-' || c == '/':
		return true
	}
	return false
}
