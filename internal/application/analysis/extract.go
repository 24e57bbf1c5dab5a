package analysis

import "strings"

// FirstObject returns the first balanced {...} span in text. Braces inside
// JSON strings are ignored. A brace that never closes is skipped and the
// scan resumes at the next one. It reports false when no object closes.
func FirstObject(text string) (string, bool) {
	for from := 0; from < len(text); {
		i := strings.IndexByte(text[from:], '{')
		if i < 0 {
			return "", false
		}
		start := from + i
		if end, ok := closeObject(text, start); ok {
			return text[start:end], true
		}
		from = start + 1
	}
	return "", false
}

// closeObject returns the index just past the brace that closes text[start].
func closeObject(text string, start int) (int, bool) {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}
