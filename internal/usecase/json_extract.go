package usecase

import "encoding/json"

// ExtractTrailingJSON scans s for balanced top-level JSON objects and
// returns the last valid one. LLM replies are frequently wrapped in
// prose or code fences; this recovers the payload without trusting the
// surrounding text. Every '{' is tried as a candidate start, so stray
// braces inside quoted prose cannot hide a later well-formed object.
func ExtractTrailingJSON(s string) (string, bool) {
	var last string

	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		end, ok := scanObject(s, i)
		if !ok {
			continue
		}
		candidate := s[i:end]
		if json.Valid([]byte(candidate)) {
			last = candidate
			// Skip the object's interior so nested objects are not
			// reported as top-level.
			i = end - 1
		}
	}

	if last == "" {
		return "", false
	}
	return last, true
}

// scanObject returns the index just past the brace that balances the
// '{' at start, honoring JSON string and escape rules.
func scanObject(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
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
