package tags

import (
	"errors"
	"strings"
)

var (
	errUnterminatedDirective = errors.New("unterminated template sequence")
	errUnterminatedString    = errors.New("unterminated quoted string")
)

// skipSequence returns the index of the `}` closing a `${` or `%{` sequence
// whose body starts at start. Braces are counted and quoted strings are
// skipped, including template sequences nested inside them.
func skipSequence(src string, start int) (int, error) {
	depth := 0
	for i := start; i < len(src); i++ {
		switch src[i] {
		case '"':
			end, err := skipString(src, i+1)
			if err != nil {
				return -1, err
			}
			i = end
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i, nil
			}
			depth--
		}
	}
	return -1, errUnterminatedDirective
}

// skipString returns the index of the quote closing a string literal whose
// contents start at start.
func skipString(src string, start int) (int, error) {
	for i := start; i < len(src); i++ {
		switch {
		case src[i] == '\\':
			i++
		case src[i] == '"':
			return i, nil
		case strings.HasPrefix(src[i:], "$${"), strings.HasPrefix(src[i:], "%%{"):
			i += 2
		case strings.HasPrefix(src[i:], "${"), strings.HasPrefix(src[i:], "%{"):
			end, err := skipSequence(src, i+2)
			if err != nil {
				return -1, err
			}
			i = end
		}
	}
	return -1, errUnterminatedString
}
