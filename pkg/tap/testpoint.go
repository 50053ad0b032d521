package tap

import (
	"strconv"
	"strings"
)

const directiveKindLen = 4

// parseTestPoint parses the trimmed text following an "ok" / "not ok" marker:
//
//	[number] [-] [description] [# directive [reason]]
//
// A '#' escaped with a backslash belongs to the description; backslashes are
// kept verbatim.
func parseTestPoint(result bool, text string) (TestPoint, error) {
	tp := TestPoint{Result: result}

	rest := text
	if head, tail, found := strings.Cut(text, " "); found && isDigits(head) {
		n, err := parseNumber(head)
		if err != nil {
			return TestPoint{}, err
		}

		tp.Number, tp.HasNumber, rest = n, true, tail
	} else if !found && text != "" && isDigits(text) {
		n, err := parseNumber(text)
		if err != nil {
			return TestPoint{}, err
		}

		tp.Number, tp.HasNumber, rest = n, true, ""
	}

	rest = strings.TrimSpace(strings.TrimPrefix(rest, "-"))

	idx := directiveStart(rest)
	if idx < 0 {
		tp.Desc = rest
		return tp, nil
	}

	if idx == len(rest)-1 {
		return TestPoint{}, newError(ErrMalformedDirective, "")
	}

	tp.Desc = strings.TrimSpace(rest[:idx])

	directive, err := parseDirective(strings.TrimSpace(rest[idx+1:]))
	if err != nil {
		return TestPoint{}, err
	}

	tp.Directive = &directive

	return tp, nil
}

// directiveStart returns the index of the first unescaped '#', or -1.
func directiveStart(s string) int {
	escaped := false

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			escaped = !escaped
		case '#':
			if !escaped {
				return i
			}

			escaped = false
		}
	}

	return -1
}

func parseDirective(token string) (Directive, error) {
	if len(token) < directiveKindLen {
		return Directive{}, newError(ErrMalformedDirective, token)
	}

	var d Directive

	switch kind := token[:directiveKindLen]; {
	case equalFoldASCII(kind, "skip"):
		d.Kind = DirectiveSkip
	case equalFoldASCII(kind, "todo"):
		d.Kind = DirectiveTodo
	default:
		return Directive{}, newError(ErrMalformedDirective, token)
	}

	d.Reason = strings.TrimSpace(token[directiveKindLen:])

	return d, nil
}

// parseNumber accepts decimal digits with at most one leading '+'.
func parseNumber(s string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, 64)
	if err != nil {
		return 0, &ParseError{Kind: ErrInvalidNumber, Value: s, Err: err}
	}

	return n, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}

// hasPrefixFoldASCII reports whether s starts with prefix, ignoring ASCII case.
func hasPrefixFoldASCII(s, prefix string) bool {
	return len(s) >= len(prefix) && equalFoldASCII(s[:len(prefix)], prefix)
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := 0; i < len(a); i++ {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}

	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}

	return c
}

func newError(kind error, value string) *ParseError {
	return &ParseError{Kind: kind, Value: value}
}
