package tap

import (
	"errors"
	"fmt"
)

// Sentinel errors identify why a document was rejected. Every error returned
// by the parser is a [*ParseError] that matches exactly one of these with
// [errors.Is].
var (
	ErrNoVersion          = errors.New("document does not have a version")
	ErrInvalidVersion     = errors.New("invalid version")
	ErrUnexpectedEOD      = errors.New("unexpected end of document")
	ErrInvalidNumber      = errors.New("could not read number")
	ErrMalformedDirective = errors.New("malformed directive")
	ErrMisindent          = errors.New("indentation mismatch")
	ErrInvalidYAML        = errors.New("yaml block must directly follow a test point")
	ErrInvalidYAMLClose   = errors.New("yaml block closed without being opened")
	ErrBailed             = errors.New("bailed out")
	ErrUnknownLine        = errors.New("unknown line")
	ErrDuplicatedPlan     = errors.New("duplicated plan")
	ErrTooDeep            = errors.New("subtests nested too deeply")
	ErrParserUsed         = errors.New("parser already used")
	ErrInternal           = errors.New("internal parser error")
)

// ParseError describes a rejected document.
type ParseError struct {
	Kind     error  // Kind is one of the Err* sentinels.
	Line     int    // Line is the 1-based document line, 0 when not tied to a line.
	Value    string // Value is the offending version, token, line or bail-out reason.
	Expected int    // Expected is the indentation width for ErrMisindent.
	Err      error  // Err is the underlying cause, if any.
}

func (e *ParseError) Error() string {
	msg := e.message()
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}

	return msg
}

func (e *ParseError) message() string {
	switch {
	case errors.Is(e.Kind, ErrInvalidVersion):
		return fmt.Sprintf("version %q is invalid", e.Value)
	case errors.Is(e.Kind, ErrMalformedDirective):
		return fmt.Sprintf("directive %q is invalid", e.Value)
	case errors.Is(e.Kind, ErrMisindent):
		return fmt.Sprintf("%s, expected %d spaces in %q", e.Kind, e.Expected, e.Value)
	case errors.Is(e.Kind, ErrBailed):
		return fmt.Sprintf("%s: %q", e.Kind, e.Value)
	case errors.Is(e.Kind, ErrUnknownLine):
		return fmt.Sprintf("%s: %q", e.Kind, e.Value)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

// Unwrap exposes both the sentinel kind and the underlying cause.
func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

// BailReason returns the reason of a bail-out error.
func BailReason(err error) (string, bool) {
	var perr *ParseError
	if !errors.As(err, &perr) || !errors.Is(perr.Kind, ErrBailed) {
		return "", false
	}

	return perr.Value, true
}
