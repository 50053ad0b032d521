package testutil

import "strings"

// ByteStream hands out values derived from fuzz input, one byte at a time.
//
// Once the input is exhausted every read returns its zero value, so the same
// input always yields the same sequence of values and generation always ends.
type ByteStream struct {
	bytes []byte
	pos   int
}

// NewByteStream creates a stream over b.
func NewByteStream(b []byte) *ByteStream {
	return &ByteStream{bytes: b}
}

// HasMore reports whether unread bytes remain.
func (s *ByteStream) HasMore() bool {
	return s.pos < len(s.bytes)
}

// NextByte returns the next byte, or 0 if exhausted.
func (s *ByteStream) NextByte() byte {
	if s.pos >= len(s.bytes) {
		return 0
	}

	v := s.bytes[s.pos]
	s.pos++

	return v
}

// NextInt returns a value in [0, maxVal). It returns 0 when maxVal <= 0.
func (s *ByteStream) NextInt(maxVal int) int {
	if maxVal <= 0 {
		return 0
	}

	return int(s.NextByte()) % maxVal
}

// NextBool returns true for odd bytes.
func (s *ByteStream) NextBool() bool {
	return s.NextByte()&1 == 1
}

// Chance reports whether an event with the given percentage happens. An
// exhausted stream never rolls an event unless percent is 100 or more.
func (s *ByteStream) Chance(percent int) bool {
	return s.NextInt(100) >= 100-percent
}

// NextWord returns 1 to maxLen lowercase ASCII letters.
func (s *ByteStream) NextWord(maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	n := 1 + s.NextInt(maxLen)

	var b strings.Builder
	b.Grow(n)

	for range n {
		b.WriteByte('a' + s.NextByte()%26)
	}

	return b.String()
}

// NextWords returns between 0 and maxWords words joined by single spaces.
func (s *ByteStream) NextWords(maxWords, maxLen int) string {
	n := s.NextInt(maxWords + 1)

	words := make([]string, 0, n)
	for range n {
		words = append(words, s.NextWord(maxLen))
	}

	return strings.Join(words, " ")
}

// MixCase upper-cases each ASCII letter of word on odd bytes.
func (s *ByteStream) MixCase(word string) string {
	out := []byte(word)

	for i, c := range out {
		if 'a' <= c && c <= 'z' && s.NextBool() {
			out[i] = c - ('a' - 'A')
		}
	}

	return string(out)
}
