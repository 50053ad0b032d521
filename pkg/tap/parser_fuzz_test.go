package tap_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/tap14/internal/testutil"
	"github.com/calvinalkan/tap14/pkg/tap"
)

// FuzzParse checks that Parse never panics and that its two result paths stay
// exclusive: statements on success, a *tap.ParseError with a partial result on
// failure.
func FuzzParse(f *testing.F) {
	for _, tc := range successCases {
		f.Add(tc.doc)
		f.Add(asSubtest(tc.doc, true))
	}

	for _, tc := range failureCases {
		f.Add(tc.doc)
	}

	f.Add(nestedDoc(8))
	f.Add("TAP version 14\r\n1..1\r\nok\r\n")

	f.Fuzz(func(t *testing.T, input string) {
		parser := tap.NewParser(tap.WithMaxDepth(16))

		got, err := parser.Parse(input)
		if err == nil {
			if parser.Statements() != nil {
				t.Fatalf("Statements() after success = %v, want nil", parser.Statements())
			}

			if !strings.HasPrefix(input, "TAP version") {
				t.Fatalf("Parse(%q) succeeded without a version line", input)
			}

			return
		}

		if got != nil {
			t.Fatalf("Parse(%q) returned statements with error %v", input, err)
		}

		var perr *tap.ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("Parse(%q) error %T is not *tap.ParseError", input, err)
		}

		if errors.Is(err, tap.ErrInternal) {
			t.Fatalf("Parse(%q) reached an internal error: %v", input, err)
		}
	})
}

// FuzzParseGenerated builds well-formed documents from fuzz bytes and checks
// Parse returns exactly the statements they were built from.
func FuzzParseGenerated(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0xfe, 0xfe, 0xfe, 0xfe, 0xfe, 0xfe, 0xfe, 0xfe})
	f.Add([]byte("TAP version 14 fuzz seed with some length to it"))

	cfg := testutil.DefaultDocGenConfig()

	f.Fuzz(func(t *testing.T, seed []byte) {
		doc, want := testutil.NewDocGenerator(seed, &cfg).Generate()

		got, err := tap.Parse(doc)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", doc, err)
		}

		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("Parse(%q) mismatch (-want +got):\n%s", doc, diff)
		}
	})
}
