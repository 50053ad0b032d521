package term_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/calvinalkan/tap14/internal/term"
)

func Test_IsTerminal_ReturnsFalse_When_WriterIsNotATerminal(t *testing.T) {
	t.Parallel()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}

	t.Cleanup(func() {
		_ = r.Close()
		_ = w.Close()
	})

	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Cleanup(func() { _ = f.Close() })

	for name, out := range map[string]any{
		"pipe":   w,
		"file":   f,
		"buffer": &bytes.Buffer{},
	} {
		if term.IsTerminal(out) {
			t.Fatalf("IsTerminal(%s)=true", name)
		}

		if width, ok := term.Width(out); ok {
			t.Fatalf("Width(%s)=(%d, true), want not ok", name, width)
		}
	}
}

func Test_ColorAllowed_ReturnsFalse_When_EnvDisablesColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env  map[string]string
		want bool
	}{
		{env: map[string]string{}, want: true},
		{env: map[string]string{"TERM": "xterm-256color"}, want: true},
		{env: map[string]string{"NO_COLOR": "1"}, want: false},
		{env: map[string]string{"TERM": "dumb"}, want: false},
		{env: map[string]string{"NO_COLOR": ""}, want: true},
	}

	for _, tc := range tests {
		if got := term.ColorAllowed(tc.env); got != tc.want {
			t.Fatalf("ColorAllowed(%v)=%v, want %v", tc.env, got, tc.want)
		}
	}
}
