// Package term answers the few terminal questions the CLI asks about its
// output streams.
package term

import (
	"golang.org/x/sys/unix"
)

type fder interface {
	Fd() uintptr
}

// Width returns the column count of the terminal behind f. ok is false when f
// is not a terminal or reports zero columns.
func Width(f any) (int, bool) {
	ws, ok := winsize(f)
	if !ok || ws.Col == 0 {
		return 0, false
	}

	return int(ws.Col), true
}

// IsTerminal reports whether f is a stream backed by a terminal. Anything
// without an Fd method, such as a buffer, is not.
func IsTerminal(f any) bool {
	_, ok := winsize(f)

	return ok
}

// ColorAllowed reports whether env permits colored output. NO_COLOR (any
// non-empty value) and TERM=dumb disable it.
func ColorAllowed(env map[string]string) bool {
	return env["NO_COLOR"] == "" && env["TERM"] != "dumb"
}

func winsize(f any) (*unix.Winsize, bool) {
	fd, ok := f.(fder)
	if !ok {
		return nil, false
	}

	ws, err := unix.IoctlGetWinsize(int(fd.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return nil, false
	}

	return ws, true
}
