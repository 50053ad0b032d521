// Package fs provides the filesystem operations tap14 needs, behind an
// interface so commands can be tested with injected failures.
//
// The main types are:
//   - [FS]: interface for filesystem operations
//   - [Real]: production implementation using [os] package
//   - [Faulty]: testing wrapper that fails selected operations
//
// Example usage:
//
//	fsys := fs.NewReal()
//	data, err := fsys.ReadFile("results.tap")
//	if err != nil {
//	    return err
//	}
package fs

import (
	"os"
)

// FS defines the filesystem operations used to read TAP documents and config
// files and to write rendered output.
//
// All methods mirror their [os] package equivalents but can be intercepted
// for testing with fault injection.
type FS interface {
	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic writes data to a file atomically.
	// Uses a temp file + rename so readers never observe a partial file.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)
}
