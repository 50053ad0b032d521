package fs

import (
	"errors"
	iofs "io/fs"
	"os"
	"sync"
)

// Op names a filesystem operation that [Faulty] can fail.
type Op string

// Operations understood by [Faulty].
const (
	OpReadFile        Op = "readfile"
	OpWriteFileAtomic Op = "writefile"
	OpMkdirAll        Op = "mkdirall"
	OpStat            Op = "stat"
)

// InjectedError marks an error as intentionally injected by [Faulty].
//
// It wraps the underlying error so errors.Is/As continue to work.
type InjectedError struct {
	Op  Op
	Err error
}

// Error returns the underlying error's message. Panics if e or e.Err is nil.
func (e *InjectedError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error. Panics if e is nil.
func (e *InjectedError) Unwrap() error {
	return e.Err
}

// IsInjected reports whether err (or any wrapped error) was injected by
// [Faulty]. Returns false if err is nil.
func IsInjected(err error) bool {
	var injected *InjectedError

	return errors.As(err, &injected)
}

// Faulty wraps an [FS] and fails operations registered with [Faulty.Fail].
// It is safe for concurrent use.
type Faulty struct {
	inner FS

	mu    sync.Mutex
	fails map[Op]error
	calls map[Op]int
}

// NewFaulty returns a [Faulty] delegating to inner.
func NewFaulty(inner FS) *Faulty {
	return &Faulty{
		inner: inner,
		fails: make(map[Op]error),
		calls: make(map[Op]int),
	}
}

// Fail makes every later call of op return err wrapped in a *fs.PathError.
// A nil err clears the failure.
func (f *Faulty) Fail(op Op, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err == nil {
		delete(f.fails, op)
		return
	}

	f.fails[op] = err
}

// Calls returns how often op was invoked, failed calls included.
func (f *Faulty) Calls(op Op) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[op]
}

func (f *Faulty) ReadFile(path string) ([]byte, error) {
	if err := f.check(OpReadFile, path); err != nil {
		return nil, err
	}

	return f.inner.ReadFile(path)
}

func (f *Faulty) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := f.check(OpWriteFileAtomic, path); err != nil {
		return err
	}

	return f.inner.WriteFileAtomic(path, data, perm)
}

func (f *Faulty) MkdirAll(path string, perm os.FileMode) error {
	if err := f.check(OpMkdirAll, path); err != nil {
		return err
	}

	return f.inner.MkdirAll(path, perm)
}

func (f *Faulty) Stat(path string) (os.FileInfo, error) {
	if err := f.check(OpStat, path); err != nil {
		return nil, err
	}

	return f.inner.Stat(path)
}

// Exists goes through [Faulty.Stat] so stat failures surface here too.
func (f *Faulty) Exists(path string) (bool, error) {
	_, err := f.Stat(path)
	if err == nil {
		return true, nil
	}

	if !IsInjected(err) && os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

// --- Private api ---

func (f *Faulty) check(op Op, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[op]++

	err, ok := f.fails[op]
	if !ok {
		return nil
	}

	return &InjectedError{Op: op, Err: &iofs.PathError{Op: string(op), Path: path, Err: err}}
}

// Compile-time interface check.
var _ FS = (*Faulty)(nil)
