package fs

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
)

func TestFaulty_Fail_InjectsErrorUntilCleared(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.tap")

	if err := os.WriteFile(path, []byte("ok"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	fsys := NewFaulty(NewReal())
	fsys.Fail(OpReadFile, syscall.EIO)

	_, err := fsys.ReadFile(path)
	if !IsInjected(err) {
		t.Fatalf("err=%v, want injected", err)
	}

	if !errors.Is(err, syscall.EIO) {
		t.Fatalf("err=%v, want wrapped EIO", err)
	}

	var pathErr *os.PathError
	if !errors.As(err, &pathErr) || pathErr.Path != path {
		t.Fatalf("err=%v, want *os.PathError for %q", err, path)
	}

	fsys.Fail(OpReadFile, nil)

	data, err := fsys.ReadFile(path)
	if err != nil || string(data) != "ok" {
		t.Fatalf("ReadFile after clear=(%q, %v)", data, err)
	}

	if got, want := fsys.Calls(OpReadFile), 2; got != want {
		t.Fatalf("calls=%d, want=%d", got, want)
	}
}

func TestFaulty_Exists_ReportsInjectedStatFailure(t *testing.T) {
	t.Parallel()

	fsys := NewFaulty(NewReal())

	exists, err := fsys.Exists(filepath.Join(t.TempDir(), "missing"))
	if exists || err != nil {
		t.Fatalf("Exists=(%v, %v), want (false, nil)", exists, err)
	}

	fsys.Fail(OpStat, syscall.ENOENT)

	_, err = fsys.Exists(t.TempDir())
	if !IsInjected(err) {
		t.Fatalf("err=%v, want injected", err)
	}
}

func TestFaulty_WriteFileAtomic_DoesNotTouchDiskWhenFailing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.json")

	fsys := NewFaulty(NewReal())
	fsys.Fail(OpWriteFileAtomic, syscall.ENOSPC)

	if err := fsys.WriteFileAtomic(path, []byte("x"), 0o644); !errors.Is(err, syscall.ENOSPC) {
		t.Fatalf("err=%v, want ENOSPC", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file written despite injected failure: %v", err)
	}
}

func TestIsInjected_ReturnsFalseForRealErrors(t *testing.T) {
	t.Parallel()

	_, err := NewReal().ReadFile(filepath.Join(t.TempDir(), "missing"))
	if err == nil || IsInjected(err) {
		t.Fatalf("err=%v, want real not-exist error", err)
	}

	if IsInjected(nil) {
		t.Fatal("IsInjected(nil)=true")
	}
}
