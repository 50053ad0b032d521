package cli_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/calvinalkan/tap14/internal/cli"
)

func Test_IO_PrintsWarningsAtStartAndEnd_When_OutputFollows(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer

	o := cli.NewIO(&out, &errOut)
	o.Warn("plan mismatch", "fix the producer")
	o.Println("ok a.tap")
	o.Println("ok b.tap")

	if code := o.Finish(); code != 1 {
		t.Fatalf("Finish() = %d, want 1", code)
	}

	if got := strings.Count(errOut.String(), "warning: plan mismatch: fix the producer\n"); got != 2 {
		t.Fatalf("warning printed %d times, want 2\nstderr: %s", got, errOut.String())
	}

	if out.String() != "ok a.tap\nok b.tap\n" {
		t.Fatalf("stdout = %q", out.String())
	}
}

func Test_IO_ReturnsZero_When_NoWarnings(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer

	o := cli.NewIO(&out, &errOut)
	o.Printf("%d statements\n", 3)
	o.ErrPrintln("note")

	if code := o.Finish(); code != 0 {
		t.Fatalf("Finish() = %d, want 0", code)
	}

	if errOut.String() != "note\n" {
		t.Fatalf("stderr = %q", errOut.String())
	}
}
