package cli_test

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/tap14/internal/cli"
	"github.com/calvinalkan/tap14/internal/fs"
)

const twoTests = "TAP version 14\n1..2\nok 1 - a\nnot ok 2 - b\n"

const twoTestsJSON = `[
  {
    "type": "plan",
    "count": 2
  },
  {
    "type": "test_point",
    "result": true,
    "number": 1,
    "desc": "a"
  },
  {
    "type": "test_point",
    "result": false,
    "number": 2,
    "desc": "b"
  }
]
`

func Test_Parse_PrintsJSON_When_FormatJSON(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("results.tap", twoTests)

	stdout, stderr, code := c.Run("parse", "--format", "json", "results.tap")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}

	if diff := cmp.Diff(twoTestsJSON, stdout); diff != "" {
		t.Fatalf("stdout mismatch (-want +got):\n%s", diff)
	}
}

func Test_Parse_PrintsTree_When_ReadingStdin(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout, stderr, code := c.RunWithInput(twoTests, "parse", "-")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}

	want := "├─ plan 1..2\n├─ ok 1 - a\n└─ not ok 2 - b\n"
	if diff := cmp.Diff(want, stdout); diff != "" {
		t.Fatalf("stdout mismatch (-want +got):\n%s", diff)
	}
}

func Test_Parse_UsesConfiguredFormat_When_FlagNotGiven(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(".tap14.json", `{"format": "yaml"}`)
	c.WriteFile("results.tap", twoTests)

	stdout := c.MustRun("parse", "results.tap")
	cli.AssertContains(t, stdout, "- type: plan\n  count: 2")
	cli.AssertContains(t, stdout, "desc: b")
}

func Test_Parse_ReportsFileAndLine_When_DocumentInvalid(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("bad.tap", "TAP version 14\n1..1\nnope\n")

	stderr := c.MustFail("parse", "bad.tap")
	cli.AssertContains(t, stderr, `error: bad.tap:3: unknown line: "nope"`)
}

func Test_Parse_RendersPartial_When_PartialFlagSet(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("bad.tap", "TAP version 14\n1..2\nok 1 - a\nBail out! db down\n")

	stdout, stderr, code := c.Run("parse", "--partial", "-f", "tree", "bad.tap")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}

	if diff := cmp.Diff("├─ plan 1..2\n└─ ok 1 - a\n", stdout); diff != "" {
		t.Fatalf("stdout mismatch (-want +got):\n%s", diff)
	}

	cli.AssertContains(t, stderr, `error: bad.tap:4: bailed out: "db down"`)
}

func Test_Parse_WritesOutputFile_When_OutputFlagSet(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("results.tap", twoTests)

	stdout := c.MustRun("parse", "-f", "json", "-o", "out.json", "results.tap")
	if stdout != "" {
		t.Fatalf("stdout = %q, want empty", stdout)
	}

	if diff := cmp.Diff(twoTestsJSON, c.ReadFile("out.json")); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}

	info, err := os.Stat(filepath.Join(c.Dir, "out.json"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	if got := info.Mode().Perm(); got != 0o644 {
		t.Fatalf("mode = %v, want 0644", got)
	}
}

func Test_Parse_Fails_When_OutputWriteFails(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("results.tap", twoTests)

	faulty := fs.NewFaulty(fs.NewReal())
	faulty.Fail(fs.OpWriteFileAtomic, syscall.ENOSPC)
	c.FS = faulty

	stderr := c.MustFail("parse", "-o", "out.json", "results.tap")
	cli.AssertContains(t, stderr, "error: writing out.json:")

	if got := faulty.Calls(fs.OpWriteFileAtomic); got != 1 {
		t.Fatalf("write calls = %d, want 1", got)
	}
}

func Test_Parse_Fails_When_NestingExceedsMaxDepth(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("deep.tap", strings.Join([]string{
		"TAP version 14",
		"1..1",
		"# Subtest: outer",
		"    1..1",
		"    # Subtest: inner",
		"        1..1",
		"        ok 1",
		"    ok 1 - inner",
		"ok 1 - outer",
	}, "\n")+"\n")

	stderr := c.MustFail("parse", "--max-depth", "1", "deep.tap")
	cli.AssertContains(t, stderr, "error: deep.tap:5: subtests nested too deeply")

	c.MustRun("parse", "--max-depth", "2", "deep.tap")
}

func Test_Parse_Fails_When_ArgumentsInvalid(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	cli.AssertContains(t, c.MustFail("parse"), "parse takes exactly one <file|-> argument")
	cli.AssertContains(t, c.MustFail("parse", "a.tap", "b.tap"), "parse takes exactly one <file|-> argument")
	cli.AssertContains(t, c.MustFail("parse", "missing.tap"), "no such file or directory")
	cli.AssertContains(t, c.MustFail("parse", "-f", "xml", "-"), "unknown output format")
}
