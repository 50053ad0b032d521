package cli_test

import (
	"strings"
	"testing"

	"github.com/calvinalkan/tap14/internal/cli"
)

func Test_Check_ReportsEachFile_When_SomeInvalid(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("good.tap", twoTests)
	c.WriteFile("bad.tap", "TAP version 14\nnope\n")

	stdout, stderr, code := c.Run("check", "good.tap", "bad.tap")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}

	want := "ok good.tap (3 statements)\nnot ok bad.tap: line 2: unknown line: \"nope\"\n"
	if stdout != want {
		t.Fatalf("stdout = %q, want %q", stdout, want)
	}

	cli.AssertContains(t, stderr, "error: check failed: 1 of 2 documents rejected")
}

func Test_Check_Succeeds_When_AllValid(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("a.tap", twoTests)
	c.WriteFile("nested/b.tap", "TAP version 14\nok\n1..1\n")

	stdout := c.MustRun("check", "a.tap", "nested/b.tap")
	cli.AssertContains(t, stdout, "ok a.tap (3 statements)")
	cli.AssertContains(t, stdout, "ok nested/b.tap (2 statements)")
}

func Test_Check_PrintsCounts_When_SummaryFlagSet(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("mixed.tap", "TAP version 14\n1..3\nok 1\nnot ok 2\nnot ok 3 # todo later\n")

	stdout := c.MustRun("check", "--summary", "mixed.tap")
	cli.AssertContains(t, stdout, "ok mixed.tap (4 statements) [1 passed, 1 failed, 0 skipped, 1 todo]")
}

func Test_Check_ReadsStdin_When_NoArguments(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout, stderr, code := c.RunWithInput("TAP version 14\n1..0 # skip everything\n", "check")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}

	cli.AssertContains(t, stdout, "ok - (1 statements)")
}

func Test_Check_WarnsAboutPlan_When_CountMismatches(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("short.tap", "TAP version 14\n1..3\nok 1\n")

	stdout, stderr, code := c.Run("check", "short.tap")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1 for warnings", code)
	}

	cli.AssertContains(t, stdout, "ok short.tap (2 statements)")
	cli.AssertContains(t, stderr, "warning: short.tap: plan expects 3 test points, found 1: fix the plan line or the producer")
}

func Test_Check_PaintsResults_When_ColorAlways(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("good.tap", twoTests)
	c.WriteFile("bad.tap", "TAP version 13\n")

	stdout, _, _ := c.Run("--color", "always", "check", "good.tap", "bad.tap")
	cli.AssertContains(t, stdout, "\x1b[32mok\x1b[0m good.tap")
	cli.AssertContains(t, stdout, "\x1b[31mnot ok\x1b[0m bad.tap: line 1: version \"13\" is invalid")
}

func Test_Check_NeverPaints_When_NoColorSet(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.Env["NO_COLOR"] = "1"
	c.WriteFile("good.tap", twoTests)

	stdout := c.MustRun("check", "good.tap")
	if strings.Contains(stdout, "\x1b[") {
		t.Fatalf("stdout contains escape codes: %q", stdout)
	}
}
