package cli_test

import (
	"testing"

	"github.com/calvinalkan/tap14/internal/cli"
)

func Test_Run_PrintsUsage_When_NoCommand(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun()

	for _, name := range []string{"parse", "check", "repl", "print-config"} {
		cli.AssertContains(t, stdout, "  "+name)
	}
}

func Test_Run_PrintsUsage_When_HelpFlag(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("--help")
	cli.AssertContains(t, stdout, "Usage: tap14")
}

func Test_Run_Fails_When_CommandUnknown(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("frobnicate")
	cli.AssertContains(t, stderr, "error: unknown command: frobnicate")
	cli.AssertContains(t, stderr, "Commands:")
}

func Test_Run_Fails_When_GlobalFlagUnknown(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("--frobnicate", "check")
	cli.AssertContains(t, stderr, "error: unknown flag: --frobnicate")
}

func Test_Run_Fails_When_ConfigInvalid(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(".tap14.json", `{"format": "xml"}`)

	stderr := c.MustFail("print-config")
	cli.AssertContains(t, stderr, "format must be one of json, yaml, tree")
}

func Test_Command_PrintsHelp_When_HelpFlagGiven(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("parse", "--help")
	cli.AssertContains(t, stdout, "Usage: tap14 parse [flags] <file|->")
	cli.AssertContains(t, stdout, "--format")
	cli.AssertContains(t, stdout, "--partial")
}

func Test_Command_Fails_When_FlagUnknown(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("check", "--bogus")
	cli.AssertContains(t, stderr, "error: unknown flag: --bogus")
	cli.AssertContains(t, stderr, "Usage: tap14 check")
}

func Test_Run_LogsDiagnostics_When_LogLevelDebug(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("ok.tap", "TAP version 14\n1..0\n")

	_, stderr, code := c.Run("--log-level", "debug", "check", "ok.tap")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}

	cli.AssertContains(t, stderr, "config loaded")
	cli.AssertContains(t, stderr, "document parsed")
	cli.AssertContains(t, stderr, "statements=1")
}
