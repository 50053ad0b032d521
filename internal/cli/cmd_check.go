package cli

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/tap14/internal/render"
	"github.com/calvinalkan/tap14/pkg/tap"
)

var errCheckFailed = errors.New("check failed")

// CheckCmd returns the check command.
func CheckCmd(a *app) *Command {
	flags := flag.NewFlagSet("check", flag.ContinueOnError)
	flags.Bool("summary", false, "Append passed/failed/skipped/todo counts")
	flags.Int("max-depth", a.cfg.MaxDepth, "Maximum subtest nesting (0 = unlimited)")

	return &Command{
		Flags: flags,
		Usage: "check [flags] <file|->...",
		Short: "Validate documents",
		Long: `Parse each document and print one line per file:

  ok <file> (<n> statements)
  not ok <file>: <error>

Without arguments stdin is checked. Exits 1 when any document is rejected.
A plan whose count differs from the number of top-level test points is
reported as a warning.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execCheck(ctx, o, a, flags, args)
		},
	}
}

func execCheck(ctx context.Context, o *IO, a *app, flags *flag.FlagSet, args []string) error {
	summary, _ := flags.GetBool("summary")
	maxDepth, _ := flags.GetInt("max-depth")

	if maxDepth < 0 {
		return fmt.Errorf("--max-depth must not be negative: %d", maxDepth)
	}

	if len(args) == 0 {
		args = []string{stdinName}
	}

	color := useColor(a.cfg.Color, a.out, a.env)
	paint := func(c render.Color, s string) string {
		if !color {
			return s
		}

		return render.Paint(c, s)
	}

	failed := 0

	for _, name := range args {
		if err := ctx.Err(); err != nil {
			return err
		}

		doc := a.parseDocument(ctx, name, maxDepth)
		if doc.err != nil {
			failed++

			o.Printf("%s %s: %s\n", paint(render.ColorRed, "not ok"), name, checkReason(doc.err))

			continue
		}

		line := fmt.Sprintf("%s %s (%d statements)", paint(render.ColorGreen, "ok"), name, len(doc.stmts))

		if summary {
			s := tap.Summarize(doc.stmts)
			line += fmt.Sprintf(" [%d passed, %d failed, %d skipped, %d todo]", s.Passed, s.Failed, s.Skipped, s.Todo)
		}

		o.Println(line)

		if planned, found, ok := planMismatch(doc.stmts); ok {
			o.Warn(fmt.Sprintf("%s: plan expects %d test points, found %d", name, planned, found),
				"fix the plan line or the producer")
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d documents rejected", errCheckFailed, failed, len(args))
	}

	return nil
}

// checkReason drops the file name a *documentError carries, since the check
// line already starts with it.
func checkReason(err error) string {
	var dErr *documentError
	if errors.As(err, &dErr) {
		return dErr.err.Error()
	}

	return err.Error()
}

// planMismatch compares a document's plan with its top-level result lines.
func planMismatch(stmts []tap.Statement) (uint64, uint64, bool) {
	var (
		planned uint64
		found   uint64
		hasPlan bool
	)

	for i := range stmts {
		switch stmts[i].Kind {
		case tap.StatementPlan:
			planned, hasPlan = stmts[i].Plan.Count, true
		case tap.StatementTestPoint, tap.StatementSubtest:
			found++
		case tap.StatementComment:
		}
	}

	return planned, found, hasPlan && planned != found
}
