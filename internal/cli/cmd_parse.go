package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/tap14/internal/render"
	"github.com/calvinalkan/tap14/internal/term"
	"github.com/calvinalkan/tap14/pkg/tap"
)

const outputPerm = 0o644

var errParseArgs = errors.New("parse takes exactly one <file|-> argument")

// ParseCmd returns the parse command.
func ParseCmd(a *app) *Command {
	flags := flag.NewFlagSet("parse", flag.ContinueOnError)
	flags.StringP("format", "f", a.cfg.Format, "Output format: json, yaml, tree")
	flags.StringP("output", "o", "", "Write output atomically to `file` instead of stdout")
	flags.Bool("partial", false, "Render the statements read before a parse error")
	flags.Int("max-depth", a.cfg.MaxDepth, "Maximum subtest nesting (0 = unlimited)")
	flags.Int("width", a.cfg.Width, "Truncate tree lines to this many columns (0 = terminal width)")

	return &Command{
		Flags: flags,
		Usage: "parse [flags] <file|->",
		Short: "Parse a document and print its statements",
		Long: `Parse a TAP version 14 document and print its statement tree.

The document is read from <file>, or from stdin when the argument is "-".
Subtests are folded into their parent. On a parse error the error is printed
as <file>:<line>: <message> and the exit code is 1; with --partial the
statements read before the error are rendered as well.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execParse(ctx, o, a, flags, args)
		},
	}
}

func execParse(ctx context.Context, o *IO, a *app, flags *flag.FlagSet, args []string) error {
	if len(args) != 1 {
		return errParseArgs
	}

	format, _ := flags.GetString("format")
	output, _ := flags.GetString("output")
	partial, _ := flags.GetBool("partial")
	maxDepth, _ := flags.GetInt("max-depth")
	width, _ := flags.GetInt("width")

	if maxDepth < 0 {
		return fmt.Errorf("--max-depth must not be negative: %d", maxDepth)
	}

	err := render.CheckFormat(format)
	if err != nil {
		return err
	}

	doc := a.parseDocument(ctx, args[0], maxDepth)

	var dErr *documentError
	if doc.err != nil && !errors.As(doc.err, &dErr) {
		return doc.err
	}

	stmts := doc.stmts
	if doc.err != nil {
		if !partial {
			return doc.err
		}

		stmts = doc.partial
	}

	opts := render.Options{Width: width}

	if output == "" {
		opts.Color = useColor(a.cfg.Color, a.out, a.env)
		if opts.Width == 0 {
			opts.Width, _ = term.Width(a.out)
		}
	}

	err = writeRendered(ctx, o, a, output, format, stmts, opts)
	if err != nil {
		return err
	}

	return doc.err
}

func writeRendered(ctx context.Context, o *IO, a *app, output, format string, stmts []tap.Statement, opts render.Options) error {
	var buf bytes.Buffer

	err := render.Write(&buf, format, stmts, opts)
	if err != nil {
		return err
	}

	if output == "" {
		_, err = o.Out().Write(buf.Bytes())
		return err
	}

	path := a.resolvePath(output)

	err = a.fs.WriteFileAtomic(path, buf.Bytes(), outputPerm)
	if err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Int("bytes", buf.Len()).Msg("output written")

	return nil
}
