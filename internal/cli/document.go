package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/calvinalkan/tap14/pkg/tap"
)

// stdinName is the argument that selects standard input.
const stdinName = "-"

// documentError reports a rejected document as "<name>:<line>: <message>".
type documentError struct {
	name string
	err  error
}

func (e *documentError) Error() string {
	var perr *tap.ParseError
	if errors.As(e.err, &perr) && perr.Line > 0 {
		bare := *perr
		bare.Line = 0

		return fmt.Sprintf("%s:%d: %s", e.name, perr.Line, bare.Error())
	}

	return fmt.Sprintf("%s: %v", e.name, e.err)
}

func (e *documentError) Unwrap() error {
	return e.err
}

// parsed is the outcome of parsing one named document.
type parsed struct {
	name    string
	stmts   []tap.Statement
	partial []tap.Statement
	err     error // nil, a read failure, or a *documentError
}

// readDocument returns the contents of name, where "-" is stdin.
func (a *app) readDocument(name string) (string, error) {
	if name == stdinName {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}

		return string(data), nil
	}

	data, err := a.fs.ReadFile(a.resolvePath(name))
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// parseDocument reads and parses name with maxDepth as nesting limit.
func (a *app) parseDocument(ctx context.Context, name string, maxDepth int) parsed {
	log := zerolog.Ctx(ctx)

	input, err := a.readDocument(name)
	if err != nil {
		log.Debug().Str("file", name).Err(err).Msg("read failed")
		return parsed{name: name, err: err}
	}

	parser := tap.NewParser(tap.WithMaxDepth(maxDepth))

	stmts, err := parser.Parse(input)
	if err != nil {
		log.Info().Str("file", name).Err(err).Int("partial", len(parser.Statements())).Msg("document rejected")

		return parsed{name: name, partial: parser.Statements(), err: &documentError{name: name, err: err}}
	}

	log.Debug().Str("file", name).Int("statements", len(stmts)).Msg("document parsed")

	return parsed{name: name, stmts: stmts}
}
