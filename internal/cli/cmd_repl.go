package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/tap14/internal/config"
	"github.com/calvinalkan/tap14/internal/fs"
	"github.com/calvinalkan/tap14/internal/render"
	"github.com/calvinalkan/tap14/internal/term"
	"github.com/calvinalkan/tap14/pkg/tap"
)

const (
	historyFileName = "history"
	historyPerm     = 0o600
	stateDirPerm    = 0o755
)

var errReplArgs = errors.New("repl takes no arguments")

var replCommands = []string{":parse", ":show", ":reset", ":load", ":help", ":quit"}

// prompter is the line source of the REPL.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(line string)
	Close() error
}

// ReplCmd returns the repl command.
func ReplCmd(a *app) *Command {
	flags := flag.NewFlagSet("repl", flag.ContinueOnError)
	flags.Int("max-depth", a.cfg.MaxDepth, "Maximum subtest nesting (0 = unlimited)")

	return &Command{
		Flags: flags,
		Usage: "repl",
		Short: "Build and parse documents interactively",
		Long: `Start an interactive session. Lines that do not start with ':' are
appended to a document buffer verbatim, indentation included.

Commands:
  :parse       Parse the buffer and print its statement tree
  :show        Print the buffer with line numbers
  :reset       Clear the buffer
  :load FILE   Replace the buffer with the contents of FILE
  :help        Show this help
  :quit        Leave the session (also Ctrl-D)`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return errReplArgs
			}

			maxDepth, _ := flags.GetInt("max-depth")

			return execRepl(ctx, o, a, maxDepth)
		},
	}
}

type replSession struct {
	ctx      context.Context
	o        *IO
	a        *app
	maxDepth int
	buf      []string
}

func execRepl(ctx context.Context, o *IO, a *app, maxDepth int) error {
	p := a.newPrompter()

	defer func() {
		if err := p.Close(); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("closing line editor")
		}
	}()

	s := &replSession{ctx: ctx, o: o, a: a, maxDepth: maxDepth}

	o.Println("tap14 repl - enter TAP lines, :help for commands")

	for ctx.Err() == nil {
		line, err := p.Prompt(fmt.Sprintf("tap14[%d]> ", len(s.buf)))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		if strings.TrimSpace(line) != "" {
			p.AppendHistory(line)
		}

		name, arg, ok := replCommand(line)
		if !ok {
			s.buf = append(s.buf, line)
			continue
		}

		switch name {
		case "quit", "q", "exit":
			return nil
		case "help", "?":
			s.help()
		case "parse":
			s.parse()
		case "show":
			s.show()
		case "reset":
			s.buf = nil
			o.Println("buffer cleared")
		case "load":
			s.load(arg)
		default:
			o.Printf("unknown command :%s (type :help for commands)\n", name)
		}
	}

	return nil
}

// replCommand splits a ":name arg" line.
func replCommand(line string) (string, string, bool) {
	trimmed := strings.TrimSpace(line)

	rest, ok := strings.CutPrefix(trimmed, ":")
	if !ok {
		return "", "", false
	}

	name, arg, _ := strings.Cut(rest, " ")

	return strings.ToLower(name), strings.TrimSpace(arg), true
}

func (s *replSession) help() {
	for _, c := range replCommands {
		s.o.Println(" ", c)
	}
}

func (s *replSession) parse() {
	parser := tap.NewParser(tap.WithMaxDepth(s.maxDepth))

	stmts, err := parser.Parse(strings.Join(s.buf, "\n") + "\n")
	if err != nil {
		s.o.Println("error:", err)

		if n := len(parser.Statements()); n > 0 {
			s.o.Printf("(%d statements before the error)\n", n)
		}

		return
	}

	opts := render.Options{Color: useColor(s.a.cfg.Color, s.a.out, s.a.env)}
	opts.Width, _ = term.Width(s.a.out)

	if err := render.Tree(s.o.Out(), stmts, opts); err != nil {
		zerolog.Ctx(s.ctx).Warn().Err(err).Msg("rendering tree")
		return
	}

	sum := tap.Summarize(stmts)
	s.o.Printf("%d passed, %d failed, %d skipped, %d todo\n", sum.Passed, sum.Failed, sum.Skipped, sum.Todo)
}

func (s *replSession) show() {
	if len(s.buf) == 0 {
		s.o.Println("(empty)")
		return
	}

	for i, line := range s.buf {
		s.o.Printf("%3d | %s\n", i+1, line)
	}
}

func (s *replSession) load(name string) {
	if name == "" {
		s.o.Println("usage: :load FILE")
		return
	}

	data, err := s.a.fs.ReadFile(s.a.resolvePath(name))
	if err != nil {
		s.o.Println("error:", err)
		return
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	s.buf = strings.Split(strings.TrimSuffix(text, "\n"), "\n")

	s.o.Printf("loaded %d lines from %s\n", len(s.buf), name)
}

// newPrompter edits lines with liner on a terminal and reads plain lines
// from stdin otherwise.
func (a *app) newPrompter() prompter {
	if !term.IsTerminal(a.stdin) {
		return &scanPrompter{sc: bufio.NewScanner(a.stdin)}
	}

	return newLinerPrompter(a.fs, config.StatePath(a.env, historyFileName))
}

// linerPrompter persists its history atomically on Close.
type linerPrompter struct {
	state       *liner.State
	fs          fs.FS
	historyPath string
}

func newLinerPrompter(fsys fs.FS, historyPath string) *linerPrompter {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	state.SetCompleter(completeReplCommand)

	if historyPath != "" {
		if data, err := fsys.ReadFile(historyPath); err == nil {
			_, _ = state.ReadHistory(bytes.NewReader(data))
		}
	}

	return &linerPrompter{state: state, fs: fsys, historyPath: historyPath}
}

func (p *linerPrompter) Prompt(prompt string) (string, error) {
	return p.state.Prompt(prompt)
}

func (p *linerPrompter) AppendHistory(line string) {
	p.state.AppendHistory(line)
}

func (p *linerPrompter) Close() error {
	var saveErr error

	if p.historyPath != "" {
		saveErr = p.saveHistory()
	}

	return errors.Join(saveErr, p.state.Close())
}

func (p *linerPrompter) saveHistory() error {
	var buf bytes.Buffer

	if _, err := p.state.WriteHistory(&buf); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}

	if err := p.fs.MkdirAll(filepath.Dir(p.historyPath), stateDirPerm); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	return p.fs.WriteFileAtomic(p.historyPath, buf.Bytes(), historyPerm)
}

func completeReplCommand(line string) []string {
	var out []string

	for _, c := range replCommands {
		if strings.HasPrefix(c, strings.ToLower(line)) {
			out = append(out, c)
		}
	}

	return out
}

// scanPrompter reads lines from a non-interactive stream without prompting.
type scanPrompter struct {
	sc *bufio.Scanner
}

func (p *scanPrompter) Prompt(string) (string, error) {
	if p.sc.Scan() {
		return strings.TrimSuffix(p.sc.Text(), "\r"), nil
	}

	if err := p.sc.Err(); err != nil {
		return "", err
	}

	return "", io.EOF
}

func (*scanPrompter) AppendHistory(string) {}

func (*scanPrompter) Close() error { return nil }
