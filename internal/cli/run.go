package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/tap14/internal/config"
	"github.com/calvinalkan/tap14/internal/fs"
)

// app carries what every command needs besides its own flags.
type app struct {
	cfg   config.Config
	fs    fs.FS
	env   map[string]string
	stdin io.Reader
	out   io.Writer
}

// Run is the main entry point. Returns exit code.
//
// sigCh may be nil. The first signal received cancels the command context so
// long-running commands can stop cleanly.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	return run(stdin, out, errOut, args, env, sigCh, nil)
}

func run(stdin io.Reader, out, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal, fsys fs.FS) int {
	globals := flag.NewFlagSet("tap14", flag.ContinueOnError)
	globals.SetInterspersed(false)
	globals.SetOutput(&strings.Builder{})

	workDir := globals.StringP("cwd", "C", "", "Run as if started in `dir`")
	configPath := globals.StringP("config", "c", "", "Use config `file` instead of .tap14.json")
	color := globals.String("color", "", "Color output: auto, always, never")
	logLevel := globals.String("log-level", "", "Log `level` for diagnostics on stderr")
	help := globals.BoolP("help", "h", false, "Show help")

	if len(args) > 0 {
		args = args[1:]
	}

	err := globals.Parse(args)
	if err != nil {
		fprintln(errOut, "error:", err)
		printUsage(errOut, nil)

		return 1
	}

	dir, err := resolveWorkDir(*workDir)
	if err != nil {
		fprintln(errOut, "error:", err)
		return 1
	}

	if fsys == nil {
		fsys = fs.NewReal()
	}

	if stdin == nil {
		stdin = strings.NewReader("")
	}

	cfg, err := config.Load(config.LoadInput{
		WorkDir:    dir,
		ConfigPath: *configPath,
		Color:      *color,
		LogLevel:   *logLevel,
		Env:        env,
		FS:         fsys,
	})
	if err != nil {
		fprintln(errOut, "error:", err)
		return 1
	}

	a := &app{cfg: cfg, fs: fsys, env: env, stdin: stdin, out: out}
	commands := a.commands()

	rest := globals.Args()
	if *help || len(rest) == 0 {
		printUsage(out, commands)
		return 0
	}

	cmd := findCommand(commands, rest[0])
	if cmd == nil {
		fprintln(errOut, "error: unknown command:", rest[0])
		printUsage(errOut, commands)

		return 1
	}

	logger := newLogger(errOut, cfg, env)
	logger.Debug().
		Str("global_config", cfg.Sources.Global).
		Str("project_config", cfg.Sources.Project).
		Msg("config loaded")

	ctx, cancel := context.WithCancel(logger.WithContext(context.Background()))
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	o := NewIO(out, errOut)

	code := cmd.Run(ctx, o, rest[1:])
	if code != 0 {
		return code
	}

	return o.Finish()
}

func (a *app) commands() []*Command {
	return []*Command{
		ParseCmd(a),
		CheckCmd(a),
		ReplCmd(a),
		PrintConfigCmd(&a.cfg),
	}
}

func findCommand(commands []*Command, name string) *Command {
	for _, c := range commands {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

func resolveWorkDir(dir string) (string, error) {
	if dir != "" && filepath.IsAbs(dir) {
		return dir, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("cannot get working directory: %w", err)
	}

	return filepath.Join(wd, dir), nil
}

// resolvePath makes path relative to the effective working directory.
func (a *app) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(a.cfg.EffectiveCwd, path)
}

func printUsage(w io.Writer, commands []*Command) {
	fprintln(w, "tap14 - strict TAP version 14 parser")
	fprintln(w)
	fprintln(w, "Usage: tap14 [-C dir] [-c file] [--color mode] [--log-level level] <command> [args]")
	fprintln(w)
	fprintln(w, "Commands:")

	for _, c := range commands {
		fprintln(w, c.HelpLine())
	}

	fprintln(w)
	fprintln(w, "Run 'tap14 <command> --help' for command flags.")
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}
