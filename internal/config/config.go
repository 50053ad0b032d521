// Package config loads tap14's layered JSONC configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tailscale/hujson"

	"github.com/calvinalkan/tap14/internal/fs"
)

// Errors returned while loading or validating configuration.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrInvalidFormat      = errors.New("format must be one of json, yaml, tree")
	ErrInvalidColor       = errors.New("color must be one of auto, always, never")
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrNegativeMaxDepth   = errors.New("max_depth must not be negative")
	ErrNegativeWidth      = errors.New("width must not be negative")
)

// Output formats understood by the renderer.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTree = "tree"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// FileName is the project config file looked up in the working directory.
const FileName = ".tap14.json"

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	Format   string `json:"format"`
	MaxDepth int    `json:"max_depth"`
	Color    string `json:"color"`
	LogLevel string `json:"log_level"`
	Width    int    `json:"width"`

	// Resolved (computed, not serialized)
	EffectiveCwd string `json:"-"`

	// Sources tracks which config files were loaded (for diagnostics)
	Sources Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project or explicit config if loaded, empty otherwise
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Format:   FormatTree,
		MaxDepth: 256,
		Color:    ColorAuto,
		LogLevel: zerolog.LevelWarnValue,
	}
}

// Level returns the parsed log level. The config is validated on load, so an
// unparsable level only happens for hand-built values and maps to warn.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.WarnLevel
	}

	return lvl
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDir    string            // absolute working directory (-C/--cwd already applied)
	ConfigPath string            // -c/--config flag value
	Color      string            // --color flag value; empty means no override
	LogLevel   string            // --log-level flag value; empty means no override
	Env        map[string]string // environment variables
	FS         fs.FS             // filesystem; nil means the real one
}

// Load loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config ($XDG_CONFIG_HOME/tap14/config.json or ~/.config/tap14/config.json)
// 3. Project config file in the working directory (.tap14.json, if exists)
// 4. Explicit config file via ConfigPath (replaces 3)
// 5. CLI overrides.
func Load(input LoadInput) (Config, error) {
	fsys := input.FS
	if fsys == nil {
		fsys = fs.NewReal()
	}

	cfg := Default()
	cfg.EffectiveCwd = input.WorkDir

	if path := GlobalPath(input.Env); path != "" {
		overlay, loaded, err := loadFile(fsys, path, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg = merge(cfg, overlay)
			cfg.Sources.Global = path
		}
	}

	path, mustExist := filepath.Join(input.WorkDir, FileName), false

	if input.ConfigPath != "" {
		path, mustExist = input.ConfigPath, true
		if !filepath.IsAbs(path) {
			path = filepath.Join(input.WorkDir, path)
		}
	}

	overlay, loaded, err := loadFile(fsys, path, mustExist)
	if err != nil {
		return Config{}, err
	}

	if loaded {
		cfg = merge(cfg, overlay)
		cfg.Sources.Project = path
	}

	if input.Color != "" {
		cfg.Color = input.Color
	}

	if input.LogLevel != "" {
		cfg.LogLevel = input.LogLevel
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks that every field holds a supported value.
func (c Config) Validate() error {
	if !slices.Contains([]string{FormatJSON, FormatYAML, FormatTree}, c.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Format)
	}

	if !slices.Contains([]string{ColorAuto, ColorAlways, ColorNever}, c.Color) {
		return fmt.Errorf("%w: %q", ErrInvalidColor, c.Color)
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil || c.LogLevel == "" {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}

	if c.MaxDepth < 0 {
		return ErrNegativeMaxDepth
	}

	if c.Width < 0 {
		return ErrNegativeWidth
	}

	return nil
}

// GlobalPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/tap14/config.json if set, otherwise
// ~/.config/tap14/config.json. Returns "" if neither variable is set.
func GlobalPath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "tap14", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "tap14", "config.json")
	}

	return ""
}

// StatePath returns the path of name in tap14's state directory.
// Uses $XDG_STATE_HOME/tap14 if set, otherwise ~/.local/state/tap14.
// Returns "" if neither variable is set.
func StatePath(env map[string]string, name string) string {
	if xdg := env["XDG_STATE_HOME"]; xdg != "" {
		return filepath.Join(xdg, "tap14", name)
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".local", "state", "tap14", name)
	}

	return ""
}

// fileConfig distinguishes absent fields from explicit zero values.
type fileConfig struct {
	Format   *string `json:"format"`
	MaxDepth *int    `json:"max_depth"`
	Color    *string `json:"color"`
	LogLevel *string `json:"log_level"`
	Width    *int    `json:"width"`
}

// loadFile loads a config file. If mustExist is false, a missing file is not
// an error and reports loaded=false.
func loadFile(fsys fs.FS, path string, mustExist bool) (fileConfig, bool, error) {
	if mustExist {
		exists, err := fsys.Exists(path)
		if err != nil || !exists {
			return fileConfig{}, false, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		if !mustExist && errors.Is(err, os.ErrNotExist) {
			return fileConfig{}, false, nil
		}

		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrConfigFileRead, path, err)
	}

	cfg, err := parse(data)
	if err != nil {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, true, nil
}

func parse(data []byte) (fileConfig, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg fileConfig

	err = json.Unmarshal(standardized, &cfg)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return cfg, nil
}

func merge(base Config, overlay fileConfig) Config {
	if overlay.Format != nil {
		base.Format = strings.ToLower(*overlay.Format)
	}

	if overlay.MaxDepth != nil {
		base.MaxDepth = *overlay.MaxDepth
	}

	if overlay.Color != nil {
		base.Color = strings.ToLower(*overlay.Color)
	}

	if overlay.LogLevel != nil {
		base.LogLevel = *overlay.LogLevel
	}

	if overlay.Width != nil {
		base.Width = *overlay.Width
	}

	return base
}
