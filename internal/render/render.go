package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/calvinalkan/tap14/pkg/tap"
)

// ErrUnknownFormat is returned by [Write] for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown output format")

// Options tunes rendering. Width and Color only affect the tree format.
type Options struct {
	Width int  // Width truncates tree lines to this many columns; 0 disables it.
	Color bool // Color wraps results in ANSI colors.
}

// CheckFormat reports whether format names a supported output format.
func CheckFormat(format string) error {
	switch format {
	case "json", "yaml", "tree":
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Write renders stmts to w in format ("json", "yaml" or "tree").
func Write(w io.Writer, format string, stmts []tap.Statement, opts Options) error {
	switch format {
	case "json":
		return JSON(w, stmts)
	case "yaml":
		return YAML(w, stmts)
	case "tree":
		return Tree(w, stmts, opts)
	default:
		return CheckFormat(format)
	}
}

// JSON writes stmts as an indented JSON array of records.
func JSON(w io.Writer, stmts []tap.Statement) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	err := enc.Encode(Records(stmts))
	if err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}

	return nil
}

// YAML writes stmts as a YAML sequence of records.
func YAML(w io.Writer, stmts []tap.Statement) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	err := enc.Encode(Records(stmts))
	if err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}

	return enc.Close()
}
