package testutil

import (
	"strconv"
	"strings"

	"github.com/calvinalkan/tap14/pkg/tap"
)

// DocGenConfig configures the document generator. Rates are percentages
// (0-100).
type DocGenConfig struct {
	// MaxItems bounds the body items (test points, comments, subtests) of
	// each (sub)document.
	MaxItems int

	// MaxDepth bounds subtest nesting.
	MaxDepth int

	// CommentRate is the share of body items that are comments.
	CommentRate int

	// SubtestRate is the share of body items that are subtests.
	SubtestRate int

	// NamedSubtestRate is the share of subtests introduced by a header.
	NamedSubtestRate int

	// TrailingPlanRate is the share of documents whose plan comes last.
	TrailingPlanRate int

	// PlanReasonRate is the share of plans carrying a "# reason".
	PlanReasonRate int

	// DirectiveRate is the share of test points carrying a directive.
	DirectiveRate int

	// YAMLRate is the share of test points followed by a diagnostic block.
	YAMLRate int

	// FillerRate is the chance of a blank or pragma line before an item or a
	// diagnostic block.
	FillerRate int

	// VersionRate is the share of named subtests re-declaring the version.
	VersionRate int

	// CRLFRate is the share of documents using "\r\n" line endings.
	CRLFRate int
}

// DefaultDocGenConfig returns a balanced configuration.
func DefaultDocGenConfig() DocGenConfig {
	return DocGenConfig{
		MaxItems:         6,
		MaxDepth:         4,
		CommentRate:      15,
		SubtestRate:      20,
		NamedSubtestRate: 70,
		TrailingPlanRate: 30,
		PlanReasonRate:   10,
		DirectiveRate:    20,
		YAMLRate:         20,
		FillerRate:       10,
		VersionRate:      20,
		CRLFRate:         10,
	}
}

// DocGenerator derives well-formed TAP 14 documents from fuzz bytes, along
// with the statements a parser must return for them.
type DocGenerator struct {
	stream *ByteStream
	config DocGenConfig
}

// NewDocGenerator creates a generator reading from fuzzBytes.
func NewDocGenerator(fuzzBytes []byte, cfg *DocGenConfig) *DocGenerator {
	return &DocGenerator{
		stream: NewByteStream(fuzzBytes),
		config: *cfg,
	}
}

// Generate returns one document and its expected statements.
func (g *DocGenerator) Generate() (string, []tap.Statement) {
	sep := "\n"
	if g.stream.Chance(g.config.CRLFRate) {
		sep = "\r\n"
	}

	body, stmts := g.document(0)

	lines := append([]string{"TAP version 14"}, body...)

	return strings.Join(lines, sep) + sep, stmts
}

func (g *DocGenerator) document(depth int) ([]string, []tap.Statement) {
	items := g.stream.NextInt(g.config.MaxItems + 1)
	planLine, plan := g.plan(uint64(items))
	trailing := g.stream.Chance(g.config.TrailingPlanRate)

	var (
		lines []string
		stmts []tap.Statement
	)

	if !trailing {
		lines = append(lines, planLine)
		stmts = append(stmts, tap.PlanStatement(plan))
	}

	for range items {
		lines = append(lines, g.filler()...)

		itemLines, stmt := g.item(depth)
		lines = append(lines, itemLines...)
		stmts = append(stmts, stmt)
	}

	if trailing {
		lines = append(lines, planLine)
		stmts = append(stmts, tap.PlanStatement(plan))
	}

	return lines, stmts
}

func (g *DocGenerator) plan(count uint64) (string, tap.Plan) {
	plan := tap.Plan{Count: count}
	line := "1.." + strconv.FormatUint(count, 10)

	if g.stream.Chance(g.config.PlanReasonRate) {
		plan.Reason, plan.HasReason = g.stream.NextWords(3, 6), true
		line += " # " + plan.Reason
	}

	return line, plan
}

func (g *DocGenerator) item(depth int) ([]string, tap.Statement) {
	roll := g.stream.NextInt(100)

	switch {
	case roll < g.config.CommentRate:
		text := "note " + g.stream.NextWords(3, 8)
		return []string{"# " + text}, tap.CommentStatement(strings.TrimSpace(text))
	case roll < g.config.CommentRate+g.config.SubtestRate && depth < g.config.MaxDepth:
		return g.subtest(depth)
	default:
		lines, tp := g.testPoint()
		return lines, tap.TestPointStatement(tp)
	}
}

func (g *DocGenerator) subtest(depth int) ([]string, tap.Statement) {
	var (
		lines []string
		st    tap.Subtest
	)

	// Only a header lets the body re-declare its version; a bare subtest
	// starts with its first body line.
	if g.stream.Chance(g.config.NamedSubtestRate) {
		st.Name, st.HasName = g.stream.NextWord(10), true
		lines = append(lines, "# "+g.stream.MixCase("subtest")+": "+st.Name)

		if g.stream.Chance(g.config.VersionRate) {
			lines = append(lines, "    TAP version 14")
		}
	}

	body, stmts := g.document(depth + 1)
	for _, line := range body {
		lines = append(lines, "    "+line)
	}

	endLines, ending := g.testPoint()
	lines = append(lines, endLines...)

	st.Statements = stmts
	st.Ending = ending

	return lines, tap.SubtestStatement(st)
}

func (g *DocGenerator) testPoint() ([]string, tap.TestPoint) {
	tp := tap.TestPoint{Result: g.stream.NextBool()}

	var b strings.Builder
	if tp.Result {
		b.WriteString("ok")
	} else {
		b.WriteString("not ok")
	}

	if g.stream.NextBool() {
		tp.Number, tp.HasNumber = uint64(g.stream.NextInt(256)), true
		b.WriteString(" " + strconv.FormatUint(tp.Number, 10))
	}

	if g.stream.NextBool() {
		tp.Desc = g.description()
		b.WriteString(" - " + tp.Desc)
	}

	if g.stream.Chance(g.config.DirectiveRate) {
		d := tap.Directive{Kind: tap.DirectiveSkip}
		if g.stream.NextBool() {
			d.Kind = tap.DirectiveTodo
		}

		b.WriteString(" # " + g.stream.MixCase(d.Kind.String()))

		d.Reason = g.stream.NextWords(3, 6)
		if d.Reason != "" {
			b.WriteString(" " + d.Reason)
		}

		tp.Directive = &d
	}

	lines := []string{b.String()}

	if g.stream.Chance(g.config.YAMLRate) {
		lines = append(lines, g.filler()...)
		lines = append(lines, "  ---")

		for range g.stream.NextInt(4) {
			content := g.stream.NextWord(8) + ": " + g.stream.NextWords(2, 8)
			tp.YAML = append(tp.YAML, content)
			lines = append(lines, "  "+content)
		}

		lines = append(lines, "  ...")
	}

	return lines, tp
}

// description starts with a letter and may contain escaped '#'.
func (g *DocGenerator) description() string {
	words := []string{g.stream.NextWord(8)}

	for range g.stream.NextInt(4) {
		if g.stream.NextInt(4) == 0 {
			words = append(words, `\#`)
		}

		words = append(words, g.stream.NextWord(8))
	}

	return strings.Join(words, " ")
}

func (g *DocGenerator) filler() []string {
	if !g.stream.Chance(g.config.FillerRate) {
		return nil
	}

	if g.stream.NextBool() {
		return []string{"pragma +strict"}
	}

	return []string{""}
}
