package tap

import (
	"errors"
	"strings"
)

const (
	versionPrefix   = "TAP version"
	supportedVer    = "14"
	planPrefix      = "1.."
	subtestIndent   = "    "
	yamlIndent      = "  "
	yamlOpen        = "  ---"
	yamlClose       = "  ..."
	subtestHeader   = "# subtest"
	bailOutPrefix   = "bail out!"
	pragmaPrefix    = "pragma "
	defaultMaxDepth = 256
)

// ParseOptions configures parsing behavior.
type ParseOptions struct {
	// MaxDepth is the maximum subtest nesting depth. A value of 0 disables the
	// limit.
	MaxDepth int
}

// ParseOption mutates ParseOptions.
type ParseOption func(*ParseOptions)

// WithMaxDepth sets the maximum subtest nesting depth. Use 0 to disable the
// limit entirely.
func WithMaxDepth(depth int) ParseOption {
	return func(opts *ParseOptions) {
		if depth < 0 {
			depth = 0
		}

		opts.MaxDepth = depth
	}
}

type state uint8

const (
	stateBody state = iota
	stateAfterTest
	stateYAML
	stateSubtest
)

// frame is the parsing state of one (sub)document. The parser keeps one frame
// per open nesting level; frames[i+1] exists iff frames[i] is in stateSubtest.
type frame struct {
	state      state
	inBody     bool
	done       bool
	readPlan   bool
	yaml       []string
	statements []Statement

	// name of the subtest this frame collects, from the parent's header line.
	name    string
	hasName bool
}

func (f *frame) complete() bool {
	return f.done || f.readPlan
}

// Parser holds the state of a single document parse. A Parser is not safe for
// concurrent use and parses exactly one document.
type Parser struct {
	opts   ParseOptions
	frames []*frame
	line   int
	used   bool
}

// NewParser returns a parser for one document.
//
// Defaults: MaxDepth=256.
func NewParser(opts ...ParseOption) *Parser {
	return &Parser{
		opts:   applyParseOptions(opts),
		frames: []*frame{{}},
	}
}

// Parse parses a TAP 14 document and returns its statements.
//
// Example:
//
//	stmts, err := tap.Parse("TAP version 14\n1..1\nok 1 - success\n")
//	if err != nil {
//		return err
//	}
//	_ = stmts[1].TestPoint.Desc // "success"
func Parse(input string, opts ...ParseOption) ([]Statement, error) {
	return NewParser(opts...).Parse(input)
}

// Parse parses input. On success the accumulated statements are handed to the
// caller. On failure the statements read so far stay available through
// [Parser.Statements]. Calling Parse a second time returns ErrParserUsed.
func (p *Parser) Parse(input string) ([]Statement, error) {
	if p.used {
		return nil, newError(ErrParserUsed, "")
	}

	p.used = true

	lines := newLineIter(input)

	first, ok := lines.next()
	if !ok {
		return nil, newError(ErrNoVersion, "")
	}

	p.line = 1

	version, ok := strings.CutPrefix(first, versionPrefix)
	if !ok {
		return nil, p.at(newError(ErrNoVersion, ""))
	}

	if v := strings.TrimSpace(version); v != supportedVer {
		return nil, p.at(newError(ErrInvalidVersion, v))
	}

	root := p.frames[0]

	for !root.done {
		line, ok := lines.next()
		if !ok {
			break
		}

		p.line++

		err := p.readLine(line)
		if err != nil {
			return nil, p.at(err)
		}
	}

	if !root.complete() {
		return nil, newError(ErrUnexpectedEOD, "")
	}

	stmts := root.statements
	root.statements = nil

	return stmts, nil
}

// Statements returns the statements accumulated by the document before a
// failed Parse. The statements of a subtest still open at the time of the
// failure are not included. After a successful Parse it returns nil.
func (p *Parser) Statements() []Statement {
	return p.frames[0].statements
}

// at attaches the current line number to err.
func (p *Parser) at(err error) error {
	var perr *ParseError
	if errors.As(err, &perr) && perr.Line == 0 {
		perr.Line = p.line
	}

	return err
}

// readLine dispatches one line down the frame stack, stripping one level of
// subtest indentation per frame.
func (p *Parser) readLine(line string) error {
	for depth := 0; ; depth++ {
		next, descend, err := p.step(depth, line)
		if err != nil || !descend {
			return err
		}

		line = next
	}
}

// step feeds line to the frame at depth. When the line belongs to the open
// subtest of that frame, it returns the line with the indentation removed and
// descend set.
func (p *Parser) step(depth int, line string) (string, bool, error) {
	f := p.frames[depth]

	if rest, ok := strings.CutPrefix(line, planPrefix); ok {
		return "", false, p.readPlan(f, rest)
	}

	switch f.state {
	case stateAfterTest:
		if line == yamlOpen {
			f.state = stateYAML
			return "", false, nil
		}

		return p.readBody(depth, line)
	case stateBody:
		return p.readBody(depth, line)
	case stateSubtest:
		return p.readSubtest(depth, line)
	case stateYAML:
		return "", false, p.readYAML(f, line)
	default:
		return "", false, newError(ErrInternal, line)
	}
}

func (p *Parser) readPlan(f *frame, rest string) error {
	if f.readPlan {
		return newError(ErrDuplicatedPlan, "")
	}

	var plan Plan

	countText, reason, hasReason := strings.Cut(rest, "#")

	count, err := parseNumber(strings.TrimSpace(countText))
	if err != nil {
		return err
	}

	plan.Count = count
	if hasReason {
		plan.Reason, plan.HasReason = strings.TrimSpace(reason), true
	}

	f.statements = append(f.statements, PlanStatement(plan))

	// A plan after body lines ends the document.
	if f.inBody {
		f.done = true
	} else {
		f.inBody = true
	}

	f.readPlan = true

	return nil
}

func (p *Parser) readBody(depth int, line string) (string, bool, error) {
	f := p.frames[depth]

	if !f.readPlan {
		f.inBody = true
	}

	switch {
	case strings.HasPrefix(line, subtestIndent) || hasPrefixFoldASCII(line, subtestHeader):
		return p.openSubtest(depth, line)
	case strings.HasPrefix(line, "ok"):
		return "", false, p.readTestPoint(f, true, line[len("ok"):])
	case strings.HasPrefix(line, "not ok"):
		return "", false, p.readTestPoint(f, false, line[len("not ok"):])
	case line == yamlOpen:
		return "", false, newError(ErrInvalidYAML, "")
	case line == yamlClose:
		return "", false, newError(ErrInvalidYAMLClose, "")
	case hasPrefixFoldASCII(line, bailOutPrefix):
		return "", false, bailOut(line)
	case strings.HasPrefix(line, "#"):
		// A comment detaches the previous result from any diagnostic block.
		f.statements = append(f.statements, CommentStatement(strings.TrimSpace(line[1:])))
		f.state = stateBody
		return "", false, nil
	case strings.TrimSpace(line) == "" || strings.HasPrefix(line, pragmaPrefix):
		return "", false, nil
	default:
		return "", false, newError(ErrUnknownLine, line)
	}
}

func (p *Parser) readTestPoint(f *frame, result bool, text string) error {
	tp, err := parseTestPoint(result, strings.TrimSpace(text))
	if err != nil {
		return err
	}

	f.statements = append(f.statements, TestPointStatement(tp))
	f.state = stateAfterTest

	return nil
}

func (p *Parser) openSubtest(depth int, line string) (string, bool, error) {
	if p.opts.MaxDepth > 0 && depth >= p.opts.MaxDepth {
		return "", false, newError(ErrTooDeep, line)
	}

	child := &frame{}

	if strings.HasPrefix(line, "#") {
		if _, name, ok := strings.Cut(line, ":"); ok {
			child.name, child.hasName = strings.TrimSpace(name), true
		}
	}

	p.frames = append(p.frames[:depth+1], child)
	p.frames[depth].state = stateSubtest

	body, ok := strings.CutPrefix(line, subtestIndent)
	if !ok {
		return "", false, nil
	}

	// The line already belongs to the subtest body.
	return body, true, nil
}

func (p *Parser) readSubtest(depth int, line string) (string, bool, error) {
	if hasPrefixFoldASCII(line, bailOutPrefix) {
		return "", false, bailOut(line)
	}

	result, text, closing := cutResult(line)
	if closing {
		return "", false, p.closeSubtest(depth, result, text)
	}

	body, ok := strings.CutPrefix(line, subtestIndent)
	if !ok {
		return "", false, &ParseError{Kind: ErrMisindent, Value: line, Expected: len(subtestIndent)}
	}

	if version, ok := strings.CutPrefix(body, versionPrefix); ok {
		if v := strings.TrimSpace(version); v != supportedVer {
			return "", false, newError(ErrInvalidVersion, v)
		}

		return "", false, nil
	}

	if p.frames[depth+1].done {
		return "", false, nil
	}

	return body, true, nil
}

func (p *Parser) closeSubtest(depth int, result bool, text string) error {
	f := p.frames[depth]
	child := p.frames[depth+1]

	if !child.complete() {
		return newError(ErrUnexpectedEOD, "")
	}

	ending, err := parseTestPoint(result, strings.TrimSpace(text))
	if err != nil {
		return err
	}

	f.statements = append(f.statements, SubtestStatement(Subtest{
		Name:       child.name,
		HasName:    child.hasName,
		Statements: child.statements,
		Ending:     ending,
	}))
	f.state = stateAfterTest

	clear(p.frames[depth+1:])
	p.frames = p.frames[:depth+1]

	return nil
}

func (p *Parser) readYAML(f *frame, line string) error {
	if line == yamlClose {
		if len(f.statements) == 0 {
			return newError(ErrInternal, line)
		}

		tp, ok := f.statements[len(f.statements)-1].result()
		if !ok {
			return newError(ErrInternal, line)
		}

		tp.YAML = f.yaml
		f.yaml = nil
		f.state = stateBody

		return nil
	}

	content, ok := strings.CutPrefix(line, yamlIndent)
	if !ok {
		return &ParseError{Kind: ErrMisindent, Value: line, Expected: len(yamlIndent)}
	}

	f.yaml = append(f.yaml, content)

	return nil
}

// cutResult splits an unindented "ok" / "not ok" line into its result and the
// remaining text.
func cutResult(line string) (bool, string, bool) {
	if rest, ok := strings.CutPrefix(line, "ok"); ok {
		return true, rest, true
	}

	if rest, ok := strings.CutPrefix(line, "not ok"); ok {
		return false, rest, true
	}

	return false, "", false
}

func bailOut(line string) error {
	return newError(ErrBailed, strings.TrimSpace(line[len(bailOutPrefix):]))
}

func applyParseOptions(opts []ParseOption) ParseOptions {
	options := ParseOptions{MaxDepth: defaultMaxDepth}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		opt(&options)
	}

	return options
}

// lineIter yields the lines of a document without copying. Lines end at '\n';
// a trailing '\r' is dropped and a trailing newline does not start a new line.
type lineIter struct {
	rest string
}

func newLineIter(input string) *lineIter {
	return &lineIter{rest: input}
}

func (it *lineIter) next() (string, bool) {
	if it.rest == "" {
		return "", false
	}

	line, rest, found := strings.Cut(it.rest, "\n")
	if found {
		it.rest = rest
	} else {
		it.rest = ""
	}

	return strings.TrimSuffix(line, "\r"), true
}
