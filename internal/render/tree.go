package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/calvinalkan/tap14/pkg/tap"
)

// Color is an ANSI SGR sequence.
type Color string

// Colors used by the tree renderer and the check command.
const (
	ColorNone   Color = ""
	ColorGreen  Color = "\x1b[32m"
	ColorRed    Color = "\x1b[31m"
	ColorYellow Color = "\x1b[33m"
	ColorDim    Color = "\x1b[2m"

	colorReset = "\x1b[0m"
)

// Paint wraps s in c. ColorNone returns s unchanged.
func Paint(c Color, s string) string {
	if c == ColorNone || s == "" {
		return s
	}

	return string(c) + s + colorReset
}

// ResultColor returns the color for a test point outcome: yellow for
// directives, then green or red by result.
func ResultColor(tp *tap.TestPoint) Color {
	switch {
	case tp.Directive != nil:
		return ColorYellow
	case tp.Result:
		return ColorGreen
	default:
		return ColorRed
	}
}

const (
	branchMid  = "├─ "
	branchLast = "└─ "
	contMid    = "│  "
	contLast   = "   "
	yamlIndent = "    "
	ellipsis   = "…"
)

// Tree writes stmts as an indented tree. A subtest lists its statements as
// children, followed by the result line that closed it.
//
// Example output:
//
//	├─ plan 1..2
//	├─ ok 1 - connects
//	└─ subtest reconnect
//	   ├─ plan 1..1
//	   ├─ not ok 1 - retry [todo: backoff]
//	   │      attempts: 3
//	   └─ ok 2 - reconnect
func Tree(w io.Writer, stmts []tap.Statement, opts Options) error {
	tw := &treeWriter{w: w, opts: opts}

	type level struct {
		prefix string
		stmts  []tap.Statement
		ending *tap.TestPoint
		next   int
	}

	stack := []*level{{stmts: stmts}}

	for len(stack) > 0 && tw.err == nil {
		top := stack[len(stack)-1]

		total := len(top.stmts)
		if top.ending != nil {
			total++
		}

		if top.next >= total {
			stack = stack[:len(stack)-1]
			continue
		}

		i := top.next
		top.next++

		lead, cont := top.prefix+branchMid, top.prefix+contMid
		if i == total-1 {
			lead, cont = top.prefix+branchLast, top.prefix+contLast
		}

		if i == len(top.stmts) {
			tw.testPoint(lead, cont, top.ending)
			continue
		}

		s := &top.stmts[i]

		switch s.Kind {
		case tap.StatementPlan:
			tw.line(lead, "plan", planText(&s.Plan), ColorNone)
		case tap.StatementTestPoint:
			tw.testPoint(lead, cont, &s.TestPoint)
		case tap.StatementComment:
			tw.line(lead, "#", commentText(s.Comment), ColorDim)
		case tap.StatementSubtest:
			name := ""
			if s.Subtest.HasName && s.Subtest.Name != "" {
				name = " " + s.Subtest.Name
			}

			tw.line(lead, "subtest", name, ColorNone)
			stack = append(stack, &level{prefix: cont, stmts: s.Subtest.Statements, ending: &s.Subtest.Ending})
		}
	}

	return tw.err
}

type treeWriter struct {
	w    io.Writer
	opts Options
	err  error
}

func (tw *treeWriter) testPoint(lead, cont string, tp *tap.TestPoint) {
	head := "ok"
	if !tp.Result {
		head = "not ok"
	}

	tw.line(lead, head, testPointText(tp), ResultColor(tp))

	for _, y := range tp.YAML {
		tw.line(cont+yamlIndent, y, "", ColorDim)
	}
}

// line writes prefix+head+rest, truncated to the configured width, with head
// painted in c.
func (tw *treeWriter) line(prefix, head, rest string, c Color) {
	if tw.err != nil {
		return
	}

	plain := prefix + head + rest
	if tw.opts.Width > 0 {
		plain = runewidth.Truncate(plain, tw.opts.Width, ellipsis)
	}

	out := plain

	if tw.opts.Color && c != ColorNone && strings.HasPrefix(plain, prefix) {
		body := plain[len(prefix):]
		if painted, ok := strings.CutPrefix(body, head); ok {
			out = prefix + Paint(c, head) + painted
		} else {
			out = prefix + Paint(c, body)
		}
	}

	_, tw.err = fmt.Fprintln(tw.w, out)
}

func planText(p *tap.Plan) string {
	text := " 1.." + strconv.FormatUint(p.Count, 10)
	if p.HasReason {
		text += " # " + p.Reason
	}

	return text
}

func commentText(c string) string {
	if c == "" {
		return ""
	}

	return " " + c
}

func testPointText(tp *tap.TestPoint) string {
	var b strings.Builder

	if tp.HasNumber {
		b.WriteString(" ")
		b.WriteString(strconv.FormatUint(tp.Number, 10))
	}

	if tp.Desc != "" {
		b.WriteString(" - ")
		b.WriteString(tp.Desc)
	}

	if d := tp.Directive; d != nil {
		b.WriteString(" [")
		b.WriteString(d.Kind.String())

		if d.Reason != "" {
			b.WriteString(": ")
			b.WriteString(d.Reason)
		}

		b.WriteString("]")
	}

	return b.String()
}
