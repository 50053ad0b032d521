// Package render turns parsed TAP statements into tagged records and writes
// them as JSON, YAML or an indented tree.
package render

import (
	"github.com/calvinalkan/tap14/pkg/tap"
)

// Record types, one per statement variant.
const (
	TypePlan      = "plan"
	TypeTestPoint = "test_point"
	TypeComment   = "comment"
	TypeSubtest   = "subtest"
)

// Record is the serialized form of a statement. Type selects which of the
// other fields are set.
type Record struct {
	Type string `json:"type" yaml:"type"`

	// plan
	Count  *uint64 `json:"count,omitempty"  yaml:"count,omitempty"`
	Reason *string `json:"reason,omitempty" yaml:"reason,omitempty"`

	// test_point, also used for a subtest's ending
	Result    *bool      `json:"result,omitempty"    yaml:"result,omitempty"`
	Number    *uint64    `json:"number,omitempty"    yaml:"number,omitempty"`
	Desc      string     `json:"desc,omitempty"      yaml:"desc,omitempty"`
	Directive *Directive `json:"directive,omitempty" yaml:"directive,omitempty"`
	YAML      []string   `json:"yaml,omitempty"      yaml:"yaml,omitempty"`

	// comment
	Text *string `json:"text,omitempty" yaml:"text,omitempty"`

	// subtest
	Name       *string  `json:"name,omitempty"       yaml:"name,omitempty"`
	Statements []Record `json:"statements,omitempty" yaml:"statements,omitempty"`
	Ending     *Record  `json:"ending,omitempty"     yaml:"ending,omitempty"`
}

// Directive is the serialized form of a skip/todo directive.
type Directive struct {
	Kind   string `json:"kind"             yaml:"kind"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Records converts stmts into records, descending into subtests.
func Records(stmts []tap.Statement) []Record {
	out := make([]Record, 0, len(stmts))

	for i := range stmts {
		out = append(out, record(&stmts[i]))
	}

	return out
}

func record(s *tap.Statement) Record {
	switch s.Kind {
	case tap.StatementPlan:
		r := Record{Type: TypePlan, Count: &s.Plan.Count}
		if s.Plan.HasReason {
			r.Reason = &s.Plan.Reason
		}

		return r
	case tap.StatementTestPoint:
		return testPoint(&s.TestPoint)
	case tap.StatementComment:
		return Record{Type: TypeComment, Text: &s.Comment}
	case tap.StatementSubtest:
		ending := testPoint(&s.Subtest.Ending)

		r := Record{
			Type:       TypeSubtest,
			Statements: Records(s.Subtest.Statements),
			Ending:     &ending,
		}
		if s.Subtest.HasName {
			r.Name = &s.Subtest.Name
		}

		return r
	default:
		return Record{Type: s.Kind.String()}
	}
}

func testPoint(tp *tap.TestPoint) Record {
	r := Record{
		Type:   TypeTestPoint,
		Result: &tp.Result,
		Desc:   tp.Desc,
		YAML:   tp.YAML,
	}

	if tp.HasNumber {
		r.Number = &tp.Number
	}

	if tp.Directive != nil {
		r.Directive = &Directive{Kind: tp.Directive.Kind.String(), Reason: tp.Directive.Reason}
	}

	return r
}
