package tap

// StatementKind distinguishes the variants of a [Statement].
type StatementKind uint8

// StatementKind values enumerate the statements a document body can contain.
const (
	StatementPlan StatementKind = iota
	StatementTestPoint
	StatementComment
	StatementSubtest
)

// String returns the lowercase name of the kind.
func (k StatementKind) String() string {
	switch k {
	case StatementPlan:
		return "plan"
	case StatementTestPoint:
		return "test_point"
	case StatementComment:
		return "comment"
	case StatementSubtest:
		return "subtest"
	default:
		return "unknown"
	}
}

// DirectiveKind is the kind of a test point directive.
type DirectiveKind uint8

// DirectiveKind values enumerate the directives TAP 14 defines.
const (
	DirectiveSkip DirectiveKind = iota
	DirectiveTodo
)

// String returns the lowercase name of the kind.
func (k DirectiveKind) String() string {
	switch k {
	case DirectiveSkip:
		return "skip"
	case DirectiveTodo:
		return "todo"
	default:
		return "unknown"
	}
}

// Plan declares the number of test points a document expects.
type Plan struct {
	Count     uint64 // Count is the planned number of test points.
	Reason    string // Reason is the text after '#', trimmed.
	HasReason bool   // HasReason reports whether the plan line carried a '#'.
}

// Directive annotates a test point as skipped or not yet implemented.
type Directive struct {
	Kind   DirectiveKind // Kind is skip or todo.
	Reason string        // Reason is the trimmed text after the kind; empty when absent.
}

// TestPoint is a single ok / not ok result line.
type TestPoint struct {
	Result    bool       // Result is true for "ok" and false for "not ok".
	Number    uint64     // Number is the sequence number when HasNumber is set.
	HasNumber bool       // HasNumber reports whether the line carried a number.
	Desc      string     // Desc is the description; empty when absent.
	Directive *Directive // Directive is nil when the line has none.
	YAML      []string   // YAML holds the diagnostic block lines without their indent.
}

// Subtest is a nested document folded into its parent.
type Subtest struct {
	Name       string      // Name comes from a "# Subtest: name" header.
	HasName    bool        // HasName reports whether the header carried a name.
	Statements []Statement // Statements is the body of the nested document.
	Ending     TestPoint   // Ending is the test point that closed the subtest.
}

// Statement is one parsed body line (or folded subtest). Exactly one payload
// field is meaningful, selected by Kind.
type Statement struct {
	Kind      StatementKind // Kind selects the populated payload.
	Plan      Plan          // Plan is set when Kind == StatementPlan.
	TestPoint TestPoint     // TestPoint is set when Kind == StatementTestPoint.
	Comment   string        // Comment is set when Kind == StatementComment.
	Subtest   Subtest       // Subtest is set when Kind == StatementSubtest.
}

// PlanStatement wraps a plan in a Statement.
func PlanStatement(p Plan) Statement {
	return Statement{Kind: StatementPlan, Plan: p}
}

// TestPointStatement wraps a test point in a Statement.
func TestPointStatement(tp TestPoint) Statement {
	return Statement{Kind: StatementTestPoint, TestPoint: tp}
}

// CommentStatement wraps comment text in a Statement.
func CommentStatement(text string) Statement {
	return Statement{Kind: StatementComment, Comment: text}
}

// SubtestStatement wraps a subtest in a Statement.
func SubtestStatement(st Subtest) Statement {
	return Statement{Kind: StatementSubtest, Subtest: st}
}

// result returns the record a diagnostic block attaches to: the test point
// itself or a subtest's ending. Any other kind has no such record.
func (s *Statement) result() (*TestPoint, bool) {
	switch s.Kind {
	case StatementTestPoint:
		return &s.TestPoint, true
	case StatementSubtest:
		return &s.Subtest.Ending, true
	default:
		return nil, false
	}
}
