package tap

// Summary counts the outcomes recorded in a statement tree.
type Summary struct {
	Passed   int // Passed counts ok test points without a directive.
	Failed   int // Failed counts not ok test points without a directive.
	Skipped  int // Skipped counts test points with a skip directive.
	Todo     int // Todo counts test points with a todo directive.
	Subtests int // Subtests counts folded subtests at any depth.
	Comments int // Comments counts comment lines at any depth.
}

// Total returns the number of test points counted, subtest endings included.
func (s Summary) Total() int {
	return s.Passed + s.Failed + s.Skipped + s.Todo
}

// OK reports whether no test point failed.
func (s Summary) OK() bool {
	return s.Failed == 0
}

// Summarize walks stmts, descending into subtests, and counts outcomes. A
// subtest's ending is counted like any other test point of its parent.
func Summarize(stmts []Statement) Summary {
	var sum Summary

	pending := [][]Statement{stmts}
	for len(pending) > 0 {
		last := len(pending) - 1
		cur := pending[last]
		pending = pending[:last]

		for i := range cur {
			switch cur[i].Kind {
			case StatementTestPoint:
				sum.count(cur[i].TestPoint)
			case StatementSubtest:
				sum.Subtests++
				sum.count(cur[i].Subtest.Ending)
				pending = append(pending, cur[i].Subtest.Statements)
			case StatementComment:
				sum.Comments++
			case StatementPlan:
			}
		}
	}

	return sum
}

func (s *Summary) count(tp TestPoint) {
	switch {
	case tp.Directive != nil && tp.Directive.Kind == DirectiveSkip:
		s.Skipped++
	case tp.Directive != nil && tp.Directive.Kind == DirectiveTodo:
		s.Todo++
	case tp.Result:
		s.Passed++
	default:
		s.Failed++
	}
}
