package tap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/tap14/pkg/tap"
)

func Test_Summarize_CountsOutcomes_When_SubtestsNested(t *testing.T) {
	t.Parallel()

	doc := lines(
		"TAP version 14",
		"1..4",
		"ok 1 - pass",
		"not ok 2 - fail",
		"# halfway",
		"ok 3 - later # TODO not yet",
		"# Subtest: outer",
		"    1..2",
		"    ok 1 # skip no network",
		"    # Subtest: inner",
		"        1..1",
		"        not ok 1 - deep failure",
		"        # deep",
		"    not ok 2 - inner",
		"ok 4 - outer",
	)

	stmts, err := tap.Parse(doc)
	require.NoError(t, err)

	got := tap.Summarize(stmts)

	assert.Equal(t, tap.Summary{
		Passed:   2,
		Failed:   3,
		Skipped:  1,
		Todo:     1,
		Subtests: 2,
		Comments: 2,
	}, got)
	assert.Equal(t, 7, got.Total())
	assert.False(t, got.OK())
}

func Test_Summarize_ReportsOK_When_OnlyDirectivesFail(t *testing.T) {
	t.Parallel()

	stmts, err := tap.Parse(lines(
		"TAP version 14",
		"not ok 1 - flaky # TODO fix later",
		"not ok 2 - windows # SKIP",
		"ok 3",
		"1..3",
	))
	require.NoError(t, err)

	got := tap.Summarize(stmts)

	assert.True(t, got.OK())
	assert.Equal(t, 3, got.Total())
	assert.Equal(t, 1, got.Passed)
}

func Test_Summarize_ReturnsZero_When_NoStatements(t *testing.T) {
	t.Parallel()

	got := tap.Summarize(nil)

	assert.Zero(t, got)
	assert.True(t, got.OK())
}
