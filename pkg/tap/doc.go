// Package tap parses documents written in version 14 of the Test Anything
// Protocol.
//
// The accepted grammar is line oriented:
//
//	TAP version 14
//	1..3 # optional plan reason
//	ok 1 - description
//	not ok 2 - failed # TODO not implemented yet
//	  ---
//	  message: verbatim diagnostic block
//	  ...
//	# Subtest: nested
//	    ok 1 - inside the subtest
//	    1..1
//	ok 3 - nested
//
// The version line is mandatory and must declare version 14. A plan is
// mandatory in every document and subtest, either before the first test point
// or as the last line of the body; lines after a trailing plan are ignored.
// Subtests are indented by four spaces relative to their parent and are closed
// by an unindented test point, which becomes the subtest's [Subtest.Ending].
// Diagnostic blocks are captured verbatim and never interpreted.
//
// Parsing is whole-document: [Parse] returns every statement or the first
// error. A [Parser] additionally exposes the statements accumulated before a
// failure through [Parser.Statements] for diagnostics.
//
// Text fields of the returned statements are substrings of the input and
// share its memory.
package tap
