// Package evaluation keeps a submission's rubric, self evaluations and grader
// evaluations in a per-session cache that stays consistent with the database.
//
// A Session wraps one database transaction. The first time a submission is
// used in a session its rubric and existing evaluations are read into a Cache:
// one slot per rubric sequence, each slot pointing at the session's copy of
// the self and grader evaluation for that item. All writes go through the
// session's operations, which update the backing rows and the slot together
// and touch the submission. The cache is dropped when the session ends.
//
// Sessions are not safe for concurrent use.
package evaluation
