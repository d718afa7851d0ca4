package journal

import "github.com/clauseforge/wam/predicate"

// Journal is the open window of a single compile/assert/retract
// session (spec.md §5). Every edit pushes the record of its inverse
// before mutating; Replay pops records strict LIFO and applies each
// one, restoring the byte-wise pre-session state.
type Journal struct {
	records []Record
	trace   *trace
}

// Open returns a fresh, empty journal window.
func Open() *Journal {
	return &Journal{trace: newTrace()}
}

// Push appends rec. Per spec.md Invariant 5, callers must push a
// record before (or at the latest, atomically with) performing the
// mutation it inverts.
func (j *Journal) Push(rec Record) {
	j.records = append(j.records, rec)
	j.trace.record(rec.kind())
	logger.Printf("journal: pushed %s (%d total)", rec.kind(), len(j.records))
}

// Len reports the number of records pushed so far.
func (j *Journal) Len() int { return len(j.records) }

// Replay pops every record in strict LIFO order and applies it to p,
// restoring the state p held when this Journal was opened (spec.md
// §4.1's Contract, §8 Testable Property 3).
func (j *Journal) Replay(p *predicate.Program) {
	for i := len(j.records) - 1; i >= 0; i-- {
		j.records[i].apply(p)
	}
	j.records = nil
}

// Commit keeps the journal's records (e.g. for a later `abolish` or for
// audit) without replaying them; the session's edits stand.
func (j *Journal) Commit() {}

// Discard throws the journal away without replaying it. It exists to
// make explicit, at call sites, the decision that this window's edits
// will never be rolled back.
func (j *Journal) Discard() {
	if j.trace != nil {
		j.trace.close()
	}
}

// Close releases the journal's binary trace arena. Safe to call after
// Replay or Commit.
func (j *Journal) Close() error {
	if j.trace == nil {
		return nil
	}
	return j.trace.close()
}

// TraceLen reports how many records have been mirrored into the
// binary debug trace so far (for cmd/clausedump -journal).
func (j *Journal) TraceLen() uint64 {
	return j.trace.Len()
}
