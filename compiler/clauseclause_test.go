package compiler

import (
	"testing"

	"github.com/clauseforge/wam/instr"
	"github.com/clauseforge/wam/journal"
	"github.com/clauseforge/wam/predicate"
)

// Mirrors spec.md S4's setup and §4.9: asserting a dynamic clause also
// appends its $clause(Head, Body) fact to the shared mirror, and
// retracting the source clause stamps death on the mirror fact without
// removing it.
func TestMirrorAssertAndRetract(t *testing.T) {
	prog := predicate.New()
	key := predicate.Key{Name: "d", Arity: 1}
	sk := journal.SkeletonKey{Target: predicate.TargetUser{}, Key: key}
	s := prog.Skeleton(predicate.TargetUser{}, key, true)
	setup := journal.Open()

	entry, _ := AppendCompiledClause(prog, setup, sk, s, instr.Code{instr.Opaque{Tag: "d1-body"}}, predicate.NoIndex, nil, 5)
	prog.SetEntryPtr(predicate.TargetUser{}, key, entry)

	MirrorAssert(prog, setup, sk, s, 0, instr.Code{instr.Opaque{Tag: "$clause(d(1),true)"}}, 5)
	setup.Discard()

	j := journal.Open()
	defer j.Close()

	if len(s.ClauseClauseLocs) != 1 {
		t.Fatalf("ClauseClauseLocs has %d entries, want 1", len(s.ClauseClauseLocs))
	}
	if prog.ClauseClause.Len() != 1 {
		t.Fatalf("mirror skeleton has %d clauses, want 1", prog.ClauseClause.Len())
	}
	mirrorClause := prog.ClauseClause.Clauses[s.ClauseClauseLocs[0]]
	mirrorLine := prog.Code[mirrorClause.ClauseStart].(instr.DynamicElse)
	if !mirrorLine.Death.IsInf() {
		t.Fatalf("fresh mirror entry death = %v, want Inf", mirrorLine.Death)
	}

	MirrorRetract(prog, j, s, 0, 7)
	RetractDynamicClause(prog, j, sk, s, 0, 7)

	if s.Len() != 0 || len(s.ClauseClauseLocs) != 0 {
		t.Fatalf("after retract source skeleton = %d clauses, %d locs, want 0, 0", s.Len(), len(s.ClauseClauseLocs))
	}
	if prog.ClauseClause.Len() != 1 {
		t.Fatalf("mirror skeleton has %d clauses, want 1 (dead entries are never spliced out)", prog.ClauseClause.Len())
	}
	mirrorLine = prog.Code[mirrorClause.ClauseStart].(instr.DynamicElse)
	if mirrorLine.Death != instr.Death(7) {
		t.Fatalf("mirror entry death = %v, want 7", mirrorLine.Death)
	}

	j.Replay(prog)
	if s.Len() != 1 || len(s.ClauseClauseLocs) != 1 {
		t.Fatalf("after replay source skeleton = %d clauses, %d locs, want 1, 1", s.Len(), len(s.ClauseClauseLocs))
	}
	mirrorLine = prog.Code[mirrorClause.ClauseStart].(instr.DynamicElse)
	if !mirrorLine.Death.IsInf() {
		t.Fatalf("after replay mirror entry death = %v, want Inf", mirrorLine.Death)
	}
	if prog.ClauseClause.Len() != 1 {
		t.Fatalf("after replay mirror skeleton has %d clauses, want 1 (assert was never replayed away)", prog.ClauseClause.Len())
	}
}
