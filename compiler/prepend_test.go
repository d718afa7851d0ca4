package compiler

import (
	"testing"

	"github.com/clauseforge/wam/choice"
	"github.com/clauseforge/wam/instr"
	"github.com/clauseforge/wam/journal"
	"github.com/clauseforge/wam/predicate"
)

// Mirrors spec.md S3: asserta(q(a)), assertz(q(b)), asserta(q(c))
// against an empty q/1 should yield chain order c, a, b and margin 2.
func TestPrependThenAppendScenarioS3(t *testing.T) {
	prog := predicate.New()
	key := predicate.Key{Name: "q", Arity: 1}
	sk := journal.SkeletonKey{Target: predicate.TargetUser{}, Key: key}
	s := prog.Skeleton(predicate.TargetUser{}, key, false)
	j := journal.Open()
	defer j.Close()

	entryA, _ := PrependCompiledClause(prog, j, sk, s, instr.Code{instr.Opaque{Tag: "a"}}, predicate.NoIndex, nil, 0)
	prog.SetEntryPtr(predicate.TargetUser{}, key, entryA)

	if _, changed := AppendCompiledClause(prog, j, sk, s, instr.Code{instr.Opaque{Tag: "b"}}, predicate.NoIndex, nil, 0); changed {
		t.Fatal("appending b must not move the entry point")
	}

	entryC, changed := PrependCompiledClause(prog, j, sk, s, instr.Code{instr.Opaque{Tag: "c"}}, predicate.NoIndex, nil, 0)
	if !changed {
		t.Fatal("prepending c in front of a must move the entry point")
	}
	prog.SetEntryPtr(predicate.TargetUser{}, key, entryC)

	if s.ClauseAssertMargin != 2 {
		t.Fatalf("ClauseAssertMargin = %d, want 2", s.ClauseAssertMargin)
	}
	if s.Len() != 3 {
		t.Fatalf("skeleton has %d clauses, want 3", s.Len())
	}

	pos := entryC.Pos
	var order []int
	for {
		order = append(order, pos)
		next, ok := choice.Next(prog.Code, pos)
		if !ok {
			break
		}
		pos = next
	}
	if len(order) != 3 {
		t.Fatalf("chain walk visited %d positions, want 3: %v", len(order), order)
	}
	// s.Clauses is stored front-to-back in definition order: c, a, b.
	for i, want := range []int{s.Clauses[0].ClauseStart, s.Clauses[1].ClauseStart, s.Clauses[2].ClauseStart} {
		if order[i] != want {
			t.Fatalf("order[%d] = %d, want %d (skeleton order c,a,b)", i, order[i], want)
		}
	}
}
