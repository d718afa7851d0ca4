package journal

import (
	"testing"

	"github.com/clauseforge/wam/instr"
	"github.com/clauseforge/wam/predicate"
)

func TestReplayUndoesTruncateAndReplacedLine(t *testing.T) {
	p := predicate.New()
	p.Code = append(p.Code, instr.TryMeElse{Offset: 0})

	j := Open()
	defer j.Close()

	oldLen := len(p.Code)
	j.Push(TruncateCode{OldLen: oldLen})
	p.Code = append(p.Code, instr.TrustMe{})

	j.Push(ReplacedLine{Pos: 0, Old: p.Code[0]})
	p.Code[0] = instr.TryMeElse{Offset: 2}

	if len(p.Code) != 2 {
		t.Fatalf("setup: len(Code) = %d, want 2", len(p.Code))
	}

	j.Replay(p)

	if len(p.Code) != oldLen {
		t.Fatalf("after Replay: len(Code) = %d, want %d", len(p.Code), oldLen)
	}
	if got, want := p.Code[0], (instr.TryMeElse{Offset: 0}); got != want {
		t.Fatalf("after Replay: Code[0] = %+v, want %+v", got, want)
	}
}

func TestReplayUndoesSkeletonClauseRemoval(t *testing.T) {
	p := predicate.New()
	key := predicate.Key{Name: "p", Arity: 1}
	s := p.Skeleton(predicate.TargetUser{}, key, false)
	s.Clauses = []predicate.ClauseIndexInfo{
		{ClauseStart: 1}, {ClauseStart: 2}, {ClauseStart: 3},
	}

	j := Open()
	defer j.Close()

	removed := s.Clauses[1]
	j.Push(RemovedSkeletonClause{
		SkeletonKey: SkeletonKey{Target: predicate.TargetUser{}, Key: key},
		Pos:         1,
		Clause:      removed,
	})
	s.Clauses = append(s.Clauses[:1], s.Clauses[2:]...)

	if s.Len() != 2 {
		t.Fatalf("setup: Len() = %d, want 2", s.Len())
	}

	j.Replay(p)

	if s.Len() != 3 {
		t.Fatalf("after Replay: Len() = %d, want 3", s.Len())
	}
	if s.Clauses[1] != removed {
		t.Fatalf("after Replay: Clauses[1] = %+v, want %+v", s.Clauses[1], removed)
	}
}
