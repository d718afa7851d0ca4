package compiler

import (
	"testing"

	"github.com/clauseforge/wam/collab"
	"github.com/clauseforge/wam/instr"
	"github.com/clauseforge/wam/journal"
	"github.com/clauseforge/wam/predicate"
)

// fakePreprocessor turns every term into a Fact carrying it verbatim
// and never queues auxiliary predicates, the simplest conforming
// collab.Preprocessor.
type fakePreprocessor struct{}

func (fakePreprocessor) TryTermToTopLevel(t collab.Term) (collab.TopLevel, error) {
	return collab.Fact{Head: t}, nil
}

func (fakePreprocessor) ParseQueue() ([]collab.TopLevel, error) { return nil, nil }

// fakeGenerator builds a static TryMeElse/RetryMeElse/TrustMe chain,
// one instr.Opaque line per clause, and reports a Skeleton whose
// ClauseStart values are relative to 0 (the position Compile shifts by
// once the block is appended).
type fakeGenerator struct {
	settings collab.Settings
	sk       predicate.Skeleton
}

func (g *fakeGenerator) CompilePredicate(clauses []collab.TopLevel) (instr.Code, error) {
	var code instr.Code
	for i, c := range clauses {
		pos := len(code)
		switch {
		case len(clauses) == 1:
			code = append(code, instr.TryMeElse{Offset: 0})
		case i == 0:
			code = append(code, instr.TryMeElse{Offset: 2})
		case i == len(clauses)-1:
			code = append(code, instr.TrustMe{})
		default:
			code = append(code, instr.RetryMeElse{Offset: 2})
		}
		code = append(code, instr.Opaque{Tag: c.(collab.Fact).Head.(string)})
		g.sk.Clauses = append(g.sk.Clauses, predicate.ClauseIndexInfo{OptArgIndexKey: predicate.NoIndex, ClauseStart: pos})
	}
	return code, nil
}

func (g *fakeGenerator) CompileFact(fact collab.TopLevel) (instr.Code, error) {
	return instr.Code{instr.Opaque{Tag: fact.(collab.Fact).Head.(string)}}, nil
}

func (g *fakeGenerator) CompileRule(rule collab.TopLevel) (instr.Code, error) {
	return instr.Code{instr.Opaque{Tag: "rule"}}, nil
}

func (g *fakeGenerator) Skeleton() predicate.Skeleton { return g.sk }
func (g *fakeGenerator) JmpByLocs() []int             { return nil }

func TestCompileBuildsStaticChainAndRegistersSkeleton(t *testing.T) {
	prog := predicate.New()
	j := journal.Open()
	defer j.Close()

	key := predicate.Key{Name: "p", Arity: 1}
	terms := []collab.Term{"a", "b", "c"}

	entry, err := Compile(prog, j, predicate.TargetUser{}, key, terms, fakePreprocessor{}, func(s collab.Settings) collab.CodeGenerator {
		return &fakeGenerator{settings: s}
	}, collab.Settings{})
	if err != nil {
		t.Fatalf("Compile returned %v", err)
	}
	if entry.Kind != predicate.Index {
		t.Fatalf("entry kind = %v, want Index", entry.Kind)
	}

	s, ok := prog.LookupSkeleton(predicate.TargetUser{}, key)
	if !ok || s.Len() != 3 {
		t.Fatalf("skeleton registered = %v, len %d, want 3", ok, s.Len())
	}

	order := walkChain(prog.Code, entry.Pos)
	if len(order) != 3 {
		t.Fatalf("chain walk visited %d positions, want 3: %v", len(order), order)
	}
	for i, want := range []int{s.Clauses[0].ClauseStart, s.Clauses[1].ClauseStart, s.Clauses[2].ClauseStart} {
		if order[i] != want {
			t.Fatalf("order[%d] = %d, want %d", i, order[i], want)
		}
	}
	if entry.Pos != s.Clauses[0].ClauseStart {
		t.Fatalf("entry.Pos = %d, want %d (first clause)", entry.Pos, s.Clauses[0].ClauseStart)
	}
}

func TestCompileRecompileReplacesSkeletonAndRestoresOnReplay(t *testing.T) {
	prog := predicate.New()
	key := predicate.Key{Name: "p", Arity: 1}
	newGen := func(s collab.Settings) collab.CodeGenerator { return &fakeGenerator{settings: s} }

	setup := journal.Open()
	firstEntry, err := Compile(prog, setup, predicate.TargetUser{}, key, []collab.Term{"a"}, fakePreprocessor{}, newGen, collab.Settings{})
	if err != nil {
		t.Fatalf("first Compile returned %v", err)
	}
	setup.Discard()

	s, _ := prog.LookupSkeleton(predicate.TargetUser{}, key)
	if s.Len() != 1 {
		t.Fatalf("first compile registered %d clauses, want 1", s.Len())
	}

	j := journal.Open()
	defer j.Close()

	secondEntry, err := Compile(prog, j, predicate.TargetUser{}, key, []collab.Term{"x", "y"}, fakePreprocessor{}, newGen, collab.Settings{})
	if err != nil {
		t.Fatalf("second Compile returned %v", err)
	}
	if secondEntry.Pos == firstEntry.Pos {
		t.Fatal("recompile should register a fresh entry position (append-only code)")
	}
	if s.Len() != 2 {
		t.Fatalf("after recompile skeleton has %d clauses, want 2", s.Len())
	}

	j.Replay(prog)
	if s.Len() != 1 {
		t.Fatalf("after replay skeleton has %d clauses, want 1 (pre-recompile state)", s.Len())
	}
	entry, _ := prog.EntryPtr(predicate.TargetUser{}, key)
	if entry.Pos != firstEntry.Pos {
		t.Fatalf("after replay entry.Pos = %d, want %d", entry.Pos, firstEntry.Pos)
	}
}
