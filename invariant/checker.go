package invariant

import (
	"fmt"

	"github.com/clauseforge/wam/instr"
	"github.com/clauseforge/wam/predicate"
)

// Kind names which of spec.md §3's five invariants a Violation broke.
type Kind uint8

const (
	ChainCompleteness Kind = iota
	IndexingSoundness
	MarginDiscipline
	DynamicOrdering
	RevJmpByTarget
)

func (k Kind) String() string {
	switch k {
	case ChainCompleteness:
		return "chain-completeness"
	case IndexingSoundness:
		return "indexing-soundness"
	case MarginDiscipline:
		return "margin-discipline"
	case DynamicOrdering:
		return "dynamic-ordering"
	case RevJmpByTarget:
		return "revjmpby-target"
	default:
		return "unknown"
	}
}

// Violation is one broken invariant found by Check.
type Violation struct {
	Kind   Kind
	Target predicate.Target
	Key    predicate.Key
	Detail string
}

func (v Violation) String() string {
	if v.Target == nil {
		return fmt.Sprintf("%s: %s", v.Kind, v.Detail)
	}
	return fmt.Sprintf("%s: %s/%s: %s", v.Kind, v.Target, v.Key, v.Detail)
}

// Check walks every registered skeleton of p and every dynamic choice
// line in its code vector, returning every invariant violation found
// (spec.md §3 Invariants 1-4; §8 Testable Properties 1, 2, 4, 5).
// Invariant 5 (journal mirroring) cannot be checked from the Program
// alone — see journal.Journal's own Replay-based test coverage for it.
func Check(p *predicate.Program) []Violation {
	var out []Violation

	p.ForEachSkeleton(func(t predicate.Target, k predicate.Key, s *predicate.Skeleton, entry predicate.EntryPtr) {
		out = append(out, checkChainCompleteness(p.Code, t, k, s, entry)...)
		out = append(out, checkIndexingSoundness(p.Code, t, k, s)...)
		out = append(out, checkMargin(t, k, s)...)
	})

	out = append(out, checkDynamicOrdering(p.Code)...)

	return out
}

func checkChainCompleteness(code instr.Code, t predicate.Target, k predicate.Key, s *predicate.Skeleton, entry predicate.EntryPtr) []Violation {
	if s.Len() == 0 {
		return nil
	}
	start, ok := EntryChoicePos(code, entry)
	if !ok {
		return []Violation{{Kind: ChainCompleteness, Target: t, Key: k, Detail: "skeleton has clauses but entry pointer is undefined"}}
	}
	visited := Walk(code, start)
	want := make([]int, s.Len())
	for i, c := range s.Clauses {
		want[i] = c.ClauseStart
	}
	if len(visited) != len(want) {
		return []Violation{{Kind: ChainCompleteness, Target: t, Key: k,
			Detail: fmt.Sprintf("chain walk visited %d positions, skeleton has %d clauses", len(visited), len(want))}}
	}
	for i := range want {
		if visited[i] != want[i] {
			return []Violation{{Kind: ChainCompleteness, Target: t, Key: k,
				Detail: fmt.Sprintf("chain order mismatch at clause %d: walked %d, skeleton says %d", i, visited[i], want[i])}}
		}
	}
	return nil
}

func checkIndexingSoundness(code instr.Code, t predicate.Target, k predicate.Key, s *predicate.Skeleton) []Violation {
	var out []Violation
	for i, c := range s.Clauses {
		key := c.OptArgIndexKey
		if key.IsNone() {
			continue
		}
		loc := key.SwitchOnTermLoc
		if loc < 0 || loc >= len(code) {
			out = append(out, Violation{Kind: IndexingSoundness, Target: t, Key: k,
				Detail: fmt.Sprintf("clause %d: switch_on_term_loc %d out of range", i, loc)})
			continue
		}
		blk, ok := code[loc].(*instr.IndexingBlock)
		if !ok {
			out = append(out, Violation{Kind: IndexingSoundness, Target: t, Key: k,
				Detail: fmt.Sprintf("clause %d: switch_on_term_loc %d is not an indexing block", i, loc)})
			continue
		}
		sot := blk.SwitchOnTerm()
		if !reachesClause(code, sot.Var.Pos, c.ClauseStart) && !subTableReaches(code, blk, key, c.ClauseStart) {
			out = append(out, Violation{Kind: IndexingSoundness, Target: t, Key: k,
				Detail: fmt.Sprintf("clause %d: no indexing path from block %d reaches clause start %d", i, loc, c.ClauseStart)})
		}
	}
	return out
}

func subTableReaches(code instr.Code, blk *instr.IndexingBlock, key predicate.OptArgIndexKey, clauseStart int) bool {
	sot := blk.SwitchOnTerm()
	switch key.EntryKind {
	case predicate.EntryConstant:
		if sot.Constants == 0 {
			return false
		}
		tbl := blk.Lines[sot.Constants].(*instr.SwitchOnConstant)
		for _, ck := range tbl.Keys() {
			p, _ := tbl.Get(ck)
			if reachesClause(code, p.Pos, clauseStart) {
				return true
			}
		}
	case predicate.EntryStructure:
		if sot.Structures == 0 {
			return false
		}
		tbl := blk.Lines[sot.Structures].(*instr.SwitchOnStructure)
		for _, sk := range tbl.Keys() {
			p, _ := tbl.Get(sk)
			if reachesClause(code, p.Pos, clauseStart) {
				return true
			}
		}
	}
	return false
}

// reachesClause reports whether an indexing entry's target position
// names clauseStart directly. First-argument indexing entries always
// point straight at a clause's own choice instruction or code start, so
// direct equality is the whole contract; kept as a function because
// callers read more clearly naming the relation than inlining "==".
func reachesClause(code instr.Code, pos, clauseStart int) bool {
	return pos == clauseStart
}

func checkMargin(t predicate.Target, k predicate.Key, s *predicate.Skeleton) []Violation {
	if s.ClauseAssertMargin < 0 || s.ClauseAssertMargin > s.Len() {
		return []Violation{{Kind: MarginDiscipline, Target: t, Key: k,
			Detail: fmt.Sprintf("clause_assert_margin %d out of range [0,%d]", s.ClauseAssertMargin, s.Len())}}
	}
	return nil
}

func checkDynamicOrdering(code instr.Code) []Violation {
	var out []Violation
	for pos, l := range code {
		switch dl := l.(type) {
		case instr.DynamicElse:
			if !dl.Death.IsInf() && uint64(dl.Death) < dl.Birth {
				out = append(out, Violation{Kind: DynamicOrdering,
					Detail: fmt.Sprintf("position %d: death %s precedes birth %d", pos, dl.Death, dl.Birth)})
			}
		case instr.DynamicInternalElse:
			if !dl.Death.IsInf() && uint64(dl.Death) < dl.Birth {
				out = append(out, Violation{Kind: DynamicOrdering,
					Detail: fmt.Sprintf("position %d: death %s precedes birth %d", pos, dl.Death, dl.Birth)})
			}
		}
	}
	return out
}
