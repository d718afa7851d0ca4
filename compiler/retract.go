package compiler

import (
	"github.com/clauseforge/wam/choice"
	"github.com/clauseforge/wam/indexing"
	"github.com/clauseforge/wam/instr"
	"github.com/clauseforge/wam/journal"
	"github.com/clauseforge/wam/predicate"
)

// RetractClause implements retract_clause (spec.md §4.7) for a static
// predicate: the clause at pos is unlinked from the choice chain (the
// code itself is left in place, per §9 "dynamic clauses never get
// compacted" — applied here to static clauses too, since the core never
// deletes or shifts lines) and removed from the skeleton.
//
// disc, when non-nil, is the discriminant the removed clause was
// indexed under; the skeleton alone does not retain enough information
// to recover a constant/structure key once recorded (only its
// SwitchOnTermLoc and EntryKind survive in OptArgIndexKey), so a caller
// retracting an indexed clause must supply it to also clear the
// indexing-table entry.
//
// This implementation covers the leading/sole, leading/followed,
// interior, and trailing cases from spec.md §4.7, including the
// dedicated merge_indexed_subsequences/merge_indices consolidation for
// the case where removing an interior clause joins two previously
// separate indexed sub-sequences (see mergeIndexedSubsequences below
// and DESIGN.md).
func RetractClause(prog *predicate.Program, j *journal.Journal, sk journal.SkeletonKey, s *predicate.Skeleton, pos int, disc *indexing.Discriminant) (newEntry predicate.EntryPtr, changedEntry bool) {
	ptrKind := instr.PtrExternal
	if s.IsDynamic {
		ptrKind = instr.PtrDynamicExternal
	}
	entryKind := predicate.Index
	if s.IsDynamic {
		entryKind = predicate.DynamicIndex
	}
	undefinedKind := predicate.Undefined
	if s.IsDynamic {
		undefinedKind = predicate.DynamicUndefined
	}

	old := s.Clauses[pos]
	oldTarget := instr.CodePtr{Kind: ptrKind, Pos: old.ClauseStart}

	switch {
	case pos == 0 && s.Len() == 1:
		choice.DerelictizeTryMeElse(prog.Code, old.ClauseStart, j)
		newEntry, changedEntry = predicate.EntryPtr{Kind: undefinedKind}, true

	case pos == 0:
		next := s.Clauses[1]
		choice.BluntLeadingChoiceInstr(prog.Code, next.ClauseStart, j)
		if !old.OptArgIndexKey.IsNone() {
			loc := old.OptArgIndexKey.SwitchOnTermLoc
			indexing.SetSwitchVarOffsetToChoiceInstr(prog.Code, loc, instr.CodePtr{Kind: ptrKind, Pos: next.ClauseStart}, j)
		}
		newEntry, changedEntry = predicate.EntryPtr{Kind: entryKind, Pos: next.ClauseStart}, true

	default:
		prev := s.Clauses[pos-1]
		if pos+1 < s.Len() {
			next := s.Clauses[pos+1]
			choice.ThreadChoiceInstrAtTo(prog.Code, prev.ClauseStart, next.ClauseStart, j)
			if lower := predicate.LowerBoundOfTargetClause(s, pos-1); predicate.MergeableIndexedSubsequences(s, lower, pos) {
				mergeIndexedSubsequences(prog, j, sk, s, lower, pos)
			}
		} else {
			makeTail(prog.Code, prev.ClauseStart, j)
		}
	}

	if disc != nil && !old.OptArgIndexKey.IsNone() {
		indexing.RemoveIndex(prog.Code, old.OptArgIndexKey.SwitchOnTermLoc, *disc, oldTarget, j)
	}

	deleteFromSkeleton(s, sk, pos, j)
	logger.Printf("retract: %s clause %d removed", sk.Key, pos)

	return newEntry, changedEntry
}

// mergeIndexedSubsequences implements merge_indexed_subsequences/
// merge_indices (spec.md §4.4 "Merging case", compile.rs lines
// 146-392 and its call site around line 1900): once retracting the
// clause at target has left the indexed run that starts at lower (and
// ends just before target) directly adjacent (with no unindexed clause between them) to the indexed run
// starting at target+1, their two SwitchOnTerm blocks are folded into
// one physical table.
//
// The outer choice chain was already rethreaded straight past target
// by the caller, so this only has to reconcile the first-argument
// indexing layer with that chain: the block at the smaller code
// position survives, since instr.RevJmpBy can only jump backward, and
// the other block's remaining entries are migrated into it
// (indexing.MergeIndices) before the folded-away block's own
// SwitchOnTerm line is overwritten with a RevJmpBy pointing at the
// survivor. Every clause that belonged to the folded-away run has its
// OptArgIndexKey repointed at the surviving block so a later
// assert/retract against it looks up the right table.
func mergeIndexedSubsequences(prog *predicate.Program, j *journal.Journal, sk journal.SkeletonKey, s *predicate.Skeleton, lower, target int) {
	before := s.Clauses[lower].OptArgIndexKey
	after := s.Clauses[target+1].OptArgIndexKey

	dominantLoc, dominatedLoc := before.SwitchOnTermLoc, after.SwitchOnTermLoc
	dominatedStart, dominatedEnd := target+1, indexedRunEnd(s, target+1, after)
	if after.SwitchOnTermLoc < before.SwitchOnTermLoc {
		dominantLoc, dominatedLoc = after.SwitchOnTermLoc, before.SwitchOnTermLoc
		dominatedStart, dominatedEnd = lower, target
	}

	indexing.MergeIndices(prog.Code, dominatedLoc, dominantLoc, j)

	for i := dominatedStart; i < dominatedEnd; i++ {
		old := s.Clauses[i]
		j.Push(journal.SkeletonClauseReplaced{SkeletonKey: sk, Pos: i, Old: old})
		moved := old
		moved.OptArgIndexKey.SwitchOnTermLoc = dominantLoc
		s.Clauses[i] = moved
	}

	oldLine := prog.Code[dominatedLoc]
	j.Push(journal.ReplacedLine{Pos: dominatedLoc, Old: oldLine})
	prog.Code[dominatedLoc] = instr.RevJmpBy{Offset: dominatedLoc - dominantLoc}

	logger.Printf("retract: %s merged indexing blocks at %d and %d", sk.Key, dominantLoc, dominatedLoc)
}

// indexedRunEnd scans forward from start while clauses continue key's
// indexed run, returning the index one past the run's last member.
func indexedRunEnd(s *predicate.Skeleton, start int, key predicate.OptArgIndexKey) int {
	end := start
	for end < len(s.Clauses) && s.Clauses[end].OptArgIndexKey.SameIndexedRun(key) {
		end++
	}
	return end
}

// RetractDynamicClause implements retract_clause for a dynamic
// predicate (spec.md §4.7 "Dynamic retract"): no chain rewiring is
// performed; the clause's DynamicElse/DynamicInternalElse is stamped
// with death = clock and it is dropped from the skeleton. Execution's
// clock check (out of scope here) skips it from then on.
func RetractDynamicClause(prog *predicate.Program, j *journal.Journal, sk journal.SkeletonKey, s *predicate.Skeleton, pos int, clock uint64) {
	old := s.Clauses[pos]
	stampDeath(prog.Code, old.ClauseStart, instr.Death(clock), j)
	deleteFromSkeleton(s, sk, pos, j)
	logger.Printf("retract: dynamic %s clause %d died at clock %d", sk.Key, pos, clock)
}

func stampDeath(code instr.Code, pos int, death instr.Death, j *journal.Journal) {
	switch l := code[pos].(type) {
	case instr.DynamicElse:
		j.Push(journal.ReplacedLine{Pos: pos, Old: l})
		l.Death = death
		code[pos] = l
	case instr.DynamicInternalElse:
		j.Push(journal.ReplacedLine{Pos: pos, Old: l})
		l.Death = death
		code[pos] = l
	}
}

// makeTail converts the choice instruction at pos into its chain-tail
// form in place, used when the clause it used to point at is being
// retracted and pos becomes the new last alternative.
func makeTail(code instr.Code, pos int, j *journal.Journal) {
	switch l := code[pos].(type) {
	case instr.TryMeElse:
		if l.Offset == 0 {
			return
		}
		j.Push(journal.ReplacedLine{Pos: pos, Old: l})
		code[pos] = instr.TryMeElse{Offset: 0}
	case instr.RetryMeElse:
		j.Push(journal.ReplacedLine{Pos: pos, Old: l})
		code[pos] = instr.TrustMe{Offset: l.Offset}
	case instr.DynamicElse:
		if l.No.N() == 0 {
			return
		}
		j.Push(journal.ReplacedLine{Pos: pos, Old: l})
		l.No = instr.Fail(l.No.N())
		code[pos] = l
	case instr.DynamicInternalElse:
		if l.No.N() == 0 {
			return
		}
		j.Push(journal.ReplacedLine{Pos: pos, Old: l})
		l.No = instr.Fail(l.No.N())
		code[pos] = l
	}
}
