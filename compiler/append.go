package compiler

import (
	"github.com/clauseforge/wam/choice"
	"github.com/clauseforge/wam/indexing"
	"github.com/clauseforge/wam/instr"
	"github.com/clauseforge/wam/journal"
	"github.com/clauseforge/wam/predicate"
)

// AppendCompiledClause implements append_compiled_clause (spec.md §4.6,
// assertz): it splices clauseCode onto the tail of prog.Code, threads
// the previous tail clause's choice instruction to the new one, and (if
// newKey indexes the same argument position and sub-table as the
// immediately preceding clause) merges an entry into that sub-table
// rather than opening a new one.
//
// s.Clauses[i].ClauseStart is always the clause's own leading choice
// instruction position in this implementation (never its body, which
// spec.md §3 allows as an alternative reading for an unindexed leading
// clause); this lets append/prepend/retract thread chains directly off
// Clauses[i].ClauseStart without first resolving it through
// choice.FindInnerChoiceInstr, which none of them calls.
//
// It returns the predicate's new entry point and true only when the
// compiled predicate had no prior clauses (the new clause's own choice
// instruction becomes the entry); otherwise the existing entry point is
// left untouched and the second return is false.
func AppendCompiledClause(prog *predicate.Program, j *journal.Journal, sk journal.SkeletonKey, s *predicate.Skeleton, clauseCode instr.Code, newKey predicate.OptArgIndexKey, disc *indexing.Discriminant, birth uint64) (predicate.EntryPtr, bool) {
	targetPos := s.Len()
	lower := predicate.LowerBoundForKey(s, targetPos, newKey)
	sameRun := targetPos > 0 && !newKey.IsNone() && s.Clauses[targetPos-1].OptArgIndexKey.SameIndexedRun(newKey)

	ptrKind := instr.PtrExternal
	if s.IsDynamic {
		ptrKind = instr.PtrDynamicExternal
	}

	j.Push(journal.TruncateCode{OldLen: len(prog.Code)})

	choicePos := len(prog.Code)
	prog.Code = append(prog.Code, leadingLine(s.IsDynamic, targetPos == 0, birth))
	prog.Code = append(prog.Code, clauseCode...)

	finalKey := newKey
	if sameRun {
		existingLoc := s.Clauses[targetPos-1].OptArgIndexKey.SwitchOnTermLoc
		finalKey = predicate.NewIndexKey(newKey.ArgNum, existingLoc, newKey.EntryKind)
		if disc != nil {
			indexing.MergeClauseIndex(prog.Code, existingLoc, *disc, instr.CodePtr{Kind: ptrKind, Pos: choicePos}, indexing.Append, j)
		}
		if lower == targetPos-1 {
			// The run held a single clause; it now holds two, so the
			// SwitchOnTerm's variable fall-through is pointed at the
			// run's first clause, whose choice instruction now leads on
			// to the new one.
			indexing.SetSwitchVarOffset(prog.Code, existingLoc, instr.CodePtr{Kind: ptrKind, Pos: s.Clauses[lower].ClauseStart}, j)
		}
	}

	var entry predicate.EntryPtr
	changedEntry := false

	if targetPos == 0 {
		entryKind := predicate.Index
		if s.IsDynamic {
			entryKind = predicate.DynamicIndex
		}
		entry = predicate.EntryPtr{Kind: entryKind, Pos: choicePos}
		changedEntry = true
	} else {
		prevPos := s.Clauses[targetPos-1].ClauseStart
		tail := choice.FindOuterChoiceInstr(prog.Code, prevPos)
		choice.ThreadChoiceInstrAtTo(prog.Code, tail, choicePos, j)
	}

	insertIntoSkeleton(s, sk, targetPos, predicate.ClauseIndexInfo{OptArgIndexKey: finalKey, ClauseStart: choicePos}, j)
	logger.Printf("append: %s clause %d at %d (sameRun=%v)", sk.Key, targetPos, choicePos, sameRun)

	return entry, changedEntry
}
