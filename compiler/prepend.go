package compiler

import (
	"github.com/clauseforge/wam/choice"
	"github.com/clauseforge/wam/indexing"
	"github.com/clauseforge/wam/instr"
	"github.com/clauseforge/wam/journal"
	"github.com/clauseforge/wam/predicate"
)

// PrependCompiledClause implements prepend_compiled_clause (spec.md
// §4.6, asserta). The new clause's bytes are always appended at the
// tail of prog.Code (the vector is append-only) but threaded so that it
// is the first clause visited at run time, and clause_assert_margin is
// incremented.
//
// Three cases are distinguished, covering spec.md's four by collapsing
// the two "new clause is indexed and shares the old first clause's
// argument position" cases into one (reuse the existing SwitchOnTerm)
// and the two "no SwitchOnTerm reuse is possible" cases into "open a
// fresh indexing block in front" vs. "no indexing is involved at all".
// This implementation does not additionally emit a trailing RevJmpBy
// back-link for the plain front-link case (see DESIGN.md): the
// prepended clause's own TryMeElse, threaded directly to the old head,
// is sufficient to preserve chain completeness and reachability.
func PrependCompiledClause(prog *predicate.Program, j *journal.Journal, sk journal.SkeletonKey, s *predicate.Skeleton, clauseCode instr.Code, newKey predicate.OptArgIndexKey, disc *indexing.Discriminant, birth uint64) (predicate.EntryPtr, bool) {
	ptrKind := instr.PtrExternal
	if s.IsDynamic {
		ptrKind = instr.PtrDynamicExternal
	}
	entryKind := predicate.Index
	if s.IsDynamic {
		entryKind = predicate.DynamicIndex
	}

	j.Push(journal.TruncateCode{OldLen: len(prog.Code)})

	if s.Len() == 0 {
		choicePos := len(prog.Code)
		prog.Code = append(prog.Code, leadingLine(s.IsDynamic, true, birth))
		prog.Code = append(prog.Code, clauseCode...)
		insertIntoSkeleton(s, sk, 0, predicate.ClauseIndexInfo{OptArgIndexKey: newKey, ClauseStart: choicePos}, j)
		bumpMargin(s, sk, j)
		return predicate.EntryPtr{Kind: entryKind, Pos: choicePos}, true
	}

	old := s.Clauses[0]
	sameArgRun := !newKey.IsNone() && !old.OptArgIndexKey.IsNone() && newKey.ArgNum == old.OptArgIndexKey.ArgNum

	var (
		finalKey  predicate.OptArgIndexKey
		choicePos int
		entry     predicate.EntryPtr
		changed   bool
	)

	switch {
	case sameArgRun:
		// (indexed, indexed, same arg): reuse the existing SwitchOnTerm.
		existingLoc := old.OptArgIndexKey.SwitchOnTermLoc
		choicePos = len(prog.Code)
		prog.Code = append(prog.Code, leadingLineTo(s.IsDynamic, true, birth, old.ClauseStart-choicePos))
		prog.Code = append(prog.Code, clauseCode...)

		if disc != nil {
			indexing.MergeClauseIndex(prog.Code, existingLoc, *disc, instr.CodePtr{Kind: ptrKind, Pos: choicePos}, indexing.Prepend, j)
		}
		indexing.SetSwitchVarOffset(prog.Code, existingLoc, instr.CodePtr{Kind: ptrKind, Pos: choicePos}, j)
		choice.InternalizeChoiceInstrAt(prog.Code, old.ClauseStart, j)

		finalKey = predicate.NewIndexKey(newKey.ArgNum, existingLoc, newKey.EntryKind)
		// The predicate's entry already addresses the indexing block;
		// reusing it means the entry point itself never changes.

	case !newKey.IsNone():
		// (indexed, indexed, different arg) or (indexed, unindexed):
		// open a fresh indexing block in front of the old chain.
		blockPos := len(prog.Code)
		sot := &instr.SwitchOnTerm{}
		prog.Code = append(prog.Code, &instr.IndexingBlock{Lines: []instr.IndexingLine{sot}})

		choicePos = len(prog.Code)
		prog.Code = append(prog.Code, leadingLineTo(s.IsDynamic, true, birth, old.ClauseStart-choicePos))
		prog.Code = append(prog.Code, clauseCode...)

		sot.Var = instr.CodePtr{Kind: ptrKind, Pos: choicePos}
		if disc != nil {
			indexing.MergeClauseIndex(prog.Code, blockPos, *disc, instr.CodePtr{Kind: ptrKind, Pos: choicePos}, indexing.Append, j)
		}
		choice.InternalizeChoiceInstrAt(prog.Code, old.ClauseStart, j)

		finalKey = predicate.NewIndexKey(newKey.ArgNum, blockPos, newKey.EntryKind)
		entry = predicate.EntryPtr{Kind: entryKind, Pos: blockPos}
		changed = true

	default:
		// (unindexed, indexed) or (unindexed, unindexed): a plain front
		// link, no indexing table touched for the new clause itself.
		choicePos = len(prog.Code)
		prog.Code = append(prog.Code, leadingLineTo(s.IsDynamic, true, birth, old.ClauseStart-choicePos))
		prog.Code = append(prog.Code, clauseCode...)
		choice.InternalizeChoiceInstrAt(prog.Code, old.ClauseStart, j)

		finalKey = predicate.NoIndex
		entry = predicate.EntryPtr{Kind: entryKind, Pos: choicePos}
		changed = true
	}

	insertIntoSkeleton(s, sk, 0, predicate.ClauseIndexInfo{OptArgIndexKey: finalKey, ClauseStart: choicePos}, j)
	bumpMargin(s, sk, j)

	return entry, changed
}

func bumpMargin(s *predicate.Skeleton, sk journal.SkeletonKey, j *journal.Journal) {
	j.Push(journal.SkeletonMarginReplaced{SkeletonKey: sk, Old: s.ClauseAssertMargin})
	s.ClauseAssertMargin++
}
