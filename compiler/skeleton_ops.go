package compiler

import (
	"github.com/clauseforge/wam/instr"
	"github.com/clauseforge/wam/journal"
	"github.com/clauseforge/wam/predicate"
)

// leadingLine builds the choice instruction a newly spliced clause
// begins with: the static grammar's stub TryMeElse(0) / terminal
// TrustMe, or the dynamic grammar's DynamicElse / DynamicInternalElse
// (spec.md §4.5 point 3, §4.8). isEntry is true only for a predicate's
// very first clause, the one case that must use the "outer" form
// (TryMeElse / DynamicElse) rather than the "interior/tail" form
// (TrustMe / DynamicInternalElse); every other newly appended or
// prepended clause starts life as its predicate's new tail and is later
// rethreaded by choice.ThreadChoiceInstrAtTo if a further clause joins
// after it.
func leadingLine(isDynamic, isEntry bool, birth uint64) instr.Line {
	if isDynamic {
		if isEntry {
			return instr.DynamicElse{Birth: birth, Death: instr.DeathInf, No: instr.Fail(0)}
		}
		return instr.DynamicInternalElse{Birth: birth, Death: instr.DeathInf, No: instr.Fail(0)}
	}
	if isEntry {
		return instr.TryMeElse{Offset: 0}
	}
	return instr.TrustMe{}
}

// leadingLineTo is leadingLine for a clause that must, from the moment
// it is written, already point at an existing later alternative (the
// asserta cases, which splice in front of a clause that keeps running):
// delta is the offset/NextOrFail.N() the usual chain-threading code
// would compute, supplied up front since the line is being constructed
// fresh rather than rethreaded in place by choice.ThreadChoiceInstrAtTo.
func leadingLineTo(isDynamic, isEntry bool, birth uint64, delta int) instr.Line {
	if isDynamic {
		if isEntry {
			return instr.DynamicElse{Birth: birth, Death: instr.DeathInf, No: instr.Next(delta)}
		}
		return instr.DynamicInternalElse{Birth: birth, Death: instr.DeathInf, No: instr.Next(delta)}
	}
	if isEntry {
		return instr.TryMeElse{Offset: delta}
	}
	return instr.RetryMeElse{Offset: delta}
}

// deleteFromSkeleton removes the clause at pos from s (and its
// clause-clause mirror location, if it had one), decrementing
// ClauseAssertMargin when pos fell below it, journalling the inverse of
// each edit first (spec.md §4.4 delete_from_skeleton).
func deleteFromSkeleton(s *predicate.Skeleton, sk journal.SkeletonKey, pos int, j *journal.Journal) predicate.ClauseIndexInfo {
	old := s.Clauses[pos]

	hadLoc := pos < len(s.ClauseClauseLocs)
	var oldLoc int
	if hadLoc {
		oldLoc = s.ClauseClauseLocs[pos]
	}

	j.Push(journal.RemovedSkeletonClause{
		SkeletonKey:        sk,
		Pos:                pos,
		Clause:             old,
		HadClauseClauseLoc: hadLoc,
		ClauseClauseLoc:    oldLoc,
	})

	s.Clauses = append(s.Clauses[:pos], s.Clauses[pos+1:]...)
	if hadLoc {
		s.ClauseClauseLocs = append(s.ClauseClauseLocs[:pos], s.ClauseClauseLocs[pos+1:]...)
	}

	if pos < s.ClauseAssertMargin {
		j.Push(journal.SkeletonMarginReplaced{SkeletonKey: sk, Old: s.ClauseAssertMargin})
		s.ClauseAssertMargin--
	}

	return old
}

// insertIntoSkeleton inserts info at pos in s.Clauses (used by
// asserta/assertz), journalling the matching deletion as its inverse.
func insertIntoSkeleton(s *predicate.Skeleton, sk journal.SkeletonKey, pos int, info predicate.ClauseIndexInfo, j *journal.Journal) {
	j.Push(journal.InsertedSkeletonClause{SkeletonKey: sk, Pos: pos})
	s.Clauses = append(s.Clauses, predicate.ClauseIndexInfo{})
	copy(s.Clauses[pos+1:], s.Clauses[pos:])
	s.Clauses[pos] = info
}
