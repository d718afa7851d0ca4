package compiler

import (
	"github.com/clauseforge/wam/instr"
	"github.com/clauseforge/wam/journal"
	"github.com/clauseforge/wam/predicate"
)

// clauseClauseSkeletonKey names prog.ClauseClause for journal records
// touching it through AppendCompiledClause/PrependCompiledClause.
var clauseClauseSkeletonKey = journal.SkeletonKey{Target: predicate.TargetBuiltins, Key: predicate.ClauseClauseKey}

// MirrorAssert implements the assert half of spec.md §4.9: factCode (a
// caller-supplied $clause(Head, Body) fact, already compiled by the
// same collab.CodeGenerator that built the source clause) is appended
// to the shared $clause/2 mirror, and the position it landed at is
// recorded in the source skeleton's ClauseClauseLocs at pos so
// MirrorRetract can find it again later.
//
// Every mirrored fact is appended, never prepended, regardless of
// whether the source operation was asserta or assertz: $clause/2 is
// one skeleton shared by every dynamic predicate in the program, so
// prepending into it would shift the recorded ClauseClauseLocs of
// every other predicate's already-mirrored clauses. clause/2 only
// needs to enumerate a predicate's live clauses by unifying against
// Head, not reproduce cross-predicate mirror order, so the source
// predicate's own asserta/assertz ordering is preserved entirely
// within its own Clauses/ClauseClauseLocs, and only the mirror's
// internal order is flattened to append-only (see DESIGN.md).
func MirrorAssert(prog *predicate.Program, j *journal.Journal, sk journal.SkeletonKey, s *predicate.Skeleton, pos int, factCode instr.Code, birth uint64) {
	AppendCompiledClause(prog, j, clauseClauseSkeletonKey, prog.ClauseClause, factCode, predicate.NoIndex, nil, birth)
	loc := prog.ClauseClause.Len() - 1

	j.Push(journal.InsertedClauseClauseLoc{SkeletonKey: sk, Pos: pos})
	s.ClauseClauseLocs = append(s.ClauseClauseLocs, 0)
	copy(s.ClauseClauseLocs[pos+1:], s.ClauseClauseLocs[pos:])
	s.ClauseClauseLocs[pos] = loc

	logger.Printf("mirror: assert at clauseclause pos %d for source pos %d", loc, pos)
}

// MirrorRetract implements the retract half of spec.md §4.9: the
// mirror fact recorded for the source predicate's clause at pos is
// stamped dead at clock, exactly as RetractDynamicClause stamps the
// source clause itself, without removing it from $clause/2's Clauses
// (which, being shared, must never be spliced by anything other than
// the source predicate's own ClauseClauseLocs bookkeeping).
//
// MirrorRetract must be called before the matching RetractDynamicClause
// (which deletes s.ClauseClauseLocs[pos] as a side effect of removing
// s.Clauses[pos]): it needs that slot to still be populated to find the
// mirror's position.
func MirrorRetract(prog *predicate.Program, j *journal.Journal, s *predicate.Skeleton, pos int, clock uint64) {
	if pos >= len(s.ClauseClauseLocs) {
		return
	}
	loc := s.ClauseClauseLocs[pos]
	mirrorClause := prog.ClauseClause.Clauses[loc]
	stampDeath(prog.Code, mirrorClause.ClauseStart, instr.Death(clock), j)
	logger.Printf("mirror: retract stamped death at clauseclause pos %d for source pos %d", loc, pos)
}
