// Package journal implements the retraction journal (spec.md §4.1):
// an append-only log of inverse edits that lets a failing compile,
// assert or retract be rolled back to the byte-wise state it found the
// program in.
package journal

import (
	"github.com/clauseforge/wam/instr"
	"github.com/clauseforge/wam/predicate"
)

// Record is one inverse edit. apply mutates p back to the state it
// held before the edit the record describes.
type Record interface {
	apply(p *predicate.Program)
	kind() string
}

// TruncateCode undoes a run of pure appends to the code vector by
// cutting it back to OldLen. This is the primary mechanism for
// reverting "appended N lines" (the spec's AppendedTrustMe,
// AppendedNextOrFail and friends): since the core never deletes or
// shifts lines once a session commits, a batch of appends makes a
// natural undo unit inside a still-open session.
type TruncateCode struct{ OldLen int }

func (r TruncateCode) kind() string { return "TruncateCode" }
func (r TruncateCode) apply(p *predicate.Program) {
	p.Code = p.Code[:r.OldLen]
}

// ReplacedLine undoes an in-place overwrite of a single code-vector
// line (ModifiedTryMeElse, ModifiedRetryMeElse, ModifiedRevJmpBy and
// their kin all specialize to this: the old line, whatever its
// concrete type, is simply written back).
type ReplacedLine struct {
	Pos int
	Old instr.Line
}

func (r ReplacedLine) kind() string { return "ReplacedLine" }
func (r ReplacedLine) apply(p *predicate.Program) {
	p.Code[r.Pos] = r.Old
}

// ReplacedIndexingLine undoes an in-place overwrite of one line inside
// an IndexingBlock at BlockPos (SwitchOnTerm itself, or one of its
// SwitchOnConstant/SwitchOnStructure sub-tables).
type ReplacedIndexingLine struct {
	BlockPos int
	SubIndex int
	Old      instr.IndexingLine
}

func (r ReplacedIndexingLine) kind() string { return "ReplacedIndexingLine" }
func (r ReplacedIndexingLine) apply(p *predicate.Program) {
	blk := p.Code[r.BlockPos].(*instr.IndexingBlock)
	blk.Lines[r.SubIndex] = r.Old
}

// AddedConstIndex undoes the insertion of a new SwitchOnConstant entry.
type AddedConstIndex struct {
	BlockPos int
	SubIndex int
	Key      instr.ConstantKey
}

func (r AddedConstIndex) kind() string { return "AddedConstIndex" }
func (r AddedConstIndex) apply(p *predicate.Program) {
	blk := p.Code[r.BlockPos].(*instr.IndexingBlock)
	blk.Lines[r.SubIndex].(*instr.SwitchOnConstant).Delete(r.Key)
}

// RemovedConstIndex undoes the removal of a SwitchOnConstant entry.
type RemovedConstIndex struct {
	BlockPos int
	SubIndex int
	Key      instr.ConstantKey
	OldPtr   instr.CodePtr
}

func (r RemovedConstIndex) kind() string { return "RemovedConstIndex" }
func (r RemovedConstIndex) apply(p *predicate.Program) {
	blk := p.Code[r.BlockPos].(*instr.IndexingBlock)
	blk.Lines[r.SubIndex].(*instr.SwitchOnConstant).Set(r.Key, r.OldPtr)
}

// AddedStructIndex undoes the insertion of a new SwitchOnStructure entry.
type AddedStructIndex struct {
	BlockPos int
	SubIndex int
	Key      instr.StructureKey
}

func (r AddedStructIndex) kind() string { return "AddedStructIndex" }
func (r AddedStructIndex) apply(p *predicate.Program) {
	blk := p.Code[r.BlockPos].(*instr.IndexingBlock)
	blk.Lines[r.SubIndex].(*instr.SwitchOnStructure).Delete(r.Key)
}

// RemovedStructIndex undoes the removal of a SwitchOnStructure entry.
type RemovedStructIndex struct {
	BlockPos int
	SubIndex int
	Key      instr.StructureKey
	OldPtr   instr.CodePtr
}

func (r RemovedStructIndex) kind() string { return "RemovedStructIndex" }
func (r RemovedStructIndex) apply(p *predicate.Program) {
	blk := p.Code[r.BlockPos].(*instr.IndexingBlock)
	blk.Lines[r.SubIndex].(*instr.SwitchOnStructure).Set(r.Key, r.OldPtr)
}

// SkeletonKey addresses a skeleton within a Program for the journal
// records below.
type SkeletonKey struct {
	Target predicate.Target
	Key    predicate.Key
}

// RemovedSkeletonClause undoes the removal of a clause from a
// skeleton's Clauses slice (and, in lockstep, its ClauseClauseLocs
// entry, when one existed), reinserting both at Pos.
type RemovedSkeletonClause struct {
	SkeletonKey
	Pos                int
	Clause             predicate.ClauseIndexInfo
	HadClauseClauseLoc bool
	ClauseClauseLoc    int
}

func (r RemovedSkeletonClause) kind() string { return "RemovedSkeletonClause" }
func (r RemovedSkeletonClause) apply(p *predicate.Program) {
	s, ok := p.LookupSkeleton(r.Target, r.Key)
	if !ok {
		return
	}
	s.Clauses = insertClause(s.Clauses, r.Pos, r.Clause)
	if r.HadClauseClauseLoc {
		s.ClauseClauseLocs = insertInt(s.ClauseClauseLocs, r.Pos, r.ClauseClauseLoc)
	}
}

func insertClause(s []predicate.ClauseIndexInfo, pos int, c predicate.ClauseIndexInfo) []predicate.ClauseIndexInfo {
	s = append(s, predicate.ClauseIndexInfo{})
	copy(s[pos+1:], s[pos:])
	s[pos] = c
	return s
}

func insertInt(s []int, pos int, v int) []int {
	s = append(s, 0)
	copy(s[pos+1:], s[pos:])
	s[pos] = v
	return s
}

// InsertedSkeletonClause undoes the insertion of a new clause at Pos
// (used by asserta/assertz, the converse of RemovedSkeletonClause) by
// deleting it back out, along with its clause-clause mirror location
// when one was recorded.
type InsertedSkeletonClause struct {
	SkeletonKey
	Pos                int
	HadClauseClauseLoc bool
}

func (r InsertedSkeletonClause) kind() string { return "InsertedSkeletonClause" }
func (r InsertedSkeletonClause) apply(p *predicate.Program) {
	s, ok := p.LookupSkeleton(r.Target, r.Key)
	if !ok {
		return
	}
	s.Clauses = append(s.Clauses[:r.Pos], s.Clauses[r.Pos+1:]...)
	if r.HadClauseClauseLoc && r.Pos < len(s.ClauseClauseLocs) {
		s.ClauseClauseLocs = append(s.ClauseClauseLocs[:r.Pos], s.ClauseClauseLocs[r.Pos+1:]...)
	}
}

// InsertedClauseClauseLoc undoes the insertion of a new entry into a
// skeleton's ClauseClauseLocs parallel array at Pos, used when a
// dynamic clause is mirrored into $clause/2 after its own
// ClauseIndexInfo has already been spliced into Clauses by a separate,
// prior InsertedSkeletonClause record (spec.md §4.9's mirroring is a
// second step following the ordinary assert, not part of it).
type InsertedClauseClauseLoc struct {
	SkeletonKey
	Pos int
}

func (r InsertedClauseClauseLoc) kind() string { return "InsertedClauseClauseLoc" }
func (r InsertedClauseClauseLoc) apply(p *predicate.Program) {
	s, ok := p.LookupSkeleton(r.Target, r.Key)
	if !ok || r.Pos >= len(s.ClauseClauseLocs) {
		return
	}
	s.ClauseClauseLocs = append(s.ClauseClauseLocs[:r.Pos], s.ClauseClauseLocs[r.Pos+1:]...)
}

// SkeletonClauseReplaced undoes an in-place overwrite of one
// ClauseIndexInfo entry (used when a clause's ClauseStart or
// OptArgIndexKey is rewritten without changing its position).
type SkeletonClauseReplaced struct {
	SkeletonKey
	Pos int
	Old predicate.ClauseIndexInfo
}

func (r SkeletonClauseReplaced) kind() string { return "SkeletonClauseReplaced" }
func (r SkeletonClauseReplaced) apply(p *predicate.Program) {
	s, ok := p.LookupSkeleton(r.Target, r.Key)
	if !ok {
		return
	}
	s.Clauses[r.Pos] = r.Old
}

// SkeletonMarginReplaced undoes a change to ClauseAssertMargin.
type SkeletonMarginReplaced struct {
	SkeletonKey
	Old int
}

func (r SkeletonMarginReplaced) kind() string { return "SkeletonMarginReplaced" }
func (r SkeletonMarginReplaced) apply(p *predicate.Program) {
	s, ok := p.LookupSkeleton(r.Target, r.Key)
	if !ok {
		return
	}
	s.ClauseAssertMargin = r.Old
}

// ReplacedCodeIndex undoes a change to a predicate's code-index entry.
type ReplacedCodeIndex struct {
	SkeletonKey
	Old predicate.EntryPtr
}

func (r ReplacedCodeIndex) kind() string { return "ReplacedCodeIndex" }
func (r ReplacedCodeIndex) apply(p *predicate.Program) {
	p.SetEntryPtr(r.Target, r.Key, r.Old)
}

// RemovedSkeleton undoes a whole-skeleton replacement: apply writes Old
// back over the skeleton registered under (Target, Key), restoring its
// clauses, $clause/2 locations, assert margin and dynamic flag. The
// compiler driver pushes one before registering a freshly compiled
// skeleton, with an empty Old when none was registered before.
type RemovedSkeleton struct {
	SkeletonKey
	Old *predicate.Skeleton
}

func (r RemovedSkeleton) kind() string { return "RemovedSkeleton" }
func (r RemovedSkeleton) apply(p *predicate.Program) {
	*p.Skeleton(r.Target, r.Key, r.Old.IsDynamic) = *r.Old
}
