// Package indexing implements the first-argument indexing-table editor
// (spec.md §4.2, component C4): merging and removing entries in a
// predicate's SwitchOnConstant/SwitchOnStructure sub-tables, and
// patching the SwitchOnTerm variable fall-through.
//
// Every sub-table entry is journalled before it is touched, so that a
// failing compile session can be rolled back exactly, mirroring
// go-interpreter-wagon's exec/internal/compile.Compile: that function
// defers every forward branch target into a patch list and only
// resolves it once the real position is known, the same "journal, then
// commit" discipline applied here to index-table edits instead of
// branch targets.
package indexing

import (
	"github.com/clauseforge/wam/instr"
	"github.com/clauseforge/wam/journal"
	"github.com/clauseforge/wam/predicate"
)

// Mode selects whether MergeClauseIndex's new entry should be ordered
// as if it arrived via assertz (Append, to the end of the sub-table's
// iteration order) or asserta (Prepend, to the front).
type Mode uint8

const (
	Append Mode = iota
	Prepend
)

// Discriminant is the first-argument key a clause is indexed under:
// exactly one of its two fields is meaningful, selected by IsStructure.
type Discriminant struct {
	IsStructure bool
	Const       instr.ConstantKey
	Struct      instr.StructureKey
}

// ConstDiscriminant builds a constant discriminant.
func ConstDiscriminant(k instr.ConstantKey) Discriminant { return Discriminant{Const: k} }

// StructDiscriminant builds a structure discriminant.
func StructDiscriminant(k instr.StructureKey) Discriminant {
	return Discriminant{IsStructure: true, Struct: k}
}

// blockAt fetches the IndexingBlock at pos.
func blockAt(code instr.Code, pos int) *instr.IndexingBlock {
	return code[pos].(*instr.IndexingBlock)
}

// ensureSubTable returns the SubIndex of blk's constant or structure
// sub-table, creating (and linking it from the SwitchOnTerm) if this is
// the first entry of its kind.
func ensureSubTable(code instr.Code, blockPos int, d Discriminant, j *journal.Journal) (subIdx int) {
	blk := blockAt(code, blockPos)
	sot := blk.SwitchOnTerm()

	if d.IsStructure {
		if sot.Structures != 0 {
			return sot.Structures
		}
	} else if sot.Constants != 0 {
		return sot.Constants
	}

	j.Push(journal.ReplacedIndexingLine{BlockPos: blockPos, SubIndex: 0, Old: cloneSwitchOnTerm(sot)})

	var newLine instr.IndexingLine
	if d.IsStructure {
		newLine = instr.NewSwitchOnStructure()
	} else {
		newLine = instr.NewSwitchOnConstant()
	}
	blk.Lines = append(blk.Lines, newLine)
	subIdx = len(blk.Lines) - 1

	if d.IsStructure {
		sot.Structures = subIdx
	} else {
		sot.Constants = subIdx
	}
	return subIdx
}

func cloneSwitchOnTerm(s *instr.SwitchOnTerm) *instr.SwitchOnTerm {
	c := *s
	return &c
}

// MergeClauseIndex inserts an entry for discriminant d, pointing at
// target, into the sub-table of the indexing block at blockPos,
// ordering the new entry per mode (spec.md §4.2).
func MergeClauseIndex(code instr.Code, blockPos int, d Discriminant, target instr.CodePtr, mode Mode, j *journal.Journal) {
	subIdx := ensureSubTable(code, blockPos, d, j)
	blk := blockAt(code, blockPos)

	if d.IsStructure {
		tbl := blk.Lines[subIdx].(*instr.SwitchOnStructure)
		j.Push(journal.AddedStructIndex{BlockPos: blockPos, SubIndex: subIdx, Key: d.Struct})
		if mode == Prepend {
			tbl.SetFront(d.Struct, target)
		} else {
			tbl.Set(d.Struct, target)
		}
		logger.Printf("indexing: merged structure key %+v at block %d", d.Struct, blockPos)
		return
	}

	tbl := blk.Lines[subIdx].(*instr.SwitchOnConstant)
	j.Push(journal.AddedConstIndex{BlockPos: blockPos, SubIndex: subIdx, Key: d.Const})
	if mode == Prepend {
		tbl.SetFront(d.Const, target)
	} else {
		tbl.Set(d.Const, target)
	}
	logger.Printf("indexing: merged constant key %v at block %d", d.Const, blockPos)
}

// RemoveIndex deletes the entry of key whose target equals offset from
// the sub-table of the indexing block at blockPos (spec.md §4.2). It is
// a no-op if no such entry exists.
func RemoveIndex(code instr.Code, blockPos int, d Discriminant, offset instr.CodePtr, j *journal.Journal) {
	blk := blockAt(code, blockPos)
	sot := blk.SwitchOnTerm()

	if d.IsStructure {
		if sot.Structures == 0 {
			return
		}
		tbl := blk.Lines[sot.Structures].(*instr.SwitchOnStructure)
		cur, ok := tbl.Get(d.Struct)
		if !ok || cur != offset {
			return
		}
		j.Push(journal.RemovedStructIndex{BlockPos: blockPos, SubIndex: sot.Structures, Key: d.Struct, OldPtr: cur})
		tbl.Delete(d.Struct)
		return
	}

	if sot.Constants == 0 {
		return
	}
	tbl := blk.Lines[sot.Constants].(*instr.SwitchOnConstant)
	cur, ok := tbl.Get(d.Const)
	if !ok || cur != offset {
		return
	}
	j.Push(journal.RemovedConstIndex{BlockPos: blockPos, SubIndex: sot.Constants, Key: d.Const, OldPtr: cur})
	tbl.Delete(d.Const)
}

// SetSwitchVarOffset replaces the variable fall-through of the
// SwitchOnTerm at indexLoc with newOffset, journalling the old value
// unconditionally (spec.md §4.2).
func SetSwitchVarOffset(code instr.Code, indexLoc int, newOffset instr.CodePtr, j *journal.Journal) {
	blk := blockAt(code, indexLoc)
	sot := blk.SwitchOnTerm()
	j.Push(journal.ReplacedIndexingLine{BlockPos: indexLoc, SubIndex: 0, Old: cloneSwitchOnTerm(sot)})
	sot.Var = newOffset
}

// SetSwitchVarOffsetToChoiceInstr behaves like SetSwitchVarOffset but
// is a no-op when the line currently pointed to by the variable
// fall-through is already a choice instruction, avoiding shadowing an
// existing internal dispatch (spec.md §4.2).
func SetSwitchVarOffsetToChoiceInstr(code instr.Code, indexLoc int, newOffset instr.CodePtr, j *journal.Journal) {
	blk := blockAt(code, indexLoc)
	sot := blk.SwitchOnTerm()
	if sot.Var.Kind == instr.PtrExternal || sot.Var.Kind == instr.PtrDynamicExternal {
		if pos := sot.Var.Pos; pos > 0 && pos < len(code) && isChoiceInstr(code[pos]) {
			return
		}
	}
	SetSwitchVarOffset(code, indexLoc, newOffset, j)
}

func isChoiceInstr(l instr.Line) bool {
	switch l.(type) {
	case instr.TryMeElse, instr.RetryMeElse, instr.TrustMe, instr.DynamicElse, instr.DynamicInternalElse:
		return true
	default:
		return false
	}
}

// DiscriminantKind reports which Discriminant slot a predicate's
// ClauseIndexInfo key participates in: true for the structure
// sub-table, false otherwise.
func DiscriminantKind(k predicate.OptArgIndexKey) bool {
	return k.EntryKind == predicate.EntryStructure
}

// MergeIndices implements merge_indices (spec.md §4.4): every constant
// and structure sub-table entry still held by the indexing block at
// dominatedLoc is migrated, in its existing iteration order, into the
// corresponding sub-table of the block at dominantLoc, and removed
// from dominatedLoc's own table. It is used when retracting an
// interior clause joins two indexed sub-sequences of the same
// predicate that had been compiled under separate SwitchOnTerm blocks
// (spec.md "Merging case"); dominantLoc's block survives, dominatedLoc's
// is left with empty sub-tables for the caller to redirect away from.
func MergeIndices(code instr.Code, dominatedLoc, dominantLoc int, j *journal.Journal) {
	dominated := blockAt(code, dominatedLoc)
	dsot := dominated.SwitchOnTerm()

	if dsot.Constants != 0 {
		tbl := dominated.Lines[dsot.Constants].(*instr.SwitchOnConstant)
		for _, key := range tbl.Keys() {
			ptr, ok := tbl.Get(key)
			if !ok {
				continue
			}
			MergeClauseIndex(code, dominantLoc, ConstDiscriminant(key), ptr, Append, j)
			RemoveIndex(code, dominatedLoc, ConstDiscriminant(key), ptr, j)
		}
	}

	if dsot.Structures != 0 {
		tbl := dominated.Lines[dsot.Structures].(*instr.SwitchOnStructure)
		for _, key := range tbl.Keys() {
			ptr, ok := tbl.Get(key)
			if !ok {
				continue
			}
			MergeClauseIndex(code, dominantLoc, StructDiscriminant(key), ptr, Append, j)
			RemoveIndex(code, dominatedLoc, StructDiscriminant(key), ptr, j)
		}
	}
}
