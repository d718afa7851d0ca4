package indexing

import (
	"testing"

	"github.com/clauseforge/wam/instr"
	"github.com/clauseforge/wam/journal"
)

func newBlockCode() instr.Code {
	return instr.Code{
		&instr.IndexingBlock{Lines: []instr.IndexingLine{&instr.SwitchOnTerm{}}},
	}
}

func TestMergeClauseIndexCreatesConstantSubTableLazily(t *testing.T) {
	code := newBlockCode()
	j := journal.Open()
	defer j.Close()

	MergeClauseIndex(code, 0, ConstDiscriminant("1"), instr.CodePtr{Pos: 2}, Append, j)
	MergeClauseIndex(code, 0, ConstDiscriminant("2"), instr.CodePtr{Pos: 4}, Append, j)

	blk := code[0].(*instr.IndexingBlock)
	if blk.SwitchOnTerm().Constants == 0 {
		t.Fatal("Constants sub-table was not linked")
	}
	tbl := blk.Lines[blk.SwitchOnTerm().Constants].(*instr.SwitchOnConstant)
	got, ok := tbl.Get("2")
	if !ok || got.Pos != 4 {
		t.Fatalf("Get(2) = %+v, %v, want Pos 4, true", got, ok)
	}
	if got := tbl.Keys(); len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Fatalf("Keys() = %v, want [1 2] (Append preserves arrival order)", got)
	}
}

func TestMergeClauseIndexPrependsToFront(t *testing.T) {
	code := newBlockCode()
	j := journal.Open()
	defer j.Close()

	MergeClauseIndex(code, 0, ConstDiscriminant("a"), instr.CodePtr{Pos: 2}, Append, j)
	MergeClauseIndex(code, 0, ConstDiscriminant("c"), instr.CodePtr{Pos: 9}, Prepend, j)

	blk := code[0].(*instr.IndexingBlock)
	tbl := blk.Lines[blk.SwitchOnTerm().Constants].(*instr.SwitchOnConstant)
	keys := tbl.Keys()
	if len(keys) != 2 || keys[0] != "c" || keys[1] != "a" {
		t.Fatalf("Keys() = %v, want [c a]", keys)
	}
}

func TestRemoveIndexDeletesMatchingEntry(t *testing.T) {
	code := newBlockCode()
	j := journal.Open()
	defer j.Close()

	MergeClauseIndex(code, 0, ConstDiscriminant("1"), instr.CodePtr{Pos: 2}, Append, j)
	RemoveIndex(code, 0, ConstDiscriminant("1"), instr.CodePtr{Pos: 2}, j)

	blk := code[0].(*instr.IndexingBlock)
	tbl := blk.Lines[blk.SwitchOnTerm().Constants].(*instr.SwitchOnConstant)
	if _, ok := tbl.Get("1"); ok {
		t.Fatal("entry should have been removed")
	}
}

func TestSetSwitchVarOffsetJournalsOldValue(t *testing.T) {
	code := newBlockCode()
	j := journal.Open()
	defer j.Close()

	SetSwitchVarOffset(code, 0, instr.CodePtr{Pos: 7}, j)
	blk := code[0].(*instr.IndexingBlock)
	if blk.SwitchOnTerm().Var.Pos != 7 {
		t.Fatalf("Var.Pos = %d, want 7", blk.SwitchOnTerm().Var.Pos)
	}
	if j.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", j.Len())
	}
}

func TestSetSwitchVarOffsetToChoiceInstrNoOpWhenAlreadyChoice(t *testing.T) {
	code := instr.Code{
		&instr.IndexingBlock{Lines: []instr.IndexingLine{
			&instr.SwitchOnTerm{Var: instr.CodePtr{Kind: instr.PtrExternal, Pos: 1}},
		}},
		instr.TryMeElse{Offset: 2},
	}
	j := journal.Open()
	defer j.Close()

	SetSwitchVarOffsetToChoiceInstr(code, 0, instr.CodePtr{Pos: 5}, j)

	blk := code[0].(*instr.IndexingBlock)
	if blk.SwitchOnTerm().Var.Pos != 1 {
		t.Fatalf("Var.Pos = %d, want unchanged 1", blk.SwitchOnTerm().Var.Pos)
	}
	if j.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 (no-op)", j.Len())
	}
}
