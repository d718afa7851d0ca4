package predicate

import "testing"

func TestLowerBoundOfTargetClauseStopsAtNoneKey(t *testing.T) {
	run := NewIndexKey(1, 10, EntryConstant)
	s := &Skeleton{Clauses: []ClauseIndexInfo{
		{OptArgIndexKey: NoIndex, ClauseStart: 0},
		{OptArgIndexKey: run, ClauseStart: 1},
		{OptArgIndexKey: run, ClauseStart: 2},
		{OptArgIndexKey: run, ClauseStart: 3},
	}}
	if got := LowerBoundOfTargetClause(s, 3); got != 1 {
		t.Fatalf("LowerBoundOfTargetClause = %d, want 1", got)
	}
}

func TestMergeableIndexedSubsequencesTrueAcrossDistinctBlocks(t *testing.T) {
	s := &Skeleton{Clauses: []ClauseIndexInfo{
		{OptArgIndexKey: NewIndexKey(1, 10, EntryConstant), ClauseStart: 0},
		{OptArgIndexKey: NoIndex, ClauseStart: 1},
		{OptArgIndexKey: NewIndexKey(1, 30, EntryConstant), ClauseStart: 2},
	}}
	if !MergeableIndexedSubsequences(s, 0, 1) {
		t.Fatal("expected the runs at 0 and 2, indexed through two distinct blocks, to be mergeable once clause 1 is removed")
	}
}

func TestMergeableIndexedSubsequencesFalseWhenAlreadyOneTable(t *testing.T) {
	run := NewIndexKey(1, 10, EntryConstant)
	s := &Skeleton{Clauses: []ClauseIndexInfo{
		{OptArgIndexKey: run, ClauseStart: 0},
		{OptArgIndexKey: NewIndexKey(1, 20, EntryConstant), ClauseStart: 1},
		{OptArgIndexKey: run, ClauseStart: 2},
	}}
	if MergeableIndexedSubsequences(s, 0, 1) {
		t.Fatal("runs already sharing one SwitchOnTerm block need no further fold")
	}
}

func TestMergeableIndexedSubsequencesFalseAtBoundary(t *testing.T) {
	s := &Skeleton{Clauses: []ClauseIndexInfo{
		{OptArgIndexKey: NewIndexKey(1, 10, EntryConstant), ClauseStart: 0},
	}}
	if MergeableIndexedSubsequences(s, 0, 0) {
		t.Fatal("a target with no following clause must never be mergeable")
	}
}
