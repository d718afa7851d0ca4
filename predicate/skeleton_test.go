package predicate

import "testing"

func TestOptArgIndexKeyShift(t *testing.T) {
	k := NewIndexKey(1, 10, EntryConstant)
	shifted := k.Shift(5)
	if shifted.SwitchOnTermLoc != 15 {
		t.Fatalf("Shift(5).SwitchOnTermLoc = %d, want 15", shifted.SwitchOnTermLoc)
	}
	if NoIndex.Shift(5) != NoIndex {
		t.Fatal("Shift on NoIndex must be a no-op")
	}
}

func TestOptArgIndexKeySameIndexedRun(t *testing.T) {
	a := NewIndexKey(1, 10, EntryConstant)
	b := NewIndexKey(1, 10, EntryStructure)
	c := NewIndexKey(2, 10, EntryConstant)
	if !a.SameIndexedRun(b) {
		t.Fatal("same arg num and switch loc should be the same run regardless of entry kind")
	}
	if a.SameIndexedRun(c) {
		t.Fatal("different arg num must not be the same run")
	}
	if a.SameIndexedRun(NoIndex) {
		t.Fatal("NoIndex must never be in a run")
	}
}

func TestSkeletonShiftAll(t *testing.T) {
	s := NewSkeleton(false)
	s.Clauses = []ClauseIndexInfo{
		{OptArgIndexKey: NewIndexKey(1, 10, EntryConstant), ClauseStart: 11},
		{OptArgIndexKey: NoIndex, ClauseStart: 20},
	}
	s.ClauseClauseLocs = []int{5}
	s.ShiftAll(100)

	if s.Clauses[0].ClauseStart != 111 || s.Clauses[0].OptArgIndexKey.SwitchOnTermLoc != 110 {
		t.Fatalf("unexpected shift on indexed clause: %+v", s.Clauses[0])
	}
	if s.Clauses[1].ClauseStart != 120 {
		t.Fatalf("unexpected shift on unindexed clause: %+v", s.Clauses[1])
	}
	if s.ClauseClauseLocs[0] != 105 {
		t.Fatalf("ClauseClauseLocs[0] = %d, want 105", s.ClauseClauseLocs[0])
	}
}
