package instr

import "testing"

func TestDeathInf(t *testing.T) {
	if !DeathInf.IsInf() {
		t.Fatal("DeathInf.IsInf() = false, want true")
	}
	if Death(3).IsInf() {
		t.Fatal("Death(3).IsInf() = true, want false")
	}
	if got, want := DeathInf.String(), "inf"; got != want {
		t.Fatalf("DeathInf.String() = %q, want %q", got, want)
	}
}

func TestNextOrFail(t *testing.T) {
	n := Next(3)
	if !n.IsNext() || n.IsFail() || n.N() != 3 {
		t.Fatalf("Next(3) = %+v, want IsNext true, N 3", n)
	}
	f := Fail(5)
	if !f.IsFail() || f.IsNext() || f.N() != 5 {
		t.Fatalf("Fail(5) = %+v, want IsFail true, N 5", f)
	}
}

func TestOrderedConstMapPreservesInsertionOrder(t *testing.T) {
	tbl := NewSwitchOnConstant()
	tbl.Set("b", CodePtr{Pos: 2})
	tbl.Set("a", CodePtr{Pos: 1})
	tbl.Set("c", CodePtr{Pos: 3})

	got := tbl.Keys()
	want := []ConstantKey{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Keys()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	tbl.Delete("a")
	got = tbl.Keys()
	want = []ConstantKey{"b", "c"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("after Delete: Keys() = %v, want %v", got, want)
	}
	if _, ok := tbl.Get("a"); ok {
		t.Fatal("Get(a) ok after Delete")
	}
}

func TestOrderedConstMapSetFront(t *testing.T) {
	tbl := NewSwitchOnConstant()
	tbl.Set("a", CodePtr{Pos: 1})
	tbl.SetFront("z", CodePtr{Pos: 9})

	got := tbl.Keys()
	if len(got) != 2 || got[0] != "z" || got[1] != "a" {
		t.Fatalf("Keys() = %v, want [z a]", got)
	}
}

func TestIndexingBlockSwitchOnTerm(t *testing.T) {
	sot := &SwitchOnTerm{Var: CodePtr{Pos: 1}}
	b := &IndexingBlock{Lines: []IndexingLine{sot}}
	if b.SwitchOnTerm() != sot {
		t.Fatal("SwitchOnTerm() did not return the stored line")
	}
}

func TestCodeLinesImplementLine(t *testing.T) {
	var code Code
	code = append(code,
		TryMeElse{Offset: 2},
		RetryMeElse{Offset: 4},
		TrustMe{},
		&IndexingBlock{Lines: []IndexingLine{&SwitchOnTerm{}}},
		DynamicElse{Birth: 1, Death: DeathInf, No: Next(1)},
		RevJmpBy{Offset: -3},
		JmpBy{Arity: 2, Offset: 5},
		Opaque{Tag: "fact"},
	)
	if len(code) != 8 {
		t.Fatalf("len(code) = %d, want 8", len(code))
	}
}
