package choice

import (
	"testing"

	"github.com/clauseforge/wam/instr"
	"github.com/clauseforge/wam/journal"
)

func TestNextFollowsTryRetryTrustChain(t *testing.T) {
	code := instr.Code{
		instr.TryMeElse{Offset: 2},   // 0
		instr.Opaque{Tag: "c1"},      // 1
		instr.RetryMeElse{Offset: 2}, // 2
		instr.Opaque{Tag: "c2"},      // 3
		instr.TrustMe{},              // 4
		instr.Opaque{Tag: "c3"},      // 5
	}
	pos, ok := Next(code, 0)
	if !ok || pos != 2 {
		t.Fatalf("Next(0) = %d, %v, want 2, true", pos, ok)
	}
	pos, ok = Next(code, 2)
	if !ok || pos != 4 {
		t.Fatalf("Next(2) = %d, %v, want 4, true", pos, ok)
	}
	if !IsStop(code, 4) {
		t.Fatal("TrustMe must be a stop")
	}
}

func TestNextStopsAtStub(t *testing.T) {
	code := instr.Code{instr.TryMeElse{Offset: 0}}
	if _, ok := Next(code, 0); ok {
		t.Fatal("stub TryMeElse must not yield a next")
	}
	if !IsStop(code, 0) {
		t.Fatal("stub must be a stop")
	}
}

func TestDerelictizeTryMeElseJournalsReplacement(t *testing.T) {
	code := instr.Code{instr.TryMeElse{Offset: 3}}
	j := journal.Open()
	defer j.Close()

	old := DerelictizeTryMeElse(code, 0, j)
	if old != 3 {
		t.Fatalf("DerelictizeTryMeElse returned %d, want 3", old)
	}
	if got := code[0].(instr.TryMeElse).Offset; got != 0 {
		t.Fatalf("code[0].Offset = %d, want 0", got)
	}
	if j.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (one journalled replacement)", j.Len())
	}
}

func TestBluntLeadingChoiceInstr(t *testing.T) {
	code := instr.Code{instr.RetryMeElse{Offset: 5}}
	j := journal.Open()
	defer j.Close()

	BluntLeadingChoiceInstr(code, 0, j)
	got, ok := code[0].(instr.TryMeElse)
	if !ok || got.Offset != 5 {
		t.Fatalf("code[0] = %+v, want TryMeElse{5}", code[0])
	}
}

func TestInternalizeChoiceInstrAtStubBecomesTrustMe(t *testing.T) {
	code := instr.Code{instr.TryMeElse{Offset: 0}}
	j := journal.Open()
	defer j.Close()

	InternalizeChoiceInstrAt(code, 0, j)
	if _, ok := code[0].(instr.TrustMe); !ok {
		t.Fatalf("code[0] = %+v, want TrustMe", code[0])
	}
}

func TestInternalizeChoiceInstrAtLiveBecomesRetryMeElse(t *testing.T) {
	code := instr.Code{
		instr.TryMeElse{Offset: 2},
		instr.Opaque{Tag: "c1"},
		instr.Opaque{Tag: "c2"},
	}
	j := journal.Open()
	defer j.Close()

	InternalizeChoiceInstrAt(code, 0, j)
	got, ok := code[0].(instr.RetryMeElse)
	if !ok || got.Offset != 2 {
		t.Fatalf("code[0] = %+v, want RetryMeElse{2}", code[0])
	}
}

func TestInternalizeChoiceInstrAtEndMarkerBecomesTrustMe(t *testing.T) {
	code := instr.Code{
		instr.TryMeElse{Offset: 2},
		instr.Opaque{Tag: "c1"},
		instr.RevJmpBy{Offset: 0},
	}
	j := journal.Open()
	defer j.Close()

	InternalizeChoiceInstrAt(code, 0, j)
	got, ok := code[0].(instr.TrustMe)
	if !ok || got.Offset != 2 {
		t.Fatalf("code[0] = %+v, want TrustMe{2}", code[0])
	}
}

func TestThreadChoiceInstrAtToForward(t *testing.T) {
	code := instr.Code{instr.TrustMe{}, instr.Opaque{}, instr.Opaque{}, instr.Opaque{}}
	j := journal.Open()
	defer j.Close()

	ThreadChoiceInstrAtTo(code, 0, 3, j)
	got, ok := code[0].(instr.RetryMeElse)
	if !ok || got.Offset != 3 {
		t.Fatalf("code[0] = %+v, want RetryMeElse{3}", code[0])
	}
}

func TestThreadChoiceInstrAtToBackwardRevJmpBy(t *testing.T) {
	code := instr.Code{instr.Opaque{}, instr.Opaque{}, instr.RevJmpBy{Offset: 1}}
	j := journal.Open()
	defer j.Close()

	ThreadChoiceInstrAtTo(code, 2, 0, j)
	got, ok := code[2].(instr.RevJmpBy)
	if !ok || got.Offset != 2 {
		t.Fatalf("code[2] = %+v, want RevJmpBy{2}", code[2])
	}
}

func TestFindInnerChoiceInstrDirect(t *testing.T) {
	code := instr.Code{instr.TryMeElse{Offset: 2}, instr.Opaque{Tag: "c1"}}
	if got := FindInnerChoiceInstr(code, 1); got != 0 {
		t.Fatalf("FindInnerChoiceInstr = %d, want 0", got)
	}
}

func TestFindOuterChoiceInstrWalksDynamicChain(t *testing.T) {
	code := instr.Code{
		instr.DynamicElse{No: instr.Next(2)},
		instr.Opaque{},
		instr.DynamicInternalElse{No: instr.Fail(0)},
	}
	if got := FindOuterChoiceInstr(code, 0); got != 2 {
		t.Fatalf("FindOuterChoiceInstr = %d, want 2", got)
	}
}
