// Package choice implements the choice-chain editor (spec.md §4.3,
// component C5): traversal and in-place rewriting of the
// TryMeElse/RetryMeElse/TrustMe and DynamicElse/DynamicInternalElse
// chains that drive backtracking between a predicate's clauses.
//
// Grounded on go-interpreter-wagon's exec/internal/compile.Compile: the
// same "record a deferred patch, resolve it once the real target is
// known, then write it back through one shared patch primitive" shape
// that function uses for WASM branch targets is used here for choice
// links — ThreadChoiceInstrAtTo is this package's analogue of that
// function's patchOffset helper.
package choice

import (
	"github.com/clauseforge/wam/instr"
	"github.com/clauseforge/wam/journal"
)

// Next follows the "Follow-next" motion (spec.md §4.3, motion 1) from
// pos: along TryMeElse/RetryMeElse with Offset > 0, or a dynamic else
// with a live Next(k>0). It reports ok = false at a stub, a Fail
// terminal, or TrustMe (the chain's natural stops).
func Next(code instr.Code, pos int) (next int, ok bool) {
	switch l := code[pos].(type) {
	case instr.TryMeElse:
		if l.Offset == 0 {
			return 0, false
		}
		return pos + l.Offset, true
	case instr.RetryMeElse:
		if l.Offset == 0 {
			return 0, false
		}
		return pos + l.Offset, true
	case instr.DynamicElse:
		if l.No.IsFail() || l.No.N() == 0 {
			return 0, false
		}
		return pos + l.No.N(), true
	case instr.DynamicInternalElse:
		if l.No.IsFail() || l.No.N() == 0 {
			return 0, false
		}
		return pos + l.No.N(), true
	default:
		return 0, false
	}
}

// Back follows the "Follow-back" motion (spec.md §4.3, motion 2): a
// RevJmpBy at pos moves to pos - Offset.
func Back(code instr.Code, pos int) (back int, ok bool) {
	if l, match := code[pos].(instr.RevJmpBy); match {
		return pos - l.Offset, true
	}
	return 0, false
}

// IsStop reports whether pos is a chain terminus: TrustMe, a Fail(_)
// dynamic else, or a stub (spec.md §4.3, motion 3).
func IsStop(code instr.Code, pos int) bool {
	switch l := code[pos].(type) {
	case instr.TrustMe:
		return true
	case instr.TryMeElse:
		return l.Offset == 0
	case instr.RetryMeElse:
		return l.Offset == 0
	case instr.DynamicElse:
		return l.No.IsFail() || l.No.N() == 0
	case instr.DynamicInternalElse:
		return l.No.IsFail() || l.No.N() == 0
	default:
		return true
	}
}

func isChoiceInstr(l instr.Line) bool {
	switch l.(type) {
	case instr.TryMeElse, instr.RetryMeElse, instr.TrustMe, instr.DynamicElse, instr.DynamicInternalElse:
		return true
	default:
		return false
	}
}

// FindInnerChoiceInstr locates the try/retry choice instruction
// immediately guarding the clause whose body begins at start, walking
// back through an embedded IndexingBlock when the clause is reached via
// first-argument indexing (spec.md §4.3). It returns start-1 when the
// clause is the sole member of its indexed subsequence, so the returned
// position is the clause's own (possibly derelict) TryMeElse.
func FindInnerChoiceInstr(code instr.Code, start int) int {
	pos := start - 1
	if pos < 0 {
		return start
	}
	if _, isBlock := code[pos].(*instr.IndexingBlock); isBlock {
		// The clause is dispatched to directly from the indexing
		// table; its own guarding choice instruction is the first
		// non-indexing line preceding the block.
		p := pos - 1
		for p >= 0 {
			if isChoiceInstr(code[p]) {
				return p
			}
			if _, isBlock := code[p].(*instr.IndexingBlock); isBlock {
				p--
				continue
			}
			break
		}
		return start - 1
	}
	return pos
}

// FindOuterChoiceInstr walks forward along Next links of dynamic-else
// chains starting at pos, stopping at the tail of the run (spec.md
// §4.3), and returns that tail's position.
func FindOuterChoiceInstr(code instr.Code, pos int) int {
	cur := pos
	for {
		switch l := code[cur].(type) {
		case instr.DynamicElse:
			if l.No.IsFail() || l.No.N() == 0 {
				return cur
			}
			cur = cur + l.No.N()
		case instr.DynamicInternalElse:
			if l.No.IsFail() || l.No.N() == 0 {
				return cur
			}
			cur = cur + l.No.N()
		default:
			return cur
		}
	}
}

// DerelictizeTryMeElse replaces the live choice instruction at pos with
// its stub form (offset/Next 0), returning the prior offset. A line
// that is already a stub is left untouched and 0 is returned (spec.md
// §4.3).
func DerelictizeTryMeElse(code instr.Code, pos int, j *journal.Journal) int {
	switch l := code[pos].(type) {
	case instr.TryMeElse:
		if l.Offset == 0 {
			return 0
		}
		j.Push(journal.ReplacedLine{Pos: pos, Old: l})
		code[pos] = instr.TryMeElse{Offset: 0}
		return l.Offset
	case instr.DynamicElse:
		if l.No.N() == 0 {
			return 0
		}
		old := l.No.N()
		j.Push(journal.ReplacedLine{Pos: pos, Old: l})
		l.No = instr.Next(0)
		code[pos] = l
		return old
	case instr.DynamicInternalElse:
		if l.No.N() == 0 {
			return 0
		}
		old := l.No.N()
		j.Push(journal.ReplacedLine{Pos: pos, Old: l})
		l.No = instr.Next(0)
		code[pos] = l
		return old
	default:
		return 0
	}
}

// BluntLeadingChoiceInstr rewrites the instruction at pos so it can
// head a chain, used when the first alternative of a predicate has been
// removed (spec.md §4.3). Unlike DerelictizeTryMeElse it also accepts
// interior and tail lines: RetryMeElse(o) becomes TryMeElse(o), keeping
// its alternative; TrustMe and a live TryMeElse become the stub
// TryMeElse(0); DynamicInternalElse becomes DynamicElse with the same
// fields; a DynamicElse whose No is not Next(0) gets No = Next(0).
func BluntLeadingChoiceInstr(code instr.Code, pos int, j *journal.Journal) {
	switch l := code[pos].(type) {
	case instr.RetryMeElse:
		j.Push(journal.ReplacedLine{Pos: pos, Old: l})
		code[pos] = instr.TryMeElse{Offset: l.Offset}
	case instr.TrustMe:
		j.Push(journal.ReplacedLine{Pos: pos, Old: l})
		code[pos] = instr.TryMeElse{Offset: 0}
	case instr.TryMeElse:
		if l.Offset != 0 {
			j.Push(journal.ReplacedLine{Pos: pos, Old: l})
			code[pos] = instr.TryMeElse{Offset: 0}
		}
	case instr.DynamicInternalElse:
		j.Push(journal.ReplacedLine{Pos: pos, Old: l})
		code[pos] = instr.DynamicElse{Birth: l.Birth, Death: l.Death, No: l.No}
	case instr.DynamicElse:
		if l.No.N() != 0 || l.No.IsFail() {
			j.Push(journal.ReplacedLine{Pos: pos, Old: l})
			l.No = instr.Next(0)
			code[pos] = l
		}
	}
}

// InternalizeChoiceInstrAt promotes the instruction at pos from an
// outer/stub form into its internal form: a stub TryMeElse becomes a
// TrustMe; a live TryMeElse(o) becomes RetryMeElse(o) if the forward
// target is a real clause, or TrustMe(o) if the target is an
// end-marker RevJmpBy(0). Dynamic variants follow the symmetric
// Next/Fail rule (spec.md §4.3).
func InternalizeChoiceInstrAt(code instr.Code, pos int, j *journal.Journal) {
	switch l := code[pos].(type) {
	case instr.TryMeElse:
		j.Push(journal.ReplacedLine{Pos: pos, Old: l})
		if l.Offset == 0 {
			code[pos] = instr.TrustMe{}
			return
		}
		if isEndMarker(code, pos+l.Offset) {
			code[pos] = instr.TrustMe{Offset: l.Offset}
			return
		}
		code[pos] = instr.RetryMeElse{Offset: l.Offset}
	case instr.DynamicElse:
		j.Push(journal.ReplacedLine{Pos: pos, Old: l})
		if l.No.N() == 0 {
			l.No = instr.Fail(0)
		} else {
			l.No = instr.Fail(l.No.N())
		}
		code[pos] = instr.DynamicInternalElse{Birth: l.Birth, Death: l.Death, No: l.No}
	}
}

func isEndMarker(code instr.Code, pos int) bool {
	if pos < 0 || pos >= len(code) {
		return true
	}
	l, ok := code[pos].(instr.RevJmpBy)
	return ok && l.Offset == 0
}

// ThreadChoiceInstrAtTo patches the chain so that the alternative
// following from is target (spec.md §4.3). TryMeElse and RetryMeElse
// keep their opcode and take the offset target-from; a TrustMe tail
// becomes RetryMeElse(target-from), since it now has a successor;
// DynamicElse and DynamicInternalElse keep their kind and get
// No = Next(target-from); a RevJmpBy is rewritten to jump back by
// from-target.
func ThreadChoiceInstrAtTo(code instr.Code, from, target int, j *journal.Journal) {
	delta := target - from
	switch l := code[from].(type) {
	case instr.TryMeElse:
		j.Push(journal.ReplacedLine{Pos: from, Old: l})
		code[from] = instr.TryMeElse{Offset: delta}
	case instr.RetryMeElse:
		j.Push(journal.ReplacedLine{Pos: from, Old: l})
		code[from] = instr.RetryMeElse{Offset: delta}
	case instr.TrustMe:
		j.Push(journal.ReplacedLine{Pos: from, Old: l})
		code[from] = instr.RetryMeElse{Offset: delta}
	case instr.DynamicElse:
		j.Push(journal.ReplacedLine{Pos: from, Old: l})
		l.No = instr.Next(delta)
		code[from] = l
	case instr.DynamicInternalElse:
		j.Push(journal.ReplacedLine{Pos: from, Old: l})
		l.No = instr.Next(delta)
		code[from] = l
	case instr.RevJmpBy:
		j.Push(journal.ReplacedLine{Pos: from, Old: l})
		code[from] = instr.RevJmpBy{Offset: from - target}
	}
}
