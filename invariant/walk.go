// Package invariant supplements spec.md (which specifies the
// quantified invariants of §8 but, being scoped to the compile/retract
// core, stops short of a reusable checker) with exactly that: a
// single-pass walk over a Program that raises a Violation the moment a
// predicate breaks one of §3's five invariants.
//
// It is grounded on go-interpreter-wagon's validate/validate.go, which
// walks a function body instruction by instruction carrying threaded
// state and raising a typed error at the first broken precondition;
// unlike that function, Check collects every violation instead of
// stopping at the first one, closer to disasm.Disassemble's
// accumulate-as-you-walk style, because an operator auditing a loaded
// database wants the whole list.
package invariant

import (
	"github.com/clauseforge/wam/choice"
	"github.com/clauseforge/wam/instr"
	"github.com/clauseforge/wam/predicate"
)

// EntryChoicePos resolves a predicate's code-index entry to the
// position of the choice instruction execution actually starts from:
// directly, if the entry points straight at one, or via the
// SwitchOnTerm's variable fall-through if the entry points at an
// indexing block (the fall-through path is, by construction, the one
// that must still visit every clause in order for an unbound first
// argument).
func EntryChoicePos(code instr.Code, entry predicate.EntryPtr) (int, bool) {
	if !entry.IsDefined() {
		return 0, false
	}
	pos := entry.Pos
	if pos < 0 || pos >= len(code) {
		return 0, false
	}
	if blk, ok := code[pos].(*instr.IndexingBlock); ok {
		v := blk.SwitchOnTerm().Var
		if v.IsZero() {
			return 0, false
		}
		return v.Pos, true
	}
	return pos, true
}

// Walk follows the Follow-next motion from start until a stop,
// collecting every position visited in order (spec.md Testable
// Property 1).
func Walk(code instr.Code, start int) []int {
	var out []int
	pos := start
	seen := make(map[int]bool)
	for {
		if seen[pos] {
			// A cycle is itself an invariant violation (spec.md §9:
			// "cyclic graphs avoided"); stop rather than loop forever
			// and let Check flag the mismatch against skeleton length.
			break
		}
		seen[pos] = true
		out = append(out, pos)
		if choice.IsStop(code, pos) {
			break
		}
		next, ok := choice.Next(code, pos)
		if !ok {
			break
		}
		pos = next
	}
	return out
}
