// Package instr defines the instruction model shared by the indexing,
// choice-chain and compiler packages: the closed set of line kinds a
// predicate's code vector is built from, and the small value types
// (Death, NextOrFail, CodePtr) those lines carry.
//
// Term representation, arithmetic, control and call instructions are
// owned by the external code generator (package collab); this package
// only models the line kinds the core itself reads or rewrites.
package instr

import "fmt"

// Line is one entry of a predicate's code vector. The concrete type
// identifies which of the closed set of variants it is.
type Line interface {
	isLine()
}

// Code is an append-only vector of Lines. Positions are stable: once a
// Line is appended its index never changes, even as Code grows, because
// append on a Go slice never relocates already-read indices out from
// under a caller holding them.
type Code []Line

// TryMeElse begins a choice point: on backtracking, control proceeds to
// the clause at Offset, or fails if Offset is 0 (no alternative).
type TryMeElse struct{ Offset int }

// RetryMeElse is an interior link of a choice chain: it removes no
// choice point of its own, but redirects the existing one to Offset on
// backtracking.
type RetryMeElse struct{ Offset int }

// TrustMe is the terminal link of a choice chain: backtracking through
// it removes the enclosing choice point. Offset is never followed:
// choice.InternalizeChoiceInstrAt copies into it the end-marker offset
// of the TryMeElse it replaces, and nothing in the core reads it back.
type TrustMe struct{ Offset int }

func (TryMeElse) isLine()   {}
func (RetryMeElse) isLine() {}
func (TrustMe) isLine()     {}

// Death is the global-clock tick after which a dynamic clause is no
// longer visible to new calls. The zero value is not meaningful on its
// own; use DeathInf for "never dies".
type Death uint64

// DeathInf marks a dynamic clause that has not been retracted.
const DeathInf Death = 1<<64 - 1

func (d Death) String() string {
	if d == DeathInf {
		return "inf"
	}
	return fmt.Sprintf("%d", uint64(d))
}

// IsInf reports whether the clause has not been retracted.
func (d Death) IsInf() bool { return d == DeathInf }

// NextOrFail is the tri-state continuation a dynamic choice point
// threads to the next candidate: either "go on to the line N positions
// past this choice instruction" or "no live candidate remains, fail"
// (N then keeps the last offset).
type NextOrFail struct {
	fail bool
	n    int
}

// Next builds a NextOrFail that continues n lines past the choice
// instruction.
func Next(n int) NextOrFail { return NextOrFail{fail: false, n: n} }

// Fail builds a NextOrFail that fails, keeping offset n.
func Fail(n int) NextOrFail { return NextOrFail{fail: true, n: n} }

func (f NextOrFail) IsNext() bool { return !f.fail }
func (f NextOrFail) IsFail() bool { return f.fail }
func (f NextOrFail) N() int       { return f.n }

func (f NextOrFail) String() string {
	if f.fail {
		return fmt.Sprintf("Fail(%d)", f.n)
	}
	return fmt.Sprintf("Next(%d)", f.n)
}

// DynamicElse is the head of a dynamic predicate's choice chain: a
// clause born at Birth, dying at Death, with No naming where to
// continue the search when this clause is not (or no longer) a
// candidate.
type DynamicElse struct {
	Birth uint64
	Death Death
	No    NextOrFail
}

// DynamicInternalElse is an interior link of a dynamic predicate's
// choice chain; same fields as DynamicElse, distinguished only so the
// editor knows it may never be the chain's external entry point.
type DynamicInternalElse struct {
	Birth uint64
	Death Death
	No    NextOrFail
}

func (DynamicElse) isLine()         {}
func (DynamicInternalElse) isLine() {}

// RevJmpBy is a backward unconditional jump, measured as an offset
// subtracted from the current position. RevJmpBy(0) marks the end of a
// chain, and retraction writes one over an indexing block whose entries
// were folded into an earlier block, jumping back to that block.
type RevJmpBy struct{ Offset int }

// JmpBy is a forward unconditional jump of Offset lines, used to chain
// one appendix clause's dispatch code to the next during an initial
// relation compile.
type JmpBy struct {
	Arity  int
	Offset int
}

func (RevJmpBy) isLine() {}
func (JmpBy) isLine()    {}

// PtrKind distinguishes the targets a first-argument indexing entry can
// resolve to.
type PtrKind uint8

const (
	// PtrExternal targets an absolute position in the enclosing
	// predicate's code vector.
	PtrExternal PtrKind = iota
	// PtrDynamicExternal is PtrExternal for a dynamic predicate: the
	// target is expected to be a DynamicElse/DynamicInternalElse.
	PtrDynamicExternal
	// PtrInternal targets another line within the same IndexingBlock
	// (used by SwitchOnConstant/SwitchOnStructure entries that chain
	// to a deeper sub-table rather than out to a clause).
	PtrInternal
)

// CodePtr is an indexing-table entry's resolved (or not yet resolved)
// target. The zero value is the absent target (Kind == PtrExternal,
// Pos == 0 is never a legal clause start, so it doubles as "none" in
// contexts that document that convention).
type CodePtr struct {
	Kind PtrKind
	Pos  int
}

// IsZero reports whether p names no target.
func (p CodePtr) IsZero() bool { return p == CodePtr{} }

// IndexingLine is a line that may appear inside an IndexingBlock.
type IndexingLine interface {
	isIndexingLine()
}

// SwitchOnTerm is always the first line of an IndexingBlock. It routes
// on the runtime kind of the call's first argument: Var is taken when
// that argument is an unbound variable (so indexing cannot help and
// every clause must be tried), Constants/Lists/Structures point to the
// sub-tables for the other three kinds, each 0 when no clause in this
// predicate has a first argument of that kind.
type SwitchOnTerm struct {
	Var        CodePtr
	Constants  int
	Lists      int
	Structures int
}

func (*SwitchOnTerm) isIndexingLine() {}

// ConstantKey identifies a constant discriminant. The core treats it as
// an opaque, comparable token supplied by the code generator (terms are
// out of scope); typically a canonical textual form of the constant.
type ConstantKey string

// StructureKey identifies a compound term discriminant by principal
// functor and arity.
type StructureKey struct {
	Name  string
	Arity int
}

// orderedConstMap is an insertion-order-preserving map from
// ConstantKey to CodePtr. No third-party ordered-map package appears
// anywhere in the example corpus (see DESIGN.md), so this is a small,
// justified, stdlib-only helper: a slice of keys alongside a lookup
// map.
type orderedConstMap struct {
	keys []ConstantKey
	vals map[ConstantKey]CodePtr
}

func newOrderedConstMap() orderedConstMap {
	return orderedConstMap{vals: make(map[ConstantKey]CodePtr)}
}

// Get returns the target for key and whether it was present.
func (m orderedConstMap) Get(key ConstantKey) (CodePtr, bool) {
	p, ok := m.vals[key]
	return p, ok
}

// Set inserts key at the end of the iteration order if new, or updates
// its target in place if already present.
func (m *orderedConstMap) Set(key ConstantKey, p CodePtr) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = p
}

// SetFront inserts key at the start of the iteration order if new, or
// updates its target in place (without moving it) if already present.
func (m *orderedConstMap) SetFront(key ConstantKey, p CodePtr) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append([]ConstantKey{key}, m.keys...)
	}
	m.vals[key] = p
}

// Delete removes key, preserving the remaining order.
func (m *orderedConstMap) Delete(key ConstantKey) {
	if _, ok := m.vals[key]; !ok {
		return
	}
	delete(m.vals, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m orderedConstMap) Keys() []ConstantKey {
	out := make([]ConstantKey, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m orderedConstMap) Len() int { return len(m.keys) }

// orderedStructMap is orderedConstMap's StructureKey counterpart.
type orderedStructMap struct {
	keys []StructureKey
	vals map[StructureKey]CodePtr
}

func newOrderedStructMap() orderedStructMap {
	return orderedStructMap{vals: make(map[StructureKey]CodePtr)}
}

func (m orderedStructMap) Get(key StructureKey) (CodePtr, bool) {
	p, ok := m.vals[key]
	return p, ok
}

func (m *orderedStructMap) Set(key StructureKey, p CodePtr) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = p
}

func (m *orderedStructMap) SetFront(key StructureKey, p CodePtr) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append([]StructureKey{key}, m.keys...)
	}
	m.vals[key] = p
}

func (m *orderedStructMap) Delete(key StructureKey) {
	if _, ok := m.vals[key]; !ok {
		return
	}
	delete(m.vals, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

func (m orderedStructMap) Keys() []StructureKey {
	out := make([]StructureKey, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m orderedStructMap) Len() int { return len(m.keys) }

// SwitchOnConstant is a sub-table of an IndexingBlock, dispatching on
// an exact constant value.
type SwitchOnConstant struct {
	table orderedConstMap
}

// NewSwitchOnConstant returns an empty constant sub-table.
func NewSwitchOnConstant() *SwitchOnConstant {
	return &SwitchOnConstant{table: newOrderedConstMap()}
}

func (t *SwitchOnConstant) isIndexingLine() {}

func (t *SwitchOnConstant) Get(key ConstantKey) (CodePtr, bool) { return t.table.Get(key) }
func (t *SwitchOnConstant) Set(key ConstantKey, p CodePtr)      { t.table.Set(key, p) }
func (t *SwitchOnConstant) SetFront(key ConstantKey, p CodePtr) { t.table.SetFront(key, p) }
func (t *SwitchOnConstant) Delete(key ConstantKey)              { t.table.Delete(key) }
func (t *SwitchOnConstant) Keys() []ConstantKey                 { return t.table.Keys() }
func (t *SwitchOnConstant) Len() int                            { return t.table.Len() }

// SwitchOnStructure is a sub-table of an IndexingBlock, dispatching on
// principal functor and arity.
type SwitchOnStructure struct {
	table orderedStructMap
}

// NewSwitchOnStructure returns an empty structure sub-table.
func NewSwitchOnStructure() *SwitchOnStructure {
	return &SwitchOnStructure{table: newOrderedStructMap()}
}

func (t *SwitchOnStructure) isIndexingLine() {}

func (t *SwitchOnStructure) Get(key StructureKey) (CodePtr, bool) { return t.table.Get(key) }
func (t *SwitchOnStructure) Set(key StructureKey, p CodePtr)      { t.table.Set(key, p) }
func (t *SwitchOnStructure) SetFront(key StructureKey, p CodePtr) { t.table.SetFront(key, p) }
func (t *SwitchOnStructure) Delete(key StructureKey)              { t.table.Delete(key) }
func (t *SwitchOnStructure) Keys() []StructureKey                 { return t.table.Keys() }
func (t *SwitchOnStructure) Len() int                             { return t.table.Len() }

// IndexingBlock is a first-argument indexing table placed inline in a
// predicate's code vector. Lines[0] is always a *SwitchOnTerm; any
// further elements are the *SwitchOnConstant / *SwitchOnStructure
// sub-tables it points into, addressed relative to the block's own
// base position.
type IndexingBlock struct {
	Lines []IndexingLine
}

func (*IndexingBlock) isLine() {}

// SwitchOnTerm returns the block's leading dispatch line.
func (b *IndexingBlock) SwitchOnTerm() *SwitchOnTerm {
	return b.Lines[0].(*SwitchOnTerm)
}

// Opaque stands in for a line the core never analyzes: facts, queries,
// arithmetic, cut and call instructions, all owned by the external code
// generator and copied verbatim by the compiler driver. Tag is a short
// human-readable label used only for debug dumps.
type Opaque struct {
	Tag     string
	Payload interface{}
}

func (Opaque) isLine() {}
