package predicate

import "github.com/clauseforge/wam/instr"

// ClauseClauseKey is the fixed key the $clause/2 mirror predicate is
// filed under, in the reserved TargetBuiltins module (spec.md §4.9).
var ClauseClauseKey = Key{Name: "$clause", Arity: 2}

// Program is the in-memory image the compiler operates on: the code
// vector, every target's code index and skeleton registry, and the
// shared $clause/2 mirror skeleton. It is the Go analogue of
// go-interpreter-wagon's wasm.Module, which likewise groups every
// section a later pass needs into one addressable unit.
type Program struct {
	Code  instr.Code
	Clock uint64
	byTgt map[Target]*targetIndex
	// ClauseClause is the single, shared $clause/2 mirror skeleton
	// living under TargetBuiltins; every dynamic predicate's clauses
	// are mirrored here in compile order (spec.md §4.9). It is the
	// same *Skeleton LookupSkeleton(TargetBuiltins, ClauseClauseKey)
	// returns, registered in the normal per-target registry rather
	// than held only by this field, so journal records produced while
	// editing it (InsertedSkeletonClause and friends, which all resolve
	// their skeleton by (Target, Key) on replay) find it like any other
	// skeleton.
	ClauseClause *Skeleton
}

// New returns an empty Program.
func New() *Program {
	p := &Program{byTgt: make(map[Target]*targetIndex)}
	p.ClauseClause = p.Skeleton(TargetBuiltins, ClauseClauseKey, true)
	return p
}

func (p *Program) target(t Target) *targetIndex {
	ti, ok := p.byTgt[t]
	if !ok {
		ti = newTargetIndex()
		p.byTgt[t] = ti
	}
	return ti
}

// EntryPtr returns the current code-index entry for key under target,
// and whether one has ever been recorded.
func (p *Program) EntryPtr(t Target, key Key) (EntryPtr, bool) {
	e, ok := p.target(t).code[key]
	if !ok {
		return EntryPtr{}, false
	}
	return *e, true
}

// SetEntryPtr records the code-index entry for key under target,
// returning the previous value (the zero EntryPtr, Kind Undefined, if
// none existed).
func (p *Program) SetEntryPtr(t Target, key Key, e EntryPtr) EntryPtr {
	ti := p.target(t)
	old, ok := ti.code[key]
	prev := EntryPtr{}
	if ok {
		prev = *old
		*old = e
	} else {
		v := e
		ti.code[key] = &v
	}
	return prev
}

// Skeleton returns the (owning) skeleton for key under target, creating
// one if this is the first definition, per spec.md §3 "Lifecycle".
func (p *Program) Skeleton(t Target, key Key, isDynamic bool) *Skeleton {
	ti := p.target(t)
	s, ok := ti.skeletons[key]
	if !ok {
		s = NewSkeleton(isDynamic)
		ti.skeletons[key] = s
	}
	return s
}

// LookupSkeleton returns the skeleton for key under target without
// creating one.
func (p *Program) LookupSkeleton(t Target, key Key) (*Skeleton, bool) {
	s, ok := p.target(t).skeletons[key]
	return s, ok
}

// RemoveSkeleton deletes key's skeleton and code-index entry under
// target (abolish).
func (p *Program) RemoveSkeleton(t Target, key Key) {
	ti := p.target(t)
	delete(ti.skeletons, key)
	delete(ti.code, key)
}

// LocalSkeleton returns the loading-target shadow skeleton for key
// recorded under loadingTarget, per spec.md S6 and SPEC_FULL §4: a
// predicate compiled under owner while the active load target is a
// different module records a shadow here, so abolishing loadingTarget
// never disturbs owner's real skeleton.
func (p *Program) LocalSkeleton(loadingTarget Target, key Key, isDynamic bool) *Skeleton {
	ti := p.target(loadingTarget)
	s, ok := ti.local[key]
	if !ok {
		s = NewSkeleton(isDynamic)
		ti.local[key] = s
	}
	return s
}

// RemoveLocalSkeletons drops every local shadow registered under
// loadingTarget, without touching the owning targets' real skeletons.
func (p *Program) RemoveLocalSkeletons(loadingTarget Target) {
	ti := p.target(loadingTarget)
	ti.local = make(map[Key]*Skeleton)
}

// ForEachSkeleton calls fn once per (target, key) owning skeleton
// currently registered, passing its current code-index entry pointer
// alongside it. Iteration order is unspecified (Go map order), which is
// fine for every use (invariant checking, dumping) since each call is
// independent of the others.
func (p *Program) ForEachSkeleton(fn func(t Target, k Key, s *Skeleton, entry EntryPtr)) {
	for t, ti := range p.byTgt {
		for k, s := range ti.skeletons {
			e := EntryPtr{}
			if ep, ok := ti.code[k]; ok {
				e = *ep
			}
			fn(t, k, s, e)
		}
	}
}
