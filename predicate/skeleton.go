package predicate

// EntryKind names which first-argument indexing sub-table (if any) a
// clause's discriminant lives in.
type EntryKind uint8

const (
	EntryNone EntryKind = iota
	EntryConstant
	EntryStructure
	EntryList
)

// OptArgIndexKey is the first-argument discriminant recorded for a
// clause: either "not indexable" (a variable head argument) or a
// populated key naming which argument position is indexed, where that
// predicate's SwitchOnTerm block starts, and which sub-table kind the
// clause's entry lives in. A key with ArgNum 0, the zero value
// included, is not indexable, just like NoIndex.
type OptArgIndexKey struct {
	none            bool
	ArgNum          int
	SwitchOnTermLoc int
	EntryKind       EntryKind
}

// NoIndex is the "non-indexable" key.
var NoIndex = OptArgIndexKey{none: true}

// NewIndexKey builds a populated key.
func NewIndexKey(argNum, switchOnTermLoc int, kind EntryKind) OptArgIndexKey {
	return OptArgIndexKey{ArgNum: argNum, SwitchOnTermLoc: switchOnTermLoc, EntryKind: kind}
}

// IsNone reports whether the clause's first argument is unindexable.
func (k OptArgIndexKey) IsNone() bool { return k.none || k.ArgNum == 0 }

// Shift returns k with its SwitchOnTermLoc moved by delta, the
// idiomatic-Go rendering of the original's `+=` operator overload on
// OptArgIndexKey (Go has none). A None key is unaffected.
func (k OptArgIndexKey) Shift(delta int) OptArgIndexKey {
	if k.IsNone() {
		return k
	}
	k.SwitchOnTermLoc += delta
	return k
}

// SameIndexedRun reports whether k and other belong to the same
// indexed sub-sequence: both indexable, on the same argument number, at
// the same SwitchOnTerm location.
func (k OptArgIndexKey) SameIndexedRun(other OptArgIndexKey) bool {
	if k.IsNone() || other.IsNone() {
		return false
	}
	return k.ArgNum == other.ArgNum && k.SwitchOnTermLoc == other.SwitchOnTermLoc
}

// ClauseIndexInfo is one clause's entry in a predicate skeleton.
type ClauseIndexInfo struct {
	OptArgIndexKey OptArgIndexKey
	ClauseStart    int
}

// Skeleton is the per-(target,name,arity) metadata parallel to the code
// vector (spec.md §3 "Predicate skeleton").
type Skeleton struct {
	Clauses            []ClauseIndexInfo
	ClauseClauseLocs   []int
	ClauseAssertMargin int
	IsDynamic          bool
}

// NewSkeleton returns an empty skeleton.
func NewSkeleton(isDynamic bool) *Skeleton {
	return &Skeleton{IsDynamic: isDynamic}
}

// Len reports the number of live clauses.
func (s *Skeleton) Len() int { return len(s.Clauses) }

// ShiftAll shifts every clause's ClauseStart and (if indexable)
// SwitchOnTermLoc by delta, used when an extensible predicate's newly
// compiled code is appended somewhere other than position 0 (spec.md
// §4.5 step 5).
func (s *Skeleton) ShiftAll(delta int) {
	for i := range s.Clauses {
		s.Clauses[i].ClauseStart += delta
		s.Clauses[i].OptArgIndexKey = s.Clauses[i].OptArgIndexKey.Shift(delta)
	}
	for i := range s.ClauseClauseLocs {
		s.ClauseClauseLocs[i] += delta
	}
}
