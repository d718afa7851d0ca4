package predicate

// LowerBoundOfTargetClause scans backwards from targetPos-1 while the
// clause's first-argument index key stays part of the same indexed run
// as targetPos's, returning the first index of that run (spec.md §4.4).
// A clause with a None key never joins a run, so the scan stops the
// instant it meets one.
func LowerBoundOfTargetClause(s *Skeleton, targetPos int) int {
	if targetPos <= 0 || targetPos >= len(s.Clauses) {
		return targetPos
	}
	return LowerBoundForKey(s, targetPos, s.Clauses[targetPos].OptArgIndexKey)
}

// LowerBoundForKey is LowerBoundOfTargetClause generalized to a clause
// not yet present in s.Clauses (the append/prepend case, where the key
// is known before the clause is spliced in).
func LowerBoundForKey(s *Skeleton, targetPos int, key OptArgIndexKey) int {
	if key.IsNone() || targetPos <= 0 {
		return targetPos
	}
	lower := targetPos
	for lower > 0 && lower-1 < len(s.Clauses) && s.Clauses[lower-1].OptArgIndexKey.SameIndexedRun(key) {
		lower--
	}
	return lower
}

// MergeableIndexedSubsequences reports whether removing the clause at
// target would leave the run ending just before it (starting at lower)
// and the run starting just after it indexed on the same argument
// position as each other but through two distinct SwitchOnTerm blocks
// (spec.md §4.4): that is the case a physical merge_indices fold
// applies to, since a shared block (SameIndexedRun already true
// between the two) needs no further consolidation — it is already one
// table. lower == target means there is no surviving clause before the
// gap to merge with.
func MergeableIndexedSubsequences(s *Skeleton, lower, target int) bool {
	if target+1 >= len(s.Clauses) {
		return false
	}
	if lower < 0 || lower >= len(s.Clauses) || lower == target {
		return false
	}
	before := s.Clauses[lower].OptArgIndexKey
	after := s.Clauses[target+1].OptArgIndexKey
	if before.IsNone() || after.IsNone() {
		return false
	}
	if before.ArgNum != after.ArgNum {
		return false
	}
	return before.SwitchOnTermLoc != after.SwitchOnTermLoc
}
