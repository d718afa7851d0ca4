package compiler

import (
	"github.com/clauseforge/wam/collab"
	"github.com/clauseforge/wam/indexing"
	"github.com/clauseforge/wam/instr"
	"github.com/clauseforge/wam/invariant"
	"github.com/clauseforge/wam/journal"
	"github.com/clauseforge/wam/predicate"
	"github.com/clauseforge/wam/wamerr"
)

// Session is the boundary spec.md §5 describes: it owns the Program for
// the duration of one compile/assert/retract call, opens a journal
// window per call, and guarantees the window is either fully committed
// or fully replayed before the call returns or panics past this frame.
// Clock is the enclosing machine's observed tick (Design Notes: "owned
// not observed" is backwards — this core only reads it to stamp
// dynamic births/deaths, it never advances time on its own).
type Session struct {
	Prog  *predicate.Program
	Clock uint64
}

// NewSession wraps an existing Program. Clock starts at 0; callers that
// track a running global clock should set s.Clock directly before each
// dynamic operation.
func NewSession(prog *predicate.Program) *Session {
	return &Session{Prog: prog}
}

// run opens a fresh journal window, runs fn inside it, and enforces
// spec.md §5's cancellation rule: a returned error replays the window
// before propagating. After fn succeeds the invariant checker runs, and
// if it reports anything run panics with the first invariant.Violation
// (spec.md §7, "unrecoverable programming error"); a deferred replay
// leaves the Program as it found it while the panic continues upward,
// unrecovered. A clean return commits the window. In every case the
// journal is closed before run returns.
func (sess *Session) run(fn func(j *journal.Journal) error) (err error) {
	j := journal.Open()
	committed := false
	defer func() {
		if !committed {
			j.Replay(sess.Prog)
		}
		j.Close()
	}()

	if err = fn(j); err != nil {
		return err
	}

	if violations := invariant.Check(sess.Prog); len(violations) > 0 {
		panic(violations[0])
	}

	j.Commit()
	committed = true
	return nil
}

// Compile wraps the package-level Compile in a journal window (spec.md
// §4.5).
func (sess *Session) Compile(target predicate.Target, key predicate.Key, terms []collab.Term, pp collab.Preprocessor, newGen collab.GeneratorFactory, settings collab.Settings) (entry predicate.EntryPtr, err error) {
	err = sess.run(func(j *journal.Journal) error {
		var innerErr error
		entry, innerErr = Compile(sess.Prog, j, target, key, terms, pp, newGen, settings)
		return innerErr
	})
	return entry, err
}

// AssertZ implements assertz (spec.md §4.6) for an already-compiled
// clause: it appends clauseCode to key's skeleton (creating it, dynamic
// per mirrorCode's presence, if this is the first clause) and, when the
// predicate is dynamic, mirrors the new clause into $clause/2 via
// mirrorCode (spec.md §4.9). mirrorCode is nil for a static assert.
func (sess *Session) AssertZ(target predicate.Target, key predicate.Key, clauseCode instr.Code, newKey predicate.OptArgIndexKey, disc *indexing.Discriminant, mirrorCode instr.Code) (entry predicate.EntryPtr, changed bool, err error) {
	err = sess.run(func(j *journal.Journal) error {
		sk := journal.SkeletonKey{Target: target, Key: key}
		s := sess.Prog.Skeleton(target, key, mirrorCode != nil)
		pos := s.Len()
		entry, changed = AppendCompiledClause(sess.Prog, j, sk, s, clauseCode, newKey, disc, sess.Clock)
		if mirrorCode != nil {
			MirrorAssert(sess.Prog, j, sk, s, pos, mirrorCode, sess.Clock)
		}
		return nil
	})
	return entry, changed, err
}

// AssertA implements asserta (spec.md §4.6/§4.8): symmetric to AssertZ
// but prepends clauseCode ahead of key's existing clauses and, for a
// dynamic predicate, mirrors at position 0.
func (sess *Session) AssertA(target predicate.Target, key predicate.Key, clauseCode instr.Code, newKey predicate.OptArgIndexKey, disc *indexing.Discriminant, mirrorCode instr.Code) (entry predicate.EntryPtr, changed bool, err error) {
	err = sess.run(func(j *journal.Journal) error {
		sk := journal.SkeletonKey{Target: target, Key: key}
		s := sess.Prog.Skeleton(target, key, mirrorCode != nil)
		entry, changed = PrependCompiledClause(sess.Prog, j, sk, s, clauseCode, newKey, disc, sess.Clock)
		if mirrorCode != nil {
			MirrorAssert(sess.Prog, j, sk, s, 0, mirrorCode, sess.Clock)
		}
		return nil
	})
	return entry, changed, err
}

// Retract implements retract (spec.md §4.7): a static predicate's
// clause at pos is unlinked from its choice chain; a dynamic
// predicate's clause is instead stamped dead at Clock and its $clause/2
// mirror entry is stamped dead alongside it, per §4.9's "assert/retract
// mirror their edits in the same order."
func (sess *Session) Retract(target predicate.Target, key predicate.Key, pos int, disc *indexing.Discriminant) (entry predicate.EntryPtr, changed bool, err error) {
	err = sess.run(func(j *journal.Journal) error {
		s, ok := sess.Prog.LookupSkeleton(target, key)
		if !ok || pos < 0 || pos >= s.Len() {
			return wamerr.ExistenceError{Kind: wamerr.ExistenceProcedure, Name: key.Name}
		}
		sk := journal.SkeletonKey{Target: target, Key: key}

		if s.IsDynamic {
			MirrorRetract(sess.Prog, j, s, pos, sess.Clock)
			RetractDynamicClause(sess.Prog, j, sk, s, pos, sess.Clock)
			return nil
		}

		entry, changed = RetractClause(sess.Prog, j, sk, s, pos, disc)
		return nil
	})
	return entry, changed, err
}
