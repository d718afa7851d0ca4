package compiler

import (
	"fmt"
	"os"

	"github.com/clauseforge/wam/collab"
	"github.com/clauseforge/wam/instr"
	"github.com/clauseforge/wam/journal"
	"github.com/clauseforge/wam/predicate"
	"github.com/clauseforge/wam/wamerr"
)

// Compile implements the compiler driver (spec.md §4.5, C6): it turns
// terms into the predicate's code and registers it under key. Term
// parsing and single-clause code generation are the explicit
// responsibility of pp and newGen (spec.md §6, §1 Non-goals); this
// function owns only the five steps that are this package's concern:
// preprocessing fan-out, appendix compilation, jmp_by patching,
// extensible-predicate integration, and the code-index update.
func Compile(prog *predicate.Program, j *journal.Journal, target predicate.Target, key predicate.Key, terms []collab.Term, pp collab.Preprocessor, newGen collab.GeneratorFactory, settings collab.Settings) (predicate.EntryPtr, error) {
	sk := journal.SkeletonKey{Target: target, Key: key}
	gen := newGen(settings)

	clauses := make([]collab.TopLevel, 0, len(terms))
	for i, t := range terms {
		tl, err := pp.TryTermToTopLevel(t)
		if err != nil {
			return predicate.EntryPtr{}, wamerr.OpError{Name: key.Name, Arity: key.Arity, Pos: i, Err: err}
		}
		if _, isQuery := tl.(collab.Query); isQuery {
			return predicate.EntryPtr{}, wamerr.OpError{Name: key.Name, Arity: key.Arity, Pos: i, Err: wamerr.QueryCannotBeDefinedAsFact{}}
		}
		clauses = append(clauses, tl)
	}

	start := len(prog.Code)

	code, err := gen.CompilePredicate(clauses)
	if err != nil {
		return predicate.EntryPtr{}, wamerr.OpError{Name: key.Name, Arity: key.Arity, Pos: start, Err: err}
	}
	jmpLocs := gen.JmpByLocs()
	genSkeleton := gen.Skeleton()

	appendix, err := pp.ParseQueue()
	if err != nil {
		return predicate.EntryPtr{}, wamerr.OpError{Name: key.Name, Arity: key.Arity, Pos: start, Err: err}
	}
	appendixCode, err := compileAppendix(gen, appendix)
	if err != nil {
		return predicate.EntryPtr{}, wamerr.OpError{Name: key.Name, Arity: key.Arity, Pos: start, Err: err}
	}

	j.Push(journal.TruncateCode{OldLen: start})
	prog.Code = append(prog.Code, code...)
	prog.Code = append(prog.Code, appendixCode...)

	patchJmpBy(prog.Code, jmpLocs, len(prog.Code), j)

	genSkeleton.ShiftAll(start)
	integrateSkeleton(prog, sk, target, key, settings, &genSkeleton, j)

	entryKind := predicate.Index
	if settings.IsDynamic() {
		entryKind = predicate.DynamicIndex
	}
	entry := predicate.EntryPtr{Kind: entryKind, Pos: start}
	old := prog.SetEntryPtr(target, key, entry)
	j.Push(journal.ReplacedCodeIndex{SkeletonKey: sk, Old: old})
	warnOnOverwrite(target, key, old)

	logger.Printf("compile: %s at %d (%d clauses, %d appendix bytes)", key, start, genSkeleton.Len(), len(appendixCode))
	return entry, nil
}

// compileAppendix implements compile_appendix (spec.md §4.5 step 4):
// every auxiliary top-level the preprocessor queued while converting
// the primary clauses is compiled in isolation and concatenated.
func compileAppendix(gen collab.CodeGenerator, appendix []collab.TopLevel) (instr.Code, error) {
	var out instr.Code
	for _, tl := range appendix {
		var (
			code instr.Code
			err  error
		)
		switch v := tl.(type) {
		case collab.Fact:
			code, err = gen.CompileFact(v)
		case collab.Rule:
			code, err = gen.CompileRule(v)
		default:
			return nil, wamerr.ExpectedRelation{}
		}
		if err != nil {
			return nil, err
		}
		out = append(out, code...)
	}
	return out, nil
}

// patchJmpBy implements spec.md §4.5 step 4's offset fixup: each
// recorded JmpBy line, written by the code generator with a
// placeholder offset, is rewritten to jump to codeLen (the position
// immediately past everything just appended, the end of the appendix
// block).
func patchJmpBy(code instr.Code, locs []int, codeLen int, j *journal.Journal) {
	for _, pos := range locs {
		old := code[pos].(instr.JmpBy)
		j.Push(journal.ReplacedLine{Pos: pos, Old: old})
		old.Offset = codeLen - pos
		code[pos] = old
	}
}

// integrateSkeleton implements spec.md §4.5 step 5. A non-extensible
// predicate, or one compiled for the first time, gets genSkeleton
// registered wholesale. Recompiling an already-registered extensible
// predicate (e.g. re-consulting the same source) truncates the prior
// skeleton's metadata in favor of the fresh one. Either way the prior
// skeleton (an empty one if none was registered) is journalled first as
// a journal.RemovedSkeleton record, which on replay puts back that exact
// prior *Skeleton value; integration does not attempt to
// merge the old and new clause sets clause-by-clause, since a source
// file being reloaded is expected to fully supersede its previous
// compilation, not extend it (see DESIGN.md, spec.md §9 Open Question
// (c)).
func integrateSkeleton(prog *predicate.Program, sk journal.SkeletonKey, target predicate.Target, key predicate.Key, settings collab.Settings, genSkeleton *predicate.Skeleton, j *journal.Journal) {
	genSkeleton.IsDynamic = settings.IsDynamic()

	// Whether later asserta/assertz/retract calls are permitted against
	// this predicate is Settings.IsExtensible's only effect; a predicate
	// compiled non-extensible simply never has AppendCompiledClause/
	// PrependCompiledClause/RetractClause called against it afterward.
	// The integration step itself is identical either way.
	existing, hadExisting := prog.LookupSkeleton(target, key)
	old := predicate.NewSkeleton(genSkeleton.IsDynamic)
	if hadExisting {
		old = snapshotSkeleton(existing)
	}
	j.Push(journal.RemovedSkeleton{SkeletonKey: sk, Old: old})

	*prog.Skeleton(target, key, genSkeleton.IsDynamic) = *genSkeleton
}

// warnOnOverwrite implements spec.md §7's sole non-fatal user-visible
// output: a live (previously Index/DynamicIndex) entry silently being
// replaced by a recompile is otherwise invisible to whoever is
// reloading a source file, so it gets a one-line warning. Redefining a
// predicate that was previously Undefined is routine (the predicate's
// very first definition) and never warned about, and neither is any
// redefinition under the builtins or loader modules, which are
// expected to be recompiled freely by the runtime itself.
func warnOnOverwrite(target predicate.Target, key predicate.Key, old predicate.EntryPtr) {
	if !old.IsDefined() {
		return
	}
	if target == predicate.TargetBuiltins || target == predicate.TargetLoader {
		return
	}
	fmt.Fprintf(os.Stderr, "Warning: overwriting %s/%d\n", key.Name, key.Arity)
}

// snapshotSkeleton copies s's slice fields so a journal record storing
// it as "the prior state" is unaffected by later in-place mutation of
// the live skeleton.
func snapshotSkeleton(s *predicate.Skeleton) *predicate.Skeleton {
	cp := *s
	cp.Clauses = append([]predicate.ClauseIndexInfo(nil), s.Clauses...)
	cp.ClauseClauseLocs = append([]int(nil), s.ClauseClauseLocs...)
	return &cp
}
