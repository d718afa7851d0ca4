package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/clauseforge/wam/compiler"
	"github.com/clauseforge/wam/indexing"
	"github.com/clauseforge/wam/instr"
	"github.com/clauseforge/wam/invariant"
	"github.com/clauseforge/wam/journal"
	"github.com/clauseforge/wam/predicate"
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: clausedump [options]

Builds a small program through the public compiler API (one indexed
static predicate, one dynamic predicate asserted then retracted) and
reports on its internal state. There is no file argument: term parsing
and code generation are external-collaborator concerns this core does
not implement, so clausedump exercises the core directly instead of
reading a source file.

options:
`)
		flag.PrintDefaults()
		os.Exit(1)
	}
}

var (
	flagChains  = flag.Bool("chains", false, "print each predicate's try/retry/trust chain")
	flagIndex   = flag.Bool("index", false, "print first-argument indexing tables")
	flagJournal = flag.Bool("journal", false, "print the retraction journal's binary trace length")
	flagCheck   = flag.Bool("check", false, "run the invariant checker and report violations")
)

func main() {
	flag.Parse()

	if !*flagChains && !*flagIndex && !*flagJournal && !*flagCheck {
		flag.Usage()
	}

	prog, j, blockPos := buildDemo()

	if *flagChains {
		printChains(prog)
	}
	if *flagIndex {
		printIndex(prog, blockPos)
	}
	if *flagJournal {
		printJournal(j)
	}
	if *flagCheck {
		printCheck(prog)
	}
}

// buildDemo assembles a small program directly through the compiler
// package's incremental operations: p/1 indexed on three integer
// constants (spec.md scenario S1), and d/1, a dynamic predicate
// asserted once and then retracted (scenario S4), its clause left in
// the code vector with a finite death rather than unlinked.
func buildDemo() (*predicate.Program, *journal.Journal, int) {
	prog := predicate.New()
	j := journal.Open()

	pKey := predicate.Key{Name: "p", Arity: 1}
	pSk := journal.SkeletonKey{Target: predicate.TargetUser{}, Key: pKey}
	pSkel := prog.Skeleton(predicate.TargetUser{}, pKey, false)

	blockPos := len(prog.Code)
	prog.Code = append(prog.Code, &instr.IndexingBlock{Lines: []instr.IndexingLine{&instr.SwitchOnTerm{}}})

	for i, tag := range []string{"1", "2", "3"} {
		disc := indexing.ConstDiscriminant(instr.ConstantKey(tag))
		key := predicate.NewIndexKey(1, blockPos, predicate.EntryConstant)
		entry, changed := compiler.AppendCompiledClause(prog, j, pSk, pSkel, instr.Code{instr.Opaque{Tag: "p(" + tag + ")"}}, key, nil, 0)
		indexing.MergeClauseIndex(prog.Code, blockPos, disc, instr.CodePtr{Kind: instr.PtrExternal, Pos: pSkel.Clauses[i].ClauseStart}, indexing.Append, j)
		if changed {
			blk := prog.Code[blockPos].(*instr.IndexingBlock)
			blk.SwitchOnTerm().Var = instr.CodePtr{Kind: instr.PtrExternal, Pos: pSkel.Clauses[0].ClauseStart}
			prog.SetEntryPtr(predicate.TargetUser{}, pKey, entry)
		}
	}

	dKey := predicate.Key{Name: "d", Arity: 1}
	dSk := journal.SkeletonKey{Target: predicate.TargetUser{}, Key: dKey}
	dSkel := prog.Skeleton(predicate.TargetUser{}, dKey, true)

	entry, _ := compiler.AppendCompiledClause(prog, j, dSk, dSkel, instr.Code{instr.Opaque{Tag: "d(1)"}}, predicate.NoIndex, nil, 5)
	prog.SetEntryPtr(predicate.TargetUser{}, dKey, entry)
	compiler.MirrorAssert(prog, j, dSk, dSkel, 0, instr.Code{instr.Opaque{Tag: "$clause(d(1),true)"}}, 5)
	compiler.MirrorRetract(prog, j, dSkel, 0, 7)
	compiler.RetractDynamicClause(prog, j, dSk, dSkel, 0, 7)

	return prog, j, blockPos
}

func printChains(prog *predicate.Program) {
	fmt.Println("chains:")
	prog.ForEachSkeleton(func(t predicate.Target, k predicate.Key, s *predicate.Skeleton, entry predicate.EntryPtr) {
		fmt.Printf("  %s/%s: ", t, k)
		start, ok := invariant.EntryChoicePos(prog.Code, entry)
		if !ok {
			fmt.Println("(undefined entry)")
			return
		}
		fmt.Println(invariant.Walk(prog.Code, start))
	})
}

func printIndex(prog *predicate.Program, blockPos int) {
	fmt.Println("indexing tables:")
	blk, ok := prog.Code[blockPos].(*instr.IndexingBlock)
	if !ok {
		fmt.Println("  (no indexing block in demo program)")
		return
	}
	sot := blk.SwitchOnTerm()
	fmt.Printf("  block %d: var -> %d\n", blockPos, sot.Var.Pos)
	if sot.Constants != 0 {
		tbl := blk.Lines[sot.Constants].(*instr.SwitchOnConstant)
		for _, key := range tbl.Keys() {
			p, _ := tbl.Get(key)
			fmt.Printf("    constant %q -> %d\n", key, p.Pos)
		}
	}
}

func printJournal(j *journal.Journal) {
	fmt.Printf("journal: %d records pushed, %d trace entries\n", j.Len(), j.TraceLen())
}

func printCheck(prog *predicate.Program) {
	violations := invariant.Check(prog)
	if len(violations) == 0 {
		fmt.Println("check: no invariant violations")
		return
	}
	fmt.Printf("check: %d violation(s):\n", len(violations))
	for _, v := range violations {
		fmt.Printf("  %s\n", v)
	}
}
