// Package collab specifies the interfaces the compiler driver consumes
// from, and exposes to, its external collaborators (spec.md §6): the
// term preprocessor and the per-clause code generator. Neither
// source-level parsing nor term-to-WAM code generation for a single
// clause is implemented here — both are explicit Non-goals (spec.md
// §1) — only the contracts the core core needs from them.
package collab

import (
	"github.com/clauseforge/wam/instr"
	"github.com/clauseforge/wam/predicate"
)

// Term is an opaque handle to a parsed term. Its structure belongs to
// the external term representation, out of scope here.
type Term interface{}

// TopLevel is the canonical form try_term_to_tl produces: a fact, a
// rule, a predicate grouping several clauses, or a query.
type TopLevel interface {
	isTopLevel()
}

// Fact is a single-clause definition with no body.
type Fact struct{ Head Term }

// Rule is a Head :- Body clause.
type Rule struct {
	Head Term
	Body Term
}

// Query is a directive-shaped top-level term; it is never compiled as
// a clause (see wamerr.QueryCannotBeDefinedAsFact).
type Query struct{ Goal Term }

func (Fact) isTopLevel()  {}
func (Rule) isTopLevel()  {}
func (Query) isTopLevel() {}

// Settings is the Go name for CodeGenSettings (spec.md §6): it drives
// the code generator's choice of dynamic vs. static opcodes and the
// driver's decision whether to register the compiled predicate for
// later incremental operations.
type Settings struct {
	// GlobalClockTick, if non-nil, causes dynamic choice instructions
	// to be emitted carrying this birth tick; if nil, static
	// TryMeElse/RetryMeElse/TrustMe chains are emitted instead.
	GlobalClockTick *uint64
	IsExtensible    bool
	NonCountedBT    bool
}

// IsDynamic reports whether Settings calls for dynamic choice
// instructions.
func (s Settings) IsDynamic() bool { return s.GlobalClockTick != nil }

// Preprocessor converts parsed terms into TopLevel forms and drains the
// auxiliary-predicate queue produced as a side effect of that
// conversion (spec.md §6, try_term_to_tl / parse_queue).
type Preprocessor interface {
	TryTermToTopLevel(t Term) (TopLevel, error)
	ParseQueue() ([]TopLevel, error)
}

// CodeGenerator emits a block of instruction lines for a single
// predicate, fact, or rule (spec.md §6, compile_predicate / compile_fact
// / compile_rule). Its required contract: a predicate block of n > 1
// clauses begins with TryMeElse (or its dynamic form); intermediate
// clauses begin with RetryMeElse; the last with TrustMe. A block with
// n == 1 begins with a stub TryMeElse(0). Indexed blocks are fronted by
// a SwitchOnTerm plus sub-tables.
//
// Skeleton and JmpByLocs report side effects of the most recent
// CompilePredicate call: the partial clause-index metadata (start
// offsets, opt_arg_index_key) the generator assigned each clause, and
// the positions of any JmpBy lines still awaiting the driver's offset
// patch (patchJmpBy in package compiler).
type CodeGenerator interface {
	CompilePredicate(clauses []TopLevel) (instr.Code, error)
	CompileFact(fact TopLevel) (instr.Code, error)
	CompileRule(rule TopLevel) (instr.Code, error)

	Skeleton() predicate.Skeleton
	JmpByLocs() []int
}

// GeneratorFactory builds a fresh CodeGenerator configured by settings,
// the way the original's LoadState constructs one CodeGenerator per
// compile session.
type GeneratorFactory func(settings Settings) CodeGenerator
