// Package wamerr collects the error taxonomy raised by the compiler,
// indexing, choice-chain and journal packages: one concrete Go type per
// error kind, each naming exactly what went wrong, in the style of
// go-interpreter-wagon's validate/error.go.
package wamerr

import "fmt"

// NamelessEntry is returned when a clause's head has no name to key a
// predicate by (e.g. a bare variable or number used where a callable
// term was required).
type NamelessEntry struct{}

func (NamelessEntry) Error() string { return "clause head has no name" }

// ExpectedRelation is returned when a term that was expected to be a
// clause (a fact or a Head :- Body rule) is something else.
type ExpectedRelation struct{}

func (ExpectedRelation) Error() string { return "expected a fact or a rule, found neither" }

// ExistenceErrorKind names what kind of entity an ExistenceError is
// about.
type ExistenceErrorKind uint8

const (
	ExistenceModule ExistenceErrorKind = iota
	ExistenceProcedure
	ExistenceSource
	ExistenceStream
)

func (k ExistenceErrorKind) String() string {
	switch k {
	case ExistenceModule:
		return "module"
	case ExistenceProcedure:
		return "procedure"
	case ExistenceSource:
		return "source_sink"
	case ExistenceStream:
		return "stream"
	default:
		return "unknown"
	}
}

// ExistenceError is returned when an operation names an entity (a
// module, a procedure, a source file, a stream) that does not exist.
type ExistenceError struct {
	Kind ExistenceErrorKind
	Name string
}

func (e ExistenceError) Error() string {
	return fmt.Sprintf("existence_error(%s, %s)", e.Kind, e.Name)
}

// CannotOverwriteBuiltIn is returned when an incremental operation
// targets a predicate the runtime reserves as a built-in.
type CannotOverwriteBuiltIn struct {
	Name  string
	Arity int
}

func (e CannotOverwriteBuiltIn) Error() string {
	return fmt.Sprintf("cannot overwrite built-in procedure %s/%d", e.Name, e.Arity)
}

// CannotOverwriteImport is returned when an incremental operation
// targets a predicate imported from another module rather than defined
// locally.
type CannotOverwriteImport struct {
	Name   string
	Arity  int
	Module string
}

func (e CannotOverwriteImport) Error() string {
	return fmt.Sprintf("cannot overwrite %s/%d, imported from %s", e.Name, e.Arity, e.Module)
}

// InvalidFileName is returned when a source name supplied to the loader
// is not a usable file name.
type InvalidFileName struct{ Name string }

func (e InvalidFileName) Error() string { return fmt.Sprintf("invalid file name %q", e.Name) }

// ModuleDoesNotContainExport is returned when a module is asked to
// export a predicate it never defined.
type ModuleDoesNotContainExport struct {
	Module string
	Name   string
	Arity  int
}

func (e ModuleDoesNotContainExport) Error() string {
	return fmt.Sprintf("module %s does not define %s/%d", e.Module, e.Name, e.Arity)
}

// OpIsInfixAndPostFix is returned when an operator definition would
// make a single operator both infix and postfix, which the term reader
// cannot disambiguate.
type OpIsInfixAndPostFix struct{ Name string }

func (e OpIsInfixAndPostFix) Error() string {
	return fmt.Sprintf("operator %q cannot be both infix and postfix", e.Name)
}

// ParserError wraps an error surfaced by the (external) term reader
// while the loader was pulling the next clause from the input stream.
type ParserError struct{ Err error }

func (e ParserError) Error() string { return fmt.Sprintf("parser error: %v", e.Err) }
func (e ParserError) Unwrap() error { return e.Err }

// QueryCannotBeDefinedAsFact is returned when a directive-shaped term
// (e.g. a bare `:- Goal`) is submitted where a definable clause was
// expected.
type QueryCannotBeDefinedAsFact struct{}

func (QueryCannotBeDefinedAsFact) Error() string {
	return "a query cannot be asserted as a fact"
}

// OpError wraps any of the above with the predicate and position the
// incremental operation was acting on, the way validate.Error wraps a
// validation failure with its function and byte offset.
type OpError struct {
	Name  string
	Arity int
	Pos   int
	Err   error
}

func (e OpError) Error() string {
	return fmt.Sprintf("error compiling %s/%d at position %d: %v", e.Name, e.Arity, e.Pos, e.Err)
}

func (e OpError) Unwrap() error { return e.Err }
