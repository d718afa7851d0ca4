package predicate

import "fmt"

// Key identifies a predicate by name and arity within one compilation
// target.
type Key struct {
	Name  string
	Arity int
}

func (k Key) String() string { return fmt.Sprintf("%s/%d", k.Name, k.Arity) }

// Target is the Go rendering of the original's CompilationTarget enum:
// a predicate either belongs to the user's default namespace or to a
// named module. Modelled as a small closed interface since Go has no
// sum types.
type Target interface {
	isTarget()
	String() string
}

// TargetUser is the default, unnamed compilation target.
type TargetUser struct{}

func (TargetUser) isTarget()     {}
func (TargetUser) String() string { return "user" }

// TargetModule is a named module's compilation target.
type TargetModule struct{ Name string }

func (TargetModule) isTarget()       {}
func (t TargetModule) String() string { return t.Name }

// TargetBuiltins is the reserved target the $clause/2 mirror and other
// protected predicates live under.
var TargetBuiltins = TargetModule{Name: "builtins"}

// TargetLoader is the reserved target the module/consult machinery
// compiles its own bootstrap predicates under. Like TargetBuiltins, a
// redefinition here is routine housekeeping rather than something a
// user should be warned about (spec.md §7).
var TargetLoader = TargetModule{Name: "loader"}
