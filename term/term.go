package term

import (
	"fmt"
	"strconv"
	"strings"
)

// Term is the expression language. Every variant is a pointer type.
type Term interface {
	Content
	isTerm()
}

// Literals
type Int struct{ Value int64 }
type Nat struct{ Value uint64 }
type Float struct{ Value float64 }
type Boolean struct{ Value bool }
type Text struct{ Value string }
type Char struct{ Value rune }

// Blank is a typed hole.
type Blank struct{}

// Ref references a named definition.
type Ref struct {
	Reference Reference
}

// Constructor is data constructor Tag of the type named by Ref.
type Constructor struct {
	Ref Reference
	Tag uint64
}

// Request is operation Tag of the ability named by Ref.
type Request struct {
	Ref Reference
	Tag uint64
}

// Handle evaluates Body with Handler installed for the requests it performs.
type Handle struct {
	Handler ABT
	Body    ABT
}

type App struct {
	Fn  ABT
	Arg ABT
}

// Ann is a term annotated with a type. The type is carried, never checked.
type Ann struct {
	Term ABT
	Type ABT
}

type Sequence struct {
	Items []ABT
}

type If struct {
	Cond, Then, Else ABT
}

type And struct {
	Left, Right ABT
}

type Or struct {
	Left, Right ABT
}

// Lam is a one-argument function. Body is an Abs naming the parameter.
type Lam struct {
	Body ABT
}

// LetRec is the body of a Cycle: its bindings may refer to the binders of
// the enclosing Abs chain.
type LetRec struct {
	Bindings []ABT
	Body     ABT
}

// Let binds Binding in Body, which is an Abs naming the bound variable.
type Let struct {
	Binding ABT
	Body    ABT
}

type Match struct {
	Scrutinee ABT
	Cases     []MatchCase
}

// MatchCase is one arm of a Match. Guard is nil when absent. Body (and
// Guard) are Abs chains with one binder per binding the pattern produces.
type MatchCase struct {
	Pattern Pattern
	Guard   ABT
	Body    ABT
}

type TermLink struct {
	Referent Referent
}

type TypeLink struct {
	Reference Reference
}

func (*Int) isContent()         {}
func (*Nat) isContent()         {}
func (*Float) isContent()       {}
func (*Boolean) isContent()     {}
func (*Text) isContent()        {}
func (*Char) isContent()        {}
func (*Blank) isContent()       {}
func (*Ref) isContent()         {}
func (*Constructor) isContent() {}
func (*Request) isContent()     {}
func (*Handle) isContent()      {}
func (*App) isContent()         {}
func (*Ann) isContent()         {}
func (*Sequence) isContent()    {}
func (*If) isContent()          {}
func (*And) isContent()         {}
func (*Or) isContent()          {}
func (*Lam) isContent()         {}
func (*LetRec) isContent()      {}
func (*Let) isContent()         {}
func (*Match) isContent()       {}
func (*TermLink) isContent()    {}
func (*TypeLink) isContent()    {}

func (*Int) isTerm()         {}
func (*Nat) isTerm()         {}
func (*Float) isTerm()       {}
func (*Boolean) isTerm()     {}
func (*Text) isTerm()        {}
func (*Char) isTerm()        {}
func (*Blank) isTerm()       {}
func (*Ref) isTerm()         {}
func (*Constructor) isTerm() {}
func (*Request) isTerm()     {}
func (*Handle) isTerm()      {}
func (*App) isTerm()         {}
func (*Ann) isTerm()         {}
func (*Sequence) isTerm()    {}
func (*If) isTerm()          {}
func (*And) isTerm()         {}
func (*Or) isTerm()          {}
func (*Lam) isTerm()         {}
func (*LetRec) isTerm()      {}
func (*Let) isTerm()         {}
func (*Match) isTerm()       {}
func (*TermLink) isTerm()    {}
func (*TypeLink) isTerm()    {}

func (t *Int) String() string {
	if t.Value >= 0 {
		return "+" + strconv.FormatInt(t.Value, 10)
	}
	return strconv.FormatInt(t.Value, 10)
}
func (t *Nat) String() string     { return strconv.FormatUint(t.Value, 10) }
func (t *Float) String() string   { return strconv.FormatFloat(t.Value, 'g', -1, 64) }
func (t *Boolean) String() string { return strconv.FormatBool(t.Value) }
func (t *Text) String() string    { return strconv.Quote(t.Value) }
func (t *Char) String() string    { return "?" + string(t.Value) }
func (*Blank) String() string     { return "_" }
func (t *Ref) String() string     { return t.Reference.String() }

func (t *Constructor) String() string { return fmt.Sprintf("%v#%d", t.Ref, t.Tag) }
func (t *Request) String() string     { return fmt.Sprintf("%v!%d", t.Ref, t.Tag) }

func (t *Handle) String() string { return fmt.Sprintf("(handle %v %v)", t.Body, t.Handler) }
func (t *App) String() string    { return fmt.Sprintf("(%v %v)", t.Fn, t.Arg) }
func (t *Ann) String() string    { return fmt.Sprintf("(%v : %v)", t.Term, t.Type) }

func (t *Sequence) String() string { return "[" + join(t.Items) + "]" }

func (t *If) String() string  { return fmt.Sprintf("(if %v %v %v)", t.Cond, t.Then, t.Else) }
func (t *And) String() string { return fmt.Sprintf("(and %v %v)", t.Left, t.Right) }
func (t *Or) String() string  { return fmt.Sprintf("(or %v %v)", t.Left, t.Right) }
func (t *Lam) String() string { return fmt.Sprintf("(lam %v)", t.Body) }

func (t *LetRec) String() string {
	return fmt.Sprintf("(letrec [%v] %v)", join(t.Bindings), t.Body)
}

func (t *Let) String() string { return fmt.Sprintf("(let %v %v)", t.Binding, t.Body) }

func (t *Match) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "(match %v", t.Scrutinee)
	for _, c := range t.Cases {
		fmt.Fprintf(&b, " (%v", c.Pattern)
		if c.Guard != nil {
			fmt.Fprintf(&b, " | %v", c.Guard)
		}
		fmt.Fprintf(&b, " -> %v)", c.Body)
	}
	b.WriteByte(')')
	return b.String()
}

func (t *TermLink) String() string { return fmt.Sprintf("(termLink %v)", t.Referent) }
func (t *TypeLink) String() string { return fmt.Sprintf("(typeLink %v)", t.Reference) }
