// Package term defines the abstract binding trees, terms, types and patterns
// that the decoder produces and the evaluator consumes.
//
// Every node type is immutable once built. Sub-trees are owned by their
// parent; nothing in this package holds a back reference.
package term

import (
	"fmt"
	"strings"
)

// Symbol identifies a variable. Two symbols with the same text but a
// different Num are distinct bindings.
type Symbol struct {
	Num  uint64
	Text string
}

func (s Symbol) String() string {
	if s.Num == 0 {
		return s.Text
	}
	return fmt.Sprintf("%s%d", s.Text, s.Num)
}

// ABT is an abstract binding tree node: one of *Var, *Abs, *Cycle or *Tm.
type ABT interface {
	isABT()
	String() string
}

// Var references an enclosing binder (or a free variable of the whole tree).
type Var struct {
	Symbol Symbol
}

// Abs introduces one binder over Body.
type Abs struct {
	Symbol Symbol
	Body   ABT
}

// Cycle marks Body as a chain of Abs nodes whose binders are mutually
// recursive. The chain ends in a LetRec.
type Cycle struct {
	Body ABT
}

// Tm holds one Term or Type node.
type Tm struct {
	Content Content
}

// Content is the payload of a Tm: a Term or a Type.
type Content interface {
	isContent()
	String() string
}

func (*Var) isABT()   {}
func (*Abs) isABT()   {}
func (*Cycle) isABT() {}
func (*Tm) isABT()    {}

func (v *Var) String() string { return v.Symbol.String() }

func (a *Abs) String() string { return fmt.Sprintf("(abs %v %v)", a.Symbol, a.Body) }

func (c *Cycle) String() string { return fmt.Sprintf("(cycle %v)", c.Body) }

func (t *Tm) String() string { return t.Content.String() }

// NewVar, NewAbs, NewCycle and NewTm are shorthands used heavily by fixtures.
func NewVar(text string) *Var { return &Var{Symbol: Symbol{Text: text}} }

func NewAbs(text string, body ABT) *Abs { return &Abs{Symbol: Symbol{Text: text}, Body: body} }

func NewCycle(body ABT) *Cycle { return &Cycle{Body: body} }

func NewTm(c Content) *Tm { return &Tm{Content: c} }

// Unabs peels up to n Abs layers from a and returns their symbols and the
// remaining body. ok is false if fewer than n layers are present.
func Unabs(a ABT, n int) (symbols []Symbol, body ABT, ok bool) {
	body = a
	for i := 0; i < n; i++ {
		abs, isAbs := body.(*Abs)
		if !isAbs {
			return symbols, body, false
		}
		symbols = append(symbols, abs.Symbol)
		body = abs.Body
	}
	return symbols, body, true
}

func join(nodes []ABT) string {
	var b strings.Builder
	for i, n := range nodes {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(n.String())
	}
	return b.String()
}
