package term

import (
	"fmt"
	"strconv"
	"strings"
)

// Pattern is the left-hand side of a match case.
type Pattern interface {
	isPattern()
	String() string
}

type UnboundPattern struct{}
type VarPattern struct{}
type BooleanPattern struct{ Value bool }
type IntPattern struct{ Value int64 }
type NatPattern struct{ Value uint64 }
type FloatPattern struct{ Value float64 }
type TextPattern struct{ Value string }
type CharPattern struct{ Value rune }

type ConstructorPattern struct {
	Ref  Reference
	Tag  uint64
	Args []Pattern
}

// AsPattern binds the whole value and continues matching Inner.
type AsPattern struct {
	Inner Pattern
}

// EffectPurePattern matches a computation that finished without a request.
type EffectPurePattern struct {
	Inner Pattern
}

// EffectBindPattern matches a suspended request and its continuation.
type EffectBindPattern struct {
	Ref          Reference
	Tag          uint64
	Args         []Pattern
	Continuation Pattern
}

type SequenceLiteralPattern struct {
	Items []Pattern
}

type SequenceOpPattern struct {
	Left  Pattern
	Op    SeqOp
	Right Pattern
}

// SeqOp is the destructuring operator of a SequenceOpPattern.
type SeqOp uint8

const (
	Cons SeqOp = iota
	Snoc
	Concat
)

func (op SeqOp) String() string {
	switch op {
	case Cons:
		return "+:"
	case Snoc:
		return ":+"
	case Concat:
		return "++"
	}
	return "seqop(" + strconv.Itoa(int(op)) + ")"
}

func (*UnboundPattern) isPattern()         {}
func (*VarPattern) isPattern()             {}
func (*BooleanPattern) isPattern()         {}
func (*IntPattern) isPattern()             {}
func (*NatPattern) isPattern()             {}
func (*FloatPattern) isPattern()           {}
func (*TextPattern) isPattern()            {}
func (*CharPattern) isPattern()            {}
func (*ConstructorPattern) isPattern()     {}
func (*AsPattern) isPattern()              {}
func (*EffectPurePattern) isPattern()      {}
func (*EffectBindPattern) isPattern()      {}
func (*SequenceLiteralPattern) isPattern() {}
func (*SequenceOpPattern) isPattern()      {}

func (*UnboundPattern) String() string    { return "_" }
func (*VarPattern) String() string        { return "v" }
func (p *BooleanPattern) String() string  { return strconv.FormatBool(p.Value) }
func (p *IntPattern) String() string      { return strconv.FormatInt(p.Value, 10) }
func (p *NatPattern) String() string      { return strconv.FormatUint(p.Value, 10) }
func (p *FloatPattern) String() string    { return strconv.FormatFloat(p.Value, 'g', -1, 64) }
func (p *TextPattern) String() string     { return strconv.Quote(p.Value) }
func (p *CharPattern) String() string     { return "?" + string(p.Value) }
func (p *AsPattern) String() string       { return "v@" + p.Inner.String() }

func (p *EffectPurePattern) String() string {
	return "{" + p.Inner.String() + "}"
}

func (p *ConstructorPattern) String() string {
	return fmt.Sprintf("(%v#%d%s)", p.Ref, p.Tag, patterns(p.Args))
}

func (p *EffectBindPattern) String() string {
	return fmt.Sprintf("{%v!%d%s -> %v}", p.Ref, p.Tag, patterns(p.Args), p.Continuation)
}

func (p *SequenceLiteralPattern) String() string {
	return "[" + strings.TrimPrefix(patterns(p.Items), " ") + "]"
}

func (p *SequenceOpPattern) String() string {
	return fmt.Sprintf("(%v %v %v)", p.Left, p.Op, p.Right)
}

func patterns(ps []Pattern) string {
	var b strings.Builder
	for _, p := range ps {
		b.WriteByte(' ')
		b.WriteString(p.String())
	}
	return b.String()
}

// Binders returns the number of values a successful match of p binds, which
// is the number of Abs layers the case body must have.
func Binders(p Pattern) int {
	switch p := p.(type) {
	case *VarPattern:
		return 1
	case *AsPattern:
		return 1 + Binders(p.Inner)
	case *EffectPurePattern:
		return Binders(p.Inner)
	case *ConstructorPattern:
		return bindersOf(p.Args)
	case *EffectBindPattern:
		n := bindersOf(p.Args)
		if _, ok := p.Continuation.(*VarPattern); ok {
			n++
		}
		return n
	case *SequenceLiteralPattern:
		return bindersOf(p.Items)
	case *SequenceOpPattern:
		return Binders(p.Left) + Binders(p.Right)
	default:
		return 0
	}
}

func bindersOf(ps []Pattern) int {
	n := 0
	for _, p := range ps {
		n += Binders(p)
	}
	return n
}
