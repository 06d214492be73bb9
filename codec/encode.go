package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/pgavlin/weave/term"
)

// Encoder appends the binary form of values to a buffer. The first failure
// is sticky: later writes are dropped and Err reports it.
type Encoder struct {
	buf []byte
	err error
}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// Bytes returns the encoded buffer.
func (e *Encoder) Bytes() []byte { return e.buf }

// Err returns the first error the encoder hit, if any.
func (e *Encoder) Err() error { return e.err }

// EncodeTerm returns the binary form of a top-level term.
func EncodeTerm(a term.ABT) ([]byte, error) {
	e := NewEncoder()
	e.Term(a)
	return e.buf, e.err
}

// EncodeType returns the binary form of a top-level type.
func EncodeType(a term.ABT) ([]byte, error) {
	e := NewEncoder()
	e.Type(a)
	return e.buf, e.err
}

func (e *Encoder) fail(format string, args ...interface{}) {
	if e.err == nil {
		e.err = fmt.Errorf("%w: "+format, append([]interface{}{ErrUnencodable}, args...)...)
	}
}

func (e *Encoder) Uint8(b uint8) { e.buf = append(e.buf, b) }

func (e *Encoder) Bool(b bool) {
	if b {
		e.Uint8(1)
	} else {
		e.Uint8(0)
	}
}

func (e *Encoder) Uint64(u uint64) { e.buf = binary.BigEndian.AppendUint64(e.buf, u) }

func (e *Encoder) Int64(i int64) { e.Uint64(uint64(i)) }

func (e *Encoder) Float64(f float64) { e.Uint64(math.Float64bits(f)) }

// Varint uses the same little-endian base-128 layout as the decoder.
func (e *Encoder) Varint(n uint64) { e.buf = binary.AppendUvarint(e.buf, n) }

func (e *Encoder) Text(s string) {
	if !utf8.ValidString(s) {
		e.fail("text %q is not valid UTF-8", s)
		return
	}
	e.Varint(uint64(len(s)))
	e.buf = append(e.buf, s...)
}

func (e *Encoder) Char(c rune) {
	if c < 0 || c > 0xff {
		e.fail("char %q does not fit in one byte", c)
		return
	}
	e.Uint8(uint8(c))
}

func (e *Encoder) Hash(h term.Hash) {
	e.Varint(uint64(len(h)))
	e.buf = append(e.buf, h...)
}

func (e *Encoder) Symbol(s term.Symbol) {
	e.Varint(s.Num)
	e.Text(s.Text)
}

func (e *Encoder) Symbols(syms []term.Symbol) {
	e.Varint(uint64(len(syms)))
	for _, s := range syms {
		e.Symbol(s)
	}
}

func (e *Encoder) Reference(r term.Reference) {
	switch r := r.(type) {
	case *term.Builtin:
		e.Uint8(0)
		e.Text(r.Name)
	case *term.DerivedID:
		e.Uint8(1)
		e.Hash(r.Hash)
		e.Varint(r.Index)
		e.Varint(r.Total)
	default:
		e.fail("reference %T", r)
	}
}

func (e *Encoder) ConstructorType(c term.ConstructorType) { e.Uint8(uint8(c)) }

func (e *Encoder) Referent(r term.Referent) {
	switch r := r.(type) {
	case *term.RefReferent:
		e.Uint8(0)
		e.Reference(r.Reference)
	case *term.ConReferent:
		e.Uint8(1)
		e.Reference(r.Reference)
		e.Varint(r.Tag)
		e.ConstructorType(r.Type)
	default:
		e.fail("referent %T", r)
	}
}

func (e *Encoder) Kind(k term.Kind) {
	switch k := k.(type) {
	case *term.Star:
		e.Uint8(0)
	case *term.KindArrow:
		e.Uint8(1)
		e.Kind(k.From)
		e.Kind(k.To)
	default:
		e.fail("kind %T", k)
	}
}

func (e *Encoder) Patterns(ps []term.Pattern) {
	e.Varint(uint64(len(ps)))
	for _, p := range ps {
		e.Pattern(p)
	}
}

func (e *Encoder) Pattern(p term.Pattern) {
	switch p := p.(type) {
	case *term.UnboundPattern:
		e.Uint8(0)
	case *term.VarPattern:
		e.Uint8(1)
	case *term.BooleanPattern:
		e.Uint8(2)
		e.Bool(p.Value)
	case *term.IntPattern:
		e.Uint8(3)
		e.Int64(p.Value)
	case *term.NatPattern:
		e.Uint8(4)
		e.Uint64(p.Value)
	case *term.FloatPattern:
		e.Uint8(5)
		e.Float64(p.Value)
	case *term.ConstructorPattern:
		e.Uint8(6)
		e.Reference(p.Ref)
		e.Varint(p.Tag)
		e.Patterns(p.Args)
	case *term.AsPattern:
		e.Uint8(7)
		e.Pattern(p.Inner)
	case *term.EffectPurePattern:
		e.Uint8(8)
		e.Pattern(p.Inner)
	case *term.EffectBindPattern:
		e.Uint8(9)
		e.Reference(p.Ref)
		e.Varint(p.Tag)
		e.Patterns(p.Args)
		e.Pattern(p.Continuation)
	case *term.SequenceLiteralPattern:
		e.Uint8(10)
		e.Patterns(p.Items)
	case *term.SequenceOpPattern:
		e.Uint8(11)
		e.Pattern(p.Left)
		e.Uint8(uint8(p.Op))
		e.Pattern(p.Right)
	case *term.TextPattern:
		e.Uint8(12)
		e.Text(p.Value)
	case *term.CharPattern:
		e.Uint8(13)
		e.Char(p.Value)
	default:
		e.fail("pattern %T", p)
	}
}

// encScope mirrors the decoder's scope. Free variables are numbered as they
// are first met, so the free list is only known once the body is written.
type encScope struct {
	bound []term.Symbol
	free  *[]term.Symbol
}

func (s encScope) push(sym term.Symbol) encScope {
	return encScope{bound: append(s.bound[:len(s.bound):len(s.bound)], sym), free: s.free}
}

type encodeFunc func(e *Encoder, s encScope, c term.Content)

// Term writes a top-level term: its free variable names, then its tree.
func (e *Encoder) Term(a term.ABT) { e.top(a, (*Encoder).termContent) }

// Type writes a top-level type: its free variable names, then its tree.
func (e *Encoder) Type(a term.ABT) { e.top(a, (*Encoder).typeContent) }

func (e *Encoder) top(a term.ABT, content encodeFunc) {
	var free []term.Symbol
	body := &Encoder{}
	body.abt(encScope{free: &free}, a, content)
	if body.err != nil {
		if e.err == nil {
			e.err = body.err
		}
		return
	}
	e.Symbols(free)
	e.buf = append(e.buf, body.buf...)
}

func (e *Encoder) abt(s encScope, a term.ABT, content encodeFunc) {
	switch a := a.(type) {
	case *term.Var:
		e.Uint8(0)
		e.variable(s, a.Symbol)
	case *term.Tm:
		e.Uint8(1)
		content(e, s, a.Content)
	case *term.Abs:
		e.Uint8(2)
		e.Symbol(a.Symbol)
		e.abt(s.push(a.Symbol), a.Body, content)
	case *term.Cycle:
		e.Uint8(3)
		e.abt(s, a.Body, content)
	default:
		e.fail("abt %T", a)
	}
}

func (e *Encoder) variable(s encScope, sym term.Symbol) {
	for i := len(s.bound) - 1; i >= 0; i-- {
		if s.bound[i] == sym {
			e.Uint8(0)
			e.Varint(uint64(len(s.bound) - 1 - i))
			return
		}
	}
	for i, f := range *s.free {
		if f == sym {
			e.Uint8(1)
			e.Varint(uint64(i))
			return
		}
	}
	*s.free = append(*s.free, sym)
	e.Uint8(1)
	e.Varint(uint64(len(*s.free) - 1))
}

func (e *Encoder) abts(s encScope, items []term.ABT, content encodeFunc) {
	e.Varint(uint64(len(items)))
	for _, a := range items {
		e.abt(s, a, content)
	}
}

func (e *Encoder) termContent(s encScope, c term.Content) {
	t := func(a term.ABT) { e.abt(s, a, (*Encoder).termContent) }

	switch c := c.(type) {
	case *term.Int:
		e.Uint8(0)
		e.Int64(c.Value)
	case *term.Nat:
		e.Uint8(1)
		e.Uint64(c.Value)
	case *term.Float:
		e.Uint8(2)
		e.Float64(c.Value)
	case *term.Boolean:
		e.Uint8(3)
		e.Bool(c.Value)
	case *term.Text:
		e.Uint8(4)
		e.Text(c.Value)
	case *term.Ref:
		e.Uint8(5)
		e.Reference(c.Reference)
	case *term.Constructor:
		e.Uint8(6)
		e.Reference(c.Ref)
		e.Varint(c.Tag)
	case *term.Request:
		e.Uint8(7)
		e.Reference(c.Ref)
		e.Varint(c.Tag)
	case *term.Handle:
		e.Uint8(8)
		t(c.Handler)
		t(c.Body)
	case *term.App:
		e.Uint8(9)
		t(c.Fn)
		t(c.Arg)
	case *term.Ann:
		e.Uint8(10)
		t(c.Term)
		e.Type(c.Type)
	case *term.Sequence:
		e.Uint8(11)
		e.abts(s, c.Items, (*Encoder).termContent)
	case *term.If:
		e.Uint8(12)
		t(c.Cond)
		t(c.Then)
		t(c.Else)
	case *term.And:
		e.Uint8(13)
		t(c.Left)
		t(c.Right)
	case *term.Or:
		e.Uint8(14)
		t(c.Left)
		t(c.Right)
	case *term.Lam:
		e.Uint8(15)
		t(c.Body)
	case *term.LetRec:
		e.Uint8(16)
		e.abts(s, c.Bindings, (*Encoder).termContent)
		t(c.Body)
	case *term.Let:
		e.Uint8(17)
		t(c.Binding)
		t(c.Body)
	case *term.Match:
		e.Uint8(18)
		t(c.Scrutinee)
		e.Varint(uint64(len(c.Cases)))
		for _, mc := range c.Cases {
			e.Pattern(mc.Pattern)
			if mc.Guard == nil {
				e.Uint8(0)
			} else {
				e.Uint8(1)
				t(mc.Guard)
			}
			t(mc.Body)
		}
	case *term.Char:
		e.Uint8(19)
		e.Char(c.Value)
	case *term.TermLink:
		e.Uint8(20)
		e.Referent(c.Referent)
	case *term.TypeLink:
		e.Uint8(21)
		e.Reference(c.Reference)
	default:
		e.fail("term %T", c)
	}
}

func (e *Encoder) typeContent(s encScope, c term.Content) {
	t := func(a term.ABT) { e.abt(s, a, (*Encoder).typeContent) }

	switch c := c.(type) {
	case *term.TypeRef:
		e.Uint8(0)
		e.Reference(c.Reference)
	case *term.TypeArrow:
		e.Uint8(1)
		t(c.From)
		t(c.To)
	case *term.TypeAnn:
		e.Uint8(2)
		t(c.Type)
		e.Kind(c.Kind)
	case *term.TypeApp:
		e.Uint8(3)
		t(c.Fn)
		t(c.Arg)
	case *term.TypeEffect:
		e.Uint8(4)
		t(c.Effects)
		t(c.Type)
	case *term.TypeEffects:
		e.Uint8(5)
		e.abts(s, c.Items, (*Encoder).typeContent)
	case *term.TypeForall:
		e.Uint8(6)
		t(c.Body)
	case *term.TypeIntroOuter:
		e.Uint8(7)
		t(c.Body)
	default:
		e.fail("type %T", c)
	}
}
