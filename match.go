package weave

import (
	"fmt"

	"github.com/pgavlin/weave/term"
)

// Match matches v against p. On success it returns the bound values in the
// order the case body's binders expect: left to right, depth first. A
// mismatch is not an error; patterns that can never be matched
// deterministically panic with a *Fault.
func Match(p term.Pattern, v Value) ([]Value, bool) {
	return match(p, v, nil)
}

func match(p term.Pattern, v Value, binds []Value) ([]Value, bool) {
	switch p := p.(type) {
	case *term.UnboundPattern:
		return binds, true
	case *term.VarPattern:
		return append(binds, v), true
	case *term.BooleanPattern:
		x, ok := v.(Boolean)
		return binds, ok && bool(x) == p.Value
	case *term.IntPattern:
		x, ok := v.(Int)
		return binds, ok && int64(x) == p.Value
	case *term.NatPattern:
		x, ok := v.(Nat)
		return binds, ok && uint64(x) == p.Value
	case *term.FloatPattern:
		x, ok := v.(Float)
		return binds, ok && float64(x) == p.Value
	case *term.TextPattern:
		x, ok := v.(Text)
		return binds, ok && string(x) == p.Value
	case *term.CharPattern:
		x, ok := v.(Char)
		return binds, ok && rune(x) == p.Value
	case *term.AsPattern:
		return match(p.Inner, v, append(binds, v))
	case *term.ConstructorPattern:
		return matchConstructor(p, v, binds)
	case *term.EffectPurePattern:
		pure, ok := v.(RequestPure)
		if !ok {
			return nil, false
		}
		return match(p.Inner, pure.Value, binds)
	case *term.EffectBindPattern:
		return matchEffectBind(p, v, binds)
	case *term.SequenceLiteralPattern:
		seq, ok := v.(Sequence)
		if !ok || len(seq) != len(p.Items) {
			return nil, false
		}
		return matchAll(p.Items, seq, binds)
	case *term.SequenceOpPattern:
		return matchSequenceOp(p, v, binds)
	default:
		panic(&Fault{Err: ErrMalformed, Detail: fmt.Sprintf("pattern %T", p)})
	}
}

func matchAll(ps []term.Pattern, vs []Value, binds []Value) ([]Value, bool) {
	for i, p := range ps {
		var ok bool
		if binds, ok = match(p, vs[i], binds); !ok {
			return nil, false
		}
	}
	return binds, true
}

func matchConstructor(p *term.ConstructorPattern, v Value, binds []Value) ([]Value, bool) {
	switch c := v.(type) {
	case Constructor:
		if len(p.Args) != 0 {
			return nil, false
		}
		return binds, c.Tag == p.Tag && term.SameReference(c.Ref, p.Ref)
	case PartialConstructor:
		if c.Tag != p.Tag || len(c.Args) != len(p.Args) || !term.SameReference(c.Ref, p.Ref) {
			return nil, false
		}
		return matchAll(p.Args, c.Args, binds)
	default:
		return nil, false
	}
}

func matchEffectBind(p *term.EffectBindPattern, v Value, binds []Value) ([]Value, bool) {
	r, ok := v.(RequestWithContinuation)
	if !ok || r.Tag != p.Tag || len(r.Args) != len(p.Args) || !term.SameReference(r.Ref, p.Ref) {
		return nil, false
	}
	if binds, ok = matchAll(p.Args, r.Args, binds); !ok {
		return nil, false
	}
	switch p.Continuation.(type) {
	case *term.VarPattern:
		return append(binds, r.Continuation), true
	case *term.UnboundPattern:
		return binds, true
	default:
		panic(&Fault{Err: ErrContinuationPattern, Detail: p.Continuation.String()})
	}
}

func matchSequenceOp(p *term.SequenceOpPattern, v Value, binds []Value) ([]Value, bool) {
	seq, ok := v.(Sequence)
	if !ok {
		return nil, false
	}

	var split int
	switch p.Op {
	case term.Cons:
		split = 1
	case term.Snoc:
		split = len(seq) - 1
	case term.Concat:
		if l, ok := p.Left.(*term.SequenceLiteralPattern); ok {
			split = len(l.Items)
		} else if r, ok := p.Right.(*term.SequenceLiteralPattern); ok {
			split = len(seq) - len(r.Items)
		} else {
			panic(&Fault{Err: ErrAmbiguousConcat, Detail: p.String()})
		}
	default:
		panic(&Fault{Err: ErrMalformed, Detail: fmt.Sprintf("sequence op %v", p.Op)})
	}
	if split < 0 || split > len(seq) {
		return nil, false
	}

	var left, right Value
	switch p.Op {
	case term.Cons:
		left, right = seq[0], seq[1:]
	case term.Snoc:
		left, right = seq[:split], seq[split]
	default:
		left, right = seq[:split], seq[split:]
	}
	if binds, ok = match(p.Left, left, binds); !ok {
		return nil, false
	}
	return match(p.Right, right, binds)
}
