package codec

import (
	"fmt"

	"github.com/pgavlin/weave/term"
)

// scope is the decode-time variable environment. bound holds the binders of
// the enclosing Abs nodes with the most recent last; a bound index i refers
// to bound[len(bound)-1-i]. free holds the names supplied ahead of the tree.
type scope struct {
	bound []term.Symbol
	free  []term.Symbol
}

func (s scope) push(sym term.Symbol) scope {
	return scope{bound: append(s.bound[:len(s.bound):len(s.bound)], sym), free: s.free}
}

type contentFunc func(d *Decoder, s scope) (term.Content, error)

// Term decodes a top-level term: its free variable names, then its tree.
func (d *Decoder) Term() (term.ABT, error) {
	free, err := d.Symbols()
	if err != nil {
		return nil, err
	}
	return d.abt(scope{free: free}, termContent)
}

// Type decodes a top-level type: its free variable names, then its tree.
func (d *Decoder) Type() (term.ABT, error) {
	free, err := d.Symbols()
	if err != nil {
		return nil, err
	}
	return d.abt(scope{free: free}, typeContent)
}

func (d *Decoder) abt(s scope, content contentFunc) (term.ABT, error) {
	tag, err := d.Uint8()
	if err != nil {
		return nil, err
	}
	d.trace("abt", tag)

	d.depth++
	defer func() { d.depth-- }()

	switch tag {
	case 0:
		return d.variable(s)
	case 1:
		c, err := content(d, s)
		if err != nil {
			return nil, err
		}
		return &term.Tm{Content: c}, nil
	case 2:
		sym, err := d.Symbol()
		if err != nil {
			return nil, err
		}
		body, err := d.abt(s.push(sym), content)
		if err != nil {
			return nil, err
		}
		return &term.Abs{Symbol: sym, Body: body}, nil
	case 3:
		body, err := d.abt(s, content)
		if err != nil {
			return nil, err
		}
		return &term.Cycle{Body: body}, nil
	default:
		return nil, d.fail(fmt.Sprintf("abt tag %d", tag), ErrUnknownTag)
	}
}

func (d *Decoder) variable(s scope) (term.ABT, error) {
	kind, err := d.Uint8()
	if err != nil {
		return nil, err
	}
	index, err := d.Varint()
	if err != nil {
		return nil, err
	}

	switch kind {
	case 0:
		if index >= uint64(len(s.bound)) {
			return nil, d.fail(fmt.Sprintf("bound variable %d of %d", index, len(s.bound)), ErrUnresolvedVariable)
		}
		return &term.Var{Symbol: s.bound[len(s.bound)-1-int(index)]}, nil
	case 1:
		if index >= uint64(len(s.free)) {
			return nil, d.fail(fmt.Sprintf("free variable %d of %d", index, len(s.free)), ErrUnresolvedVariable)
		}
		return &term.Var{Symbol: s.free[index]}, nil
	default:
		return nil, d.fail(fmt.Sprintf("variable tag %d", kind), ErrUnknownTag)
	}
}

func (d *Decoder) abts(s scope, content contentFunc) ([]term.ABT, error) {
	return list(d, "terms", func() (term.ABT, error) { return d.abt(s, content) })
}

func (d *Decoder) two(s scope, content contentFunc) (term.ABT, term.ABT, error) {
	a, err := d.abt(s, content)
	if err != nil {
		return nil, nil, err
	}
	b, err := d.abt(s, content)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func (d *Decoder) matchCase(s scope) (term.MatchCase, error) {
	p, err := d.Pattern()
	if err != nil {
		return term.MatchCase{}, err
	}
	hasGuard, err := d.Uint8()
	if err != nil {
		return term.MatchCase{}, err
	}
	var guard term.ABT
	switch hasGuard {
	case 0:
	case 1:
		if guard, err = d.abt(s, termContent); err != nil {
			return term.MatchCase{}, err
		}
	default:
		return term.MatchCase{}, d.fail(fmt.Sprintf("option tag %d", hasGuard), ErrUnknownTag)
	}
	body, err := d.abt(s, termContent)
	if err != nil {
		return term.MatchCase{}, err
	}
	return term.MatchCase{Pattern: p, Guard: guard, Body: body}, nil
}

func termContent(d *Decoder, s scope) (term.Content, error) {
	tag, err := d.Uint8()
	if err != nil {
		return nil, err
	}
	d.trace("term", tag)

	switch tag {
	case 0:
		i, err := d.Int64()
		if err != nil {
			return nil, err
		}
		return &term.Int{Value: i}, nil
	case 1:
		n, err := d.Uint64()
		if err != nil {
			return nil, err
		}
		return &term.Nat{Value: n}, nil
	case 2:
		f, err := d.Float64()
		if err != nil {
			return nil, err
		}
		return &term.Float{Value: f}, nil
	case 3:
		b, err := d.Bool()
		if err != nil {
			return nil, err
		}
		return &term.Boolean{Value: b}, nil
	case 4:
		text, err := d.Text()
		if err != nil {
			return nil, err
		}
		return &term.Text{Value: text}, nil
	case 5:
		r, err := d.Reference()
		if err != nil {
			return nil, err
		}
		return &term.Ref{Reference: r}, nil
	case 6, 7:
		r, err := d.Reference()
		if err != nil {
			return nil, err
		}
		n, err := d.Varint()
		if err != nil {
			return nil, err
		}
		if tag == 6 {
			return &term.Constructor{Ref: r, Tag: n}, nil
		}
		return &term.Request{Ref: r, Tag: n}, nil
	case 8:
		handler, body, err := d.two(s, termContent)
		if err != nil {
			return nil, err
		}
		return &term.Handle{Handler: handler, Body: body}, nil
	case 9:
		fn, arg, err := d.two(s, termContent)
		if err != nil {
			return nil, err
		}
		return &term.App{Fn: fn, Arg: arg}, nil
	case 10:
		t, err := d.abt(s, termContent)
		if err != nil {
			return nil, err
		}
		typ, err := d.Type()
		if err != nil {
			return nil, err
		}
		return &term.Ann{Term: t, Type: typ}, nil
	case 11:
		items, err := d.abts(s, termContent)
		if err != nil {
			return nil, err
		}
		return &term.Sequence{Items: items}, nil
	case 12:
		cond, err := d.abt(s, termContent)
		if err != nil {
			return nil, err
		}
		then, els, err := d.two(s, termContent)
		if err != nil {
			return nil, err
		}
		return &term.If{Cond: cond, Then: then, Else: els}, nil
	case 13:
		l, r, err := d.two(s, termContent)
		if err != nil {
			return nil, err
		}
		return &term.And{Left: l, Right: r}, nil
	case 14:
		l, r, err := d.two(s, termContent)
		if err != nil {
			return nil, err
		}
		return &term.Or{Left: l, Right: r}, nil
	case 15:
		body, err := d.abt(s, termContent)
		if err != nil {
			return nil, err
		}
		return &term.Lam{Body: body}, nil
	case 16:
		bindings, err := d.abts(s, termContent)
		if err != nil {
			return nil, err
		}
		body, err := d.abt(s, termContent)
		if err != nil {
			return nil, err
		}
		return &term.LetRec{Bindings: bindings, Body: body}, nil
	case 17:
		binding, body, err := d.two(s, termContent)
		if err != nil {
			return nil, err
		}
		return &term.Let{Binding: binding, Body: body}, nil
	case 18:
		scrutinee, err := d.abt(s, termContent)
		if err != nil {
			return nil, err
		}
		cases, err := list(d, "match cases", func() (term.MatchCase, error) { return d.matchCase(s) })
		if err != nil {
			return nil, err
		}
		return &term.Match{Scrutinee: scrutinee, Cases: cases}, nil
	case 19:
		c, err := d.Char()
		if err != nil {
			return nil, err
		}
		return &term.Char{Value: c}, nil
	case 20:
		r, err := d.Referent()
		if err != nil {
			return nil, err
		}
		return &term.TermLink{Referent: r}, nil
	case 21:
		r, err := d.Reference()
		if err != nil {
			return nil, err
		}
		return &term.TypeLink{Reference: r}, nil
	default:
		return nil, d.fail(fmt.Sprintf("term tag %d", tag), ErrUnknownTag)
	}
}

func typeContent(d *Decoder, s scope) (term.Content, error) {
	tag, err := d.Uint8()
	if err != nil {
		return nil, err
	}
	d.trace("type", tag)

	switch tag {
	case 0:
		r, err := d.Reference()
		if err != nil {
			return nil, err
		}
		return &term.TypeRef{Reference: r}, nil
	case 1:
		from, to, err := d.two(s, typeContent)
		if err != nil {
			return nil, err
		}
		return &term.TypeArrow{From: from, To: to}, nil
	case 2:
		t, err := d.abt(s, typeContent)
		if err != nil {
			return nil, err
		}
		k, err := d.Kind()
		if err != nil {
			return nil, err
		}
		return &term.TypeAnn{Type: t, Kind: k}, nil
	case 3:
		fn, arg, err := d.two(s, typeContent)
		if err != nil {
			return nil, err
		}
		return &term.TypeApp{Fn: fn, Arg: arg}, nil
	case 4:
		effects, t, err := d.two(s, typeContent)
		if err != nil {
			return nil, err
		}
		return &term.TypeEffect{Effects: effects, Type: t}, nil
	case 5:
		items, err := d.abts(s, typeContent)
		if err != nil {
			return nil, err
		}
		return &term.TypeEffects{Items: items}, nil
	case 6:
		body, err := d.abt(s, typeContent)
		if err != nil {
			return nil, err
		}
		return &term.TypeForall{Body: body}, nil
	case 7:
		body, err := d.abt(s, typeContent)
		if err != nil {
			return nil, err
		}
		return &term.TypeIntroOuter{Body: body}, nil
	default:
		return nil, d.fail(fmt.Sprintf("type tag %d", tag), ErrUnknownTag)
	}
}
