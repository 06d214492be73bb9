package term

// Walk calls fn for every Tm content reachable from a, parents before
// children. If fn returns false the children of that node are skipped.
// Types nested in annotations are visited too.
func Walk(a ABT, fn func(Content) bool) {
	switch a := a.(type) {
	case *Var, nil:
		return
	case *Abs:
		Walk(a.Body, fn)
	case *Cycle:
		Walk(a.Body, fn)
	case *Tm:
		if !fn(a.Content) {
			return
		}
		for _, child := range children(a.Content) {
			Walk(child, fn)
		}
	}
}

func children(c Content) []ABT {
	switch c := c.(type) {
	case *Handle:
		return []ABT{c.Handler, c.Body}
	case *App:
		return []ABT{c.Fn, c.Arg}
	case *Ann:
		return []ABT{c.Term, c.Type}
	case *Sequence:
		return c.Items
	case *If:
		return []ABT{c.Cond, c.Then, c.Else}
	case *And:
		return []ABT{c.Left, c.Right}
	case *Or:
		return []ABT{c.Left, c.Right}
	case *Lam:
		return []ABT{c.Body}
	case *LetRec:
		return append(append([]ABT(nil), c.Bindings...), c.Body)
	case *Let:
		return []ABT{c.Binding, c.Body}
	case *Match:
		out := []ABT{c.Scrutinee}
		for _, mc := range c.Cases {
			if mc.Guard != nil {
				out = append(out, mc.Guard)
			}
			out = append(out, mc.Body)
		}
		return out
	case *TypeArrow:
		return []ABT{c.From, c.To}
	case *TypeAnn:
		return []ABT{c.Type}
	case *TypeApp:
		return []ABT{c.Fn, c.Arg}
	case *TypeEffect:
		return []ABT{c.Effects, c.Type}
	case *TypeEffects:
		return c.Items
	case *TypeForall:
		return []ABT{c.Body}
	case *TypeIntroOuter:
		return []ABT{c.Body}
	}
	return nil
}

// References returns the hash-addressed definitions a refers to, in order of
// first occurrence. Constructor, request and link references are included.
func References(a ABT) []*DerivedID {
	var (
		out  []*DerivedID
		seen = map[string]bool{}
	)
	add := func(r Reference) {
		id, ok := r.(*DerivedID)
		if !ok {
			return
		}
		key := id.Hash.String()
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, id)
	}
	Walk(a, func(c Content) bool {
		switch c := c.(type) {
		case *Ref:
			add(c.Reference)
		case *Constructor:
			add(c.Ref)
		case *Request:
			add(c.Ref)
		case *TypeLink:
			add(c.Reference)
		case *TypeRef:
			add(c.Reference)
		case *TermLink:
			switch r := c.Referent.(type) {
			case *RefReferent:
				add(r.Reference)
			case *ConReferent:
				add(r.Reference)
			}
		case *Match:
			for _, mc := range c.Cases {
				patternReferences(mc.Pattern, add)
			}
		}
		return true
	})
	return out
}

func patternReferences(p Pattern, add func(Reference)) {
	switch p := p.(type) {
	case *ConstructorPattern:
		add(p.Ref)
		for _, a := range p.Args {
			patternReferences(a, add)
		}
	case *EffectBindPattern:
		add(p.Ref)
		for _, a := range p.Args {
			patternReferences(a, add)
		}
	case *AsPattern:
		patternReferences(p.Inner, add)
	case *EffectPurePattern:
		patternReferences(p.Inner, add)
	case *SequenceLiteralPattern:
		for _, a := range p.Items {
			patternReferences(a, add)
		}
	case *SequenceOpPattern:
		patternReferences(p.Left, add)
		patternReferences(p.Right, add)
	}
}

// Dependencies returns the hash-addressed terms a refers to through Ref
// nodes, in order of first occurrence. These are the definitions an
// evaluation of a may need to load.
func Dependencies(a ABT) []*DerivedID {
	var (
		out  []*DerivedID
		seen = map[string]bool{}
	)
	Walk(a, func(c Content) bool {
		ref, ok := c.(*Ref)
		if !ok {
			return true
		}
		if id, ok := ref.Reference.(*DerivedID); ok && !seen[id.Hash.String()] {
			seen[id.Hash.String()] = true
			out = append(out, id)
		}
		return true
	})
	return out
}
