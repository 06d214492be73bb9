package weave

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavlin/weave/term"
)

func seqOf(vs ...Value) Sequence { return Sequence(vs) }

func lit(ps ...term.Pattern) *term.SequenceLiteralPattern {
	return &term.SequenceLiteralPattern{Items: ps}
}

func TestMatchLiterals(t *testing.T) {
	cases := []struct {
		pattern term.Pattern
		value   Value
		ok      bool
	}{
		{&term.IntPattern{Value: -1}, Int(-1), true},
		{&term.IntPattern{Value: 1}, Nat(1), false},
		{&term.NatPattern{Value: 1}, Nat(1), true},
		{&term.FloatPattern{Value: 0.5}, Float(0.5), true},
		{&term.BooleanPattern{Value: true}, Boolean(false), false},
		{&term.TextPattern{Value: "hi"}, Text("hi"), true},
		{&term.CharPattern{Value: 'x'}, Char('x'), true},
		{&term.UnboundPattern{}, Blank{}, true},
	}
	for _, c := range cases {
		t.Run(c.pattern.String(), func(t *testing.T) {
			binds, ok := Match(c.pattern, c.value)
			assert.Equal(t, c.ok, ok)
			assert.Empty(t, binds)
		})
	}
}

func TestMatchBindingOrder(t *testing.T) {
	pair := &term.Builtin{Name: "Pair"}
	p := &term.AsPattern{Inner: &term.ConstructorPattern{Ref: pair, Tag: 0, Args: []term.Pattern{
		&term.VarPattern{},
		&term.ConstructorPattern{Ref: pair, Tag: 0, Args: []term.Pattern{&term.UnboundPattern{}, &term.VarPattern{}}},
	}}}
	inner := PartialConstructor{Ref: pair, Tag: 0, Args: []Value{Nat(2), Nat(3)}}
	v := PartialConstructor{Ref: pair, Tag: 0, Args: []Value{Nat(1), inner}}

	binds, ok := Match(p, v)
	require.True(t, ok)
	require.Len(t, binds, 3)
	assert.Len(t, binds, term.Binders(p))
	assert.Equal(t, v, binds[0])
	assert.Equal(t, Nat(1), binds[1])
	assert.Equal(t, Nat(3), binds[2])
}

func TestMatchConstructors(t *testing.T) {
	a := &term.DerivedID{Hash: term.Hash{1}, Total: 1}
	b := &term.DerivedID{Hash: term.Hash{2}, Total: 1}

	_, ok := Match(&term.ConstructorPattern{Ref: a, Tag: 0}, Constructor{Ref: a, Tag: 0})
	assert.True(t, ok)
	_, ok = Match(&term.ConstructorPattern{Ref: a, Tag: 0}, Constructor{Ref: b, Tag: 0})
	assert.False(t, ok)
	_, ok = Match(&term.ConstructorPattern{Ref: a, Tag: 1}, Constructor{Ref: a, Tag: 0})
	assert.False(t, ok)
	_, ok = Match(&term.ConstructorPattern{Ref: a, Tag: 0, Args: []term.Pattern{&term.VarPattern{}}}, Constructor{Ref: a, Tag: 0})
	assert.False(t, ok)
	_, ok = Match(&term.ConstructorPattern{Ref: a, Tag: 0, Args: []term.Pattern{&term.VarPattern{}}}, PartialConstructor{Ref: a, Tag: 0, Args: []Value{Nat(1), Nat(2)}})
	assert.False(t, ok, "arity must agree")
}

func TestMatchSequences(t *testing.T) {
	s := seqOf(Nat(1), Nat(2), Nat(3))

	binds, ok := Match(&term.SequenceOpPattern{Left: &term.VarPattern{}, Op: term.Cons, Right: &term.VarPattern{}}, s)
	require.True(t, ok)
	assert.Equal(t, []Value{Nat(1), seqOf(Nat(2), Nat(3))}, binds)

	binds, ok = Match(&term.SequenceOpPattern{Left: &term.VarPattern{}, Op: term.Snoc, Right: &term.VarPattern{}}, s)
	require.True(t, ok)
	assert.Equal(t, []Value{seqOf(Nat(1), Nat(2)), Nat(3)}, binds)

	binds, ok = Match(&term.SequenceOpPattern{Left: lit(&term.VarPattern{}), Op: term.Concat, Right: &term.VarPattern{}}, s)
	require.True(t, ok)
	assert.Equal(t, []Value{Nat(1), seqOf(Nat(2), Nat(3))}, binds)

	binds, ok = Match(&term.SequenceOpPattern{Left: &term.VarPattern{}, Op: term.Concat, Right: lit(&term.VarPattern{}, &term.VarPattern{})}, s)
	require.True(t, ok)
	assert.Equal(t, []Value{seqOf(Nat(1)), Nat(2), Nat(3)}, binds)

	binds, ok = Match(lit(&term.UnboundPattern{}, &term.VarPattern{}, &term.NatPattern{Value: 3}), s)
	require.True(t, ok)
	assert.Equal(t, []Value{Nat(2)}, binds)

	_, ok = Match(lit(&term.VarPattern{}), s)
	assert.False(t, ok)
	_, ok = Match(&term.SequenceOpPattern{Left: &term.VarPattern{}, Op: term.Cons, Right: &term.VarPattern{}}, Sequence{})
	assert.False(t, ok)
	_, ok = Match(&term.SequenceOpPattern{Left: &term.VarPattern{}, Op: term.Snoc, Right: &term.VarPattern{}}, Sequence{})
	assert.False(t, ok)
	_, ok = Match(&term.SequenceOpPattern{Left: lit(&term.VarPattern{}, &term.VarPattern{}), Op: term.Concat, Right: &term.VarPattern{}}, seqOf(Nat(1)))
	assert.False(t, ok)
}

func TestMatchAmbiguousConcat(t *testing.T) {
	p := &term.SequenceOpPattern{Left: &term.VarPattern{}, Op: term.Concat, Right: &term.VarPattern{}}
	defer func() {
		f, ok := recover().(*Fault)
		require.True(t, ok)
		assert.True(t, errors.Is(f, ErrAmbiguousConcat))
	}()
	Match(p, seqOf(Nat(1)))
	t.Fatal("expected a fault")
}

func TestMatchEffects(t *testing.T) {
	ability := &term.Builtin{Name: "Emit"}
	k := &Continuation{}

	binds, ok := Match(&term.EffectPurePattern{Inner: &term.VarPattern{}}, RequestPure{Value: Text("done")})
	require.True(t, ok)
	assert.Equal(t, []Value{Text("done")}, binds)

	_, ok = Match(&term.EffectPurePattern{Inner: &term.VarPattern{}}, Text("done"))
	assert.False(t, ok)

	req := RequestWithContinuation{Ref: ability, Tag: 1, Args: []Value{Nat(7)}, Continuation: k}
	binds, ok = Match(&term.EffectBindPattern{Ref: ability, Tag: 1, Args: []term.Pattern{&term.VarPattern{}}, Continuation: &term.VarPattern{}}, req)
	require.True(t, ok)
	require.Len(t, binds, 2)
	assert.Equal(t, Nat(7), binds[0])
	assert.Same(t, k, binds[1])

	_, ok = Match(&term.EffectBindPattern{Ref: ability, Tag: 0, Args: []term.Pattern{&term.VarPattern{}}, Continuation: &term.VarPattern{}}, req)
	assert.False(t, ok)
	_, ok = Match(&term.EffectPurePattern{Inner: &term.UnboundPattern{}}, req)
	assert.False(t, ok)

	assert.PanicsWithValue(t, &Fault{Err: ErrContinuationPattern, Detail: "0"}, func() {
		Match(&term.EffectBindPattern{Ref: ability, Tag: 1, Args: []term.Pattern{&term.UnboundPattern{}}, Continuation: &term.NatPattern{Value: 0}}, req)
	})
}
