package codec

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavlin/weave/term"
)

func word(n uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, n)
}

func cat(parts ...interface{}) []byte {
	var out []byte
	for _, p := range parts {
		switch p := p.(type) {
		case int:
			out = append(out, byte(p))
		case string:
			out = append(out, byte(len(p)))
			out = append(out, p...)
		case []byte:
			out = append(out, p...)
		default:
			panic(p)
		}
	}
	return out
}

func tm(c term.Content) term.ABT { return term.NewTm(c) }

func builtin(name string) term.ABT { return tm(&term.Ref{Reference: &term.Builtin{Name: name}}) }

func app(fn term.ABT, args ...term.ABT) term.ABT {
	for _, a := range args {
		fn = tm(&term.App{Fn: fn, Arg: a})
	}
	return fn
}

// let x = 3 in x + 4
var letBytes = cat(
	0,     // no free variables
	1, 17, // tm let
	1, 0, word(3),
	2, 0, "x",
	1, 9,
	1, 9,
	1, 5, 0, "Int.+",
	0, 0, 0, // bound variable 0
	1, 0, word(4),
)

var letTerm = tm(&term.Let{
	Binding: tm(&term.Int{Value: 3}),
	Body:    term.NewAbs("x", app(builtin("Int.+"), term.NewVar("x"), tm(&term.Int{Value: 4}))),
})

func TestDecodeLet(t *testing.T) {
	actual, err := DecodeTerm(letBytes)
	require.NoError(t, err)
	assert.Equal(t, letTerm, actual)
	assert.Equal(t, "(let +3 (abs x ((##Int.+ x) +4)))", actual.String())
}

func TestEncodeLet(t *testing.T) {
	b, err := EncodeTerm(letTerm)
	require.NoError(t, err)
	assert.Equal(t, letBytes, b)
}

func TestVarint(t *testing.T) {
	cases := []struct {
		value uint64
		bytes []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xac, 0x02}},
		{16384, []byte{0x80, 0x80, 0x01}},
		{math.MaxUint64, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}},
	}
	for _, c := range cases {
		e := NewEncoder()
		e.Varint(c.value)
		assert.Equal(t, c.bytes, e.Bytes(), "encoding %d", c.value)

		d := NewDecoder(c.bytes)
		n, err := d.Varint()
		require.NoError(t, err)
		assert.Equal(t, c.value, n)
		assert.Equal(t, 0, d.Remaining())
	}
}

func TestVarintOverflow(t *testing.T) {
	_, err := NewDecoder([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02}).Varint()
	assert.ErrorIs(t, err, ErrVarintOverflow)

	_, err = NewDecoder([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01}).Varint()
	assert.ErrorIs(t, err, ErrVarintOverflow)
}

func TestPrimitives(t *testing.T) {
	d := NewDecoder(cat(2, 1, word(math.Float64bits(2.5)), word(uint64(1<<63)), "héllo"))

	b, err := d.Bool()
	require.NoError(t, err)
	assert.False(t, b, "only 1 is true")

	b, err = d.Bool()
	require.NoError(t, err)
	assert.True(t, b)

	f, err := d.Float64()
	require.NoError(t, err)
	assert.Equal(t, 2.5, f)

	i, err := d.Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), i)

	s, err := d.Text()
	require.NoError(t, err)
	assert.Equal(t, "héllo", s)
	assert.Equal(t, 0, d.Remaining())
}

func TestShadowing(t *testing.T) {
	// \x -> \x -> x refers to the inner binder.
	inner := cat(0, 2, 0, "x", 2, 0, "x", 0, 0, 0)
	a, err := DecodeTerm(inner)
	require.NoError(t, err)
	_, body, ok := term.Unabs(a, 2)
	require.True(t, ok)
	assert.Equal(t, term.NewVar("x"), body)

	// Distinct symbols with the same text stay distinct.
	outer := &term.Abs{
		Symbol: term.Symbol{Num: 1, Text: "x"},
		Body: &term.Abs{
			Symbol: term.Symbol{Num: 2, Text: "x"},
			Body:   &term.Var{Symbol: term.Symbol{Num: 1, Text: "x"}},
		},
	}
	b, err := EncodeTerm(outer)
	require.NoError(t, err)
	assert.Equal(t, cat(0, 2, 1, "x", 2, 2, "x", 0, 0, 1), b)

	decoded, err := DecodeTerm(b)
	require.NoError(t, err)
	assert.Equal(t, outer, decoded)
}

func TestFreeVariables(t *testing.T) {
	// (f y) f: free variables are numbered by first occurrence.
	a := app(term.NewVar("f"), term.NewVar("y"), term.NewVar("f"))
	b, err := EncodeTerm(a)
	require.NoError(t, err)
	assert.Equal(t, cat(
		2, 0, "f", 0, "y",
		1, 9,
		1, 9,
		0, 1, 0,
		0, 1, 1,
		0, 1, 0,
	), b)

	decoded, err := DecodeTerm(b)
	require.NoError(t, err)
	assert.Equal(t, a, decoded)
}

func TestAnnotationCarriesTopLevelType(t *testing.T) {
	// 1 : a -> Nat, where the type has its own free variable list.
	nat := tm(&term.TypeRef{Reference: &term.Builtin{Name: "Nat"}})
	a := tm(&term.Ann{
		Term: tm(&term.Nat{Value: 1}),
		Type: tm(&term.TypeArrow{From: term.NewVar("a"), To: nat}),
	})
	b, err := EncodeTerm(a)
	require.NoError(t, err)
	assert.Equal(t, cat(
		0,
		1, 10,
		1, 1, word(1),
		1, 0, "a",
		1, 1,
		0, 1, 0,
		1, 0, 0, "Nat",
	), b)

	decoded, err := DecodeTerm(b)
	require.NoError(t, err)
	assert.Equal(t, a, decoded)
}

func TestRoundTrip(t *testing.T) {
	hash := term.Hash{0xde, 0xad, 0xbe, 0xef}
	ref := &term.DerivedID{Hash: hash, Index: 1, Total: 2}
	a := term.NewCycle(term.NewAbs("go", tm(&term.LetRec{
		Bindings: []term.ABT{
			tm(&term.Lam{Body: term.NewAbs("n", tm(&term.Match{
				Scrutinee: term.NewVar("n"),
				Cases: []term.MatchCase{
					{
						Pattern: &term.NatPattern{Value: 0},
						Body:    tm(&term.Sequence{Items: []term.ABT{tm(&term.Char{Value: 'z'}), tm(&term.Blank{})}}),
					},
					{
						Pattern: &term.ConstructorPattern{Ref: ref, Tag: 3, Args: []term.Pattern{&term.VarPattern{}, &term.UnboundPattern{}}},
						Guard:   term.NewAbs("m", tm(&term.Boolean{Value: true})),
						Body:    term.NewAbs("m", app(term.NewVar("go"), term.NewVar("m"))),
					},
					{
						Pattern: &term.EffectBindPattern{
							Ref:          &term.Builtin{Name: "IO"},
							Tag:          0,
							Args:         []term.Pattern{&term.SequenceOpPattern{Left: &term.VarPattern{}, Op: term.Snoc, Right: &term.TextPattern{Value: "e"}}},
							Continuation: &term.VarPattern{},
						},
						Body: term.NewAbs("xs", term.NewAbs("k", tm(&term.Handle{
							Handler: term.NewVar("k"),
							Body:    tm(&term.Request{Ref: ref, Tag: 1}),
						}))),
					},
					{
						Pattern: &term.AsPattern{Inner: &term.EffectPurePattern{Inner: &term.SequenceLiteralPattern{Items: []term.Pattern{&term.CharPattern{Value: 'c'}, &term.FloatPattern{Value: -0.5}}}}},
						Body:    term.NewAbs("all", tm(&term.If{Cond: tm(&term.Or{Left: tm(&term.Boolean{}), Right: tm(&term.And{Left: tm(&term.Boolean{Value: true}), Right: tm(&term.Boolean{})})}), Then: tm(&term.Float{Value: math.Inf(1)}), Else: tm(&term.Text{Value: ""})})),
					},
				},
			}))}),
		},
		Body: tm(&term.Sequence{Items: []term.ABT{
			tm(&term.TermLink{Referent: &term.ConReferent{Reference: ref, Tag: 2, Type: term.Effect}}),
			tm(&term.TermLink{Referent: &term.RefReferent{Reference: &term.Builtin{Name: "Int.+"}}}),
			tm(&term.TypeLink{Reference: ref}),
			tm(&term.Constructor{Ref: ref, Tag: 0}),
			tm(&term.Int{Value: -1}),
		}}),
	})))

	b, err := EncodeTerm(a)
	require.NoError(t, err)
	decoded, err := DecodeTerm(b)
	require.NoError(t, err)
	assert.Equal(t, a, decoded)
}

func TestTypeRoundTrip(t *testing.T) {
	a := tm(&term.TypeForall{Body: term.NewAbs("a", tm(&term.TypeEffect{
		Effects: tm(&term.TypeEffects{Items: []term.ABT{term.NewVar("e")}}),
		Type: tm(&term.TypeAnn{
			Type: tm(&term.TypeApp{Fn: term.NewVar("a"), Arg: tm(&term.TypeIntroOuter{Body: term.NewVar("b")})}),
			Kind: &term.KindArrow{From: &term.Star{}, To: &term.Star{}},
		}),
	}))})
	b, err := EncodeType(a)
	require.NoError(t, err)
	decoded, err := DecodeType(b)
	require.NoError(t, err)
	assert.Equal(t, a, decoded)
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name string
		buf  []byte
		err  error
	}{
		{"empty", nil, ErrUnexpectedEOF},
		{"truncated int", cat(0, 1, 0, 0, 0, 0), ErrUnexpectedEOF},
		{"truncated text", cat(0, 1, 4, 10, 0x61), ErrUnexpectedEOF},
		{"unknown abt tag", cat(0, 4), ErrUnknownTag},
		{"unknown term tag", cat(0, 1, 22), ErrUnknownTag},
		{"unknown reference tag", cat(0, 1, 5, 2), ErrUnknownTag},
		{"unknown pattern tag", cat(0, 1, 18, 1, 0, word(0), 1, 14), ErrUnknownTag},
		{"unknown variable kind", cat(0, 0, 2, 0), ErrUnknownTag},
		{"bound out of range", cat(0, 2, 0, "x", 0, 0, 1), ErrUnresolvedVariable},
		{"free out of range", cat(1, 0, "f", 0, 1, 1), ErrUnresolvedVariable},
		{"invalid utf-8", cat(0, 1, 4, 2, 0xc3, 0x28), ErrInvalidUTF8},
		{"trailing bytes", cat(0, 1, 3, 1, 0xff), ErrTrailingBytes},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := DecodeTerm(c.buf)
			require.Error(t, err)
			assert.ErrorIs(t, err, c.err)

			var de *DecodeError
			assert.ErrorAs(t, err, &de)
		})
	}
}

func TestDecodeErrorOffset(t *testing.T) {
	_, err := DecodeTerm(cat(0, 1, 22))
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 3, de.Offset)
	assert.Contains(t, de.Error(), "term tag 22")
}

func TestEncodeErrors(t *testing.T) {
	_, err := EncodeTerm(tm(&term.Char{Value: 'λ'}))
	assert.ErrorIs(t, err, ErrUnencodable)

	_, err = EncodeTerm(tm(&term.TypeRef{Reference: &term.Builtin{Name: "Nat"}}))
	assert.ErrorIs(t, err, ErrUnencodable)

	_, err = EncodeTerm(tm(&term.Text{Value: "\xff\xfe"}))
	assert.ErrorIs(t, err, ErrUnencodable)

	_, err = EncodeTerm(builtin("Text.\xc3"))
	assert.ErrorIs(t, err, ErrUnencodable)
}
