package weave

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavlin/weave/term"
)

func applyNative(t *testing.T, name string, args ...Value) Value {
	b, ok := builtins[name]
	require.True(t, ok, name)
	require.Len(t, args, b.arity)

	var v Value
	if b.arity == 1 {
		v, ok = b.unary(args[0])
	} else {
		v, ok = b.binary(args[0], args[1])
	}
	require.True(t, ok, "%s rejected its operands", name)
	return v
}

func TestBuiltins(t *testing.T) {
	cases := []struct {
		name     string
		args     []Value
		expected Value
	}{
		{"Int.+", []Value{Int(2), Int(-5)}, Int(-3)},
		{"Int.+", []Value{Int(math.MaxInt64), Int(1)}, Int(math.MinInt64)},
		{"Int.-", []Value{Int(2), Int(5)}, Int(-3)},
		{"Int.*", []Value{Int(-4), Int(5)}, Int(-20)},
		{"Int./", []Value{Int(-7), Int(2)}, Int(-3)},
		{"Int.mod", []Value{Int(-7), Int(2)}, Int(-1)},
		{"Int.pow", []Value{Int(-2), Nat(5)}, Int(-32)},
		{"Int.pow", []Value{Int(7), Nat(0)}, Int(1)},
		{"Int.shiftLeft", []Value{Int(1), Nat(4)}, Int(16)},
		{"Int.shiftRight", []Value{Int(-16), Nat(2)}, Int(-4)},
		{"Int.isEven", []Value{Int(-4)}, Boolean(true)},
		{"Int.isOdd", []Value{Int(-3)}, Boolean(true)},
		{"Int.negate", []Value{Int(3)}, Int(-3)},
		{"Int.<", []Value{Int(-1), Int(0)}, Boolean(true)},
		{"Int.xor", []Value{Int(6), Int(3)}, Int(5)},

		{"Nat.+", []Value{Nat(math.MaxUint64), Nat(1)}, Nat(0)},
		{"Nat.sub", []Value{Nat(2), Nat(5)}, Int(-3)},
		{"Nat.drop", []Value{Nat(2), Nat(5)}, Nat(0)},
		{"Nat.drop", []Value{Nat(5), Nat(2)}, Nat(3)},
		{"Nat.pow", []Value{Nat(3), Nat(4)}, Nat(81)},
		{"Nat.pow", []Value{Nat(2), Nat(64)}, Nat(0)},
		{"Nat.shiftLeft", []Value{Nat(3), Nat(2)}, Nat(12)},
		{"Nat.shiftRight", []Value{Nat(12), Nat(2)}, Nat(3)},
		{"Nat.mod", []Value{Nat(7), Nat(3)}, Nat(1)},
		{"Nat.isEven", []Value{Nat(7)}, Boolean(false)},
		{"Nat.toInt", []Value{Nat(7)}, Int(7)},
		{"Nat.>=", []Value{Nat(7), Nat(7)}, Boolean(true)},

		{"Float.+", []Value{Float(0.5), Float(0.25)}, Float(0.75)},
		{"Float./", []Value{Float(1), Float(4)}, Float(0.25)},
		{"Float.==", []Value{Float(1), Float(1)}, Boolean(true)},

		{"Universal.==", []Value{Sequence{Nat(1)}, Sequence{Nat(1)}}, Boolean(true)},
		{"Universal.==", []Value{Nat(1), Int(1)}, Boolean(false)},
		{"Universal.<", []Value{Int(5), Nat(0)}, Boolean(true)},
		{"Universal.compare", []Value{Text("b"), Text("a")}, Int(1)},
		{"Universal.compare", []Value{Float(math.NaN()), Float(math.NaN())}, Int(0)},

		{"Boolean.not", []Value{Boolean(false)}, Boolean(true)},

		{"Text.++", []Value{Text("foo"), Text("bar")}, Text("foobar")},
		{"Text.size", []Value{Text("héllo")}, Nat(5)},

		{"Sequence.size", []Value{Sequence{Nat(1), Nat(2)}}, Nat(2)},
		{"Sequence.cons", []Value{Nat(0), Sequence{Nat(1)}}, Sequence{Nat(0), Nat(1)}},
		{"Sequence.snoc", []Value{Sequence{Nat(1)}, Nat(2)}, Sequence{Nat(1), Nat(2)}},
		{"Sequence.++", []Value{Sequence{Nat(1)}, Sequence{Nat(2)}}, Sequence{Nat(1), Nat(2)}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assertValue(t, c.expected, applyNative(t, c.name, c.args...))
		})
	}
}

func TestBuiltinOperandKinds(t *testing.T) {
	_, ok := builtins["Int.+"].binary(Int(1), Nat(1))
	assert.False(t, ok)
	_, ok = builtins["Nat.shiftLeft"].binary(Nat(1), Int(1))
	assert.False(t, ok)
	_, ok = builtins["Text.size"].unary(Sequence{})
	assert.False(t, ok)
}

func TestBuiltinIdentities(t *testing.T) {
	for _, i := range []Int{0, 1, -1, 42, math.MaxInt64, math.MinInt64} {
		assert.Equal(t, i, applyNative(t, "Int.+", i, Int(0)))
		assert.Equal(t, Boolean(true), applyNative(t, "Universal.==", i, i))
		assert.Equal(t, Boolean(true), applyNative(t, "Universal.==", Sequence{i, Text("x")}, Sequence{i, Text("x")}))
	}
}

func TestDivideByZero(t *testing.T) {
	for _, name := range []string{"Int./", "Int.mod"} {
		assert.PanicsWithValue(t, &Fault{Err: ErrDivideByZero, Detail: detail(name, "1")}, func() {
			applyNative(t, name, Int(1), Int(0))
		})
	}
	for _, name := range []string{"Nat./", "Nat.mod"} {
		assert.Panics(t, func() { applyNative(t, name, Nat(1), Nat(0)) })
	}
}

func detail(name, operand string) string {
	if name == "Int./" {
		return operand + " / 0"
	}
	return operand + " mod 0"
}

func TestSequenceOpsCopy(t *testing.T) {
	base := make(Sequence, 1, 4)
	base[0] = Nat(1)

	a := applyNative(t, "Sequence.snoc", base, Nat(2)).(Sequence)
	b := applyNative(t, "Sequence.snoc", base, Nat(3)).(Sequence)
	assertValue(t, Sequence{Nat(1), Nat(2)}, a)
	assertValue(t, Sequence{Nat(1), Nat(3)}, b)
	assert.Len(t, base, 1)
}

func TestUniversalOrdering(t *testing.T) {
	ref := &term.Builtin{Name: "Unit"}
	ordered := []Value{
		Int(0),
		Nat(0),
		Float(0),
		Boolean(false),
		Text(""),
		Char('a'),
		Blank{},
		Sequence{},
		Ref{Reference: ref},
		TermLink{Referent: &term.RefReferent{Reference: ref}},
		TypeLink{Reference: ref},
		Constructor{Ref: ref},
		PartialConstructor{Ref: ref, Args: []Value{Nat(1)}},
		Request{Ref: ref},
		PartialRequest{Ref: ref, Args: []Value{Nat(1)}},
		PartialNativeApp{Name: "Int.+", Arg: Int(1)},
		RequestPure{Value: Nat(1)},
	}
	for i := range ordered {
		for j := range ordered {
			assert.Equal(t, cmpInts(i, j), Compare(ordered[i], ordered[j]), "%s vs %s", EncodeToString(ordered[i]), EncodeToString(ordered[j]))
		}
	}

	assert.Panics(t, func() { Compare(&Closure{Frame: NewFrame(RootFrame)}, Int(0)) })
	assert.Panics(t, func() { Equal(&Continuation{}, &Continuation{}) })
}

func cmpInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
