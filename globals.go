package weave

// builtin is a native function of one or two arguments. The functions
// report false when an operand has the wrong kind.
type builtin struct {
	arity  int
	unary  func(x Value) (Value, bool)
	binary func(x, y Value) (Value, bool)
}

func unaryOf[A Value](f func(a A) Value) builtin {
	return builtin{arity: 1, unary: func(x Value) (Value, bool) {
		a, ok := x.(A)
		if !ok {
			return nil, false
		}
		return f(a), true
	}}
}

func binaryOf[A, B Value](f func(a A, b B) Value) builtin {
	return builtin{arity: 2, binary: func(x, y Value) (Value, bool) {
		a, ok := x.(A)
		if !ok {
			return nil, false
		}
		b, ok := y.(B)
		if !ok {
			return nil, false
		}
		return f(a, b), true
	}}
}

// pureBuiltins are builtins that are values rather than functions.
var pureBuiltins = map[string]Value{
	"Text.empty":     Text(""),
	"Sequence.empty": Sequence{},
}

var builtins = map[string]builtin{
	// Int
	"Int.+":          binaryOf(func(a, b Int) Value { return a + b }),
	"Int.-":          binaryOf(func(a, b Int) Value { return a - b }),
	"Int.*":          binaryOf(func(a, b Int) Value { return a * b }),
	"Int./":          binaryOf(IntDiv),
	"Int.mod":        binaryOf(IntMod),
	"Int.<":          binaryOf(func(a, b Int) Value { return Boolean(a < b) }),
	"Int.<=":         binaryOf(func(a, b Int) Value { return Boolean(a <= b) }),
	"Int.>":          binaryOf(func(a, b Int) Value { return Boolean(a > b) }),
	"Int.>=":         binaryOf(func(a, b Int) Value { return Boolean(a >= b) }),
	"Int.==":         binaryOf(func(a, b Int) Value { return Boolean(a == b) }),
	"Int.and":        binaryOf(func(a, b Int) Value { return a & b }),
	"Int.or":         binaryOf(func(a, b Int) Value { return a | b }),
	"Int.xor":        binaryOf(func(a, b Int) Value { return a ^ b }),
	"Int.pow":        binaryOf(IntPow),
	"Int.shiftLeft":  binaryOf(func(a Int, b Nat) Value { return a << b }),
	"Int.shiftRight": binaryOf(func(a Int, b Nat) Value { return a >> b }),
	"Int.increment":  unaryOf(func(a Int) Value { return a + 1 }),
	"Int.negate":     unaryOf(func(a Int) Value { return -a }),
	"Int.isEven":     unaryOf(func(a Int) Value { return Boolean(a&1 == 0) }),
	"Int.isOdd":      unaryOf(func(a Int) Value { return Boolean(a&1 == 1) }),

	// Nat
	"Nat.+":          binaryOf(func(a, b Nat) Value { return a + b }),
	"Nat.*":          binaryOf(func(a, b Nat) Value { return a * b }),
	"Nat./":          binaryOf(NatDiv),
	"Nat.mod":        binaryOf(NatMod),
	"Nat.sub":        binaryOf(func(a, b Nat) Value { return Int(a) - Int(b) }),
	"Nat.drop":       binaryOf(NatDrop),
	"Nat.<":          binaryOf(func(a, b Nat) Value { return Boolean(a < b) }),
	"Nat.<=":         binaryOf(func(a, b Nat) Value { return Boolean(a <= b) }),
	"Nat.>":          binaryOf(func(a, b Nat) Value { return Boolean(a > b) }),
	"Nat.>=":         binaryOf(func(a, b Nat) Value { return Boolean(a >= b) }),
	"Nat.==":         binaryOf(func(a, b Nat) Value { return Boolean(a == b) }),
	"Nat.and":        binaryOf(func(a, b Nat) Value { return a & b }),
	"Nat.or":         binaryOf(func(a, b Nat) Value { return a | b }),
	"Nat.xor":        binaryOf(func(a, b Nat) Value { return a ^ b }),
	"Nat.pow":        binaryOf(NatPow),
	"Nat.shiftLeft":  binaryOf(func(a, b Nat) Value { return a << b }),
	"Nat.shiftRight": binaryOf(func(a, b Nat) Value { return a >> b }),
	"Nat.increment":  unaryOf(func(a Nat) Value { return a + 1 }),
	"Nat.isEven":     unaryOf(func(a Nat) Value { return Boolean(a&1 == 0) }),
	"Nat.isOdd":      unaryOf(func(a Nat) Value { return Boolean(a&1 == 1) }),
	"Nat.toInt":      unaryOf(func(a Nat) Value { return Int(a) }),

	// Float
	"Float.+":  binaryOf(func(a, b Float) Value { return a + b }),
	"Float.-":  binaryOf(func(a, b Float) Value { return a - b }),
	"Float.*":  binaryOf(func(a, b Float) Value { return a * b }),
	"Float./":  binaryOf(func(a, b Float) Value { return a / b }),
	"Float.<":  binaryOf(func(a, b Float) Value { return Boolean(a < b) }),
	"Float.<=": binaryOf(func(a, b Float) Value { return Boolean(a <= b) }),
	"Float.>":  binaryOf(func(a, b Float) Value { return Boolean(a > b) }),
	"Float.>=": binaryOf(func(a, b Float) Value { return Boolean(a >= b) }),
	"Float.==": binaryOf(func(a, b Float) Value { return Boolean(a == b) }),

	// Universal
	"Universal.==":      binaryOf(func(a, b Value) Value { return Boolean(Equal(a, b)) }),
	"Universal.<":       binaryOf(func(a, b Value) Value { return Boolean(Compare(a, b) < 0) }),
	"Universal.<=":      binaryOf(func(a, b Value) Value { return Boolean(Compare(a, b) <= 0) }),
	"Universal.>":       binaryOf(func(a, b Value) Value { return Boolean(Compare(a, b) > 0) }),
	"Universal.>=":      binaryOf(func(a, b Value) Value { return Boolean(Compare(a, b) >= 0) }),
	"Universal.compare": binaryOf(func(a, b Value) Value { return Int(Compare(a, b)) }),

	// Boolean
	"Boolean.not": unaryOf(BooleanNot),

	// Text
	"Text.++":   binaryOf(TextAppend),
	"Text.size": unaryOf(TextSize),

	// Sequence
	"Sequence.size": unaryOf(SequenceSize),
	"Sequence.cons": binaryOf(SequenceCons),
	"Sequence.snoc": binaryOf(SequenceSnoc),
	"Sequence.++":   binaryOf(SequenceAppend),
}
