package weave

import (
	"cmp"
	"fmt"

	"github.com/pgavlin/weave/term"
)

// Equal reports whether two values are structurally equal. Functions and
// continuations cannot be compared; Equal panics with a *Fault if it reaches
// one.
func Equal(a, b Value) bool {
	return Compare(a, b) == 0
}

// Compare orders two values structurally: first by kind, then field by
// field. Floats use a total order in which NaN equals itself.
func Compare(a, b Value) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}

	switch a := a.(type) {
	case Int:
		return cmp.Compare(a, b.(Int))
	case Nat:
		return cmp.Compare(a, b.(Nat))
	case Float:
		return cmp.Compare(a, b.(Float))
	case Boolean:
		return compareBool(bool(a), bool(b.(Boolean)))
	case Text:
		return cmp.Compare(a, b.(Text))
	case Char:
		return cmp.Compare(a, b.(Char))
	case Blank:
		return 0
	case Sequence:
		return compareValues(a, b.(Sequence))
	case Ref:
		return term.CompareReferences(a.Reference, b.(Ref).Reference)
	case TermLink:
		return compareReferents(a.Referent, b.(TermLink).Referent)
	case TypeLink:
		return term.CompareReferences(a.Reference, b.(TypeLink).Reference)
	case Constructor:
		b := b.(Constructor)
		return compareTagged(a.Ref, a.Tag, nil, b.Ref, b.Tag, nil)
	case PartialConstructor:
		b := b.(PartialConstructor)
		return compareTagged(a.Ref, a.Tag, a.Args, b.Ref, b.Tag, b.Args)
	case Request:
		b := b.(Request)
		return compareTagged(a.Ref, a.Tag, nil, b.Ref, b.Tag, nil)
	case PartialRequest:
		b := b.(PartialRequest)
		return compareTagged(a.Ref, a.Tag, a.Args, b.Ref, b.Tag, b.Args)
	case PartialNativeApp:
		b := b.(PartialNativeApp)
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return Compare(a.Arg, b.Arg)
	case RequestPure:
		return Compare(a.Value, b.(RequestPure).Value)
	}
	panic(&Fault{Err: ErrIncomparable, Detail: fmt.Sprintf("%s and %s", EncodeToString(a), EncodeToString(b))})
}

// rank orders the kinds of value. Kinds with rank -1 are not comparable.
func rank(v Value) int {
	switch v.(type) {
	case Int:
		return 0
	case Nat:
		return 1
	case Float:
		return 2
	case Boolean:
		return 3
	case Text:
		return 4
	case Char:
		return 5
	case Blank:
		return 6
	case Sequence:
		return 7
	case Ref:
		return 8
	case TermLink:
		return 9
	case TypeLink:
		return 10
	case Constructor:
		return 11
	case PartialConstructor:
		return 12
	case Request:
		return 13
	case PartialRequest:
		return 14
	case PartialNativeApp:
		return 15
	case RequestPure:
		return 16
	}
	panic(&Fault{Err: ErrIncomparable, Detail: EncodeToString(v)})
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

func compareValues(a, b []Value) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

func compareTagged(ra term.Reference, ta uint64, aa []Value, rb term.Reference, tb uint64, ab []Value) int {
	if c := term.CompareReferences(ra, rb); c != 0 {
		return c
	}
	if c := cmp.Compare(ta, tb); c != 0 {
		return c
	}
	return compareValues(aa, ab)
}

func compareReferents(a, b term.Referent) int {
	switch a := a.(type) {
	case *term.RefReferent:
		b, ok := b.(*term.RefReferent)
		if !ok {
			return -1
		}
		return term.CompareReferences(a.Reference, b.Reference)
	case *term.ConReferent:
		b, ok := b.(*term.ConReferent)
		if !ok {
			return 1
		}
		if c := term.CompareReferences(a.Reference, b.Reference); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Tag, b.Tag); c != 0 {
			return c
		}
		return cmp.Compare(a.Type, b.Type)
	}
	return 0
}
