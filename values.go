package weave

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pgavlin/weave/term"
)

// Value is the result of evaluation. Decoded terms never contain values;
// Lower converts a literal term into one.
type Value interface {
	write(w io.Writer) error
}

// Encode writes a textual representation of v to w.
func Encode(w io.Writer, v Value) error {
	if v == nil {
		_, err := io.WriteString(w, "<nil>")
		return err
	}
	return v.write(w)
}

// EncodeToString returns the textual representation of v.
func EncodeToString(v Value) string {
	var b strings.Builder
	Encode(&b, v)
	return b.String()
}

func writeString(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}

// writeApplied writes (head a b ...).
func writeApplied(w io.Writer, head string, args []Value) error {
	if err := writeString(w, "("+head); err != nil {
		return err
	}
	for _, a := range args {
		if err := writeString(w, " "); err != nil {
			return err
		}
		if err := Encode(w, a); err != nil {
			return err
		}
	}
	return writeString(w, ")")
}

// Int
type Int int64

func (i Int) write(w io.Writer) error {
	if i >= 0 {
		return writeString(w, "+"+strconv.FormatInt(int64(i), 10))
	}
	return writeString(w, strconv.FormatInt(int64(i), 10))
}

// Nat
type Nat uint64

func (n Nat) write(w io.Writer) error {
	return writeString(w, strconv.FormatUint(uint64(n), 10))
}

// Float
type Float float64

func (f Float) write(w io.Writer) error {
	return writeString(w, strconv.FormatFloat(float64(f), 'g', -1, 64))
}

// Boolean
type Boolean bool

func (b Boolean) write(w io.Writer) error {
	return writeString(w, strconv.FormatBool(bool(b)))
}

// Text
type Text string

func (t Text) write(w io.Writer) error {
	return writeString(w, strconv.Quote(string(t)))
}

// Char
type Char rune

func (c Char) write(w io.Writer) error {
	return writeString(w, "?"+string(rune(c)))
}

// Blank is the value of a typed hole.
type Blank struct{}

func (Blank) write(w io.Writer) error {
	return writeString(w, "_")
}

// Sequence is an immutable list of values. Operations that extend a
// sequence return a copy.
type Sequence []Value

func (s Sequence) write(w io.Writer) error {
	if err := writeString(w, "["); err != nil {
		return err
	}
	for i, e := range s {
		if i > 0 {
			if err := writeString(w, ", "); err != nil {
				return err
			}
		}
		if err := Encode(w, e); err != nil {
			return err
		}
	}
	return writeString(w, "]")
}

func (s Sequence) append(vs ...Value) Sequence {
	out := make(Sequence, 0, len(s)+len(vs))
	return append(append(out, s...), vs...)
}

// Ref is an unapplied reference, usually to a builtin awaiting arguments.
type Ref struct {
	Reference term.Reference
}

func (r Ref) write(w io.Writer) error {
	return writeString(w, r.Reference.String())
}

type TermLink struct {
	Referent term.Referent
}

func (l TermLink) write(w io.Writer) error {
	return writeString(w, "termLink "+l.Referent.String())
}

type TypeLink struct {
	Reference term.Reference
}

func (l TypeLink) write(w io.Writer) error {
	return writeString(w, "typeLink "+l.Reference.String())
}

// Constructor is a data constructor that has received no arguments. A
// constructor of no fields is a complete value in this form.
type Constructor struct {
	Ref term.Reference
	Tag uint64
}

func (c Constructor) write(w io.Writer) error {
	return writeString(w, fmt.Sprintf("%v#%d", c.Ref, c.Tag))
}

// PartialConstructor is a constructor applied to one or more arguments.
// Saturation is never checked; patterns decide what a value means.
type PartialConstructor struct {
	Ref  term.Reference
	Tag  uint64
	Args []Value
}

func (c PartialConstructor) write(w io.Writer) error {
	return writeApplied(w, fmt.Sprintf("%v#%d", c.Ref, c.Tag), c.Args)
}

// Request is an ability operation that takes arguments and has received
// none.
type Request struct {
	Ref term.Reference
	Tag uint64
}

func (r Request) write(w io.Writer) error {
	return writeString(w, fmt.Sprintf("%v!%d", r.Ref, r.Tag))
}

// PartialRequest is an ability operation still waiting for arguments.
type PartialRequest struct {
	Ref  term.Reference
	Tag  uint64
	Args []Value
}

func (r PartialRequest) write(w io.Writer) error {
	return writeApplied(w, fmt.Sprintf("%v!%d", r.Ref, r.Tag), r.Args)
}

// PartialNativeApp is a binary builtin applied to its first argument.
type PartialNativeApp struct {
	Name string
	Arg  Value
}

func (p PartialNativeApp) write(w io.Writer) error {
	return writeApplied(w, "##"+p.Name, []Value{p.Arg})
}

// Closure is a one-argument function together with a snapshot of the frame
// that was active when its lambda was evaluated.
type Closure struct {
	Frame *Frame
	Param term.Symbol
	Body  term.ABT
}

func (c *Closure) write(w io.Writer) error {
	return writeString(w, fmt.Sprintf("<function %v in %v>", c.Param, c.Frame.ID))
}

// CycleFunction is member Index of a group of mutually recursive bindings.
// Calling it rebinds every member of the group by name in the call frame.
type CycleFunction struct {
	Group *CycleGroup
	Index int
}

// CycleGroup holds the bindings of one letrec. Members that evaluated to
// closures are called through CycleFunction; the rest are plain values.
type CycleGroup struct {
	Names  []term.Symbol
	Values []Value
}

func (g *CycleGroup) member(i int) Value {
	if _, ok := g.Values[i].(*Closure); ok {
		return &CycleFunction{Group: g, Index: i}
	}
	return g.Values[i]
}

func (c *CycleFunction) write(w io.Writer) error {
	return writeString(w, fmt.Sprintf("<recursive function %v>", c.Group.Names[c.Index]))
}

// RequestPure is what a handler receives when the handled computation
// finishes without performing a request.
type RequestPure struct {
	Value Value
}

func (r RequestPure) write(w io.Writer) error {
	if err := writeString(w, "{"); err != nil {
		return err
	}
	if err := Encode(w, r.Value); err != nil {
		return err
	}
	return writeString(w, "}")
}

// RequestWithContinuation is what a handler receives when the handled
// computation performs a request.
type RequestWithContinuation struct {
	Ref          term.Reference
	Tag          uint64
	Args         []Value
	Continuation *Continuation
}

func (r RequestWithContinuation) write(w io.Writer) error {
	if err := writeString(w, "{"); err != nil {
		return err
	}
	if err := writeApplied(w, fmt.Sprintf("%v!%d", r.Ref, r.Tag), r.Args); err != nil {
		return err
	}
	if err := writeString(w, " -> "); err != nil {
		return err
	}
	if err := Encode(w, r.Continuation); err != nil {
		return err
	}
	return writeString(w, "}")
}

// Continuation is the rest of a handled computation, from the point a
// request was performed up to its handler. It is immutable and may be
// resumed any number of times.
type Continuation struct {
	frames []kont
}

func (c *Continuation) write(w io.Writer) error {
	return writeString(w, fmt.Sprintf("<continuation of %d frames>", len(c.frames)))
}

// Lower converts a literal or link term into a value. ok is false for any
// term that needs evaluation.
func Lower(t term.Term) (v Value, ok bool) {
	switch t := t.(type) {
	case *term.Int:
		return Int(t.Value), true
	case *term.Nat:
		return Nat(t.Value), true
	case *term.Float:
		return Float(t.Value), true
	case *term.Boolean:
		return Boolean(t.Value), true
	case *term.Text:
		return Text(t.Value), true
	case *term.Char:
		return Char(t.Value), true
	case *term.Blank:
		return Blank{}, true
	case *term.TermLink:
		return TermLink{Referent: t.Referent}, true
	case *term.TypeLink:
		return TypeLink{Reference: t.Reference}, true
	case *term.Constructor:
		return Constructor{Ref: t.Ref, Tag: t.Tag}, true
	default:
		return nil, false
	}
}
