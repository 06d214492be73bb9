package weave

import "github.com/pgavlin/weave/term"

// RootFrame identifies the frame a top-level evaluation starts in.
const RootFrame = "<root>"

// Frame is one activation: the identifier of the definition being run (its
// hash text, or RootFrame) and its local bindings. Frames are never
// mutated once built; With returns a new frame that shares the old one's
// bindings.
type Frame struct {
	ID  string
	top *layer
}

// layer is one immutable map of bindings over the layers below it. A layer
// is never larger than the one beneath it: extending a frame merges equal or
// smaller layers into a new map, so a frame of n distinct bindings has
// O(log n) layers and building it copies O(n log n) entries in total.
type layer struct {
	bindings map[term.Symbol]Value
	below    *layer
}

func NewFrame(id string) *Frame {
	return &Frame{ID: id}
}

// Lookup returns the value bound to sym in this frame.
func (f *Frame) Lookup(sym term.Symbol) (Value, bool) {
	for l := f.top; l != nil; l = l.below {
		if v, ok := l.bindings[sym]; ok {
			return v, true
		}
	}
	return nil, false
}

// With returns f with sym bound to v.
func (f *Frame) With(sym term.Symbol, v Value) *Frame {
	return f.extend(map[term.Symbol]Value{sym: v})
}

// WithAll returns f with every syms[i] bound to vs[i]. A later symbol wins
// over an earlier one with the same name.
func (f *Frame) WithAll(syms []term.Symbol, vs []Value) *Frame {
	if len(syms) == 0 {
		return f
	}
	bindings := make(map[term.Symbol]Value, len(syms))
	for i, sym := range syms {
		bindings[sym] = vs[i]
	}
	return f.extend(bindings)
}

func (f *Frame) extend(bindings map[term.Symbol]Value) *Frame {
	top := &layer{bindings: bindings, below: f.top}
	for top.below != nil && len(top.below.bindings) <= len(top.bindings) {
		below := top.below
		merged := make(map[term.Symbol]Value, len(below.bindings)+len(top.bindings))
		for k, x := range below.bindings {
			merged[k] = x
		}
		for k, x := range top.bindings {
			merged[k] = x
		}
		top = &layer{bindings: merged, below: below.below}
	}
	return &Frame{ID: f.ID, top: top}
}

// Len returns the number of distinct symbols bound in f.
func (f *Frame) Len() int {
	seen := map[term.Symbol]struct{}{}
	for l := f.top; l != nil; l = l.below {
		for k := range l.bindings {
			seen[k] = struct{}{}
		}
	}
	return len(seen)
}

// Stack is the evaluator's view of the frame stack: the top frame and the
// number of frames beneath it. Variable lookups only consult the top frame.
// The frames below are held by the continuation that will return to them,
// so a Stack does not keep them alive itself.
type Stack struct {
	top   *Frame
	depth int
}

// NewStack returns a stack holding a single empty root frame.
func NewStack() *Stack {
	return &Stack{top: NewFrame(RootFrame), depth: 1}
}

func (s *Stack) Top() *Frame { return s.top }

func (s *Stack) Depth() int { return s.depth }

func (s *Stack) Lookup(sym term.Symbol) (Value, bool) {
	return s.top.Lookup(sym)
}

// With returns a stack whose top frame additionally binds sym to v.
func (s *Stack) With(sym term.Symbol, v Value) *Stack {
	return &Stack{top: s.top.With(sym, v), depth: s.depth}
}

// WithAll returns a stack whose top frame additionally binds each syms[i]
// to vs[i].
func (s *Stack) WithAll(syms []term.Symbol, vs []Value) *Stack {
	return &Stack{top: s.top.WithAll(syms, vs), depth: s.depth}
}

// WithFrame pushes a new empty frame.
func (s *Stack) WithFrame(id string) *Stack {
	return s.Push(NewFrame(id))
}

// Push pushes f.
func (s *Stack) Push(f *Frame) *Stack {
	return &Stack{top: f, depth: s.depth + 1}
}
