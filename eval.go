package weave

import (
	"fmt"
	"log/slog"

	"github.com/tevino/abool/v2"

	"github.com/pgavlin/weave/term"
)

// Option configures an Env.
type Option func(*Env)

// WithLogger sets the logger that receives evaluator traces.
func WithLogger(l *slog.Logger) Option {
	return func(e *Env) { e.log = l }
}

// WithMaxSteps bounds the number of applications and matches a single
// evaluation may perform. Zero means no limit.
func WithMaxSteps(n int) Option {
	return func(e *Env) { e.maxSteps = n }
}

// WithAbility declares the operations of an ability: arities[i] is the
// number of arguments operation i takes before it is performed.
func WithAbility(ref term.Reference, arities ...int) Option {
	return func(e *Env) { e.abilities[ref.String()] = arities }
}

// Env evaluates terms against the definitions of a Loader. An Env may be
// reused for many evaluations but runs one at a time.
type Env struct {
	loader      Loader
	log         *slog.Logger
	maxSteps    int
	abilities   map[string][]int
	interrupted *abool.AtomicBool
}

func NewEnv(loader Loader, opts ...Option) *Env {
	e := &Env{
		loader:      loader,
		log:         slog.Default(),
		abilities:   map[string][]int{},
		interrupted: abool.New(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Interrupt stops the running evaluation at its next application or match,
// which then fails with ErrInterrupted. It is safe to call from any
// goroutine. An interrupt made while nothing is running is discarded when
// the next evaluation starts.
func (e *Env) Interrupt() {
	e.interrupted.Set()
}

// Eval evaluates a closed term in a fresh root frame.
func (e *Env) Eval(a term.ABT) (Value, error) {
	return e.run(a, NewStack())
}

// EvalRef loads the definition stored under hash and evaluates it in a
// frame tagged with that hash.
func (e *Env) EvalRef(hash string) (Value, error) {
	a, err := e.load(hash)
	if err != nil {
		return nil, err
	}
	return e.run(a, NewStack().WithFrame(hash))
}

func (e *Env) load(hash string) (term.ABT, error) {
	if e.loader == nil {
		return nil, fmt.Errorf("%w: #%s", ErrTermNotFound, hash)
	}
	a, err := e.loader.Load(hash)
	if err != nil {
		return nil, fmt.Errorf("loading #%s: %w", hash, err)
	}
	return a, nil
}

func (e *Env) arity(ref term.Reference, tag uint64) int {
	arities, ok := e.abilities[ref.String()]
	if !ok || tag >= uint64(len(arities)) {
		fault(ErrUnknownAbility, "%v!%d", ref, tag)
	}
	return arities[tag]
}

func (e *Env) run(a term.ABT, s *Stack) (v Value, err error) {
	e.interrupted.UnSet()

	m := &machine{env: e}
	defer func() {
		x := recover()
		if x == nil {
			return
		}
		f, ok := x.(*Fault)
		if !ok {
			panic(x)
		}
		if f.Frame == "" && m.stack != nil {
			f.Frame = m.stack.Top().ID
		}
		e.log.Debug("evaluation failed", slog.String("error", f.Error()), slog.Int("steps", m.steps))
		v, err = nil, f
	}()

	m.eval(a, s)
	return m.run(), nil
}

// evalTerm takes one step on the term the machine is positioned at.
func (m *machine) evalTerm(a term.ABT, s *Stack) {
	switch a := a.(type) {
	case *term.Var:
		v, ok := s.Lookup(a.Symbol)
		if !ok {
			fault(ErrUnboundVariable, "%v", a.Symbol)
		}
		m.ret(v)
	case *term.Cycle:
		m.evalCycle(a, s)
	case *term.Abs:
		fault(ErrMalformed, "binder %v outside of a lambda, let or match", a.Symbol)
	case *term.Tm:
		m.evalContent(a.Content, s)
	default:
		fault(ErrMalformed, "abt %T", a)
	}
}

func (m *machine) evalContent(c term.Content, s *Stack) {
	if v, ok := lowerContent(c); ok {
		m.ret(v)
		return
	}

	switch c := c.(type) {
	case *term.Ref:
		m.evalRef(c.Reference, s)
	case *term.Request:
		m.request(c.Ref, c.Tag, nil)
	case *term.Handle:
		m.push(&handlerKont{body: c.Body, stack: s})
		m.eval(c.Handler, s)
	case *term.App:
		m.push(&appFnKont{arg: c.Arg, stack: s})
		m.eval(c.Fn, s)
	case *term.Ann:
		m.eval(c.Term, s)
	case *term.Sequence:
		if len(c.Items) == 0 {
			m.ret(Sequence{})
			return
		}
		m.push(&sequenceKont{items: c.Items, stack: s})
		m.eval(c.Items[0], s)
	case *term.If:
		m.push(&ifKont{then: c.Then, els: c.Else, stack: s})
		m.eval(c.Cond, s)
	case *term.And:
		m.push(&andKont{right: c.Right, stack: s})
		m.eval(c.Left, s)
	case *term.Or:
		m.push(&orKont{right: c.Right, stack: s})
		m.eval(c.Left, s)
	case *term.Lam:
		abs, ok := c.Body.(*term.Abs)
		if !ok {
			fault(ErrMalformed, "lambda body %v is not a binder", c.Body)
		}
		m.ret(&Closure{Frame: s.Top(), Param: abs.Symbol, Body: abs.Body})
	case *term.LetRec:
		// Outside of a cycle there is nothing to bind.
		m.eval(c.Body, s)
	case *term.Let:
		abs, ok := c.Body.(*term.Abs)
		if !ok {
			fault(ErrMalformed, "let body %v is not a binder", c.Body)
		}
		m.push(&letKont{sym: abs.Symbol, body: abs.Body, stack: s})
		m.eval(c.Binding, s)
	case *term.Match:
		m.push(&matchKont{cases: c.Cases, stack: s})
		m.eval(c.Scrutinee, s)
	default:
		fault(ErrMalformed, "%T in term position", c)
	}
}

func lowerContent(c term.Content) (Value, bool) {
	t, ok := c.(term.Term)
	if !ok {
		return nil, false
	}
	return Lower(t)
}

// evalRef runs a hash-addressed definition in a fresh frame tagged with its
// hash. Builtins other than the pure ones are values awaiting arguments.
func (m *machine) evalRef(r term.Reference, s *Stack) {
	switch r := r.(type) {
	case *term.Builtin:
		if v, ok := pureBuiltins[r.Name]; ok {
			m.ret(v)
			return
		}
		m.ret(Ref{Reference: r})
	case *term.DerivedID:
		hash := r.Hash.String()
		a, err := m.env.load(hash)
		if err != nil {
			panic(&Fault{Err: err, Frame: s.Top().ID})
		}
		m.env.log.Debug("enter", slog.String("hash", hash), slog.Int("depth", s.Depth()+1))
		m.eval(a, s.WithFrame(hash))
	default:
		fault(ErrMalformed, "reference %T", r)
	}
}

// evalCycle evaluates the bindings of a mutually recursive group in the
// current frame, then runs the group's body with every member bound.
func (m *machine) evalCycle(c *term.Cycle, s *Stack) {
	var names []term.Symbol
	body := c.Body
	for {
		abs, ok := body.(*term.Abs)
		if !ok {
			break
		}
		names, body = append(names, abs.Symbol), abs.Body
	}

	tm, ok := body.(*term.Tm)
	if !ok {
		fault(ErrMalformed, "cycle body %v is not a letrec", body)
	}
	letrec, ok := tm.Content.(*term.LetRec)
	if !ok || len(letrec.Bindings) != len(names) {
		fault(ErrMalformed, "cycle of %d names over %v", len(names), tm)
	}
	if len(names) == 0 {
		m.eval(letrec.Body, s)
		return
	}

	m.push(&cycleKont{names: names, bindings: letrec.Bindings, body: letrec.Body, stack: s})
	m.eval(letrec.Bindings[0], s)
}

func (m *machine) enterCycle(names []term.Symbol, values []Value, body term.ABT, s *Stack) {
	group := &CycleGroup{Names: names, Values: values}
	m.eval(body, s.WithAll(names, group.members()))
}

func (g *CycleGroup) members() []Value {
	members := make([]Value, len(g.Values))
	for i := range g.Values {
		members[i] = g.member(i)
	}
	return members
}

// selectCase tries cases[i:] against v. The first structural match with a
// passing guard wins.
func (m *machine) selectCase(v Value, cases []term.MatchCase, i int, s *Stack) {
	for ; i < len(cases); i++ {
		c := cases[i]
		binds, ok := Match(c.Pattern, v)
		if !ok {
			continue
		}
		if c.Guard != nil {
			m.push(&guardKont{scrutinee: v, cases: cases, index: i, binds: binds, stack: s})
			m.eval(splice(c.Guard, binds, s))
			return
		}
		m.eval(splice(c.Body, binds, s))
		return
	}
	fault(ErrNonExhaustive, "no case matches %s", EncodeToString(v))
}

// splice binds one Abs layer of a per matched value.
func splice(a term.ABT, binds []Value, s *Stack) (term.ABT, *Stack) {
	syms, body, ok := term.Unabs(a, len(binds))
	if !ok {
		fault(ErrMalformed, "case body binds fewer than %d values", len(binds))
	}
	return body, s.WithAll(syms, binds)
}

// request collects the arguments of an ability operation and performs it
// once it has them all.
func (m *machine) request(ref term.Reference, tag uint64, args []Value) {
	arity := m.env.arity(ref, tag)
	switch {
	case len(args) >= arity:
		m.perform(ref, tag, args)
	case len(args) == 0:
		m.ret(Request{Ref: ref, Tag: tag})
	default:
		m.ret(PartialRequest{Ref: ref, Tag: tag, Args: args})
	}
}

// apply calls fn with arg from the stack s.
func (m *machine) apply(fn, arg Value, s *Stack) {
	m.tick()

	switch f := fn.(type) {
	case *Closure:
		m.eval(f.Body, s.Push(f.Frame.With(f.Param, arg)))
	case *CycleFunction:
		c := f.Group.Values[f.Index].(*Closure)
		names := append(f.Group.Names[:len(f.Group.Names):len(f.Group.Names)], c.Param)
		values := append(f.Group.members(), arg)
		m.eval(c.Body, s.Push(c.Frame.WithAll(names, values)))
	case Constructor:
		m.ret(PartialConstructor{Ref: f.Ref, Tag: f.Tag, Args: []Value{arg}})
	case PartialConstructor:
		m.ret(PartialConstructor{Ref: f.Ref, Tag: f.Tag, Args: with(f.Args, arg)})
	case Request:
		m.request(f.Ref, f.Tag, []Value{arg})
	case PartialRequest:
		m.request(f.Ref, f.Tag, with(f.Args, arg))
	case Ref:
		b, ok := f.Reference.(*term.Builtin)
		if !ok {
			fault(ErrNotAFunction, "%v", f.Reference)
		}
		m.applyBuiltin(b.Name, arg)
	case PartialNativeApp:
		native, ok := builtins[f.Name]
		if !ok || native.arity != 2 {
			fault(ErrUnknownBuiltin, "%s", f.Name)
		}
		v, ok := native.binary(f.Arg, arg)
		if !ok {
			fault(ErrTypeConfusion, "%s applied to %s and %s", f.Name, EncodeToString(f.Arg), EncodeToString(arg))
		}
		m.ret(v)
	case *Continuation:
		m.resume(f, arg)
	default:
		fault(ErrNotAFunction, "%s", EncodeToString(fn))
	}
}

func (m *machine) applyBuiltin(name string, arg Value) {
	native, ok := builtins[name]
	if !ok || native.arity == 2 {
		m.ret(PartialNativeApp{Name: name, Arg: arg})
		return
	}
	v, ok := native.unary(arg)
	if !ok {
		fault(ErrTypeConfusion, "%s applied to %s", name, EncodeToString(arg))
	}
	m.ret(v)
}

func with(vs []Value, v Value) []Value {
	out := make([]Value, 0, len(vs)+1)
	return append(append(out, vs...), v)
}
