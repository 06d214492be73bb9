package weave

import (
	"log/slog"

	"github.com/pgavlin/weave/term"
)

// The evaluator is an explicit-continuation machine. At each step it either
// evaluates a term in a stack or returns a value to the innermost pending
// continuation frame. Continuation frames are immutable, so any suffix of
// the continuation can be captured by a request and resumed any number of
// times.

// kont is one pending step of the computation.
type kont interface {
	resume(m *machine, v Value)
}

type kstack struct {
	frame kont
	next  *kstack
}

type machine struct {
	env   *Env
	steps int
	k     *kstack

	returning bool
	value     Value
	term      term.ABT
	stack     *Stack
}

func (m *machine) run() Value {
	for {
		if !m.returning {
			m.evalTerm(m.term, m.stack)
			continue
		}
		top := m.k
		if top == nil {
			return m.value
		}
		m.k = top.next
		top.frame.resume(m, m.value)
	}
}

func (m *machine) eval(a term.ABT, s *Stack) {
	m.returning, m.term, m.stack = false, a, s
}

func (m *machine) ret(v Value) {
	m.returning, m.value = true, v
}

func (m *machine) push(k kont) {
	m.k = &kstack{frame: k, next: m.k}
}

// tick counts an application or match and enforces the step limit and
// interrupts.
func (m *machine) tick() {
	m.steps++
	if max := m.env.maxSteps; max > 0 && m.steps > max {
		fault(ErrStepLimit, "%d steps", max)
	}
	if m.env.interrupted.SetToIf(true, false) {
		fault(ErrInterrupted, "after %d steps", m.steps)
	}
}

// perform captures the continuation up to the nearest handler and passes the
// request to that handler. The handler itself is not part of the captured
// continuation.
func (m *machine) perform(ref term.Reference, tag uint64, args []Value) {
	var frames []kont
	k := m.k
	for ; k != nil; k = k.next {
		if _, ok := k.frame.(*handleKont); ok {
			break
		}
		frames = append(frames, k.frame)
	}
	if k == nil {
		fault(ErrUnhandledRequest, "%v!%d", ref, tag)
	}

	h := k.frame.(*handleKont)
	m.k = k.next
	m.env.log.Debug("perform", slog.String("request", ref.String()), slog.Uint64("tag", tag), slog.Int("frames", len(frames)))

	c := &Continuation{frames: frames}
	m.apply(h.handler, RequestWithContinuation{Ref: ref, Tag: tag, Args: args, Continuation: c}, h.stack)
}

// resume reinstates the frames of c on top of the current continuation and
// delivers v to them.
func (m *machine) resume(c *Continuation, v Value) {
	m.env.log.Debug("resume", slog.Int("frames", len(c.frames)))
	for i := len(c.frames) - 1; i >= 0; i-- {
		m.push(c.frames[i])
	}
	m.ret(v)
}

type ifKont struct {
	then, els term.ABT
	stack     *Stack
}

func (k *ifKont) resume(m *machine, v Value) {
	if truth(v, "if condition") {
		m.eval(k.then, k.stack)
	} else {
		m.eval(k.els, k.stack)
	}
}

type andKont struct {
	right term.ABT
	stack *Stack
}

func (k *andKont) resume(m *machine, v Value) {
	if !truth(v, "and operand") {
		m.ret(Boolean(false))
		return
	}
	m.push(&boolKont{what: "and operand"})
	m.eval(k.right, k.stack)
}

type orKont struct {
	right term.ABT
	stack *Stack
}

func (k *orKont) resume(m *machine, v Value) {
	if truth(v, "or operand") {
		m.ret(Boolean(true))
		return
	}
	m.push(&boolKont{what: "or operand"})
	m.eval(k.right, k.stack)
}

// boolKont checks that the right operand of and/or is a boolean.
type boolKont struct {
	what string
}

func (k *boolKont) resume(m *machine, v Value) {
	m.ret(Boolean(truth(v, k.what)))
}

type letKont struct {
	sym   term.Symbol
	body  term.ABT
	stack *Stack
}

func (k *letKont) resume(m *machine, v Value) {
	m.eval(k.body, k.stack.With(k.sym, v))
}

type appFnKont struct {
	arg   term.ABT
	stack *Stack
}

func (k *appFnKont) resume(m *machine, fn Value) {
	m.push(&appArgKont{fn: fn, stack: k.stack})
	m.eval(k.arg, k.stack)
}

type appArgKont struct {
	fn    Value
	stack *Stack
}

func (k *appArgKont) resume(m *machine, arg Value) {
	m.apply(k.fn, arg, k.stack)
}

type sequenceKont struct {
	items []term.ABT
	done  Sequence
	stack *Stack
}

func (k *sequenceKont) resume(m *machine, v Value) {
	done := k.done.append(v)
	if len(done) == len(k.items) {
		m.ret(done)
		return
	}
	m.push(&sequenceKont{items: k.items, done: done, stack: k.stack})
	m.eval(k.items[len(done)], k.stack)
}

type matchKont struct {
	cases []term.MatchCase
	stack *Stack
}

func (k *matchKont) resume(m *machine, v Value) {
	m.tick()
	m.selectCase(v, k.cases, 0, k.stack)
}

// guardKont decides a guarded case. Any result other than true moves on to
// the next case.
type guardKont struct {
	scrutinee Value
	cases     []term.MatchCase
	index     int
	binds     []Value
	stack     *Stack
}

func (k *guardKont) resume(m *machine, v Value) {
	if b, ok := v.(Boolean); ok && bool(b) {
		m.eval(splice(k.cases[k.index].Body, k.binds, k.stack))
		return
	}
	m.selectCase(k.scrutinee, k.cases, k.index+1, k.stack)
}

// handlerKont receives the evaluated handler of a handle block and starts
// its body under a delimiter.
type handlerKont struct {
	body  term.ABT
	stack *Stack
}

func (k *handlerKont) resume(m *machine, handler Value) {
	m.push(&handleKont{handler: handler, stack: k.stack})
	m.eval(k.body, k.stack)
}

// handleKont delimits a handled computation. A value that reaches it
// finished without a request.
type handleKont struct {
	handler Value
	stack   *Stack
}

func (k *handleKont) resume(m *machine, v Value) {
	m.apply(k.handler, RequestPure{Value: v}, k.stack)
}

type cycleKont struct {
	names    []term.Symbol
	bindings []term.ABT
	values   []Value
	body     term.ABT
	stack    *Stack
}

func (k *cycleKont) resume(m *machine, v Value) {
	values := with(k.values, v)
	if len(values) == len(k.bindings) {
		m.enterCycle(k.names, values, k.body, k.stack)
		return
	}
	m.push(&cycleKont{names: k.names, bindings: k.bindings, values: values, body: k.body, stack: k.stack})
	m.eval(k.bindings[len(values)], k.stack)
}
