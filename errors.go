package weave

import (
	"errors"
	"fmt"

	"github.com/pgavlin/weave/term"
)

var (
	// ErrTermNotFound is returned by a Loader that has no definition for a
	// hash. Evaluation errors caused by it wrap it.
	ErrTermNotFound = errors.New("term not found")

	ErrUnboundVariable     = errors.New("unbound variable")
	ErrNonExhaustive       = errors.New("non-exhaustive match")
	ErrTypeConfusion       = errors.New("operand of the wrong kind")
	ErrNotAFunction        = errors.New("applying a non-function")
	ErrMalformed           = errors.New("malformed term")
	ErrDivideByZero        = errors.New("division by zero")
	ErrUnknownBuiltin      = errors.New("unknown builtin")
	ErrIncomparable        = errors.New("values cannot be compared")
	ErrAmbiguousConcat     = errors.New("concatenation pattern has no fixed-length side")
	ErrContinuationPattern = errors.New("continuation pattern must be a variable or unbound")
	ErrUnknownAbility      = errors.New("request of an unknown ability")
	ErrUnhandledRequest    = errors.New("request performed outside of any handler")
	ErrStepLimit           = errors.New("step limit exceeded")
	ErrInterrupted         = errors.New("evaluation interrupted")
)

// A Fault is an invariant violation raised while evaluating. Faults unwind
// the evaluator as panics and are returned as errors from Eval and EvalRef.
type Fault struct {
	Err    error
	Detail string
	// Frame is the identifier of the frame that was active, if known.
	Frame string
}

func (f *Fault) Error() string {
	msg := f.Err.Error()
	if f.Detail != "" {
		msg += ": " + f.Detail
	}
	if f.Frame != "" {
		msg += " (in " + f.Frame + ")"
	}
	return msg
}

func (f *Fault) Unwrap() error {
	return f.Err
}

func fault(err error, format string, args ...interface{}) {
	panic(&Fault{Err: err, Detail: fmt.Sprintf(format, args...)})
}

// Loader provides the definition stored under a hash, in its canonical text
// form. Implementations are expected to memoize.
type Loader interface {
	Load(hash string) (term.ABT, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(hash string) (term.ABT, error)

func (f LoaderFunc) Load(hash string) (term.ABT, error) {
	return f(hash)
}

// MapLoader serves definitions from a map keyed by hash text.
type MapLoader map[string]term.ABT

func (m MapLoader) Load(hash string) (term.ABT, error) {
	t, ok := m[hash]
	if !ok {
		return nil, fmt.Errorf("%w: #%s", ErrTermNotFound, hash)
	}
	return t, nil
}
