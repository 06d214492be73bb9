package weave

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavlin/weave/term"
)

func sym(text string) term.Symbol { return term.Symbol{Text: text} }

func TestFrameBindings(t *testing.T) {
	root := NewFrame(RootFrame)
	a := root.With(sym("x"), Nat(1))
	b := a.With(sym("y"), Nat(2))
	c := b.With(sym("x"), Nat(3))

	x, ok := a.Lookup(sym("x"))
	require.True(t, ok)
	assert.Equal(t, Nat(1), x, "extending a frame leaves it unchanged")

	x, ok = c.Lookup(sym("x"))
	require.True(t, ok)
	assert.Equal(t, Nat(3), x)
	y, ok := c.Lookup(sym("y"))
	require.True(t, ok)
	assert.Equal(t, Nat(2), y)

	_, ok = root.Lookup(sym("x"))
	assert.False(t, ok)
	assert.Equal(t, 0, root.Len())
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, RootFrame, c.ID)

	d := c.WithAll([]term.Symbol{sym("y"), sym("z"), sym("y")}, []Value{Nat(4), Nat(5), Nat(6)})
	y, _ = d.Lookup(sym("y"))
	assert.Equal(t, Nat(6), y)
	assert.Equal(t, 3, d.Len())
	assert.Same(t, c, c.WithAll(nil, nil))

	// Distinct numbers make distinct symbols.
	e := d.With(term.Symbol{Num: 1, Text: "x"}, Nat(7))
	x, _ = e.Lookup(sym("x"))
	assert.Equal(t, Nat(3), x)
}

func TestFrameLayers(t *testing.T) {
	f := NewFrame(RootFrame)
	for i := 0; i < 1000; i++ {
		f = f.With(sym(fmt.Sprint(i%300)), Nat(i))
	}
	assert.Equal(t, 300, f.Len())
	for i := 700; i < 1000; i++ {
		val, ok := f.Lookup(sym(fmt.Sprint(i % 300)))
		require.True(t, ok)
		assert.Equal(t, Nat(i), val)
	}

	for l := f.top; l.below != nil; l = l.below {
		assert.Greater(t, len(l.below.bindings), len(l.bindings))
	}
}

func TestLongLetChain(t *testing.T) {
	// let x0 = 0; x1 = x0 + 1; ... in x4999
	const n = 5000
	body := v(fmt.Sprintf("x%d", n-1))
	for i := n - 1; i > 0; i-- {
		body = let(fmt.Sprintf("x%d", i), native("Nat.increment", v(fmt.Sprintf("x%d", i-1))), body)
	}
	assert.Equal(t, Nat(n-1), evalOK(t, let("x0", nat(0), body)))
}
