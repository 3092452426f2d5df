package listbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(src ItemSource) []string {
	out := make([]string, src.Len())
	for i := range out {
		out[i] = src.At(i).Name
	}
	return out
}

func TestCollectionRegisterUpdateUnregister(t *testing.T) {
	c := NewCollection()
	a := c.Register(Item{Name: "a"})
	b := c.Register(Item{Name: "b"})
	d := c.Register(Item{Name: "d"})
	assert.Equal(t, []string{"a", "b", "d"}, names(c))

	require.NoError(t, c.Update(b, Item{Name: "B"}))
	require.NoError(t, c.Unregister(a))
	assert.Equal(t, []string{"B", "d"}, names(c))

	idx, ok := c.Index(d)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	_, ok = c.Index(a)
	assert.False(t, ok)

	assert.ErrorIs(t, c.Unregister(a), ErrUnknownToken)
	assert.ErrorIs(t, c.Update(a, Item{}), ErrUnknownToken)
	assert.Equal(t, Item{}, c.At(5))
	assert.Equal(t, Item{}, c.At(-1))
}

func TestCollectionTokensAreStable(t *testing.T) {
	c := NewCollection()
	a := c.Register(Item{Name: "a"})
	b := c.Register(Item{Name: "b"})
	require.NoError(t, c.Unregister(a))
	e := c.Register(Item{Name: "e"})

	assert.NotEqual(t, a, e)
	assert.Equal(t, []Token{b, e}, c.Tokens())
}

func TestCollectionReorder(t *testing.T) {
	c := NewCollection()
	a := c.Register(Item{Name: "a"})
	b := c.Register(Item{Name: "b"})
	d := c.Register(Item{Name: "c"})

	require.NoError(t, c.Reorder([]Token{d, a, b}))
	assert.Equal(t, []string{"c", "a", "b"}, names(c))

	assert.ErrorIs(t, c.Reorder([]Token{a, b}), ErrBadOrder)
	assert.ErrorIs(t, c.Reorder([]Token{a, a, b}), ErrBadOrder)
	assert.ErrorIs(t, c.Reorder([]Token{a, b, Token(99)}), ErrUnknownToken)
	assert.Equal(t, []string{"c", "a", "b"}, names(c))
}

func TestCollectionBatchRebuildsOnce(t *testing.T) {
	c := NewCollection()
	a := c.Register(Item{Name: "a"})
	b := c.Register(Item{Name: "b"})

	c.Batch(func() {
		require.NoError(t, c.Unregister(a))
		x := c.Register(Item{Name: "x"})
		require.NoError(t, c.Reorder([]Token{x, b}))

		assert.Equal(t, []string{"a", "b"}, names(c), "view is stable inside a batch")
		c.Batch(func() {
			require.NoError(t, c.Update(b, Item{Name: "B"}))
		})
		assert.Equal(t, []string{"a", "b"}, names(c), "nested batch defers to the outer one")
	})

	assert.Equal(t, []string{"x", "B"}, names(c))
}

func TestCollectionAsMachineItems(t *testing.T) {
	c := NewCollection()
	c.Register(Item{Name: "apple"})
	c.Register(Item{Name: "cherry"})

	assert.Equal(t, 1, SearchMatch(c, "ch", -1))
}
