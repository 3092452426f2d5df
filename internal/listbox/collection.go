package listbox

import (
	"fmt"
	"sync"
)

// Token identifies a registered item independently of its position.
type Token uint64

// Collection is the descendant registry: items are stored by token and the
// ordered view used as an ItemSource is rebuilt after each change, or once
// at the end of a Batch.
type Collection struct {
	mu       sync.RWMutex
	next     Token
	items    map[Token]Item
	order    []Token
	view     []Item
	viewToks []Token
	batching int
	dirty    bool
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{items: make(map[Token]Item)}
}

// Register appends item to the rendering order.
func (c *Collection) Register(item Item) Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	tok := c.next
	c.items[tok] = item
	c.order = append(c.order, tok)
	c.changedLocked()
	return tok
}

// Update replaces the descriptor registered under tok.
func (c *Collection) Update(tok Token, item Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[tok]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownToken, tok)
	}
	c.items[tok] = item
	c.changedLocked()
	return nil
}

// Unregister removes tok. Positions after it shift down by one.
func (c *Collection) Unregister(tok Token) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[tok]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownToken, tok)
	}
	delete(c.items, tok)
	for i, t := range c.order {
		if t == tok {
			c.order = append(c.order[:i:i], c.order[i+1:]...)
			break
		}
	}
	c.changedLocked()
	return nil
}

// Reorder sets the rendering order. order must name every registered token
// exactly once.
func (c *Collection) Reorder(order []Token) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(order) != len(c.items) {
		return fmt.Errorf("%w: got %d tokens, have %d", ErrBadOrder, len(order), len(c.items))
	}
	seen := make(map[Token]bool, len(order))
	for _, tok := range order {
		if _, ok := c.items[tok]; !ok {
			return fmt.Errorf("%w: %d", ErrUnknownToken, tok)
		}
		if seen[tok] {
			return fmt.Errorf("%w: %d repeated", ErrBadOrder, tok)
		}
		seen[tok] = true
	}
	c.order = append([]Token(nil), order...)
	c.changedLocked()
	return nil
}

// Batch runs fn and rebuilds the ordered view once afterwards. Readers see
// the previous view until fn returns. Batches may nest.
func (c *Collection) Batch(fn func()) {
	c.mu.Lock()
	c.batching++
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.batching--
		if c.batching == 0 && c.dirty {
			c.rebuildLocked()
		}
		c.mu.Unlock()
	}()
	fn()
}

func (c *Collection) changedLocked() {
	if c.batching > 0 {
		c.dirty = true
		return
	}
	c.rebuildLocked()
}

func (c *Collection) rebuildLocked() {
	view := make([]Item, len(c.order))
	for i, tok := range c.order {
		view[i] = c.items[tok]
	}
	c.view = view
	c.viewToks = append([]Token(nil), c.order...)
	c.dirty = false
}

func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.view)
}

// At returns the item at position i of the ordered view, or the zero Item
// when i is out of range.
func (c *Collection) At(i int) Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.view) {
		return Item{}
	}
	return c.view[i]
}

// Index returns the position of tok in the ordered view.
func (c *Collection) Index(tok Token) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i, t := range c.viewToks {
		if t == tok {
			return i, true
		}
	}
	return -1, false
}

// Tokens returns the tokens of the ordered view in rendering order.
func (c *Collection) Tokens() []Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Token(nil), c.viewToks...)
}
