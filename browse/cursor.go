// Package browse tracks which post is focused within the currently active
// collection. The cursor follows the post's identity, not its raw index,
// so insertions and removals in the underlying list never leave it
// pointing at the wrong post.
package browse

import "github.com/kvisli/glyptodon/domain"

type Cursor struct {
	list    []domain.Post
	focused string // post id, "" when nothing is focused
	index   int    // -1 when nothing is focused
}

func NewCursor() *Cursor {
	return &Cursor{index: -1}
}

// SetList swaps in a new active list and re-derives the focused index from
// the focused post's id. A focused post that vanished clears the focus;
// callers treat that as "return to list mode".
func (c *Cursor) SetList(posts []domain.Post) {
	c.list = posts
	if c.focused == "" {
		c.index = -1
		return
	}
	for i, p := range posts {
		if p.Id == c.focused {
			c.index = i
			return
		}
	}
	c.Clear()
}

// Focus points the cursor at the post with the given id, if present.
func (c *Cursor) Focus(id string) bool {
	for i, p := range c.list {
		if p.Id == id {
			c.focused = id
			c.index = i
			return true
		}
	}
	return false
}

// FocusIndex points the cursor at position i. Out-of-range indexes are
// clamped into the list; an empty list clears the focus.
func (c *Cursor) FocusIndex(i int) {
	if len(c.list) == 0 {
		c.Clear()
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(c.list) {
		i = len(c.list) - 1
	}
	c.index = i
	c.focused = c.list[i].Id
}

// Next advances the focus by one. At the last index it is a no-op.
func (c *Cursor) Next() bool {
	if c.index < 0 || c.index+1 >= len(c.list) {
		return false
	}
	c.FocusIndex(c.index + 1)
	return true
}

// Prev moves the focus back by one. At index zero it is a no-op.
func (c *Cursor) Prev() bool {
	if c.index <= 0 {
		return false
	}
	c.FocusIndex(c.index - 1)
	return true
}

// Focused returns the currently focused post.
func (c *Cursor) Focused() (domain.Post, bool) {
	if c.index < 0 || c.index >= len(c.list) {
		return domain.Post{}, false
	}
	return c.list[c.index], true
}

func (c *Cursor) Index() int {
	return c.index
}

func (c *Cursor) Len() int {
	return len(c.list)
}

func (c *Cursor) Posts() []domain.Post {
	return c.list
}

func (c *Cursor) Clear() {
	c.focused = ""
	c.index = -1
}
