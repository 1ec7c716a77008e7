package chart

import (
	"github.com/emirpasic/gods/v2/trees/redblacktree"
)

// eventKey is the total order over events: row, then a fixed per-kind
// order, then lane, then the event's sequence number. The sequence keeps
// keys unique so identical gimmicks can stack on one row and deletion by
// identity stays exact.
type eventKey struct {
	row   int
	order int
	lane  int
	seq   int64
}

func keyOf(e *Event) eventKey {
	return eventKey{row: e.Row, order: kindOrder(e.Kind), lane: e.Lane, seq: e.seq}
}

// lowKey sorts before every real event at row, highKey after every one.
// Real events never carry these order values, so Floor and Ceiling probes
// with them can never land on an equal key.
func lowKey(row int) eventKey {
	return eventKey{row: row, order: -1}
}

func highKey(row int) eventKey {
	return eventKey{row: row, order: 1 << 30}
}

func compareEventKeys(a, b eventKey) int {
	switch {
	case a.row != b.row:
		if a.row < b.row {
			return -1
		}
		return 1
	case a.order != b.order:
		if a.order < b.order {
			return -1
		}
		return 1
	case a.lane != b.lane:
		if a.lane < b.lane {
			return -1
		}
		return 1
	case a.seq != b.seq:
		if a.seq < b.seq {
			return -1
		}
		return 1
	}
	return 0
}

// Tree is a position-ordered index over events. A chart maintains one
// master tree plus filtered views sharing this implementation. Mutation
// goes through the chart's lifecycle operations; collaborators only read.
type Tree struct {
	rb *redblacktree.Tree[eventKey, *Event]
}

func newTree() *Tree {
	return &Tree{rb: redblacktree.NewWith[eventKey, *Event](compareEventKeys)}
}

func (t *Tree) Len() int {
	return t.rb.Size()
}

func (t *Tree) insert(e *Event) {
	t.rb.Put(keyOf(e), e)
}

// remove deletes by identity and reports whether the event was present.
func (t *Tree) remove(e *Event) bool {
	key := keyOf(e)
	node := t.rb.GetNode(key)
	if node == nil || node.Value != e {
		return false
	}
	t.rb.Remove(key)
	return true
}

func (t *Tree) contains(e *Event) bool {
	node := t.rb.GetNode(keyOf(e))
	return node != nil && node.Value == e
}

func (t *Tree) First() *Event {
	node := t.rb.Left()
	if node == nil {
		return nil
	}
	return node.Value
}

func (t *Tree) Last() *Event {
	node := t.rb.Right()
	if node == nil {
		return nil
	}
	return node.Value
}

// Find returns a cursor positioned on the event, or nil if it is not in
// this tree.
func (t *Tree) Find(e *Event) *Cursor {
	node := t.rb.GetNode(keyOf(e))
	if node == nil || node.Value != e {
		return nil
	}
	return t.cursorAt(node)
}

// FindBestByPosition returns a cursor at the first event at or after row,
// or at the last event when every event precedes it. Nil only for an empty
// tree.
func (t *Tree) FindBestByPosition(row int) *Cursor {
	if node, ok := t.rb.Ceiling(lowKey(row)); ok {
		return t.cursorAt(node)
	}
	if node := t.rb.Right(); node != nil {
		return t.cursorAt(node)
	}
	return nil
}

// FindGreatestPreceding returns a cursor at the greatest event before row,
// or at or before it when inclusive. Nil when no event qualifies.
func (t *Tree) FindGreatestPreceding(row int, inclusive bool) *Cursor {
	probe := lowKey(row)
	if inclusive {
		probe = highKey(row)
	}
	if node, ok := t.rb.Floor(probe); ok {
		return t.cursorAt(node)
	}
	return nil
}

// firstAtOrAfter is FindBestByPosition without the nearest fallback.
func (t *Tree) firstAtOrAfter(row int) *Cursor {
	if node, ok := t.rb.Ceiling(lowKey(row)); ok {
		return t.cursorAt(node)
	}
	return nil
}

// greatestAtTime finds the last event whose snapshot time is at or before
// t, strictly before when inclusive is false. Snapshot times never
// decrease in key order, so the search can descend the tree directly.
func (t *Tree) greatestAtTime(at float64, inclusive bool) *Cursor {
	node := t.rb.Root
	var hit *redblacktree.Node[eventKey, *Event]
	for node != nil {
		st := node.Value.timing.Time
		if st < at || (inclusive && st == at) {
			hit = node
			node = node.Right
		} else {
			node = node.Left
		}
	}
	if hit == nil {
		return nil
	}
	return t.cursorAt(hit)
}

func (t *Tree) cursorAt(node *redblacktree.Node[eventKey, *Event]) *Cursor {
	return &Cursor{it: t.rb.IteratorAt(node), valid: true}
}

// each walks the tree in key order.
func (t *Tree) each(fn func(*Event)) {
	it := t.rb.Iterator()
	for it.Next() {
		fn(it.Value())
	}
}

// Cursor is a bidirectional iterator over one tree. A cursor returned by a
// Find call sits on its event. MoveNext and MovePrev shift it and report
// whether an event is available; moving past either end and back recovers.
// Any chart mutation invalidates outstanding cursors.
type Cursor struct {
	it    *redblacktree.Iterator[eventKey, *Event]
	valid bool
}

// Event returns the event under the cursor, or nil when the cursor has
// moved off either end.
func (c *Cursor) Event() *Event {
	if !c.valid {
		return nil
	}
	return c.it.Value()
}

func (c *Cursor) MoveNext() bool {
	c.valid = c.it.Next()
	return c.valid
}

func (c *Cursor) MovePrev() bool {
	c.valid = c.it.Prev()
	return c.valid
}
