package tree

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrIndexOutOfRange is wrapped by every IndexError.
var ErrIndexOutOfRange = errors.New("flat index out of range")

// IndexError reports a flat index outside [0, Count).
type IndexError struct {
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("flat index %d out of range [0, %d)", e.Index, e.Count)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}

// Tree holds an ordered list of roots and, per root, an ordered list of
// children. Every root owns exactly one (possibly empty) child list, created
// and dropped together with the root.
//
// Mutations that name an unknown item or an out-of-bounds position do
// nothing; callers are expected to pass items and positions obtained from the
// tree itself.
type Tree[T any] struct {
	roots    []Item[T]
	children map[ID][]Item[T]
}

// New returns an empty tree.
func New[T any]() *Tree[T] {
	return &Tree[T]{children: make(map[ID][]Item[T])}
}

// AddRoot appends a root with an empty child list.
func (t *Tree[T]) AddRoot(item Item[T]) {
	t.roots = append(t.roots, item)
	t.children[item.ID] = []Item[T]{}
}

// InsertRoot inserts a root before position pos. Positions at or past the
// current root count are ignored; use AddRoot to append.
func (t *Tree[T]) InsertRoot(item Item[T], pos int) {
	if pos < 0 || pos >= len(t.roots) {
		return
	}
	t.roots = slices.Insert(t.roots, pos, item)
	t.children[item.ID] = []Item[T]{}
}

// AddChild appends item to into's child list. No-op if into is not a root.
func (t *Tree[T]) AddChild(item Item[T], into Item[T]) {
	kids, ok := t.children[into.ID]
	if !ok {
		return
	}
	t.children[into.ID] = append(kids, item)
}

// InsertChild inserts item into into's child list before position pos.
// No-op if into is not a root or pos is outside the current child count.
func (t *Tree[T]) InsertChild(item Item[T], into Item[T], pos int) {
	kids, ok := t.children[into.ID]
	if !ok || pos < 0 || pos >= len(kids) {
		return
	}
	t.children[into.ID] = slices.Insert(kids, pos, item)
}

// RemoveRoot drops a root together with all of its children.
func (t *Tree[T]) RemoveRoot(item Item[T]) {
	idx := t.rootIndex(item.ID)
	if idx < 0 {
		return
	}
	t.roots = slices.Delete(t.roots, idx, idx+1)
	delete(t.children, item.ID)
}

// RemoveChild removes a single child from whichever root holds it.
func (t *Tree[T]) RemoveChild(item Item[T]) {
	owner, ok := t.ownerOf(item.ID)
	if !ok {
		return
	}
	t.children[owner] = slices.DeleteFunc(t.children[owner], func(c Item[T]) bool {
		return c.ID == item.ID
	})
}

// RemoveChildrenOfRoot empties a root's child list and keeps the root.
func (t *Tree[T]) RemoveChildrenOfRoot(item Item[T]) {
	if _, ok := t.children[item.ID]; !ok {
		return
	}
	t.children[item.ID] = []Item[T]{}
}

// RemoveChildAndNeighbors empties the whole child list of the root that
// holds item, not just item itself.
func (t *Tree[T]) RemoveChildAndNeighbors(item Item[T]) {
	owner, ok := t.ownerOf(item.ID)
	if !ok {
		return
	}
	t.children[owner] = []Item[T]{}
}

// RemoveAll clears every root and child.
func (t *Tree[T]) RemoveAll() {
	t.roots = nil
	t.children = make(map[ID][]Item[T])
}

// RootOfChild returns the root whose child list holds item.
func (t *Tree[T]) RootOfChild(item Item[T]) (Item[T], bool) {
	owner, ok := t.ownerOf(item.ID)
	if !ok {
		return Item[T]{}, false
	}
	return t.roots[t.rootIndex(owner)], true
}

// ChildrenOfRoot returns a copy of item's children. Empty for a root
// without children or an unknown id.
func (t *Tree[T]) ChildrenOfRoot(item Item[T]) []Item[T] {
	return slices.Clone(t.children[item.ID])
}

// IsRoot reports whether item is currently a root.
func (t *Tree[T]) IsRoot(item Item[T]) bool {
	return t.rootIndex(item.ID) >= 0
}

// Roots returns a copy of the roots in display order.
func (t *Tree[T]) Roots() []Item[T] {
	return slices.Clone(t.roots)
}

// RootCount returns the number of roots.
func (t *Tree[T]) RootCount() int {
	return len(t.roots)
}

// FlatItems materializes the flat order: each root followed by its children.
func (t *Tree[T]) FlatItems() []Item[T] {
	items := make([]Item[T], 0, t.FlatCount())
	for _, root := range t.roots {
		items = append(items, root)
		items = append(items, t.children[root.ID]...)
	}
	return items
}

// FlatCount returns the number of rows in the flat order.
func (t *Tree[T]) FlatCount() int {
	n := len(t.roots)
	for _, kids := range t.children {
		n += len(kids)
	}
	return n
}

// ItemAtFlatIndex returns the row at index and whether it is a root.
// It panics with an *IndexError when index is outside [0, FlatCount()):
// rendering a wrong row silently would corrupt the displayed list.
func (t *Tree[T]) ItemAtFlatIndex(index int) (bool, Item[T]) {
	isRoot, item, err := t.Lookup(index)
	if err != nil {
		panic(err)
	}
	return isRoot, item
}

// Lookup is the checked form of ItemAtFlatIndex.
func (t *Tree[T]) Lookup(index int) (isRoot bool, item Item[T], err error) {
	if index >= 0 {
		pos := 0
		for _, root := range t.roots {
			if pos == index {
				return true, root, nil
			}
			pos++
			kids := t.children[root.ID]
			if index < pos+len(kids) {
				return false, kids[index-pos], nil
			}
			pos += len(kids)
		}
	}
	return false, Item[T]{}, &IndexError{Index: index, Count: t.FlatCount()}
}

// FlatIndexOf returns item's position in the flat order.
func (t *Tree[T]) FlatIndexOf(item Item[T]) (int, bool) {
	pos := 0
	for _, root := range t.roots {
		if root.ID == item.ID {
			return pos, true
		}
		pos++
		for _, c := range t.children[root.ID] {
			if c.ID == item.ID {
				return pos, true
			}
			pos++
		}
	}
	return -1, false
}

// String dumps roots and child lists, for debug logging.
func (t *Tree[T]) String() string {
	var sb strings.Builder
	sb.WriteString("roots = [")
	for i, r := range t.roots {
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%d", r.ID)
	}
	sb.WriteString("]\nchildren = {")
	for i, r := range t.roots {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%d: [", r.ID)
		for j, c := range t.children[r.ID] {
			if j > 0 {
				sb.WriteString(" ")
			}
			fmt.Fprintf(&sb, "%d", c.ID)
		}
		sb.WriteString("]")
	}
	sb.WriteString("}")
	return sb.String()
}

func (t *Tree[T]) rootIndex(id ID) int {
	return slices.IndexFunc(t.roots, func(r Item[T]) bool { return r.ID == id })
}

// ownerOf scans child lists in root order and returns the first root whose
// list holds id.
func (t *Tree[T]) ownerOf(id ID) (ID, bool) {
	for _, root := range t.roots {
		if slices.ContainsFunc(t.children[root.ID], func(c Item[T]) bool { return c.ID == id }) {
			return root.ID, true
		}
	}
	return 0, false
}
