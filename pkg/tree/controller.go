package tree

import "log"

// ChangeKind says which way a root moved.
type ChangeKind int

const (
	// Expand means one child row was added under a root.
	Expand ChangeKind = iota
	// Collapse means a root's whole child list was cleared.
	Collapse
)

func (k ChangeKind) String() string {
	switch k {
	case Expand:
		return "expand"
	case Collapse:
		return "collapse"
	default:
		return "unknown"
	}
}

// Change describes the row delta produced by one activation.
//
// Inserted holds post-mutation flat indices. Removed holds the indices the
// removed rows occupied before the mutation, which are the rows the surface
// is still showing. RootIndex is the root's post-mutation flat index.
type Change struct {
	Kind      ChangeKind
	Root      ID
	RootIndex int
	Inserted  []int
	Removed   []int
	Expanded  bool
}

// Surface is the list display a Change is applied to.
type Surface interface {
	InsertRows(indices []int)
	DeleteRows(indices []int)
	SetRootExpanded(index int, expanded bool)
}

// Apply replays the change on s: structural update first, then the root's
// indicator.
func (ch Change) Apply(s Surface) {
	if len(ch.Removed) > 0 {
		s.DeleteRows(ch.Removed)
	}
	if len(ch.Inserted) > 0 {
		s.InsertRows(ch.Inserted)
	}
	s.SetRootExpanded(ch.RootIndex, ch.Expanded)
}

// ChildFactory builds the child item added when root is expanded.
type ChildFactory[T any] func(root Item[T], gen IDGenerator) Item[T]

// CopyRootData is the default ChildFactory: the child carries the root's
// payload under a freshly generated id.
func CopyRootData[T any](root Item[T], gen IDGenerator) Item[T] {
	child := Item[T]{ID: gen.NextID()}
	child.Data, child.hasData = root.Payload()
	return child
}

// ControllerOption configures a Controller.
type ControllerOption[T any] func(*Controller[T])

// WithIDGenerator sets the generator used for roots added through the
// controller and for expanded children.
func WithIDGenerator[T any](gen IDGenerator) ControllerOption[T] {
	return func(c *Controller[T]) { c.gen = gen }
}

// WithChildFactory replaces CopyRootData.
func WithChildFactory[T any](fn ChildFactory[T]) ControllerOption[T] {
	return func(c *Controller[T]) { c.newChild = fn }
}

// WithDebugLog logs the tree dump after each activation.
func WithDebugLog[T any](enabled bool) ControllerOption[T] {
	return func(c *Controller[T]) { c.debug = enabled }
}

// Controller turns row activations into expand/collapse transitions on a
// Tree. Each Activate changes the state of exactly one root.
type Controller[T any] struct {
	tree     *Tree[T]
	gen      IDGenerator
	newChild ChildFactory[T]
	debug    bool
}

// NewController wraps t. Without WithIDGenerator a Counter starting at
// DefaultMinID is used.
func NewController[T any](t *Tree[T], opts ...ControllerOption[T]) *Controller[T] {
	if t == nil {
		t = New[T]()
	}
	c := &Controller[T]{
		tree:     t,
		newChild: CopyRootData[T],
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.gen == nil {
		c.gen = NewCounter(DefaultMinID)
	}
	return c
}

// Tree returns the underlying tree.
func (c *Controller[T]) Tree() *Tree[T] {
	return c.tree
}

// AddRoot appends a root carrying data under a generated id.
func (c *Controller[T]) AddRoot(data T) Item[T] {
	item := Generate(c.gen, data)
	c.tree.AddRoot(item)
	return item
}

// InsertRoot places a new root carrying data before position pos. pos equal
// to the root count appends; any other out-of-range pos adds nothing.
func (c *Controller[T]) InsertRoot(data T, pos int) (Item[T], bool) {
	n := c.tree.RootCount()
	if pos < 0 || pos > n {
		return Item[T]{}, false
	}
	item := Generate(c.gen, data)
	if pos == n {
		c.tree.AddRoot(item)
	} else {
		c.tree.InsertRoot(item, pos)
	}
	return item, true
}

// RootPosition returns root's index among the roots.
func (c *Controller[T]) RootPosition(root Item[T]) (int, bool) {
	i := c.tree.rootIndex(root.ID)
	return i, i >= 0
}

// AddRoots appends one root per element of data, in order.
func (c *Controller[T]) AddRoots(data []T) {
	for _, d := range data {
		c.AddRoot(d)
	}
}

// Clear removes every root and child.
func (c *Controller[T]) Clear() {
	c.tree.RemoveAll()
}

// RowCount returns the number of flat rows.
func (c *Controller[T]) RowCount() int {
	return c.tree.FlatCount()
}

// DataAt returns the payload of the row at index. Panics like
// Tree.ItemAtFlatIndex for an out-of-range index.
func (c *Controller[T]) DataAt(index int) (T, bool) {
	_, item := c.tree.ItemAtFlatIndex(index)
	return item.Payload()
}

// IsExpanded reports whether root currently has children.
func (c *Controller[T]) IsExpanded(root Item[T]) bool {
	return len(c.tree.children[root.ID]) > 0
}

// Row is one flat row with the context a surface needs to draw it.
type Row[T any] struct {
	Index    int
	Item     Item[T]
	IsRoot   bool
	Expanded bool    // roots only
	Parent   Item[T] // children only
}

// Row returns the row at index. Panics on an out-of-range index.
func (c *Controller[T]) Row(index int) Row[T] {
	isRoot, item := c.tree.ItemAtFlatIndex(index)
	row := Row[T]{Index: index, Item: item, IsRoot: isRoot}
	if isRoot {
		row.Expanded = c.IsExpanded(item)
	} else {
		row.Parent, _ = c.tree.RootOfChild(item)
	}
	return row
}

// Rows returns every row in flat order.
func (c *Controller[T]) Rows() []Row[T] {
	rows := make([]Row[T], 0, c.tree.FlatCount())
	for _, root := range c.tree.roots {
		kids := c.tree.children[root.ID]
		rows = append(rows, Row[T]{Index: len(rows), Item: root, IsRoot: true, Expanded: len(kids) > 0})
		for _, kid := range kids {
			rows = append(rows, Row[T]{Index: len(rows), Item: kid, Parent: root})
		}
	}
	return rows
}

// Activate handles a row activation at flatIndex:
//
//   - a root followed by another root (or sitting on the last row) gains one
//     child directly below it;
//   - a root followed by its own child, or any child row, collapses: the
//     whole child list of that root is cleared.
//
// An out-of-range flatIndex returns an *IndexError and leaves the tree as is.
func (c *Controller[T]) Activate(flatIndex int) (Change, error) {
	isRoot, item, err := c.tree.Lookup(flatIndex)
	if err != nil {
		return Change{}, err
	}

	var ch Change
	switch {
	case flatIndex == c.tree.FlatCount()-1:
		if isRoot {
			ch = c.expand(item)
		} else {
			ch = c.collapseParentOf(item)
		}
	case isRoot:
		nextIsRoot, _ := c.tree.ItemAtFlatIndex(flatIndex + 1)
		if nextIsRoot {
			ch = c.expand(item)
		} else {
			ch = c.collapse(item)
		}
	default:
		ch = c.collapseParentOf(item)
	}

	if c.debug {
		log.Printf("tree: %s root=%d inserted=%v removed=%v\n%s",
			ch.Kind, ch.Root, ch.Inserted, ch.Removed, c.tree)
	}
	return ch, nil
}

func (c *Controller[T]) expand(root Item[T]) Change {
	child := c.newChild(root, c.gen)
	c.tree.AddChild(child, root)

	ch := Change{Kind: Expand, Root: root.ID, Expanded: true}
	if idx, ok := c.tree.FlatIndexOf(child); ok {
		ch.Inserted = []int{idx}
	}
	ch.RootIndex, _ = c.tree.FlatIndexOf(root)
	return ch
}

func (c *Controller[T]) collapse(root Item[T]) Change {
	ch := Change{Kind: Collapse, Root: root.ID}
	rootIdx, _ := c.tree.FlatIndexOf(root)
	// Children sit contiguously right below their root.
	for i := range c.tree.children[root.ID] {
		ch.Removed = append(ch.Removed, rootIdx+1+i)
	}
	c.tree.RemoveChildrenOfRoot(root)
	ch.RootIndex, _ = c.tree.FlatIndexOf(root)
	return ch
}

func (c *Controller[T]) collapseParentOf(child Item[T]) Change {
	root, ok := c.tree.RootOfChild(child)
	if !ok {
		// Unreachable for a child obtained from the flat order.
		return Change{Kind: Collapse}
	}
	return c.collapse(root)
}

// RowRenderer draws rows of type R. Implemented by the embedding surface,
// one method per row kind.
type RowRenderer[T, R any] interface {
	RenderRoot(item Item[T], expanded bool) R
	RenderChild(item Item[T]) R
}

// RenderRow dispatches the row at index to the matching RowRenderer method.
func RenderRow[T, R any](c *Controller[T], index int, r RowRenderer[T, R]) R {
	return Render(c.Row(index), r)
}

// Render dispatches an already fetched row.
func Render[T, R any](row Row[T], r RowRenderer[T, R]) R {
	if row.IsRoot {
		return r.RenderRoot(row.Item, row.Expanded)
	}
	return r.RenderChild(row.Item)
}
