// tree.go - Expandable city list drawn from a tree.Controller
package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/treelist/pkg/catalog"
	"github.com/vanderheijden86/treelist/pkg/tree"
)

// Row indicators. A root without children is collapsed.
const (
	indicatorCollapsed = "▸"
	indicatorExpanded  = "▾"
	childIndent        = "    "
)

// treeRow is the cached display state of one flat row.
type treeRow struct {
	item     tree.Item[catalog.City]
	isRoot   bool
	expanded bool
}

// TreeModel is the list surface over a Controller. It keeps its own row cache
// and updates it from each Change instead of rebuilding, so a wrong delta
// shows up as a mismatch against the controller rather than being papered
// over.
type TreeModel struct {
	ctrl  *tree.Controller[catalog.City]
	rows  []treeRow
	theme Theme

	cursor         int
	viewportOffset int  // index of the first visible row
	deselected     bool // activation clears the highlight until the cursor moves
	width          int
	height         int
}

// NewTreeModel creates a tree view over ctrl and loads its current rows.
func NewTreeModel(ctrl *tree.Controller[catalog.City], theme Theme) TreeModel {
	t := TreeModel{ctrl: ctrl, theme: theme}
	t.Reload()
	return t
}

// SetSize updates the available dimensions for the tree view
func (t *TreeModel) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.ensureCursorVisible()
}

// Reload rebuilds the row cache from the controller. Used after structural
// edits that bypass Activate (reseed, add or remove a root).
func (t *TreeModel) Reload() {
	t.rows = t.rows[:0]
	for _, r := range t.ctrl.Rows() {
		t.rows = append(t.rows, treeRow{item: r.Item, isRoot: r.IsRoot, expanded: r.Expanded})
	}
	t.clampCursor()
}

// InsertRows implements tree.Surface. indices are post-mutation positions in
// ascending order; row content is read back from the controller.
func (t *TreeModel) InsertRows(indices []int) {
	for _, i := range indices {
		if i < 0 || i > len(t.rows) {
			continue
		}
		r := t.ctrl.Row(i)
		row := treeRow{item: r.Item, isRoot: r.IsRoot, expanded: r.Expanded}
		t.rows = append(t.rows[:i], append([]treeRow{row}, t.rows[i:]...)...)
	}
}

// DeleteRows implements tree.Surface. indices are the positions the rows
// occupied before the mutation.
func (t *TreeModel) DeleteRows(indices []int) {
	for k := len(indices) - 1; k >= 0; k-- {
		i := indices[k]
		if i < 0 || i >= len(t.rows) {
			continue
		}
		t.rows = append(t.rows[:i], t.rows[i+1:]...)
	}
	t.clampCursor()
}

// SetRootExpanded implements tree.Surface.
func (t *TreeModel) SetRootExpanded(index int, expanded bool) {
	if index >= 0 && index < len(t.rows) && t.rows[index].isRoot {
		t.rows[index].expanded = expanded
	}
}

// Activate expands or collapses around the selected row and applies the
// resulting change to the cache.
func (t *TreeModel) Activate() (tree.Change, error) {
	ch, err := t.ctrl.Activate(t.cursor)
	if err != nil {
		return ch, err
	}
	ch.Apply(t)
	t.deselected = true
	t.ensureCursorVisible()
	return ch, nil
}

// InSync reports whether the cache matches the controller row for row.
func (t *TreeModel) InSync() bool {
	if len(t.rows) != t.ctrl.RowCount() {
		return false
	}
	for i, r := range t.ctrl.Rows() {
		c := t.rows[i]
		if !c.item.Equal(r.Item) || c.isRoot != r.IsRoot || c.expanded != r.Expanded {
			return false
		}
	}
	return true
}

// View renders the visible rows.
func (t *TreeModel) View() string {
	if len(t.rows) == 0 {
		return t.renderEmptyState()
	}

	var sb strings.Builder
	start, end := t.visibleRange()
	for i := start; i < end; i++ {
		line := t.renderRow(t.rows[i])
		if i == t.cursor && !t.deselected {
			line = t.theme.Selected.Render(line)
		}
		sb.WriteString(line)
		if i < end-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (t *TreeModel) renderEmptyState() string {
	r := t.theme.Renderer
	titleStyle := r.NewStyle().Foreground(t.theme.Primary).Bold(true)
	mutedStyle := r.NewStyle().Foreground(t.theme.Muted)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("No cities"))
	sb.WriteString("\n\n")
	sb.WriteString(mutedStyle.Render("Press a to add one, or r to reload the catalog."))
	return sb.String()
}

var _ tree.RowRenderer[catalog.City, string] = (*TreeModel)(nil)

func (t *TreeModel) renderRow(row treeRow) string {
	return tree.Render(tree.Row[catalog.City]{Item: row.item, IsRoot: row.isRoot, Expanded: row.expanded}, t)
}

// RenderRoot draws a city row with its expand indicator.
func (t *TreeModel) RenderRoot(item tree.Item[catalog.City], expanded bool) string {
	r := t.theme.Renderer
	city, _ := item.Payload()

	indicator := indicatorCollapsed
	if expanded {
		indicator = indicatorExpanded
	}
	indicatorStyle := r.NewStyle().Foreground(t.theme.Secondary)
	nameStyle := r.NewStyle().Foreground(t.theme.Primary).Bold(true)
	return indicatorStyle.Render(indicator) + " " + nameStyle.Render(city.Title())
}

// RenderChild draws the indented description row, truncated to the width.
func (t *TreeModel) RenderChild(item tree.Item[catalog.City]) string {
	city, _ := item.Payload()

	text := strings.Join(strings.Fields(city.Text), " ")
	if text == "" {
		text = "(no description)"
	}
	maxLen := t.width - runewidth.StringWidth(childIndent)
	if maxLen < 20 {
		maxLen = 20
	}
	textStyle := t.theme.Renderer.NewStyle().Foreground(t.theme.Subtext)
	return childIndent + textStyle.Render(truncate(text, maxLen))
}

// truncate shortens s to at most width display cells, ending in an ellipsis.
func truncate(s string, width int) string {
	if width <= 1 {
		return "…"
	}
	return runewidth.Truncate(s, width, "…")
}

// SelectedRow returns the row under the cursor.
func (t *TreeModel) SelectedRow() (tree.Row[catalog.City], bool) {
	if t.cursor < 0 || t.cursor >= len(t.rows) {
		return tree.Row[catalog.City]{}, false
	}
	return t.ctrl.Row(t.cursor), true
}

// SelectedCity returns the payload of the row under the cursor.
func (t *TreeModel) SelectedCity() (catalog.City, bool) {
	row, ok := t.SelectedRow()
	if !ok {
		return catalog.City{}, false
	}
	return row.Item.Payload()
}

// SelectedRoot returns the root owning the row under the cursor.
func (t *TreeModel) SelectedRoot() (tree.Item[catalog.City], bool) {
	row, ok := t.SelectedRow()
	if !ok {
		return tree.Item[catalog.City]{}, false
	}
	if row.IsRoot {
		return row.Item, true
	}
	return row.Parent, true
}

// SelectByID moves the cursor to the row holding id.
func (t *TreeModel) SelectByID(id tree.ID) bool {
	for i, row := range t.rows {
		if row.item.ID == id {
			t.setCursor(i)
			return true
		}
	}
	return false
}

// Cursor returns the selected flat index.
func (t *TreeModel) Cursor() int {
	return t.cursor
}

// Highlighted reports whether the cursor row is drawn selected.
func (t *TreeModel) Highlighted() bool {
	return !t.deselected && len(t.rows) > 0
}

// RowCount returns the number of cached rows.
func (t *TreeModel) RowCount() int {
	return len(t.rows)
}

// MoveDown moves the cursor down one row.
func (t *TreeModel) MoveDown() {
	t.setCursor(t.cursor + 1)
}

// MoveUp moves the cursor up one row.
func (t *TreeModel) MoveUp() {
	t.setCursor(t.cursor - 1)
}

// JumpToTop moves the cursor to the first row.
func (t *TreeModel) JumpToTop() {
	t.setCursor(0)
}

// JumpToBottom moves the cursor to the last row.
func (t *TreeModel) JumpToBottom() {
	t.setCursor(len(t.rows) - 1)
}

// PageDown moves the cursor down by half a viewport.
func (t *TreeModel) PageDown() {
	t.setCursor(t.cursor + t.pageSize())
}

// PageUp moves the cursor up by half a viewport.
func (t *TreeModel) PageUp() {
	t.setCursor(t.cursor - t.pageSize())
}

func (t *TreeModel) pageSize() int {
	size := t.visibleCount() / 2
	if size < 1 {
		size = 1
	}
	return size
}

func (t *TreeModel) setCursor(i int) {
	t.cursor = i
	t.deselected = false
	t.clampCursor()
	t.ensureCursorVisible()
}

func (t *TreeModel) clampCursor() {
	if t.cursor >= len(t.rows) {
		t.cursor = len(t.rows) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
}

func (t *TreeModel) visibleCount() int {
	if t.height <= 0 {
		return 20 // Default
	}
	return t.height
}

// ensureCursorVisible scrolls the viewport so the cursor row is on screen.
func (t *TreeModel) ensureCursorVisible() {
	n := t.visibleCount()
	if t.cursor < t.viewportOffset {
		t.viewportOffset = t.cursor
	}
	if t.cursor >= t.viewportOffset+n {
		t.viewportOffset = t.cursor - n + 1
	}
	if t.viewportOffset < 0 {
		t.viewportOffset = 0
	}
}

// visibleRange returns the [start, end) rows covered by the viewport.
func (t *TreeModel) visibleRange() (start, end int) {
	if len(t.rows) == 0 {
		return 0, 0
	}
	n := t.visibleCount()
	start = t.viewportOffset
	end = start + n
	if end > len(t.rows) {
		end = len(t.rows)
		start = end - n
		if start < 0 {
			start = 0
		}
	}
	return start, end
}
