package ui

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/treelist/pkg/catalog"
	"github.com/vanderheijden86/treelist/pkg/tree"
)

func newTreeTestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(io.Discard))
}

func testCities(names ...string) []catalog.City {
	cities := make([]catalog.City, len(names))
	for i, n := range names {
		cities[i] = catalog.City{Name: n, Text: "About " + n}
	}
	return cities
}

func newTestTree(names ...string) (*tree.Controller[catalog.City], TreeModel) {
	ctrl := tree.NewController(tree.New[catalog.City](),
		tree.WithIDGenerator[catalog.City](tree.NewCounter(1)))
	ctrl.AddRoots(testCities(names...))
	return ctrl, NewTreeModel(ctrl, newTreeTestTheme())
}

// TestTreeModelEmpty verifies an empty controller renders the empty state
func TestTreeModelEmpty(t *testing.T) {
	_, tm := newTestTree()

	if tm.RowCount() != 0 {
		t.Errorf("expected 0 rows, got %d", tm.RowCount())
	}
	if !strings.Contains(tm.View(), "No cities") {
		t.Errorf("expected empty state, got %q", tm.View())
	}
	if _, ok := tm.SelectedRow(); ok {
		t.Error("expected no selection in empty tree")
	}
	if tm.Highlighted() {
		t.Error("empty tree has nothing to highlight")
	}
}

// TestTreeModelActivateExpand verifies the cache follows an expand
func TestTreeModelActivateExpand(t *testing.T) {
	_, tm := newTestTree("Paris", "Rome")

	ch, err := tm.Activate()
	if err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if ch.Kind != tree.Expand {
		t.Fatalf("expected expand, got %s", ch.Kind)
	}
	if tm.RowCount() != 3 {
		t.Errorf("expected 3 rows, got %d", tm.RowCount())
	}
	if !tm.InSync() {
		t.Error("cache out of sync after expand")
	}

	view := tm.View()
	if !strings.Contains(view, "▾") || !strings.Contains(view, "About Paris") {
		t.Errorf("expected expanded Paris with description, got:\n%s", view)
	}
	if !strings.Contains(view, "▸") {
		t.Errorf("expected collapsed Rome, got:\n%s", view)
	}
}

// TestTreeModelActivateSequenceStaysInSync drives a mixed sequence and checks
// the cache against the controller after every step.
func TestTreeModelActivateSequenceStaysInSync(t *testing.T) {
	_, tm := newTestTree("A", "B", "C", "D")

	for step, cursor := range []int{0, 1, 2, 3, 4, 3, 0, 5, 4, 1, 0} {
		tm.cursor = cursor
		if cursor >= tm.RowCount() {
			tm.JumpToBottom()
		}
		if _, err := tm.Activate(); err != nil {
			t.Fatalf("step %d: Activate(%d) failed: %v", step, tm.cursor, err)
		}
		if !tm.InSync() {
			t.Fatalf("step %d: cache out of sync", step)
		}
	}
}

// TestTreeModelActivateDeselects verifies activation clears the highlight
// until the cursor moves again.
func TestTreeModelActivateDeselects(t *testing.T) {
	_, tm := newTestTree("Paris", "Rome")

	if !tm.Highlighted() {
		t.Fatal("expected initial highlight")
	}
	if _, err := tm.Activate(); err != nil {
		t.Fatal(err)
	}
	if tm.Highlighted() {
		t.Error("expected highlight cleared after activation")
	}
	if tm.Cursor() != 0 {
		t.Errorf("cursor moved to %d on activation", tm.Cursor())
	}

	tm.MoveDown()
	if !tm.Highlighted() {
		t.Error("expected highlight back after moving")
	}
}

func TestTreeModelNavigation(t *testing.T) {
	_, tm := newTestTree("A", "B", "C", "D", "E", "F", "G", "H")
	tm.SetSize(40, 4)

	tm.MoveUp()
	if tm.Cursor() != 0 {
		t.Errorf("MoveUp at top: cursor = %d", tm.Cursor())
	}
	tm.JumpToBottom()
	if tm.Cursor() != 7 {
		t.Errorf("JumpToBottom: cursor = %d, want 7", tm.Cursor())
	}
	tm.MoveDown()
	if tm.Cursor() != 7 {
		t.Errorf("MoveDown at bottom: cursor = %d", tm.Cursor())
	}

	start, end := tm.visibleRange()
	if start != 4 || end != 8 {
		t.Errorf("visible range = [%d, %d), want [4, 8)", start, end)
	}

	tm.PageUp()
	if tm.Cursor() != 5 {
		t.Errorf("PageUp: cursor = %d, want 5", tm.Cursor())
	}
	tm.JumpToTop()
	tm.PageDown()
	if tm.Cursor() != 2 {
		t.Errorf("PageDown: cursor = %d, want 2", tm.Cursor())
	}
	if start, _ := tm.visibleRange(); start != 0 {
		t.Errorf("expected viewport at top, start = %d", start)
	}
}

func TestTreeModelSelection(t *testing.T) {
	ctrl, tm := newTestTree("Paris", "Rome")
	if _, err := tm.Activate(); err != nil {
		t.Fatal(err)
	}
	tm.MoveDown() // the description row under Paris

	row, ok := tm.SelectedRow()
	if !ok || row.IsRoot {
		t.Fatalf("expected child row selected, got %+v", row)
	}
	root, ok := tm.SelectedRoot()
	if !ok || root.ID != 1 {
		t.Errorf("SelectedRoot = %d, want 1", root.ID)
	}
	city, ok := tm.SelectedCity()
	if !ok || city.Name != "Paris" {
		t.Errorf("SelectedCity = %+v", city)
	}

	if !tm.SelectByID(2) || tm.Cursor() != 2 {
		t.Errorf("SelectByID(2): cursor = %d, want 2", tm.Cursor())
	}
	if tm.SelectByID(99) {
		t.Error("SelectByID should fail for unknown id")
	}

	ctrl.Tree().RemoveRoot(root)
	tm.Reload()
	if tm.RowCount() != 1 || !tm.InSync() {
		t.Errorf("after RemoveRoot: %d rows, in sync %v", tm.RowCount(), tm.InSync())
	}
	if tm.Cursor() != 0 {
		t.Errorf("cursor not clamped: %d", tm.Cursor())
	}
}

func TestTreeModelTruncatesDescriptions(t *testing.T) {
	ctrl := tree.NewController(tree.New[catalog.City]())
	ctrl.AddRoot(catalog.City{Name: "Long", Text: strings.Repeat("word ", 40)})
	tm := NewTreeModel(ctrl, newTreeTestTheme())
	tm.SetSize(30, 10)
	if _, err := tm.Activate(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(tm.View(), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if w := lipgloss.Width(lines[1]); w > 30 {
		t.Errorf("child row is %d cells wide, want <= 30", w)
	}
	if !strings.HasSuffix(strings.TrimSpace(lines[1]), "…") {
		t.Errorf("expected ellipsis, got %q", lines[1])
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a bit too long", 10, "a bit too…"},
		{"東京都の説明", 6, "東京…"},
		{"anything", 1, "…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
