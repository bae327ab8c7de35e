package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/treelist/pkg/catalog"
	"github.com/vanderheijden86/treelist/pkg/tree"
)

func newTestModel(cfg ModelConfig, names ...string) Model {
	ctrl := tree.NewController(tree.New[catalog.City](),
		tree.WithIDGenerator[catalog.City](tree.NewCounter(1)))
	ctrl.AddRoots(testCities(names...))
	if cfg.Clipboard == nil {
		cfg.Clipboard = func(string) error { return nil }
	}
	return NewModel(ctrl, newTreeTestTheme(), cfg)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func TestModelEnterExpandsAndCollapses(t *testing.T) {
	m := newTestModel(ModelConfig{}, "Paris", "Rome")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Controller().RowCount() != 3 {
		t.Fatalf("expected 3 rows after expand, got %d", m.Controller().RowCount())
	}

	// Select the description row and activate it: Paris collapses.
	m = send(t, m, runes("j"), tea.KeyMsg{Type: tea.KeySpace})
	if m.Controller().RowCount() != 2 {
		t.Errorf("expected 2 rows after collapse, got %d", m.Controller().RowCount())
	}
	tm := m.Tree()
	if !tm.InSync() {
		t.Error("tree view out of sync with controller")
	}
}

func TestModelNavigationKeys(t *testing.T) {
	m := newTestModel(ModelConfig{}, "A", "B", "C")

	m = send(t, m, runes("G"))
	if tm := m.Tree(); tm.Cursor() != 2 {
		t.Errorf("G: cursor = %d, want 2", tm.Cursor())
	}
	m = send(t, m, runes("k"))
	if tm := m.Tree(); tm.Cursor() != 1 {
		t.Errorf("k: cursor = %d, want 1", tm.Cursor())
	}
	m = send(t, m, runes("g"))
	if tm := m.Tree(); tm.Cursor() != 0 {
		t.Errorf("g: cursor = %d, want 0", tm.Cursor())
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if tm := m.Tree(); tm.Cursor() != 1 {
		t.Errorf("down: cursor = %d, want 1", tm.Cursor())
	}
}

func TestModelAddCityInsertsAfterSelectedRoot(t *testing.T) {
	m := newTestModel(ModelConfig{}, "A", "B", "C")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter}, runes("j")) // A, A's row, B, C; cursor on A's row

	m.addCity(catalog.City{Name: "New", Text: "fresh"})

	var names []string
	for _, root := range m.Controller().Tree().Roots() {
		city, _ := root.Payload()
		names = append(names, city.Name)
	}
	if got := strings.Join(names, ","); got != "A,New,B,C" {
		t.Errorf("roots = %s, want A,New,B,C", got)
	}
	city, ok := m.tree.SelectedCity()
	if !ok || city.Name != "New" {
		t.Errorf("expected new city selected, got %+v", city)
	}
	if !m.tree.InSync() {
		t.Error("tree view out of sync after add")
	}
}

func TestModelAddCityAppendsAfterLastRoot(t *testing.T) {
	m := newTestModel(ModelConfig{}, "A", "B")
	m = send(t, m, runes("G"))

	m.addCity(catalog.City{Name: "Z"})

	roots := m.Controller().Tree().Roots()
	if len(roots) != 3 {
		t.Fatalf("expected 3 roots, got %d", len(roots))
	}
	if city, _ := roots[2].Payload(); city.Name != "Z" {
		t.Errorf("expected Z appended, got %s", city.Name)
	}

	empty := newTestModel(ModelConfig{})
	empty.addCity(catalog.City{Name: "Only"})
	if empty.Controller().Tree().RootCount() != 1 {
		t.Error("expected add into empty list to append")
	}
}

func TestModelAddFormOpensAndCancels(t *testing.T) {
	m := newTestModel(ModelConfig{}, "A")

	m = send(t, m, runes("a"))
	if m.form == nil {
		t.Fatal("expected add form to open")
	}
	if !strings.Contains(m.View(), "Add city") {
		t.Error("expected form view")
	}

	// Keys go to the form, not the list.
	m = send(t, m, runes("q"))
	if m.form == nil {
		t.Fatal("typing into the form should not close it")
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.form != nil {
		t.Error("expected esc to close the form")
	}
	if m.Controller().Tree().RootCount() != 1 {
		t.Error("cancelled form must not add a city")
	}
	if m.Status() != "Add cancelled" {
		t.Errorf("status = %q", m.Status())
	}
}

func TestModelReloadWhileAddFormIsOpen(t *testing.T) {
	m := newTestModel(ModelConfig{}, "A", "B")
	m = send(t, m, runes("a"))
	if m.form == nil {
		t.Fatal("expected add form to open")
	}

	m = send(t, m,
		CatalogReadyMsg{Cities: testCities("X", "Y", "Z")},
		tea.WindowSizeMsg{Width: 100, Height: 40},
	)
	if m.form == nil {
		t.Fatal("reload should not close the form")
	}
	if m.width != 100 || m.height != 40 {
		t.Errorf("resize during form not applied: %dx%d", m.width, m.height)
	}

	m = send(t, m, CatalogErrorMsg{Err: errors.New("disk gone")})
	if !strings.Contains(m.Status(), "disk gone") {
		t.Errorf("expected reload error in status, got %q", m.Status())
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.form != nil {
		t.Fatal("expected esc to close the form")
	}
	if got := m.Controller().RowCount(); got != 3 {
		t.Errorf("rows after reload during form = %d, want 3", got)
	}
	if tm := m.Tree(); !tm.InSync() {
		t.Error("tree view out of sync after reload during form")
	}
}

func TestModelTreeReturnsIndependentCopy(t *testing.T) {
	m := newTestModel(ModelConfig{}, "A", "B", "C")

	copied := m.Tree()
	copied.DeleteRows([]int{0})
	if copied.RowCount() != 2 {
		t.Fatalf("expected copy to drop a row, got %d", copied.RowCount())
	}

	tm := m.Tree()
	if tm.RowCount() != 3 || !tm.InSync() {
		t.Errorf("editing the copy changed the model's rows (count %d)", tm.RowCount())
	}
}

func TestModelDeleteRemovesRootWithChildren(t *testing.T) {
	m := newTestModel(ModelConfig{}, "A", "B")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter}, runes("j"), runes("d"))

	roots := m.Controller().Tree().Roots()
	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}
	if city, _ := roots[0].Payload(); city.Name != "B" {
		t.Errorf("expected B to remain, got %s", city.Name)
	}
	if m.Controller().RowCount() != 1 {
		t.Errorf("expected the child to go with its root, %d rows", m.Controller().RowCount())
	}
	if !strings.Contains(m.Status(), "Deleted A") {
		t.Errorf("status = %q", m.Status())
	}
}

func TestModelCopy(t *testing.T) {
	var copied string
	m := newTestModel(ModelConfig{Clipboard: func(s string) error {
		copied = s
		return nil
	}}, "Paris")

	m = send(t, m, runes("y"))
	if copied != "Paris" {
		t.Errorf("copied %q, want Paris", copied)
	}

	failing := newTestModel(ModelConfig{Clipboard: func(string) error {
		return errors.New("no clipboard")
	}}, "Paris")
	failing = send(t, failing, runes("y"))
	if !strings.Contains(failing.Status(), "no clipboard") {
		t.Errorf("expected copy error in status, got %q", failing.Status())
	}
}

func TestModelCatalogReadyReseeds(t *testing.T) {
	m := newTestModel(ModelConfig{Expand: []string{"Oslo"}}, "A", "B")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m = send(t, m, CatalogReadyMsg{Cities: testCities("Oslo", "Bergen", "Tromsø")})

	ctrl := m.Controller()
	if ctrl.Tree().RootCount() != 3 {
		t.Fatalf("expected 3 roots, got %d", ctrl.Tree().RootCount())
	}
	// Oslo is configured to open on seed.
	if ctrl.RowCount() != 4 {
		t.Errorf("expected Oslo expanded (4 rows), got %d", ctrl.RowCount())
	}
	if !m.tree.InSync() {
		t.Error("tree view out of sync after reseed")
	}
	if !strings.Contains(m.Status(), "Loaded 3 cities") {
		t.Errorf("status = %q", m.Status())
	}
}

func TestModelCatalogError(t *testing.T) {
	m := newTestModel(ModelConfig{}, "A")
	m = send(t, m, CatalogErrorMsg{Err: errors.New("boom")})

	if !strings.Contains(m.Status(), "boom") || !m.statusErr {
		t.Errorf("expected error status, got %q", m.Status())
	}
	if m.Controller().Tree().RootCount() != 1 {
		t.Error("failed reload must keep the current list")
	}
}

func TestModelReloadWithoutWorkerLoadsBundled(t *testing.T) {
	m := newTestModel(ModelConfig{}, "A")

	_, cmd := m.Update(runes("r"))
	if cmd == nil {
		t.Fatal("expected a load command")
	}
	msg, ok := cmd().(CatalogReadyMsg)
	if !ok {
		t.Fatalf("expected CatalogReadyMsg, got %T", cmd())
	}
	bundled, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	if len(msg.Cities) != len(bundled) || msg.Hash != catalog.Hash(bundled) {
		t.Errorf("reload returned %d cities, want bundled %d", len(msg.Cities), len(bundled))
	}
}

func TestModelHelpOverlay(t *testing.T) {
	m := newTestModel(ModelConfig{}, "A")
	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 30}, runes("?"))

	view := m.View()
	if !strings.Contains(view, "Quick Reference") {
		t.Error("expected help overlay")
	}
	// The modal is centered over the list, which stays visible around it.
	if !strings.Contains(view, "▸ A") {
		t.Errorf("expected list behind the overlay, got:\n%s", view)
	}
	// Navigation is swallowed while help is open.
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Controller().RowCount() != 1 {
		t.Error("keys leaked through the help overlay")
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if strings.Contains(m.View(), "Quick Reference") {
		t.Error("expected help closed")
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(ModelConfig{}, "A")
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg, got %T", cmd())
	}
}

func TestModelDetailPane(t *testing.T) {
	m := newTestModel(ModelConfig{DetailPane: true}, "Paris", "Rome")
	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})

	if !strings.Contains(m.detail.View(), "About Paris") {
		t.Errorf("expected detail for Paris, got:\n%s", m.detail.View())
	}
	m = send(t, m, runes("j"))
	if !strings.Contains(m.detail.View(), "About Rome") {
		t.Errorf("expected detail to follow the cursor, got:\n%s", m.detail.View())
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if strings.Contains(m.View(), "About Rome") {
		t.Error("expected detail pane hidden after tab")
	}
}
