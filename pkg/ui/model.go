// Package ui provides the terminal user interface for treelist.
package ui

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/vanderheijden86/treelist/pkg/catalog"
	"github.com/vanderheijden86/treelist/pkg/tree"
)

// ModelConfig wires the model to its collaborators.
type ModelConfig struct {
	// CatalogPaths are reloaded by the reload key; empty means bundled.
	CatalogPaths []string
	// DetailPane shows the selected city rendered as markdown.
	DetailPane bool
	// Expand names roots expanded whenever the list is seeded.
	Expand []string
	// Worker, when set, serves reloads instead of a one-shot load command.
	Worker *BackgroundWorker
	// Clipboard writes the copied name; defaults to the system clipboard.
	Clipboard func(string) error
}

// cityDraft backs the add-city form. Held by pointer so the form's bound
// values survive Model copies.
type cityDraft struct {
	Name        string
	Description string
}

// Model is the top-level bubbletea model: list, detail pane and footer.
type Model struct {
	ctrl     *tree.Controller[catalog.City]
	tree     TreeModel
	detail   viewport.Model
	renderer *glamour.TermRenderer
	help     help.Model
	keys     KeyMap
	theme    Theme
	cfg      ModelConfig

	form  *huh.Form
	draft *cityDraft

	// State
	showHelp   bool
	showDetail bool
	ready      bool
	width      int
	height     int
	status     string
	statusErr  bool
}

// NewModel builds the UI over ctrl, which should already hold the initial
// roots.
func NewModel(ctrl *tree.Controller[catalog.City], theme Theme, cfg ModelConfig) Model {
	if cfg.Clipboard == nil {
		cfg.Clipboard = clipboard.WriteAll
	}

	m := Model{
		ctrl:       ctrl,
		theme:      theme,
		cfg:        cfg,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		detail:     viewport.New(80, 10),
		showDetail: cfg.DetailPane,
	}
	m.expandNamed()
	m.tree = NewTreeModel(ctrl, theme)
	m.updateDetail()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Reloads and resizes apply even while the add form is open: the worker
	// does not resend content it has already reported.
	switch msg := msg.(type) {
	case CatalogReadyMsg:
		m.reseed(msg.Cities)
		m.setStatus(fmt.Sprintf("Loaded %d cities", len(msg.Cities)), false)
		return m, nil

	case CatalogErrorMsg:
		m.setStatus(fmt.Sprintf("Reload failed: %v", msg.Err), true)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		if m.form != nil {
			if m.width > 4 {
				m.form = m.form.WithWidth(min(m.width-4, 72))
			}
			return m.updateForm(msg)
		}
		return m, nil
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if key.Matches(msg, m.keys.Esc, m.keys.Help, m.keys.Quit) {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.tree.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.tree.MoveDown()
	case key.Matches(msg, m.keys.PageUp):
		m.tree.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.tree.PageDown()
	case key.Matches(msg, m.keys.Top):
		m.tree.JumpToTop()
	case key.Matches(msg, m.keys.Bottom):
		m.tree.JumpToBottom()
	case key.Matches(msg, m.keys.Activate):
		if m.tree.RowCount() == 0 {
			return m, nil
		}
		if _, err := m.tree.Activate(); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
	case key.Matches(msg, m.keys.Add):
		return m, m.openForm()
	case key.Matches(msg, m.keys.Delete):
		m.deleteSelected()
	case key.Matches(msg, m.keys.Copy):
		m.copySelected()
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		return m, m.reloadCmd()
	case key.Matches(msg, m.keys.Detail):
		m.showDetail = !m.showDetail
		m.layout()
	case key.Matches(msg, m.keys.Esc):
		m.status = ""
		return m, nil
	default:
		if m.showDetail {
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	m.updateDetail()
	return m, nil
}

// reseed replaces the whole list with cities, keeping the cursor on the
// same position where possible.
func (m *Model) reseed(cities []catalog.City) {
	m.ctrl.Clear()
	m.ctrl.AddRoots(cities)
	m.expandNamed()
	m.tree.Reload()
	m.updateDetail()
}

// expandNamed expands every collapsed root whose title is in cfg.Expand.
func (m *Model) expandNamed() {
	if len(m.cfg.Expand) == 0 {
		return
	}
	want := make(map[string]bool, len(m.cfg.Expand))
	for _, name := range m.cfg.Expand {
		want[strings.TrimSpace(name)] = true
	}
	t := m.ctrl.Tree()
	for _, root := range t.Roots() {
		city, _ := root.Payload()
		if !want[city.Title()] || m.ctrl.IsExpanded(root) {
			continue
		}
		if idx, ok := t.FlatIndexOf(root); ok {
			if _, err := m.ctrl.Activate(idx); err != nil {
				log.Printf("warning: expanding %q: %v", city.Title(), err)
			}
		}
	}
}

func (m *Model) deleteSelected() {
	root, ok := m.tree.SelectedRoot()
	if !ok {
		return
	}
	city, _ := root.Payload()
	m.ctrl.Tree().RemoveRoot(root)
	m.tree.Reload()
	m.setStatus(fmt.Sprintf("Deleted %s", city.Title()), false)
}

func (m *Model) copySelected() {
	city, ok := m.tree.SelectedCity()
	if !ok {
		return
	}
	if err := m.cfg.Clipboard(city.Title()); err != nil {
		m.setStatus(fmt.Sprintf("Copy failed: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("Copied %s", city.Title()), false)
}

func (m *Model) reloadCmd() tea.Cmd {
	if m.cfg.Worker != nil {
		m.cfg.Worker.TriggerRefresh()
		m.setStatus("Reloading...", false)
		return nil
	}
	paths := m.cfg.CatalogPaths
	return func() tea.Msg {
		cities, err := catalog.LoadAll(context.Background(), paths)
		if err != nil {
			return CatalogErrorMsg{Err: err, Recoverable: true}
		}
		return CatalogReadyMsg{Cities: cities, Hash: catalog.Hash(cities)}
	}
}

func (m *Model) openForm() tea.Cmd {
	m.draft = &cityDraft{}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&m.draft.Name).
				Validate(func(s string) error {
					return catalog.City{Name: s}.Validate()
				}),
			huh.NewText().
				Title("Description").
				Value(&m.draft.Description),
		),
	).WithShowHelp(false)
	// The form runs embedded; its default submit and cancel commands would
	// quit the whole program.
	m.form.SubmitCmd = closeForm
	m.form.CancelCmd = closeForm
	if m.width > 0 {
		m.form = m.form.WithWidth(min(m.width-4, 72))
	}
	return m.form.Init()
}

// formClosedMsg is emitted when the embedded form finishes. State is read
// from the form itself, so the message carries nothing.
type formClosedMsg struct{}

func closeForm() tea.Msg { return formClosedMsg{} }

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && (km.Type == tea.KeyCtrlC || km.Type == tea.KeyEsc) {
		m.form = nil
		m.setStatus("Add cancelled", false)
		return m, nil
	}

	model, cmd := m.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		m.addCity(catalog.City{
			Name: strings.TrimSpace(m.draft.Name),
			Text: strings.TrimSpace(m.draft.Description),
		})
		return m, nil
	case huh.StateAborted:
		m.form = nil
		m.setStatus("Add cancelled", false)
		return m, nil
	}
	return m, cmd
}

// addCity inserts a root right after the selected city's root, or appends
// when nothing is selected.
func (m *Model) addCity(city catalog.City) {
	pos := m.ctrl.Tree().RootCount()
	if root, ok := m.tree.SelectedRoot(); ok {
		if i, ok := m.ctrl.RootPosition(root); ok {
			pos = i + 1
		}
	}
	item, ok := m.ctrl.InsertRoot(city, pos)
	if !ok {
		return
	}
	m.tree.Reload()
	m.tree.SelectByID(item.ID)
	m.updateDetail()
	m.setStatus(fmt.Sprintf("Added %s", city.Title()), false)
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// layout splits the height between list, detail pane and footer.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	avail := m.height - 1 // footer
	if avail < 1 {
		avail = 1
	}
	treeHeight := avail
	if m.showDetail && avail > 6 {
		detailHeight := avail / 3
		treeHeight = avail - detailHeight - 1 // separator
		m.detail.Width = m.width
		m.detail.Height = detailHeight
		m.renderer = nil
	}
	m.tree.SetSize(m.width, treeHeight)
	m.help.Width = m.width
	m.updateDetail()
}

func (m *Model) updateDetail() {
	if !m.showDetail {
		return
	}
	row, ok := m.tree.SelectedRow()
	if !ok {
		m.detail.SetContent("No city selected")
		return
	}
	city, _ := row.Item.Payload()

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", city.Title())
	if city.Text != "" {
		sb.WriteString(city.Text + "\n\n")
	}
	kind := "city"
	if !row.IsRoot {
		kind = "description row"
	}
	fmt.Fprintf(&sb, "`#%d` %s\n", row.Item.ID, kind)

	if m.renderer == nil {
		wrap := m.detail.Width - 2
		if wrap < 20 {
			wrap = 20
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			m.detail.SetContent(sb.String())
			return
		}
		m.renderer = r
	}

	rendered, err := m.renderer.Render(sb.String())
	if err != nil {
		m.detail.SetContent(fmt.Sprintf("Error rendering markdown: %v", err))
		return
	}
	m.detail.SetContent(rendered)
	m.detail.GotoTop()
}

func (m Model) View() string {
	switch {
	case m.form != nil:
		return m.overlay(m.renderForm)
	case m.showHelp:
		return m.overlay(func() string { return RenderContextHelp(m.theme, m.width) })
	}
	return m.renderMain()
}

// layer adapts a render function to the tea.Model the overlay composites.
type layer func() string

func (l layer) Init() tea.Cmd                       { return nil }
func (l layer) Update(tea.Msg) (tea.Model, tea.Cmd) { return l, nil }
func (l layer) View() string                        { return l() }

// overlay centers the modal drawn by fg over the list. Before the first
// WindowSizeMsg there is nothing to center on, so the modal is returned as is.
func (m Model) overlay(fg func() string) string {
	if !m.ready || m.width <= 0 || m.height <= 0 {
		return fg()
	}
	return overlay.New(layer(fg), layer(m.renderMain), overlay.Center, overlay.Center, 0, 0).View()
}

func (m Model) renderForm() string {
	box := m.theme.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Secondary).
		Padding(1, 2)
	title := m.theme.Renderer.NewStyle().Foreground(m.theme.Primary).Bold(true).Render("Add city")
	return box.Render(title + "\n\n" + m.form.View())
}

func (m Model) renderMain() string {
	body := m.tree.View()
	if m.showDetail && m.ready && m.height-1 > 6 {
		sep := m.theme.Renderer.NewStyle().Foreground(m.theme.Border).Render(strings.Repeat("─", max(m.width, 1)))
		body = lipgloss.JoinVertical(lipgloss.Left, body, sep, m.detail.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderFooter())
}

func (m Model) renderFooter() string {
	keys := m.help.View(m.keys)
	if m.status == "" {
		return keys
	}
	statusStyle := m.theme.Renderer.NewStyle().Foreground(m.theme.Highlight).Padding(0, 1)
	if m.statusErr {
		statusStyle = statusStyle.Foreground(m.theme.Error)
	}
	return statusStyle.Render(m.status) + keys
}

// Controller exposes the controller the model drives.
func (m Model) Controller() *tree.Controller[catalog.City] {
	return m.ctrl
}

// Status returns the footer status message.
func (m Model) Status() string {
	return m.status
}

// Tree returns a copy of the list view. The row cache is cloned, so edits to
// the copy leave the model untouched.
func (m Model) Tree() TreeModel {
	t := m.tree
	t.rows = slices.Clone(m.tree.rows)
	return t
}
