// Package tui is the single interactive screen: a text input on top and the
// pending and done lists below. Every change goes straight to the store and
// both lists are re-read afterwards; nothing is cached between mutations.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/todo/internal/log"
	"github.com/idilsaglam/todo/internal/model"
	"github.com/idilsaglam/todo/internal/store"
	"github.com/idilsaglam/todo/internal/ui"
)

const (
	heading         = "My Todo List"
	pendingHeading  = "Tasks (enter to tick)"
	doneHeading     = "Done! (enter to remove)"
	unsupportedText = "SQLite storage is not supported on this platform!"
	placeholder     = "Write your tasks here!"

	// heading, counts, input box, two section headings, status and help
	chromeHeight = 12
)

type focus int

const (
	focusInput focus = iota
	focusPending
	focusDone
)

// listItem adapts model.Task to bubbles/list.Item
type listItem struct{ model.Task }

func (i listItem) TitleText() string {
	box := boxUnchecked
	if i.Done {
		box = boxChecked
	}
	return fmt.Sprintf("%s %s", box, i.Value)
}

// Implement list.Item interface
func (i listItem) Title() string       { return i.TitleText() }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.Value }

// Custom delegate to control how items render (single line).
// Only the focused list shows its cursor.
type itemDelegate struct{ active bool }

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(listItem)

	boxStyled := mutedStyle.Render(boxUnchecked)
	textStyled := it.Value
	if it.Done {
		boxStyled = successStyle.Render(boxChecked)
		textStyled = doneStyle.Render(it.Value)
	}

	line := fmt.Sprintf("%s %s", boxStyled, textStyled)
	prefix := "  "
	if d.active && index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprint(w, prefix+line)
}

type keyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Act    key.Binding
	Clear  key.Binding
	Quit   key.Binding
	Force  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.Act, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev}, {k.Submit, k.Act, k.Clear}, {k.Quit, k.Force}}
}

func defaultKeys() keyMap {
	return keyMap{
		Next:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "back")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add")),
		Act:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter/space", "tick/remove")),
		Clear:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear input")),
		Quit:   key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
		Force:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// refreshedMsg carries both lists after a write (or a failure that left the
// store untouched).
type refreshedMsg struct {
	op      string
	id      int64
	pending []model.Task
	done    []model.Task
	err     error
}

// Model is the Bubble Tea model for the todo screen.
type Model struct {
	store     store.Store
	supported bool

	input   textinput.Model
	pending list.Model
	done    list.Model
	focus   focus

	// busy is set while a write and its reload are in flight; further
	// mutations are ignored until the refreshedMsg arrives.
	busy   bool
	status string

	keys   keyMap
	help   help.Model
	width  int
	height int
}

// New builds the screen around s. When supported is false the screen only
// shows a notice and never calls s.
func New(s store.Store, supported bool) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.CharLimit = 500
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.Focus()

	m := Model{
		store:     s,
		supported: supported,
		input:     ti,
		pending:   newList(),
		done:      newList(),
		focus:     focusInput,
		keys:      defaultKeys(),
		help:      help.New(),
		width:     80,
		height:    24,
	}
	m.help.Styles.ShortKey = helpStyle
	m.help.Styles.ShortDesc = helpStyle
	m.layout()
	return m
}

func newList() list.Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.PaginationStyle = helpStyle
	return l
}

// Run starts the program on the alternate screen and blocks until quit.
func Run(s store.Store, supported bool) error {
	p := tea.NewProgram(New(s, supported), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	if !m.supported {
		return nil
	}
	return reload(m.store, "load", 0)
}

// reload re-reads both lists. It is the only read path of the screen.
func reload(s store.Store, op string, id int64) tea.Cmd {
	return func() tea.Msg {
		return fetch(s, op, id)
	}
}

func fetch(s store.Store, op string, id int64) refreshedMsg {
	msg := refreshedMsg{op: op, id: id}
	msg.pending, msg.err = s.ListByDone(false)
	if msg.err != nil {
		return msg
	}
	msg.done, msg.err = s.ListByDone(true)
	return msg
}

// mutate runs exactly one store write followed by a full reload.
func mutate(s store.Store, op string, id int64, write func() error) tea.Cmd {
	return func() tea.Msg {
		if err := write(); err != nil {
			return refreshedMsg{op: op, id: id, err: err}
		}
		return fetch(s, op, id)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case refreshedMsg:
		m.busy = false
		if msg.err != nil {
			log.Error().Err(msg.err).Str("op", msg.op).Int64("id", msg.id).Msg("store operation failed")
			m.status = fmt.Sprintf("%s failed: %v", msg.op, msg.err)
			return m, nil
		}
		log.Debug().Str("op", msg.op).Int("pending", len(msg.pending)).Int("done", len(msg.done)).Msg("lists reloaded")
		m.status = ""
		setItems(&m.pending, msg.pending)
		setItems(&m.done, msg.done)
		m.layout()
		m.fixFocus()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Force) {
			return m, tea.Quit
		}
		if !m.supported {
			if key.Matches(msg, m.keys.Quit) {
				return m, tea.Quit
			}
			return m, nil
		}
		if key.Matches(msg, m.keys.Next) {
			m.cycleFocus(1)
			return m, nil
		}
		if key.Matches(msg, m.keys.Prev) {
			m.cycleFocus(-1)
			return m, nil
		}
		switch m.focus {
		case focusInput:
			return m.updateInput(msg)
		case focusPending, focusDone:
			return m.updateList(msg)
		}
	}

	if m.focus == focusInput && m.supported {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		if m.busy {
			return m, nil
		}
		value := strings.TrimSpace(m.input.Value())
		m.input.SetValue("")
		// Blank text never reaches the store.
		if value == "" {
			return m, nil
		}
		m.busy = true
		s := m.store
		return m, mutate(s, "insert", 0, func() error { return s.Insert(value) })
	case key.Matches(msg, m.keys.Clear):
		m.input.SetValue("")
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	l, op := &m.pending, "mark done"
	if m.focus == focusDone {
		l, op = &m.done, "delete"
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Act):
		if m.busy {
			return m, nil
		}
		it, ok := l.SelectedItem().(listItem)
		if !ok {
			return m, nil
		}
		m.busy = true
		s, id := m.store, it.ID
		write := func() error { return s.MarkDone(id) }
		if op == "delete" {
			write = func() error { return s.Delete(id) }
		}
		return m, mutate(s, op, id, write)
	}
	var cmd tea.Cmd
	*l, cmd = l.Update(msg)
	return m, cmd
}

// cycleFocus moves between the input and the non-empty lists.
func (m *Model) cycleFocus(step int) {
	order := []focus{focusInput}
	if len(m.pending.Items()) > 0 {
		order = append(order, focusPending)
	}
	if len(m.done.Items()) > 0 {
		order = append(order, focusDone)
	}
	idx := 0
	for i, f := range order {
		if f == m.focus {
			idx = i
		}
	}
	idx = (idx + step + len(order)) % len(order)
	m.setFocus(order[idx])
}

// fixFocus leaves a list that a reload emptied.
func (m *Model) fixFocus() {
	switch {
	case m.focus == focusPending && len(m.pending.Items()) == 0,
		m.focus == focusDone && len(m.done.Items()) == 0:
		m.setFocus(focusInput)
	}
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	if f == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	m.pending.SetDelegate(itemDelegate{active: f == focusPending})
	m.done.SetDelegate(itemDelegate{active: f == focusDone})
}

func (m *Model) layout() {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	m.input.Width = w - 6

	avail := m.height - chromeHeight
	if avail < 4 {
		avail = 4
	}
	np, nd := len(m.pending.Items()), len(m.done.Items())
	hp, hd := np+1, nd+1
	if hp+hd > avail {
		hp = avail * (np + 1) / (np + nd + 2)
		if hp < 2 {
			hp = 2
		}
		hd = avail - hp
		if hd < 2 {
			hd = 2
		}
	}
	m.pending.SetSize(w, hp)
	m.done.SetSize(w, hd)
	m.help.Width = w
}

// setItems replaces the whole list and keeps the cursor in range.
func setItems(l *list.Model, tasks []model.Task) {
	l.SetItems(toItems(tasks))
	if n := len(tasks); n > 0 && l.Index() >= n {
		l.Select(n - 1)
	}
}

func toItems(tasks []model.Task) []list.Item {
	items := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, listItem{t})
	}
	return items
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(heading))
	b.WriteString("\n")

	if !m.supported {
		body := lipgloss.Place(m.width-4, max(m.height-6, 3), lipgloss.Center, lipgloss.Center,
			titleStyle.Render(unsupportedText))
		b.WriteString(body)
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("q quit"))
		return panelString(b.String())
	}

	np, nd := len(m.pending.Items()), len(m.done.Items())
	b.WriteString(fmt.Sprintf("%s %d  %s %d  %s %d  %s",
		successStyle.Render("✔"), nd,
		pendingStyle.Render("•"), np,
		accentStyle.Render("Total"), np+nd,
		mutedStyle.Render(ui.ProgressBar(nd, np+nd, 20)),
	))
	b.WriteString("\n")

	box := inputBox
	if m.focus == focusInput {
		box = inputBoxFocused
	}
	b.WriteString(box.Render(m.input.View()))
	b.WriteString("\n")

	if np > 0 {
		b.WriteString(sectionHeading(pendingHeading, m.focus == focusPending))
		b.WriteString("\n")
		b.WriteString(m.pending.View())
		b.WriteString("\n")
	}
	if nd > 0 {
		b.WriteString(sectionHeading(doneHeading, m.focus == focusDone))
		b.WriteString("\n")
		b.WriteString(m.done.View())
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return panelString(b.String())
}

func sectionHeading(s string, focused bool) string {
	if focused {
		return accentStyle.Bold(true).Render(s)
	}
	return accentStyle.Render(s)
}
