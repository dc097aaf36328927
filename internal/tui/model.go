package tui

import (
	"context"
	"fmt"
	"strings"

	"FundLens/internal/browser"
	"FundLens/internal/model"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// narrowWidth is the terminal width below which the detail panel replaces
// the list instead of sitting next to it.
const narrowWidth = 90

const listRows = 15

// Controller is the part of browser.Browser the terminal drives.
type Controller interface {
	Load(ctx context.Context) error
	Search(term string) []model.Fund
	Select(ctx context.Context, i int)
	Back()
}

type focus int

const (
	focusSearch focus = iota
	focusList
)

// Model is the bubbletea model. It mirrors what the controller rendered
// through the Bridge and turns key presses into controller calls.
type Model struct {
	ctx  context.Context
	ctrl Controller

	// ChartBase is prefixed to relative chart image paths.
	ChartBase string

	input   textinput.Model
	spinner spinner.Model
	focus   focus
	width   int

	fundsLoading bool
	fundsErr     string

	listVisible bool
	items       []model.Fund
	cursor      int
	highlighted int

	detail      *browser.Detail
	costLoading bool
	costErr     string
	chart       *browser.ChartCard
}

// NewModel creates a Model driving ctrl.
func NewModel(ctx context.Context, ctrl Controller) Model {
	ti := textinput.New()
	ti.Placeholder = "Cerca per nome o numero albo..."
	ti.Prompt = "> "
	ti.CharLimit = 120
	ti.Focus()

	return Model{
		ctx:         ctx,
		ctrl:        ctrl,
		input:       ti,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		highlighted: -1,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.run(func() {
		_ = m.ctrl.Load(m.ctx)
	}))
}

// run wraps a controller call in a command. Controller calls emit messages
// back into the program, so they must never run on the update loop.
func (m Model) run(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case fundsLoadingMsg:
		m.fundsLoading = msg.loading
	case fundsErrorMsg:
		m.fundsLoading = false
		m.fundsErr = msg.text
	case listVisibleMsg:
		m.listVisible = msg.visible
	case listMsg:
		m.items = msg.funds
		m.cursor = 0
		m.highlighted = -1
	case highlightMsg:
		m.highlighted = msg.index
	case detailMsg:
		d := msg.detail
		m.detail = &d
	case hideDetailMsg:
		m.detail = nil
	case resetMsg:
		m.chart = nil
		m.costErr = ""
	case costLoadingMsg:
		m.costLoading = msg.visible
	case costErrorMsg:
		m.costErr = msg.text
	case chartMsg:
		card := msg.card
		m.chart = &card
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.focus == focusSearch {
		switch key {
		case "enter":
			term := m.input.Value()
			return m, m.run(func() { m.ctrl.Search(term) })
		case "tab", "down":
			if m.listVisible && len(m.items) > 0 {
				m.focus = focusList
				m.input.Blur()
			}
			return m, nil
		case "esc":
			if m.detail != nil {
				return m, m.run(m.ctrl.Back)
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter", " ":
		if m.listVisible && m.cursor < len(m.items) {
			i := m.cursor
			return m, m.run(func() { m.ctrl.Select(m.ctx, i) })
		}
	case "esc", "backspace", "b":
		if m.detail != nil {
			return m, m.run(m.ctrl.Back)
		}
	case "/", "tab":
		m.focus = focusSearch
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) narrow() bool {
	return m.width > 0 && m.width < narrowWidth
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("FundLens · Schede costi fondi pensione"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.fundsErr != "":
		b.WriteString(errorStyle.Render(m.fundsErr))
		b.WriteString("\n")
	case m.fundsLoading:
		b.WriteString(m.spinner.View() + " Caricamento fondi...\n")
	}

	list := m.listView()
	detail := m.detailView()
	switch {
	case detail != "" && (m.narrow() || list == ""):
		b.WriteString(detail)
	case detail != "":
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", detail))
	default:
		b.WriteString(list)
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render(m.hint()))
	return b.String()
}

func (m Model) hint() string {
	if m.focus == focusSearch {
		return "enter cerca · tab lista · esc indietro · ctrl+c esci"
	}
	return "↑/↓ muovi · enter apri · / cerca · esc indietro · q esci"
}

func (m Model) listView() string {
	if !m.listVisible {
		return ""
	}
	var b strings.Builder
	b.WriteString("Risultati " + badgeStyle.Render(fmt.Sprint(len(m.items))) + "\n")

	start := 0
	if m.cursor >= listRows {
		start = m.cursor - listRows + 1
	}
	end := min(len(m.items), start+listRows)
	for i := start; i < end; i++ {
		f := m.items[i]
		name := f.Name
		if i == m.highlighted {
			name = activeStyle.Render(name)
		}
		style := itemStyle
		prefix := ""
		if m.focus == focusList && i == m.cursor {
			style = cursorStyle
			prefix = "› "
		}
		b.WriteString(style.Render(prefix+name) + "\n")
		b.WriteString(itemStyle.Render(metaStyle.Render(browser.MetaLine(f))) + "\n")
	}
	return b.String()
}

func (m Model) detailView() string {
	if m.detail == nil {
		return ""
	}
	d := m.detail
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(d.Title) + "\n")
	b.WriteString(metaStyle.Render(d.Type) + "\n\n")
	if d.PDFLink != "" {
		b.WriteString("PDF: " + d.PDFLink + "\n")
	}

	if m.costLoading {
		b.WriteString("\n" + m.spinner.View() + " Analisi del documento...\n")
	}
	if m.costErr != "" {
		b.WriteString("\n" + errorStyle.Render(m.costErr) + "\n")
	}
	if m.chart != nil {
		b.WriteString("\n" + m.cardView(*m.chart) + "\n")
	}

	width := 60
	if m.narrow() {
		width = max(20, m.width-4)
	}
	return panelStyle.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) cardView(card browser.ChartCard) string {
	if card.ImageURL == "" {
		return cardStyle.Render(card.Message)
	}
	url := card.ImageURL
	if strings.HasPrefix(url, "/") {
		url = strings.TrimRight(m.ChartBase, "/") + url
	}
	return cardStyle.Render(card.Caption + "\n" + url)
}
