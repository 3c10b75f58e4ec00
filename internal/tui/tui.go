// Package tui renders a dashboard view in the terminal with bubbletea.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cryptohub/internal/assistant"
	"cryptohub/internal/card"
	"cryptohub/internal/provider"
	"cryptohub/internal/viewmodel"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	cardStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	priceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	gainStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true, false, false, false).BorderForeground(lipgloss.Color("6"))
)

const (
	cardWidth   = 24
	panelHeight = 8
)

type Options struct {
	// Context parents the fetch and assistant calls. Defaults to Background.
	Context context.Context
	// AskTimeout bounds one assistant answer. Defaults to 30s.
	AskTimeout time.Duration
	Width      int
	Height     int
}

// settledMsg reports that the view's fetch has settled.
type settledMsg struct{}

type answerMsg struct {
	answer string
	err    error
}

// Model is the bubbletea model for one dashboard view.
type Model struct {
	ctx        context.Context
	askTimeout time.Duration
	ctrl       *viewmodel.Controller
	panel      *assistant.Panel

	search   textinput.Model
	question textinput.Model
	viewport viewport.Model
	width    int
	height   int
}

func New(ctrl *viewmodel.Controller, asst assistant.Assistant, opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.AskTimeout <= 0 {
		opts.AskTimeout = 30 * time.Second
	}
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Height <= 0 {
		opts.Height = 24
	}

	search := textinput.New()
	search.Prompt = "search: "
	search.Placeholder = "name or symbol"
	search.CharLimit = 64
	search.Focus()

	question := textinput.New()
	question.Prompt = "> "
	question.Placeholder = "ask about these coins"
	question.CharLimit = 256

	m := Model{
		ctx:        opts.Context,
		askTimeout: opts.AskTimeout,
		ctrl:       ctrl,
		panel:      assistant.NewPanel(asst),
		search:     search,
		question:   question,
		width:      opts.Width,
		height:     opts.Height,
	}
	m.viewport = viewport.New(m.width, m.viewportHeight())
	m.viewport.SetContent(m.renderContent())
	return m
}

// Init starts the view's single fetch and waits for it to settle.
func (m Model) Init() tea.Cmd {
	done := m.ctrl.Initialize(m.ctx)
	return func() tea.Msg {
		<-done
		return settledMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.ctrl.Teardown()
			return m, tea.Quit
		case "esc":
			if m.panel.Open() {
				m.togglePanel()
				return m, nil
			}
			m.ctrl.Teardown()
			return m, tea.Quit
		case "tab":
			m.togglePanel()
			return m, nil
		case "up", "down", "pgup", "pgdown":
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case "enter":
			if m.panel.Open() {
				return m, m.submitQuestion()
			}
			return m, nil
		}
		if m.panel.Open() {
			m.question, cmd = m.question.Update(msg)
			return m, cmd
		}
		m.search, cmd = m.search.Update(msg)
		m.ctrl.SetSearchTerm(m.search.Value())
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()
		return m, cmd

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = m.width
		m.viewport.Height = m.viewportHeight()
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case settledMsg:
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case answerMsg:
		m.panel.Resolve(msg.answer, msg.err)
		return m, nil
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) togglePanel() {
	if m.panel.Toggle() {
		m.search.Blur()
		m.question.Focus()
	} else {
		m.question.Blur()
		m.search.Focus()
	}
	m.viewport.Height = m.viewportHeight()
}

func (m *Model) submitQuestion() tea.Cmd {
	q := strings.TrimSpace(m.question.Value())
	if !m.panel.Submit(q) {
		return nil
	}
	m.question.Reset()

	asst := m.panel.Assistant()
	quotes := m.ctrl.VisibleQuotes()
	ctx, timeout := m.ctx, m.askTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		answer, err := asst.Ask(ctx, q, quotes)
		return answerMsg{answer: answer, err: err}
	}
}

func (m Model) viewportHeight() int {
	h := m.height - 2 // header and footer
	if m.panel.Open() {
		h -= panelHeight
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) View() string {
	status := m.ctrl.Status()
	headerText := fmt.Sprintf(" Crypto Hub  %s  ", status)
	if _, ok := status.(viewmodel.Ready); ok {
		headerText = fmt.Sprintf(" Crypto Hub  %d/%d coins  ", len(m.ctrl.VisibleQuotes()), len(m.ctrl.Quotes()))
	}
	header := headerStyle.Render(headerText) + " " + m.search.View()

	help := " esc quit  up/dn scroll"
	if m.panel.Assistant().Enabled() {
		help += "  tab assistant"
	}
	footer := footerStyle.Render(padOrTrunc(help, m.width))

	parts := []string{header, m.viewport.View()}
	if m.panel.Open() {
		parts = append(parts, m.renderPanel())
	}
	parts = append(parts, footer)
	return strings.Join(parts, "\n")
}

func (m Model) renderContent() string {
	switch s := m.ctrl.Status().(type) {
	case viewmodel.Loading:
		return dimStyle.Render("Loading market data...")
	case viewmodel.Failed:
		return lossStyle.Render("Could not load market data: " + s.Message)
	}

	quotes := m.ctrl.VisibleQuotes()
	if len(quotes) == 0 {
		return dimStyle.Render(fmt.Sprintf("No coins match %q", m.ctrl.SearchTerm()))
	}
	return renderGrid(quotes, m.width)
}

func renderGrid(quotes []provider.Quote, width int) string {
	cols := width / (cardWidth + 4)
	if cols < 1 {
		cols = 1
	}
	rows := make([]string, 0, len(quotes)/cols+1)
	for start := 0; start < len(quotes); start += cols {
		end := min(start+cols, len(quotes))
		cells := make([]string, 0, cols)
		for _, q := range quotes[start:end] {
			cells = append(cells, renderCard(card.FromQuote(q, cardWidth-2)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderCard(c card.Card) string {
	change := gainStyle.Render("▲ " + c.Change)
	if !c.Up {
		change = lossStyle.Render("▼ " + c.Change)
	}
	body := strings.Join([]string{
		titleStyle.Render(c.Title) + " " + dimStyle.Render(c.Symbol),
		priceStyle.Render(c.Price) + "  " + change,
		dimStyle.Render(c.Spark),
	}, "\n")
	return cardStyle.Width(cardWidth).Render(body)
}

func (m Model) renderPanel() string {
	asst := m.panel.Assistant()
	lines := []string{titleStyle.Render(asst.Title())}
	turns := m.panel.Transcript()
	if len(turns) == 0 && asst.Greeting() != "" {
		lines = append(lines, dimStyle.Render(asst.Greeting()))
	}
	for _, t := range turns {
		lines = append(lines, "you: "+t.Question)
		switch {
		case t.Err != nil:
			lines = append(lines, lossStyle.Render("error: "+t.Err.Error()))
		case t.Pending():
			lines = append(lines, dimStyle.Render("thinking..."))
		default:
			lines = append(lines, t.Answer)
		}
	}
	// keep the latest exchange and the input inside the panel
	if keep := panelHeight - 2; len(lines) > keep {
		lines = append(lines[:1], lines[len(lines)-keep+1:]...)
	}
	lines = append(lines, m.question.View())
	return panelStyle.Width(m.width).Render(strings.Join(lines, "\n"))
}

func padOrTrunc(s string, w int) string {
	if w <= 0 {
		return s
	}
	if n := lipgloss.Width(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}
