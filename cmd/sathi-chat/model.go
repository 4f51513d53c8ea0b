package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rbb-sathi-backend/internal/chat"
)

type theme struct {
	root      lipgloss.Style
	header    lipgloss.Style
	launcher  lipgloss.Style
	panel     lipgloss.Style
	user      lipgloss.Style
	assistant lipgloss.Style
	bold      lipgloss.Style
	prompt    lipgloss.Style
	help      lipgloss.Style
}

func newTheme() theme {
	navy := lipgloss.Color("#011B5E")
	gold := lipgloss.Color("#F5A623")
	muted := lipgloss.Color("#8a8fa3")
	return theme{
		root: lipgloss.NewStyle().Padding(0, 1),
		header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(navy).
			Bold(true).
			Padding(0, 1),
		launcher: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(navy).
			Padding(0, 2),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(navy),
		user:      lipgloss.NewStyle().Foreground(gold),
		assistant: lipgloss.NewStyle(),
		bold:      lipgloss.NewStyle().Bold(true),
		prompt:    lipgloss.NewStyle().Foreground(navy).Bold(true),
		help:      lipgloss.NewStyle().Foreground(muted),
	}
}

// replyMsg arrives once a Send issued by the widget has finished.
type replyMsg struct {
	accepted bool
}

type model struct {
	session  *chat.Session
	input    textinput.Model
	history  viewport.Model
	spinner  spinner.Model
	theme    theme
	waiting  bool
	width    int
	height   int
	rendered int
}

func newModel(session *chat.Session) model {
	input := textinput.New()
	input.Prompt = "› "
	input.Placeholder = "Type your message..."
	input.CharLimit = 1000

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := model{
		session: session,
		input:   input,
		history: viewport.New(60, 16),
		spinner: sp,
		theme:   newTheme(),
	}
	m.refresh()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.waiting && m.session.Len() != m.rendered {
			m.refresh()
		}
		return m, cmd

	case replyMsg:
		m.waiting = false
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+o":
			if m.session.Toggle() {
				m.input.Focus()
			} else {
				m.input.Blur()
			}
			return m, nil
		}
		if !m.session.IsOpen() {
			return m, nil
		}
		if msg.Type == tea.KeyEnter {
			return m.submit(m.input.Value())
		}
		if prompt, ok := m.quickPrompt(msg); ok {
			return m.submit(prompt)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// quickPrompt maps a number key to a suggestion while suggestions are
// offered and nothing has been typed yet.
func (m model) quickPrompt(msg tea.KeyMsg) (string, bool) {
	if m.input.Value() != "" || msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return "", false
	}
	suggestions := m.session.Suggestions()
	idx := int(msg.Runes[0] - '1')
	if idx < 0 || idx >= len(suggestions) {
		return "", false
	}
	return suggestions[idx], true
}

func (m model) submit(text string) (tea.Model, tea.Cmd) {
	if m.waiting || m.session.Pending() || strings.TrimSpace(text) == "" {
		return m, nil
	}
	m.input.Reset()
	m.waiting = true
	session := m.session
	return m, func() tea.Msg {
		_, ok := session.Send(context.Background(), text)
		return replyMsg{accepted: ok}
	}
}

func (m *model) resize() {
	w := max(30, m.width-4)
	m.history.Width = w
	m.history.Height = max(5, m.height-10)
	m.input.Width = max(10, w-4)
}

func (m *model) refresh() {
	history := m.session.History()
	m.rendered = len(history)
	wrap := lipgloss.NewStyle().Width(m.history.Width)
	var b strings.Builder
	for i, msg := range history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		line := chat.Render(msg, func(s string) string { return m.theme.bold.Render(s) })
		style := m.theme.assistant
		if msg.Role == chat.RoleUser {
			style = m.theme.user
		}
		b.WriteString(wrap.Render(style.Render(line)))
	}
	m.history.SetContent(b.String())
	m.history.GotoBottom()
}

func (m model) View() string {
	if !m.session.IsOpen() {
		return m.theme.root.Render(
			m.theme.launcher.Render("💬 Chat with "+chat.AssistantName) + "\n" +
				m.theme.help.Render("ctrl+o open · esc quit"),
		)
	}

	var b strings.Builder
	b.WriteString(m.theme.header.Render(chat.AssistantName + " · AI Banking Assistant"))
	b.WriteString("\n")
	b.WriteString(m.history.View())
	b.WriteString("\n")
	if m.waiting || m.session.Pending() {
		b.WriteString(m.spinner.View() + " " + m.theme.help.Render(chat.AssistantName+" is typing..."))
		b.WriteString("\n")
	}
	if s := m.session.Suggestions(); len(s) > 0 {
		for i, p := range s {
			b.WriteString(m.theme.prompt.Render(fmt.Sprintf("[%d]", i+1)) + " " + p + "  ")
		}
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.theme.help.Render("enter send · ctrl+o close · esc quit"))
	return m.theme.root.Render(m.theme.panel.Render(b.String()))
}
