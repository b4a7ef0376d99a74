package login

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kvisli/glyptodon/domain"
	"github.com/kvisli/glyptodon/session"
	"github.com/kvisli/glyptodon/ui/common"
	"github.com/kvisli/glyptodon/util"
)

var Style = lipgloss.NewStyle().Height(25).Width(80).
	Align(lipgloss.Center, lipgloss.Center).
	BorderStyle(lipgloss.ThickBorder()).
	Margin(0, 3)

type Model struct {
	Username textinput.Model
	Password textinput.Model
	store    *session.Store
	step     int // 0=username, 1=password
	busy     bool
	err      error
}

func InitialModel(store *session.Store) Model {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 100
	username.Width = 30
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 100
	password.Width = 30
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	return Model{
		Username: username,
		Password: password,
		store:    store,
	}
}

// Reset clears both fields, for when the view is re-entered.
func (m *Model) Reset() {
	m.Username.SetValue("")
	m.Password.SetValue("")
	m.Username.Focus()
	m.Password.Blur()
	m.step = 0
	m.busy = false
	m.err = nil
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case common.AuthResultMsg:
		m.busy = false
		m.err = msg.Err
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if m.step == 0 {
				m.step = 1
				m.Username.Blur()
				return m, m.Password.Focus()
			}
			if m.busy {
				return m, nil
			}
			m.busy = true
			m.err = nil
			return m, m.loginCmd()
		case "tab":
			if m.step == 0 {
				m.step = 1
				m.Username.Blur()
				return m, m.Password.Focus()
			}
			m.step = 0
			m.Password.Blur()
			return m, m.Username.Focus()
		}
	}

	switch m.step {
	case 0:
		m.Username, cmd = m.Username.Update(msg)
	case 1:
		m.Password, cmd = m.Password.Update(msg)
	}
	return m, cmd
}

func (m Model) loginCmd() tea.Cmd {
	creds := domain.Credentials{
		Username: util.NormalizeInput(m.Username.Value()),
		Password: m.Password.Value(),
	}
	store := m.store
	return func() tea.Msg {
		err := store.Login(context.Background(), creds)
		return common.AuthResultMsg{Err: err}
	}
}

func (m Model) View() string {
	var status string
	if m.busy {
		status = common.HelpStyle.Render("signing in...")
	} else if m.err != nil {
		status = common.ErrorStyle.Render(m.err.Error())
	}

	return fmt.Sprintf(
		"Sign in to GLYPTODON v%s\n\n%s\n\n%s\n\n%s\n\n%s",
		util.GetVersion(),
		m.Username.View(),
		m.Password.View(),
		status,
		"(enter: sign in • tab: switch field • ctrl+r: register • esc: browse without account)",
	) + "\n"
}

// ViewWithWidth centers the bordered form on the terminal.
func (m Model) ViewWithWidth(termWidth, termHeight int) string {
	contentWidth := termWidth - 8
	if contentWidth < 40 {
		contentWidth = 40
	}

	bordered := Style.Width(contentWidth).Render(m.View())
	return lipgloss.Place(termWidth, termHeight, lipgloss.Center, lipgloss.Center, bordered)
}
