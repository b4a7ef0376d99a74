package header

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kvisli/glyptodon/domain"
	"github.com/kvisli/glyptodon/ui/common"
	"github.com/kvisli/glyptodon/util"
)

type Model struct {
	Width         int
	Identity      domain.Identity
	Authenticated bool
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if s, ok := msg.(common.SessionChangedMsg); ok {
		m.Authenticated = s.State.Authenticated
		m.Identity = s.State.Identity
	}
	return m, nil
}

func (m Model) View() string {
	username := m.Identity.Username
	status := "signed in"
	if !m.Authenticated {
		username = "anonymous"
		status = "browsing"
	}

	overhead := 16
	availableWidth := m.Width - overhead
	if availableWidth < 40 {
		availableWidth = 40
	}

	usernameWidth := availableWidth / 6
	atWidth := 1
	versionWidth := availableWidth / 2
	statusWidth := availableWidth - usernameWidth - atWidth - versionWidth

	usernameBox := lipgloss.
		NewStyle().
		SetString(username).
		Align(lipgloss.Left).
		Background(lipgloss.Color(common.COLOR_PURPLE)).
		Padding(1).
		Height(2).
		Width(usernameWidth).
		Border(lipgloss.NormalBorder(), true, false, true, false).
		BorderForeground(lipgloss.Color(common.COLOR_MAGENTA)).
		String()

	at := lipgloss.
		NewStyle().
		SetString("@").
		Background(lipgloss.NoColor{}).
		Foreground(lipgloss.Color(common.COLOR_MAGENTA)).
		Padding(1).
		Height(2).
		Width(atWidth).
		Border(lipgloss.NormalBorder(), true, false, true, false).
		BorderForeground(lipgloss.Color(common.COLOR_MAGENTA)).
		String()

	version := lipgloss.
		NewStyle().
		SetString(util.GetNameAndVersion()).
		Width(versionWidth).
		Height(2).
		Background(lipgloss.Color(common.COLOR_GREY)).
		Padding(1).
		Border(lipgloss.NormalBorder(), true, false, true, false).
		BorderForeground(lipgloss.Color(common.COLOR_MAGENTA)).
		String()

	statusBox := lipgloss.
		NewStyle().
		SetString(status).
		Background(lipgloss.Color(common.COLOR_MAGENTA)).
		Padding(1).
		Align(lipgloss.Left).
		Height(2).
		Width(statusWidth).
		Border(lipgloss.NormalBorder(), true, false, true, false).
		BorderForeground(lipgloss.Color(common.COLOR_MAGENTA)).
		String()

	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		usernameBox,
		at,
		version,
		statusBox,
	)
}
