package postview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kvisli/glyptodon/cache"
	"github.com/kvisli/glyptodon/domain"
	"github.com/kvisli/glyptodon/ui/common"
	"github.com/kvisli/glyptodon/util"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_MAGENTA)).
			Bold(true)

	authorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_LIGHTBLUE)).
			Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_PURPLE))

	bodyStyle = lipgloss.NewStyle().
			Align(lipgloss.Left).
			PaddingLeft(2)
)

type Model struct {
	Post    *domain.Post
	spinner spinner.Model
	status  cache.Status
	err     error
	stale   bool
	width   int
}

func NewModel(width int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(common.COLOR_MAGENTA))

	return Model{spinner: sp, status: cache.Idle, width: width}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case common.PostLoadedMsg:
		m.Post = msg.Post
		m.status = msg.Status
		m.err = msg.Err
		m.stale = msg.Stale
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(common.CaptionStyle.Render("post"))
	s.WriteString("\n\n")

	if m.status == cache.Loading && m.Post == nil {
		s.WriteString("  " + m.spinner.View() + " loading post...")
		return s.String()
	}

	if m.err != nil && m.Post == nil {
		s.WriteString("  " + common.ErrorStyle.Render(m.err.Error()))
		return s.String()
	}

	if m.Post == nil {
		s.WriteString("  nothing selected")
		return s.String()
	}

	if m.stale {
		s.WriteString("  " + common.StaleStyle.Render("refreshing..."))
		s.WriteString("\n")
	}

	s.WriteString("  " + titleStyle.Render(m.Post.Title) + "\n")
	s.WriteString("  " + authorStyle.Render("@"+m.Post.Author) + " " +
		timeStyle.Render(util.RelativeTime(m.Post.CreatedAt)))
	if m.Post.UpdatedAt.After(m.Post.CreatedAt) {
		s.WriteString(timeStyle.Render(fmt.Sprintf(" (edited %s)", util.RelativeTime(m.Post.UpdatedAt))))
	}
	s.WriteString("\n\n")

	bodyWidth := m.width - 8
	if bodyWidth < 40 {
		bodyWidth = 40
	}
	s.WriteString(bodyStyle.Width(bodyWidth).Render(m.Post.Body))
	s.WriteString("\n")

	return s.String()
}
