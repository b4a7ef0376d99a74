package deletepost

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kvisli/glyptodon/domain"
	"github.com/kvisli/glyptodon/posts"
	"github.com/kvisli/glyptodon/ui/common"
	"github.com/kvisli/glyptodon/util"
)

var warnStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color(common.COLOR_RED)).
	Bold(true)

type Model struct {
	Post     domain.Post
	queries  *posts.Queries
	deleting bool
	err      error
}

func NewModel(queries *posts.Queries) Model {
	return Model{queries: queries}
}

// Start arms the confirmation for the given post.
func (m *Model) Start(post domain.Post) {
	m.Post = post
	m.deleting = false
	m.err = nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case common.MutationDoneMsg:
		if msg.Action == "delete" {
			m.deleting = false
			m.err = msg.Err
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "y", "enter":
			if m.deleting {
				return m, nil
			}
			m.deleting = true
			m.err = nil
			return m, m.deleteCmd()
		}
	}
	return m, nil
}

func (m Model) deleteCmd() tea.Cmd {
	id := m.Post.Id
	queries := m.queries
	return func() tea.Msg {
		err := queries.Delete(context.Background(), id)
		return common.MutationDoneMsg{Action: "delete", Err: err}
	}
}

func (m Model) View() string {
	var s string

	s += common.CaptionStyle.Render("delete post")
	s += "\n\n"
	s += "  " + warnStyle.Render("Delete this post?") + "\n\n"
	s += "  " + util.Truncate(m.Post.Title, 80) + "\n"
	s += "  " + common.HelpStyle.Render("@"+m.Post.Author) + "\n\n"

	if m.err != nil {
		s += "  " + common.ErrorStyle.Render(m.err.Error()) + "\n\n"
	}
	if m.deleting {
		s += "  " + common.HelpStyle.Render("deleting...") + "\n\n"
	}

	s += common.HelpStyle.Render("y/enter: delete • esc: cancel")
	return s
}
