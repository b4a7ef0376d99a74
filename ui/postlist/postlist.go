package postlist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kvisli/glyptodon/browse"
	"github.com/kvisli/glyptodon/cache"
	"github.com/kvisli/glyptodon/posts"
	"github.com/kvisli/glyptodon/ui/common"
	"github.com/kvisli/glyptodon/util"
)

var (
	timeStyle = lipgloss.NewStyle().
			Align(lipgloss.Left).
			Foreground(lipgloss.Color(common.COLOR_PURPLE))

	authorStyle = lipgloss.NewStyle().
			Align(lipgloss.Left).
			Foreground(lipgloss.Color(common.COLOR_LIGHTBLUE)).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Align(lipgloss.Left)

	selectedStyle = lipgloss.NewStyle().
			Align(lipgloss.Left).
			Foreground(lipgloss.Color(common.COLOR_MAGENTA)).
			Bold(true)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)
)

const itemsPerPage = 10

type Model struct {
	Search    textinput.Model
	cursor    *browse.Cursor
	spinner   spinner.Model
	status    cache.Status
	err       error
	stale     bool
	searching bool
	width     int
	height    int
}

func NewModel(cursor *browse.Cursor, width int, height int) Model {
	search := textinput.New()
	search.Placeholder = "search posts"
	search.CharLimit = 100
	search.Width = 30

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(common.COLOR_MAGENTA))

	return Model{
		Search:  search,
		cursor:  cursor,
		spinner: sp,
		status:  cache.Idle,
		width:   width,
		height:  height,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case common.PostsLoadedMsg:
		m.cursor.SetList(msg.Posts)
		m.status = msg.Status
		m.err = msg.Err
		m.stale = msg.Stale
		m.searching = msg.Searching
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.Search.Focused() {
			switch msg.String() {
			case "enter", "esc":
				m.Search.Blur()
				if msg.String() == "esc" {
					m.Search.SetValue("")
					return m, searchChangedCmd("")
				}
				return m, nil
			default:
				before := m.Search.Value()
				m.Search, cmd = m.Search.Update(msg)
				if m.Search.Value() != before {
					return m, tea.Batch(cmd, searchChangedCmd(m.Search.Value()))
				}
				return m, cmd
			}
		}

		switch msg.String() {
		case "up", "k":
			if m.cursor.Index() > 0 {
				m.cursor.FocusIndex(m.cursor.Index() - 1)
			} else if m.cursor.Index() < 0 && m.cursor.Len() > 0 {
				m.cursor.FocusIndex(0)
			}
		case "down", "j":
			if m.cursor.Index() < 0 && m.cursor.Len() > 0 {
				m.cursor.FocusIndex(0)
			} else {
				m.cursor.Next()
			}
		case "/":
			cmd = m.Search.Focus()
			return m, cmd
		}
	}
	return m, nil
}

// searchChangedCmd reports the new term to the root model, which decides
// whether the term activates search mode.
func searchChangedCmd(term string) tea.Cmd {
	return func() tea.Msg {
		return common.SearchChangedMsg{Term: term}
	}
}

func (m Model) View() string {
	var s strings.Builder

	caption := fmt.Sprintf("all posts (%d)", m.cursor.Len())
	if m.searching {
		caption = fmt.Sprintf("search results (%d)", m.cursor.Len())
	}
	s.WriteString(common.CaptionStyle.Render(caption))
	s.WriteString("\n")
	s.WriteString("  " + m.Search.View())
	if term := strings.TrimSpace(m.Search.Value()); term != "" && !posts.SearchActive(term) {
		s.WriteString(common.HelpStyle.Render("(type at least 2 characters to search)"))
	}
	s.WriteString("\n\n")

	if m.status == cache.Loading && m.cursor.Len() == 0 {
		s.WriteString("  " + m.spinner.View() + " loading posts...")
		return s.String()
	}

	if m.err != nil && m.cursor.Len() == 0 {
		s.WriteString("  " + common.ErrorStyle.Render(m.err.Error()))
		return s.String()
	}

	if m.cursor.Len() == 0 {
		if m.searching {
			s.WriteString(emptyStyle.Render("No posts match your search."))
		} else {
			s.WriteString(emptyStyle.Render("No posts yet.\nWrite the first one!"))
		}
		return s.String()
	}

	if m.stale {
		s.WriteString("  " + common.StaleStyle.Render("refreshing..."))
		s.WriteString("\n\n")
	}

	list := m.cursor.Posts()
	selected := m.cursor.Index()

	// Keep the selection inside the visible window.
	start := 0
	if selected >= itemsPerPage {
		start = selected - itemsPerPage + 1
	}
	end := start + itemsPerPage
	if end > len(list) {
		end = len(list)
	}

	for i := start; i < end; i++ {
		post := list[i]

		marker := "  "
		title := titleStyle.Render(util.Truncate(post.Title, 80))
		if i == selected {
			marker = "> "
			title = selectedStyle.Render(util.Truncate(post.Title, 80))
		}

		timeStr := timeStyle.Render(util.RelativeTime(post.CreatedAt))
		authorStr := authorStyle.Render("@" + post.Author)

		s.WriteString(marker + title + "\n")
		s.WriteString("  " + authorStr + " " + timeStr)
		s.WriteString("\n\n")
	}

	return s.String()
}
