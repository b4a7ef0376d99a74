package postform

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kvisli/glyptodon/domain"
	"github.com/kvisli/glyptodon/posts"
	"github.com/kvisli/glyptodon/ui/common"
	"github.com/kvisli/glyptodon/util"
)

// Mode selects between creating a new post and editing an existing one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

type Model struct {
	Title    textinput.Model
	Body     textarea.Model
	mode     Mode
	editId   string
	author   string
	queries  *posts.Queries
	err      error
	saving   bool
	focusRow int // 0=title, 1=body
	width    int
}

func NewModel(queries *posts.Queries, width int) Model {
	title := textinput.New()
	title.Placeholder = "post title"
	title.CharLimit = domain.TitleMaxLen
	title.Width = 60
	title.Focus()

	body := textarea.New()
	body.Placeholder = "write your post"
	body.CharLimit = domain.BodyMaxLen
	body.ShowLineNumbers = false
	body.SetWidth(60)
	body.SetHeight(12)

	return Model{
		Title:   title,
		Body:    body,
		mode:    ModeCreate,
		queries: queries,
		width:   width,
	}
}

// StartCreate resets the form for a new post by the given author.
func (m *Model) StartCreate(author string) {
	m.mode = ModeCreate
	m.editId = ""
	m.author = author
	m.err = nil
	m.saving = false
	m.Title.SetValue("")
	m.Body.SetValue("")
	m.focusTitle()
}

// StartEdit prefills the form with the post under edit.
func (m *Model) StartEdit(post domain.Post) {
	m.mode = ModeEdit
	m.editId = post.Id
	m.author = post.Author
	m.err = nil
	m.saving = false
	m.Title.SetValue(post.Title)
	m.Body.SetValue(post.Body)
	m.focusTitle()
}

func (m *Model) focusTitle() {
	m.focusRow = 0
	m.Title.Focus()
	m.Body.Blur()
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case common.MutationDoneMsg:
		m.saving = false
		if msg.Err != nil {
			m.err = msg.Err
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyTab:
			if m.focusRow == 0 {
				m.focusRow = 1
				m.Title.Blur()
				cmds = append(cmds, m.Body.Focus())
			} else {
				m.focusTitle()
			}
			return m, tea.Batch(cmds...)
		case tea.KeyEnter:
			if m.focusRow == 0 {
				m.focusRow = 1
				m.Title.Blur()
				cmds = append(cmds, m.Body.Focus())
				return m, tea.Batch(cmds...)
			}
		case tea.KeyCtrlS:
			if m.saving {
				return m, nil
			}
			m.saving = true
			m.err = nil
			return m, m.saveCmd()
		}
	}

	switch m.focusRow {
	case 0:
		m.Title, cmd = m.Title.Update(msg)
	case 1:
		m.Body, cmd = m.Body.Update(msg)
	}
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// saveCmd runs the mutation off the UI loop. Validation failures come
// back the same way as server errors.
func (m Model) saveCmd() tea.Cmd {
	title := util.NormalizeInput(m.Title.Value())
	body := strings.TrimSpace(m.Body.Value())
	mode := m.mode
	editId := m.editId
	author := m.author
	queries := m.queries

	return func() tea.Msg {
		ctx := context.Background()

		if mode == ModeEdit {
			post, err := queries.Update(ctx, editId, domain.UpdatePost{Title: &title, Body: &body})
			return common.MutationDoneMsg{Action: "update", Post: post, Err: err}
		}

		post, err := queries.Create(ctx, domain.CreatePost{Title: title, Body: body, Author: author})
		return common.MutationDoneMsg{Action: "create", Post: post, Err: err}
	}
}

func (m Model) View() string {
	caption := "new post"
	if m.mode == ModeEdit {
		caption = "edit post"
	}

	styledTitle := lipgloss.NewStyle().PaddingLeft(5).Render(m.Title.View())
	styledBody := lipgloss.NewStyle().PaddingLeft(5).PaddingRight(5).Margin(1).Render(m.Body.View())

	var errLine string
	if m.err != nil {
		errLine = common.ErrorStyle.PaddingLeft(7).Render(m.err.Error()) + "\n\n"
	}
	var savingLine string
	if m.saving {
		savingLine = common.HelpStyle.PaddingLeft(7).Render("saving...") + "\n\n"
	}

	help := common.HelpStyle.PaddingLeft(7).Render(fmt.Sprintf(
		"characters left: %d\n\nsave post: ctrl+s • switch field: tab", m.Body.CharLimit-m.Body.Length()))

	return fmt.Sprintf("%s\n\n%s\n\n%s\n%s%s%s",
		common.CaptionStyle.PaddingLeft(7).Render(caption),
		styledTitle,
		styledBody,
		errLine,
		savingLine,
		help)
}
