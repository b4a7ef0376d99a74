package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kvisli/glyptodon/browse"
	"github.com/kvisli/glyptodon/cache"
	"github.com/kvisli/glyptodon/posts"
	"github.com/kvisli/glyptodon/session"
	"github.com/kvisli/glyptodon/ui/common"
	"github.com/kvisli/glyptodon/ui/deletepost"
	"github.com/kvisli/glyptodon/ui/header"
	"github.com/kvisli/glyptodon/ui/login"
	"github.com/kvisli/glyptodon/ui/postform"
	"github.com/kvisli/glyptodon/ui/postlist"
	"github.com/kvisli/glyptodon/ui/postview"
	"github.com/kvisli/glyptodon/ui/register"
)

const toastLifetime = 3 * time.Second

var (
	modelStyle = lipgloss.NewStyle().
			Align(lipgloss.Top, lipgloss.Top).
			BorderStyle(lipgloss.HiddenBorder()).MarginLeft(1)
	focusedModelStyle = lipgloss.NewStyle().
				Align(lipgloss.Top, lipgloss.Top).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color(common.COLOR_LIGHTBLUE)).MarginLeft(1)
)

type MainModel struct {
	width  int
	height int

	state     common.SessionState
	prevState common.SessionState

	store         *session.Store
	sessionCh     <-chan session.State
	sessionCancel func()

	queries      *posts.Queries
	cacheUpdates <-chan cache.Key
	cursor       *browse.Cursor
	searchTerm   string
	toast        string

	headerModel   header.Model
	listModel     postlist.Model
	viewModel     postview.Model
	formModel     postform.Model
	deleteModel   deletepost.Model
	loginModel    login.Model
	registerModel register.Model
}

func NewModel(store *session.Store, queries *posts.Queries, updates <-chan cache.Key, width int, height int) MainModel {

	width = common.DefaultWindowWidth(width)
	height = common.DefaultWindowHeight(height)

	cursor := browse.NewCursor()
	sessionCh, sessionCancel := store.Subscribe()

	identity, authenticated := store.Identity()

	state := common.LoginView
	if authenticated {
		state = common.ListPostsView
	}

	m := MainModel{
		width:         width,
		height:        height,
		state:         state,
		prevState:     common.ListPostsView,
		store:         store,
		sessionCh:     sessionCh,
		sessionCancel: sessionCancel,
		queries:       queries,
		cacheUpdates:  updates,
		cursor:        cursor,
	}
	m.headerModel = header.Model{Width: width, Identity: identity, Authenticated: authenticated}
	m.listModel = postlist.NewModel(cursor, width, height)
	m.viewModel = postview.NewModel(width)
	m.formModel = postform.NewModel(queries, width)
	m.deleteModel = deletepost.NewModel(queries)
	m.loginModel = login.InitialModel(store)
	m.registerModel = register.InitialModel(store)
	return m
}

func (m MainModel) Init() tea.Cmd {
	return tea.Batch(
		m.waitForSessionChange(),
		m.waitForCacheUpdate(),
		m.readPostsCmd(),
		m.listModel.Init(),
		m.viewModel.Init(),
		m.loginModel.Init(),
	)
}

// waitForCacheUpdate blocks on the cache's notification channel and
// re-arms itself after every message.
func (m MainModel) waitForCacheUpdate() tea.Cmd {
	ch := m.cacheUpdates
	return func() tea.Msg {
		key, ok := <-ch
		if !ok {
			return nil
		}
		return common.CacheUpdateMsg{Key: key}
	}
}

func (m MainModel) waitForSessionChange() tea.Cmd {
	ch := m.sessionCh
	return func() tea.Msg {
		state, ok := <-ch
		if !ok {
			return nil
		}
		return common.SessionChangedMsg{State: state}
	}
}

// readPostsCmd snapshots whichever collection backs the list view. The
// read itself triggers a fetch when the data is missing or stale.
func (m MainModel) readPostsCmd() tea.Cmd {
	queries := m.queries
	term := m.searchTerm
	return func() tea.Msg {
		res := queries.Active(term)
		return common.PostsLoadedMsg{
			Posts:     res.Posts,
			Status:    res.Status,
			Err:       res.Err,
			Stale:     res.Stale,
			Searching: posts.SearchActive(term),
		}
	}
}

func (m MainModel) readDetailCmd() tea.Cmd {
	focused, ok := m.cursor.Focused()
	if !ok {
		return func() tea.Msg {
			return common.PostLoadedMsg{}
		}
	}
	queries := m.queries
	id := focused.Id
	return func() tea.Msg {
		res := queries.Detail(id)
		return common.PostLoadedMsg{Post: res.Post, Status: res.Status, Err: res.Err, Stale: res.Stale}
	}
}

func (m *MainModel) showToast(text string) tea.Cmd {
	m.toast = text
	return tea.Tick(toastLifetime, func(time.Time) tea.Msg {
		return common.ClearToastMsg{}
	})
}

// focusedIsOwn reports whether the focused post belongs to the signed-in
// user. Edit and delete are only offered to the author.
func (m MainModel) focusedIsOwn() bool {
	identity, authenticated := m.store.Identity()
	if !authenticated {
		return false
	}
	focused, ok := m.cursor.Focused()
	return ok && focused.Author == identity.Username
}

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.headerModel.Width = msg.Width
		return m, nil

	case common.SessionChangedMsg:
		cmds = append(cmds, m.waitForSessionChange())

		if msg.State.Authenticated {
			m.state = common.ListPostsView
			cmds = append(cmds, m.showToast(fmt.Sprintf("signed in as @%s", msg.State.Identity.Username)))
		} else {
			// A dropped session while writing returns to the list.
			switch m.state {
			case common.CreatePostView, common.EditPostView, common.DeleteConfirmView:
				m.state = common.ListPostsView
			}
			cmds = append(cmds, m.showToast("signed out"))
		}

	case common.CacheUpdateMsg:
		cmds = append(cmds, m.waitForCacheUpdate())
		cmds = append(cmds, m.readPostsCmd())
		if m.state == common.PostDetailView {
			cmds = append(cmds, m.readDetailCmd())
		}

	case common.SearchChangedMsg:
		m.searchTerm = msg.Term
		cmds = append(cmds, m.readPostsCmd())

	case common.MutationDoneMsg:
		if msg.Err == nil {
			switch msg.Action {
			case "create":
				m.state = common.ListPostsView
				if msg.Post != nil {
					m.cursor.Focus(msg.Post.Id)
				}
				cmds = append(cmds, m.showToast("post published"))
			case "update":
				m.state = m.prevState
				cmds = append(cmds, m.showToast("post updated"))
				if m.state == common.PostDetailView {
					cmds = append(cmds, m.readDetailCmd())
				}
			case "delete":
				m.state = common.ListPostsView
				m.cursor.Clear()
				cmds = append(cmds, m.showToast("post deleted"))
			}
			cmds = append(cmds, m.readPostsCmd())
		}

	case common.ClearToastMsg:
		m.toast = ""
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.sessionCancel()
			return m, tea.Quit
		}

		if handled, model, keyCmd := m.handleStateKeys(msg); handled {
			return model, keyCmd
		}
	}

	// Route non-keyboard messages to ALL sub-models so data and
	// mutation results reach their destination.
	if _, isKeyMsg := msg.(tea.KeyMsg); !isKeyMsg {
		m.headerModel, _ = m.headerModel.Update(msg)
		m.listModel, cmd = m.listModel.Update(msg)
		cmds = append(cmds, cmd)
		m.viewModel, cmd = m.viewModel.Update(msg)
		cmds = append(cmds, cmd)
		m.formModel, cmd = m.formModel.Update(msg)
		cmds = append(cmds, cmd)
		m.deleteModel, cmd = m.deleteModel.Update(msg)
		cmds = append(cmds, cmd)
		m.loginModel, cmd = m.loginModel.Update(msg)
		cmds = append(cmds, cmd)
		m.registerModel, cmd = m.registerModel.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Route keyboard input ONLY to the active model.
	if _, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case common.LoginView:
			m.loginModel, cmd = m.loginModel.Update(msg)
		case common.RegisterView:
			m.registerModel, cmd = m.registerModel.Update(msg)
		case common.ListPostsView:
			m.listModel, cmd = m.listModel.Update(msg)
		case common.PostDetailView:
			m.viewModel, cmd = m.viewModel.Update(msg)
		case common.CreatePostView, common.EditPostView:
			m.formModel, cmd = m.formModel.Update(msg)
		case common.DeleteConfirmView:
			m.deleteModel, cmd = m.deleteModel.Update(msg)
		}
		cmds = append(cmds, cmd)
	}

	// A focused post that vanished from the active list drops the
	// detail view back to the list.
	if m.state == common.PostDetailView {
		if _, ok := m.cursor.Focused(); !ok {
			m.state = common.ListPostsView
		}
	}

	return m, tea.Batch(cmds...)
}

// handleStateKeys covers the view transitions. Returns handled=false for
// keys the focused model should consume instead.
func (m MainModel) handleStateKeys(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	key := msg.String()

	switch m.state {
	case common.LoginView:
		switch key {
		case "ctrl+r":
			m.registerModel.Reset()
			m.state = common.RegisterView
			return true, m, m.registerModel.Init()
		case "esc":
			m.state = common.ListPostsView
			return true, m, m.readPostsCmd()
		}

	case common.RegisterView:
		if key == "esc" {
			m.loginModel.Reset()
			m.state = common.LoginView
			return true, m, m.loginModel.Init()
		}

	case common.ListPostsView:
		if m.listModel.Search.Focused() {
			return false, m, nil
		}
		switch key {
		case "enter":
			if _, ok := m.cursor.Focused(); ok {
				m.state = common.PostDetailView
				return true, m, m.readDetailCmd()
			}
			return true, m, nil
		case "n":
			return m.startCreate()
		case "e":
			return m.startEdit()
		case "d":
			return m.startDelete()
		case "ctrl+l":
			if m.store.IsAuthenticated() {
				store := m.store
				return true, m, func() tea.Msg {
					store.Logout()
					return nil
				}
			}
			m.loginModel.Reset()
			m.state = common.LoginView
			return true, m, m.loginModel.Init()
		}

	case common.PostDetailView:
		switch key {
		case "esc":
			m.state = common.ListPostsView
			return true, m, nil
		case "left", "h":
			if m.cursor.Prev() {
				return true, m, m.readDetailCmd()
			}
			return true, m, nil
		case "right", "l":
			if m.cursor.Next() {
				return true, m, m.readDetailCmd()
			}
			return true, m, nil
		case "n":
			return m.startCreate()
		case "e":
			return m.startEdit()
		case "d":
			return m.startDelete()
		}

	case common.CreatePostView, common.EditPostView:
		if key == "esc" {
			m.state = m.prevState
			return true, m, nil
		}

	case common.DeleteConfirmView:
		if key == "esc" || key == "n" {
			m.state = m.prevState
			return true, m, nil
		}
	}

	return false, m, nil
}

func (m MainModel) startEdit() (bool, tea.Model, tea.Cmd) {
	focused, ok := m.cursor.Focused()
	if !ok {
		return true, m, nil
	}
	if !m.focusedIsOwn() {
		return true, m, m.showToast("only your own posts can be edited")
	}
	if detail := m.queries.Detail(focused.Id); detail.Post != nil {
		focused = *detail.Post
	}
	m.formModel.StartEdit(focused)
	m.prevState = m.state
	m.state = common.EditPostView
	return true, m, m.formModel.Init()
}

func (m MainModel) startDelete() (bool, tea.Model, tea.Cmd) {
	focused, ok := m.cursor.Focused()
	if !ok {
		return true, m, nil
	}
	if !m.focusedIsOwn() {
		return true, m, m.showToast("only your own posts can be deleted")
	}
	m.deleteModel.Start(focused)
	m.prevState = m.state
	m.state = common.DeleteConfirmView
	return true, m, nil
}

func (m MainModel) startCreate() (bool, tea.Model, tea.Cmd) {
	identity, authenticated := m.store.Identity()
	if !authenticated {
		m.loginModel.Reset()
		m.state = common.LoginView
		return true, m, tea.Batch(m.showToast("sign in to write posts"), m.loginModel.Init())
	}
	m.formModel.StartCreate(identity.Username)
	m.prevState = m.state
	m.state = common.CreatePostView
	return true, m, m.formModel.Init()
}

func (m MainModel) View() string {

	if m.state == common.LoginView {
		return m.loginModel.ViewWithWidth(m.width, m.height)
	}
	if m.state == common.RegisterView {
		return m.registerModel.ViewWithWidth(m.width, m.height)
	}

	var s string

	availableHeight := m.height - 10
	leftPanelWidth := m.width / 3
	rightPanelWidth := m.width - leftPanelWidth - 6

	panel := func(content string, width int) string {
		return lipgloss.NewStyle().
			MaxHeight(availableHeight).
			Height(availableHeight).
			Width(width).
			MaxWidth(width).
			Margin(1).
			Render(content)
	}

	navContainer := lipgloss.NewStyle().Render(m.headerModel.View())
	s += navContainer + "\n"

	listPanel := panel(m.listModel.View(), leftPanelWidth)

	var rightPanel string
	switch m.state {
	case common.PostDetailView:
		rightPanel = panel(m.viewModel.View(), rightPanelWidth)
	case common.CreatePostView, common.EditPostView:
		rightPanel = panel(m.formModel.View(), rightPanelWidth)
	case common.DeleteConfirmView:
		rightPanel = panel(m.deleteModel.View(), rightPanelWidth)
	default:
		rightPanel = panel(m.viewModel.View(), rightPanelWidth)
	}

	if m.state == common.ListPostsView {
		s += lipgloss.JoinHorizontal(lipgloss.Top,
			focusedModelStyle.Render(listPanel),
			modelStyle.Render(rightPanel))
	} else {
		s += lipgloss.JoinHorizontal(lipgloss.Top,
			modelStyle.Render(listPanel),
			focusedModelStyle.Render(rightPanel))
	}

	var viewCommands string
	switch m.state {
	case common.ListPostsView:
		viewCommands = "↑/↓: select • enter: read • /: search • n: new • e: edit • d: delete • ctrl+l: sign in/out"
	case common.PostDetailView:
		viewCommands = "←/→: prev/next post • e: edit • d: delete • esc: back"
	case common.CreatePostView, common.EditPostView:
		viewCommands = "ctrl+s: save • tab: switch field • esc: cancel"
	case common.DeleteConfirmView:
		viewCommands = "y/enter: delete • esc: cancel"
	default:
		viewCommands = " "
	}

	helpLine := common.HelpStyle.Render(fmt.Sprintf(
		"focused > %s\t\tkeys > %s • ctrl-c: exit",
		m.currentFocusedModel(), viewCommands))

	if m.toast != "" {
		s += common.ToastStyle.Render(m.toast) + "\n"
	}
	s += helpLine

	return lipgloss.NewStyle().Render(s)
}

func (m MainModel) currentFocusedModel() string {
	switch m.state {
	case common.ListPostsView:
		return "posts"
	case common.PostDetailView:
		return "post"
	case common.CreatePostView:
		return "new post"
	case common.EditPostView:
		return "edit post"
	case common.DeleteConfirmView:
		return "delete post"
	case common.RegisterView:
		return "register"
	default:
		return "sign in"
	}
}
