package common

import (
	"github.com/kvisli/glyptodon/cache"
	"github.com/kvisli/glyptodon/domain"
	"github.com/kvisli/glyptodon/session"
)

type SessionState uint

const (
	LoginView SessionState = iota
	RegisterView
	ListPostsView
	PostDetailView
	CreatePostView
	EditPostView
	DeleteConfirmView
)

// PostsLoadedMsg carries the collection currently backing the list view,
// either the full list or active search results.
type PostsLoadedMsg struct {
	Posts     []domain.Post
	Status    cache.Status
	Err       error
	Stale     bool
	Searching bool
}

// PostLoadedMsg carries the detail snapshot for the focused post.
type PostLoadedMsg struct {
	Post   *domain.Post
	Status cache.Status
	Err    error
	Stale  bool
}

// SessionChangedMsg is delivered whenever the auth state flips.
type SessionChangedMsg struct {
	State session.State
}

// CacheUpdateMsg signals that a query finished or changed in the
// background and snapshots should be re-read.
type CacheUpdateMsg struct {
	Key cache.Key
}

// SearchChangedMsg is emitted by the list view when the search term
// changes.
type SearchChangedMsg struct {
	Term string
}

// MutationDoneMsg reports the outcome of a create, update or delete.
type MutationDoneMsg struct {
	Action string // "create", "update", "delete"
	Post   *domain.Post
	Err    error
}

// AuthResultMsg reports the outcome of a login or registration attempt.
type AuthResultMsg struct {
	Err error
}

// ClearToastMsg removes the transient status line.
type ClearToastMsg struct{}
