package postform

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvisli/glyptodon/cache"
	"github.com/kvisli/glyptodon/domain"
	"github.com/kvisli/glyptodon/posts"
	"github.com/kvisli/glyptodon/ui/common"
)

type fakeRepo struct {
	created *domain.CreatePost
	updated *domain.UpdatePost
}

func (f *fakeRepo) ListPosts(ctx context.Context) ([]domain.Post, error) { return nil, nil }

func (f *fakeRepo) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	return nil, &domain.RepositoryError{Kind: domain.KindNotFound, Message: "post not found", StatusCode: 404}
}

func (f *fakeRepo) CreatePost(ctx context.Context, req domain.CreatePost) (*domain.Post, error) {
	f.created = &req
	return &domain.Post{Id: "new", Title: req.Title, Body: req.Body, Author: req.Author}, nil
}

func (f *fakeRepo) UpdatePost(ctx context.Context, id string, req domain.UpdatePost) (*domain.Post, error) {
	f.updated = &req
	p := domain.Post{Id: id, Author: "ana"}
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Body != nil {
		p.Body = *req.Body
	}
	return &p, nil
}

func (f *fakeRepo) DeletePost(ctx context.Context, id string) error { return nil }

func (f *fakeRepo) SearchPosts(ctx context.Context, term string) ([]domain.Post, error) {
	return nil, nil
}

func save(t *testing.T, m Model) common.MutationDoneMsg {
	t.Helper()
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	msg, ok := cmd().(common.MutationDoneMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	return msg
}

func TestSaveKeepsBodyVerbatim(t *testing.T) {
	repo := &fakeRepo{}
	queries := posts.NewQueries(cache.New(), repo)

	m := NewModel(queries, 80)
	m.StartCreate("ana")
	m.Title.SetValue("Release notes")
	body := "first line\nsecond line with Ana's & <3 of content"
	m.Body.SetValue(body)

	msg := save(t, m)

	require.NotNil(t, repo.created)
	assert.Equal(t, body, repo.created.Body, "body reaches the repository exactly as typed")
	assert.Equal(t, body, msg.Post.Body)
}

func TestEditCycleDoesNotAlterContent(t *testing.T) {
	repo := &fakeRepo{}
	queries := posts.NewQueries(cache.New(), repo)
	body := "line one\nline two with 'quotes' & ampersands in it"

	m := NewModel(queries, 80)
	m.StartEdit(domain.Post{Id: "p1", Title: "Notes", Body: body, Author: "ana"})
	msg := save(t, m)

	require.NotNil(t, repo.updated)
	require.NotNil(t, repo.updated.Body)
	assert.Equal(t, body, *repo.updated.Body, "an untouched edit resubmits the stored text unchanged")

	// A second cycle prefilled from the result stays identical too.
	m.StartEdit(*msg.Post)
	save(t, m)
	assert.Equal(t, body, *repo.updated.Body)
}
