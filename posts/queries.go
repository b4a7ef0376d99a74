// Package posts binds the query cache to the repository client: one place
// that knows every query key, its freshness window, and its retry policy,
// plus the write-through rules mutations apply.
package posts

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kvisli/glyptodon/cache"
	"github.com/kvisli/glyptodon/domain"
)

// SearchMinLen is the minimum trimmed query length for search mode; below
// it the full list stays displayed and no search request is issued.
const SearchMinLen = 2

const (
	listStaleTime   = 5 * time.Minute
	listRetain      = 10 * time.Minute
	listRetries     = 2
	detailStaleTime = 5 * time.Minute
	detailRetain    = 10 * time.Minute
	detailRetries   = 2
	searchStaleTime = 2 * time.Minute
	searchRetain    = 5 * time.Minute
	searchRetries   = 1
)

func ListKey() cache.Key {
	return cache.NewKey("posts", "list")
}

func DetailKey(id string) cache.Key {
	return cache.NewKey("posts", "detail", id)
}

func SearchKey(term string) cache.Key {
	return cache.NewKey("posts", "search", term)
}

func SearchPrefix() cache.Key {
	return cache.NewKey("posts", "search")
}

// Repository is the slice of the API client the queries need.
type Repository interface {
	ListPosts(ctx context.Context) ([]domain.Post, error)
	GetPost(ctx context.Context, id string) (*domain.Post, error)
	CreatePost(ctx context.Context, req domain.CreatePost) (*domain.Post, error)
	UpdatePost(ctx context.Context, id string, req domain.UpdatePost) (*domain.Post, error)
	DeletePost(ctx context.Context, id string) error
	SearchPosts(ctx context.Context, term string) ([]domain.Post, error)
}

// PostsResult is a typed snapshot of a list-shaped query.
type PostsResult struct {
	Posts  []domain.Post
	Status cache.Status
	Err    error
	Stale  bool
}

// PostResult is a typed snapshot of a detail query.
type PostResult struct {
	Post   *domain.Post
	Status cache.Status
	Err    error
	Stale  bool
}

type Queries struct {
	cache *cache.Cache
	repo  Repository
}

func NewQueries(c *cache.Cache, repo Repository) *Queries {
	return &Queries{cache: c, repo: repo}
}

// List reads the all-posts query through the cache.
func (q *Queries) List() PostsResult {
	res := q.cache.Read(ListKey(), func(ctx context.Context) (any, error) {
		return q.repo.ListPosts(ctx)
	}, cache.Options{
		StaleTime: listStaleTime,
		Retain:    listRetain,
		Enabled:   true,
		Retries:   listRetries,
		Retryable: domain.IsRetryable,
	})
	return asPostsResult(res)
}

// Detail reads a single post through the cache. A blank id is a disabled
// query and stays idle.
func (q *Queries) Detail(id string) PostResult {
	res := q.cache.Read(DetailKey(id), func(ctx context.Context) (any, error) {
		return q.repo.GetPost(ctx, id)
	}, cache.Options{
		StaleTime: detailStaleTime,
		Retain:    detailRetain,
		Enabled:   id != "",
		Retries:   detailRetries,
		Retryable: domain.IsRetryable,
	})

	out := PostResult{Status: res.Status, Err: res.Err, Stale: res.Stale}
	if p, ok := res.Data.(*domain.Post); ok {
		out.Post = p
	}
	return out
}

// Search reads the search query for term. Below the activation threshold
// the query is disabled and no request is issued.
func (q *Queries) Search(term string) PostsResult {
	// The key and the activation check use the trimmed term, but the
	// request carries the term exactly as typed.
	trimmed := strings.TrimSpace(term)
	res := q.cache.Read(SearchKey(trimmed), func(ctx context.Context) (any, error) {
		return q.repo.SearchPosts(ctx, term)
	}, cache.Options{
		StaleTime: searchStaleTime,
		Retain:    searchRetain,
		Enabled:   SearchActive(trimmed),
		Retries:   searchRetries,
		Retryable: domain.IsRetryable,
	})
	return asPostsResult(res)
}

// SearchActive reports whether term puts the browser in search mode.
func SearchActive(term string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(term)) >= SearchMinLen
}

// Active returns whichever collection the browser should display: search
// results when the term is at or past the threshold, the full list
// otherwise. The list query stays warm in either mode.
func (q *Queries) Active(term string) PostsResult {
	list := q.List()
	if !SearchActive(term) {
		return list
	}
	return q.Search(term)
}

func asPostsResult(res cache.Result) PostsResult {
	out := PostsResult{Status: res.Status, Err: res.Err, Stale: res.Stale}
	if p, ok := res.Data.([]domain.Post); ok {
		out.Posts = p
	}
	return out
}
