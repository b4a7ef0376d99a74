package posts

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/kvisli/glyptodon/domain"
)

// Create validates, creates the post on the server, and invalidates the
// list-shaped queries. There is no prior detail entry to seed.
func (q *Queries) Create(ctx context.Context, req domain.CreatePost) (*domain.Post, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var created *domain.Post
	err := q.withMutationRetry(ctx, func(ctx context.Context) error {
		var err error
		created, err = q.repo.CreatePost(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	q.invalidateLists()
	return created, nil
}

// Update validates, updates the post on the server, writes the returned
// object straight into the detail cache (no round-trip), and invalidates
// the list-shaped queries.
func (q *Queries) Update(ctx context.Context, id string, req domain.UpdatePost) (*domain.Post, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.Post
	err := q.withMutationRetry(ctx, func(ctx context.Context) error {
		var err error
		updated, err = q.repo.UpdatePost(ctx, id, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	q.cache.Write(DetailKey(updated.Id), updated)
	q.invalidateLists()
	return updated, nil
}

// Delete removes the post on the server, evicts its detail entry (no value
// may remain, even stale) and invalidates the list-shaped queries.
func (q *Queries) Delete(ctx context.Context, id string) error {
	err := q.withMutationRetry(ctx, func(ctx context.Context) error {
		return q.repo.DeletePost(ctx, id)
	})
	if err != nil {
		return err
	}

	q.cache.Evict(DetailKey(id))
	q.invalidateLists()
	return nil
}

func (q *Queries) invalidateLists() {
	q.cache.Invalidate(ListKey())
	q.cache.Invalidate(SearchPrefix())
}

// Mutations bypass the cache and get a single extra attempt, and only for
// transport failures; a 4xx is deterministic and is surfaced immediately.
func (q *Queries) withMutationRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(1, retry.NewConstant(time.Second))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			if domain.IsRetryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
}
