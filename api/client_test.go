package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvisli/glyptodon/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second), srv
}

func TestListPostsAttachesBearerToken(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]domain.Post{{Id: "1", Title: "first"}})
	})
	client.TokenFunc = func() string { return "tok-123" }

	posts, err := client.ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestListPostsWithoutTokenOmitsHeader(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("[]"))
	})

	posts, err := client.ListPosts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Empty(t, gotAuth)
}

func TestSearchPostsEncodesTerm(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte("[]"))
	})

	_, err := client.SearchPosts(context.Background(), "hello world & more")
	require.NoError(t, err)
	assert.Equal(t, "hello world & more", gotQuery)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		kind   domain.ErrorKind
		msg    string
	}{
		{"server message surfaced", 400, `{"message":"title is required"}`, domain.KindValidation, "title is required"},
		{"not found", 404, `{"message":"post not found"}`, domain.KindNotFound, "post not found"},
		{"server error falls back", 500, `boom`, domain.KindUnknown, "could not load posts"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(c.status)
				w.Write([]byte(c.body))
			})

			_, err := client.ListPosts(context.Background())
			require.Error(t, err)

			var re *domain.RepositoryError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, c.kind, re.Kind)
			assert.Equal(t, c.msg, re.Message)
			assert.Equal(t, c.status, re.StatusCode)
		})
	}
}

func TestUnauthorizedTriggersTeardownOncePerRequest(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"token expired"}`))
	})

	teardowns := 0
	client.OnUnauthorized = func() { teardowns++ }

	_, err := client.ListPosts(context.Background())
	require.True(t, domain.IsUnauthorized(err))
	assert.Equal(t, 1, teardowns)

	// The server-supplied message is kept verbatim.
	var re *domain.RepositoryError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "token expired", re.Message)

	// A second failing call clears any leftover token again.
	_, _ = client.GetPost(context.Background(), "p1")
	assert.Equal(t, 2, teardowns)
}

func TestUnauthorizedWithoutBodyGetsGenericMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.ListPosts(context.Background())
	var re *domain.RepositoryError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, domain.KindUnauthorized, re.Kind)
	assert.Equal(t, "session expired, please log in again", re.Message)
}

func TestNetworkFailureIsNetworkKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := NewClient(srv.URL, time.Second)
	_, err := client.ListPosts(context.Background())

	var re *domain.RepositoryError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, domain.KindNetwork, re.Kind)
}

func TestUpdatePostSendsPartialBody(t *testing.T) {
	var gotBody map[string]any
	var gotMethod, gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(domain.Post{Id: "p1", Title: "updated title"})
	})

	title := "updated title"
	post, err := client.UpdatePost(context.Background(), "p1", domain.UpdatePost{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/posts/p1", gotPath)
	assert.Equal(t, map[string]any{"title": "updated title"}, gotBody)
	assert.Equal(t, "updated title", post.Title)
}

func TestDeletePostAcceptsEmptyBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, client.DeletePost(context.Background(), "p1"))
}
