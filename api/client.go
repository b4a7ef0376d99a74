// Package api wraps the remote posts REST API. Every operation maps 1:1 to
// one HTTP call and fails with *domain.RepositoryError on anything non-2xx.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kvisli/glyptodon/domain"
)

type Client struct {
	baseURL string
	http    *http.Client

	// TokenFunc supplies the current bearer token, or "" when there is no
	// session. Set at wiring time by main.
	TokenFunc func() string

	// OnUnauthorized is invoked once per request that fails with 401,
	// before the error is surfaced. Set at wiring time by main.
	OnUnauthorized func()
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// errorBody is the wire shape of non-2xx responses.
type errorBody struct {
	Message    string `json:"message"`
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
}

func (c *Client) ListPosts(ctx context.Context) ([]domain.Post, error) {
	var posts []domain.Post
	if err := c.do(ctx, http.MethodGet, "/posts", nil, &posts, "could not load posts"); err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	return posts, nil
}

func (c *Client) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	if err := c.do(ctx, http.MethodGet, "/posts/"+url.PathEscape(id), nil, &post, "could not load the post"); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) CreatePost(ctx context.Context, req domain.CreatePost) (*domain.Post, error) {
	var post domain.Post
	if err := c.do(ctx, http.MethodPost, "/posts", req, &post, "could not create the post"); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) UpdatePost(ctx context.Context, id string, req domain.UpdatePost) (*domain.Post, error) {
	var post domain.Post
	if err := c.do(ctx, http.MethodPut, "/posts/"+url.PathEscape(id), req, &post, "could not update the post"); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+url.PathEscape(id), nil, nil, "could not delete the post")
}

func (c *Client) SearchPosts(ctx context.Context, term string) ([]domain.Post, error) {
	q := url.Values{}
	q.Set("q", term)

	var posts []domain.Post
	if err := c.do(ctx, http.MethodGet, "/posts/search?"+q.Encode(), nil, &posts, "could not search posts"); err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	return posts, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", creds, &resp, "could not log in"); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Register creates an account and returns the server-assigned identity.
func (c *Client) Register(ctx context.Context, creds domain.Credentials) (*domain.Identity, error) {
	var resp struct {
		Id       string `json:"id"`
		Username string `json:"username"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/register", creds, &resp, "could not register"); err != nil {
		return nil, err
	}
	return &domain.Identity{Id: resp.Id, Username: resp.Username}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any, fallback string) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &domain.RepositoryError{Kind: domain.KindUnknown, Message: fallback, Err: err}
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &domain.RepositoryError{Kind: domain.KindUnknown, Message: fallback, Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "glyptodon/"+method)
	if c.TokenFunc != nil {
		if token := c.TokenFunc(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.RepositoryError{Kind: domain.KindNetwork, Message: "could not reach the server", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &domain.RepositoryError{Kind: domain.KindUnknown, Message: fallback, Err: fmt.Errorf("decoding response: %w", err)}
		}
		return nil
	}

	return c.mapError(resp, fallback)
}

// mapError turns a non-2xx response into a RepositoryError, surfacing the
// server's message when it sent one. A 401 additionally tears the session
// down, once per failing request.
func (c *Client) mapError(resp *http.Response, fallback string) error {
	var eb errorBody
	message := fallback
	if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil && eb.Message != "" {
		message = eb.Message
	}

	kind := domain.KindUnknown
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		kind = domain.KindUnauthorized
		if eb.Message == "" {
			message = "session expired, please log in again"
		}
		if c.OnUnauthorized != nil {
			c.OnUnauthorized()
		}
	case resp.StatusCode == http.StatusNotFound:
		kind = domain.KindNotFound
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		kind = domain.KindValidation
	}

	return &domain.RepositoryError{Kind: kind, Message: message, StatusCode: resp.StatusCode}
}
