package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kvisli/glyptodon/db"
	"github.com/kvisli/glyptodon/domain"
	"github.com/kvisli/glyptodon/util"
)

func setupTestServer(t *testing.T) (*Server, *gin.Engine) {
	gin.SetMode(gin.TestMode)

	store, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	conf := &util.AppConfig{}
	conf.Conf.HttpPort = 9999
	conf.Conf.JwtSecret = "test-secret"

	srv := NewServer(conf, store)
	return srv, srv.Router()
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// registerAndLogin creates an account and returns a valid bearer token.
func registerAndLogin(t *testing.T, router *gin.Engine, username string) string {
	creds := domain.Credentials{Username: username, Password: "password123"}

	w := doJSON(t, router, http.MethodPost, "/auth/register", "", creds)
	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to register %s: status %d, body %s", username, w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/auth/login", "", creds)
	if w.Code != http.StatusOK {
		t.Fatalf("Failed to log in %s: status %d, body %s", username, w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode login response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("Expected a token in the login response")
	}
	return resp.Token
}

func createPost(t *testing.T, router *gin.Engine, token, title, body string) domain.Post {
	req := domain.CreatePost{Title: title, Body: body, Author: "ignored"}
	w := doJSON(t, router, http.MethodPost, "/posts", token, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to create post: status %d, body %s", w.Code, w.Body.String())
	}

	var post domain.Post
	if err := json.Unmarshal(w.Body.Bytes(), &post); err != nil {
		t.Fatalf("Failed to decode post: %v", err)
	}
	return post
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	_, router := setupTestServer(t)

	token := registerAndLogin(t, router, "testuser")
	if token == "" {
		t.Fatal("Expected a non-empty token")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	_, router := setupTestServer(t)

	registerAndLogin(t, router, "testuser")
	w := doJSON(t, router, http.MethodPost, "/auth/register",
		"", domain.Credentials{Username: "testuser", Password: "password123"})
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for duplicate username, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "message") {
		t.Errorf("Expected a message field in the error body, got %s", w.Body.String())
	}
}

func TestRegisterRejectsShortCredentials(t *testing.T) {
	_, router := setupTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/auth/register",
		"", domain.Credentials{Username: "ab", Password: "password123"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a short username, got %d", w.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	_, router := setupTestServer(t)

	registerAndLogin(t, router, "testuser")
	w := doJSON(t, router, http.MethodPost, "/auth/login",
		"", domain.Credentials{Username: "testuser", Password: "wrongpassword"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for a wrong password, got %d", w.Code)
	}
}

func TestCreateRequiresAuth(t *testing.T) {
	_, router := setupTestServer(t)

	req := domain.CreatePost{Title: "A valid post title", Body: "A body that is long enough to pass validation.", Author: "someone"}
	w := doJSON(t, router, http.MethodPost, "/posts", "", req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without a token, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/posts", "not-a-token", req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with a garbage token, got %d", w.Code)
	}
}

func TestCreateAndListPosts(t *testing.T) {
	_, router := setupTestServer(t)

	token := registerAndLogin(t, router, "author")
	post := createPost(t, router, token, "A valid post title", "A body that is long enough to pass validation.")

	if post.Author != "author" {
		t.Errorf("Expected author to come from the token, got %s", post.Author)
	}

	w := doJSON(t, router, http.MethodGet, "/posts", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 listing posts, got %d", w.Code)
	}

	var posts []domain.Post
	if err := json.Unmarshal(w.Body.Bytes(), &posts); err != nil {
		t.Fatalf("Failed to decode posts: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("Expected 1 post, got %d", len(posts))
	}
	if posts[0].Id != post.Id {
		t.Errorf("Expected listed post id %s, got %s", post.Id, posts[0].Id)
	}
}

func TestListEmptyIsJSONArray(t *testing.T) {
	_, router := setupTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/posts", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("Expected an empty JSON array, got %s", w.Body.String())
	}
}

func TestCreateRejectsInvalidBody(t *testing.T) {
	_, router := setupTestServer(t)

	token := registerAndLogin(t, router, "author")
	req := domain.CreatePost{Title: "nope", Body: "too short", Author: "author"}
	w := doJSON(t, router, http.MethodPost, "/posts", token, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an invalid post, got %d", w.Code)
	}
}

func TestGetPostNotFound(t *testing.T) {
	_, router := setupTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/posts/1b4e28ba-2fa1-11d2-883f-0016d3cca427", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for a missing post, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/posts/not-a-uuid", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for a malformed id, got %d", w.Code)
	}
}

func TestUpdatePostPartialBody(t *testing.T) {
	_, router := setupTestServer(t)

	token := registerAndLogin(t, router, "author")
	post := createPost(t, router, token, "A valid post title", "A body that is long enough to pass validation.")

	newTitle := "An updated post title"
	w := doJSON(t, router, http.MethodPut, "/posts/"+post.Id, token, domain.UpdatePost{Title: &newTitle})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 updating the post, got %d: %s", w.Code, w.Body.String())
	}

	var updated domain.Post
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("Failed to decode updated post: %v", err)
	}
	if updated.Title != newTitle {
		t.Errorf("Expected the new title, got %s", updated.Title)
	}
	if updated.Body != post.Body {
		t.Errorf("Expected the body to be untouched, got %s", updated.Body)
	}
}

func TestUpdateForbiddenForOtherAuthor(t *testing.T) {
	_, router := setupTestServer(t)

	token := registerAndLogin(t, router, "author")
	intruder := registerAndLogin(t, router, "intruder")
	post := createPost(t, router, token, "A valid post title", "A body that is long enough to pass validation.")

	newTitle := "A hijacked post title"
	w := doJSON(t, router, http.MethodPut, "/posts/"+post.Id, intruder, domain.UpdatePost{Title: &newTitle})
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 updating someone else's post, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodDelete, "/posts/"+post.Id, intruder, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 deleting someone else's post, got %d", w.Code)
	}
}

func TestDeletePost(t *testing.T) {
	_, router := setupTestServer(t)

	token := registerAndLogin(t, router, "author")
	post := createPost(t, router, token, "A valid post title", "A body that is long enough to pass validation.")

	w := doJSON(t, router, http.MethodDelete, "/posts/"+post.Id, token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected 204 deleting the post, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/posts/"+post.Id, "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", w.Code)
	}
}

func TestSearchPosts(t *testing.T) {
	_, router := setupTestServer(t)

	token := registerAndLogin(t, router, "author")
	createPost(t, router, token, "Gophers in production", "Nothing relevant in this body at all, really.")
	createPost(t, router, token, "Unrelated title here", "A body that mentions gophers explicitly, twice.")
	createPost(t, router, token, "Completely different", "Nothing to see in this one either, honestly.")

	w := doJSON(t, router, http.MethodGet, "/posts/search?q=gophers", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 searching posts, got %d", w.Code)
	}

	var posts []domain.Post
	if err := json.Unmarshal(w.Body.Bytes(), &posts); err != nil {
		t.Fatalf("Failed to decode search results: %v", err)
	}
	if len(posts) != 2 {
		t.Errorf("Expected 2 matches, got %d", len(posts))
	}

	w = doJSON(t, router, http.MethodGet, "/posts/search", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for an empty search, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("Expected an empty JSON array for an empty term, got %s", w.Body.String())
	}
}

func TestRSSFeed(t *testing.T) {
	_, router := setupTestServer(t)

	token := registerAndLogin(t, router, "author")
	post := createPost(t, router, token, "A valid post title", "A body that is long enough to pass validation.")

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for the feed, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<rss") {
		t.Error("Expected an RSS document")
	}
	if !strings.Contains(w.Body.String(), "A valid post title") {
		t.Error("Expected the post title in the feed")
	}

	req = httptest.NewRequest(http.MethodGet, "/feed/"+post.Id, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for the single-item feed, got %d", w.Code)
	}
}
