package web

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kvisli/glyptodon/domain"
)

func (s *Server) HandleListPosts(c *gin.Context) {
	err, posts := s.store.ReadAllPosts()
	if err != nil {
		log.Println("Reading posts failed: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not load posts"})
		return
	}
	c.JSON(http.StatusOK, postsOrEmpty(posts))
}

func (s *Server) HandleSearchPosts(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		c.JSON(http.StatusOK, []domain.Post{})
		return
	}

	err, posts := s.store.SearchPosts(term)
	if err != nil {
		log.Println("Searching posts failed: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not search posts"})
		return
	}
	c.JSON(http.StatusOK, postsOrEmpty(posts))
}

func (s *Server) HandleGetPost(c *gin.Context) {
	id, ok := parsePostId(c)
	if !ok {
		return
	}

	err, post := s.store.ReadPostById(id)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"message": "post not found"})
		return
	}
	if err != nil {
		log.Println("Reading post failed: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not load the post"})
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) HandleCreatePost(c *gin.Context) {
	var req domain.CreatePost
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	userId := c.MustGet(ctxUserId).(uuid.UUID)
	err, post := s.store.CreatePost(userId, req.Title, req.Body)
	if err != nil {
		log.Println("Creating post failed: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not create the post"})
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (s *Server) HandleUpdatePost(c *gin.Context) {
	id, ok := parsePostId(c)
	if !ok {
		return
	}

	var req domain.UpdatePost
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	err, current := s.store.ReadPostById(id)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"message": "post not found"})
		return
	}
	if err != nil {
		log.Println("Reading post failed: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not update the post"})
		return
	}

	if !s.callerOwnsPost(c, id) {
		return
	}

	// Nil fields keep their stored value.
	title := current.Title
	body := current.Body
	if req.Title != nil {
		title = *req.Title
	}
	if req.Body != nil {
		body = *req.Body
	}

	err, updated := s.store.UpdatePost(id, title, body)
	if err != nil {
		log.Println("Updating post failed: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not update the post"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) HandleDeletePost(c *gin.Context) {
	id, ok := parsePostId(c)
	if !ok {
		return
	}

	err, _ := s.store.ReadPostById(id)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"message": "post not found"})
		return
	}
	if err != nil {
		log.Println("Reading post failed: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not delete the post"})
		return
	}

	if !s.callerOwnsPost(c, id) {
		return
	}

	if err := s.store.DeletePost(id); err != nil {
		log.Println("Deleting post failed: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not delete the post"})
		return
	}
	c.Status(http.StatusNoContent)
}

// callerOwnsPost rejects the request with 403 unless the authenticated
// account is the post's author. Responds on failure.
func (s *Server) callerOwnsPost(c *gin.Context, id uuid.UUID) bool {
	err, owner := s.store.ReadPostOwner(id)
	if err != nil {
		log.Println("Reading post owner failed: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not verify the post author"})
		return false
	}

	userId := c.MustGet(ctxUserId).(uuid.UUID)
	if *owner != userId {
		c.JSON(http.StatusForbidden, gin.H{"message": "only the author can modify this post"})
		return false
	}
	return true
}

func parsePostId(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "post not found"})
		return uuid.Nil, false
	}
	return id, true
}

func postsOrEmpty(posts *[]domain.Post) []domain.Post {
	if posts == nil || *posts == nil {
		return []domain.Post{}
	}
	return *posts
}
