package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Field length bounds enforced client-side before anything goes on the wire.
const (
	TitleMinLen  = 5
	TitleMaxLen  = 200
	BodyMinLen   = 20
	BodyMaxLen   = 10000
	AuthorMinLen = 2
	AuthorMaxLen = 100
)

// Post is a blog post as served by the API. Id and the timestamps are
// server-assigned; the client never computes them.
type Post struct {
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Post) ToString() string {
	return fmt.Sprintf("\n\tId: %s \n\tTitle: %s \n\tAuthor: %s \n\tCreatedAt: %s)", p.Id, p.Title, p.Author, p.CreatedAt)
}

// CreatePost is the request body for creating a post.
type CreatePost struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Author string `json:"author"`
}

// UpdatePost is the partial request body for updating a post. Nil fields
// are left untouched by the server.
type UpdatePost struct {
	Title  *string `json:"title,omitempty"`
	Body   *string `json:"body,omitempty"`
	Author *string `json:"author,omitempty"`
}

func ValidateTitle(s string) error {
	return validateLength("title", s, TitleMinLen, TitleMaxLen)
}

func ValidateBody(s string) error {
	return validateLength("body", s, BodyMinLen, BodyMaxLen)
}

func ValidateAuthor(s string) error {
	return validateLength("author", s, AuthorMinLen, AuthorMaxLen)
}

// Validate checks all fields and returns the first violation.
func (r CreatePost) Validate() error {
	if err := ValidateTitle(r.Title); err != nil {
		return err
	}
	if err := ValidateBody(r.Body); err != nil {
		return err
	}
	return ValidateAuthor(r.Author)
}

// Validate checks only the fields present in the partial update.
func (r UpdatePost) Validate() error {
	if r.Title != nil {
		if err := ValidateTitle(*r.Title); err != nil {
			return err
		}
	}
	if r.Body != nil {
		if err := ValidateBody(*r.Body); err != nil {
			return err
		}
	}
	if r.Author != nil {
		if err := ValidateAuthor(*r.Author); err != nil {
			return err
		}
	}
	return nil
}

func validateLength(field, s string, min, max int) error {
	n := utf8.RuneCountInString(s)
	if n < min {
		return &ValidationError{Field: field, Message: fmt.Sprintf("%s must be at least %d characters", field, min)}
	}
	if n > max {
		return &ValidationError{Field: field, Message: fmt.Sprintf("%s must be at most %d characters", field, max)}
	}
	return nil
}
