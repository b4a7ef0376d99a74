package web

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/feeds"
	"github.com/kvisli/glyptodon/domain"
)

func (s *Server) GetRSS() (string, error) {
	err, posts := s.store.ReadAllPosts()
	if err != nil || *posts == nil {
		log.Println("Could not get posts!", err)
		return "", errors.New("error retrieving posts")
	}

	link := fmt.Sprintf("http://localhost:%d/feed", s.conf.Conf.HttpPort)

	feed := &feeds.Feed{
		Title:       "All Glyptodon Posts",
		Link:        &feeds.Link{Href: link},
		Description: "rss feed for the glyptodon dev server",
		Author:      &feeds.Author{Name: "everyone", Email: "everyone@glyptodon"},
		Created:     time.Now(),
	}

	var feedItems []*feeds.Item
	for _, post := range *posts {
		feedItems = append(feedItems, s.feedItem(&post))
	}

	feed.Items = feedItems
	return feed.ToRss()
}

func (s *Server) GetRSSItem(id uuid.UUID) (string, error) {
	err, post := s.store.ReadPostById(id)
	if err != nil || post == nil {
		log.Println("Could not get post!", err)
		return "", errors.New("error retrieving post by id")
	}

	feed := &feeds.Feed{
		Title:       "Single Glyptodon Post",
		Link:        &feeds.Link{Href: s.feedLink(post.Id)},
		Description: "rss feed for the glyptodon dev server",
		Author:      &feeds.Author{Name: post.Author, Email: fmt.Sprintf("%s@glyptodon", post.Author)},
		Created:     time.Now(),
	}

	feed.Items = []*feeds.Item{s.feedItem(post)}
	return feed.ToRss()
}

func (s *Server) feedItem(post *domain.Post) *feeds.Item {
	return &feeds.Item{
		Id:      post.Id,
		Title:   post.Title,
		Link:    &feeds.Link{Href: s.feedLink(post.Id)},
		Content: post.Body,
		Author:  &feeds.Author{Name: post.Author, Email: fmt.Sprintf("%s@glyptodon", post.Author)},
		Created: post.CreatedAt,
		Updated: post.UpdatedAt,
	}
}

func (s *Server) feedLink(id string) string {
	return fmt.Sprintf("http://localhost:%d/feed/%s", s.conf.Conf.HttpPort, id)
}
