package web

import (
	"fmt"
	"log"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/google/uuid"
	"github.com/kvisli/glyptodon/db"
	"github.com/kvisli/glyptodon/util"
	"golang.org/x/time/rate"
)

// Server bundles the handlers' shared dependencies.
type Server struct {
	conf  *util.AppConfig
	store *db.DB
}

func NewServer(conf *util.AppConfig, store *db.DB) *Server {
	return &Server{conf: conf, store: store}
}

// Router builds the dev server's route table.
func (s *Server) Router() *gin.Engine {
	g := gin.Default()
	g.Use(gzip.Gzip(gzip.DefaultCompression))

	// Global rate limiter: 10 requests per second per IP, burst of 20
	globalLimiter := NewRateLimiter(rate.Limit(10), 20)
	g.Use(RateLimitMiddleware(globalLimiter))

	g.POST("/auth/register", s.HandleRegister)
	g.POST("/auth/login", s.HandleLogin)

	g.GET("/posts", s.HandleListPosts)
	g.GET("/posts/search", s.HandleSearchPosts)
	g.GET("/posts/:id", s.HandleGetPost)

	auth := g.Group("/", RequireAuth(s.conf.Conf.JwtSecret))
	auth.POST("/posts", s.HandleCreatePost)
	auth.PUT("/posts/:id", s.HandleUpdatePost)
	auth.DELETE("/posts/:id", s.HandleDeletePost)

	// RSS Feed
	g.GET("/feed", func(c *gin.Context) {
		c.Header("Content-Type", "application/xml; charset=utf-8")

		rss, err := s.GetRSS()
		if err != nil {
			c.Render(404, render.String{Format: ""})
		} else {
			c.Render(200, render.String{Format: rss})
		}
	})

	g.GET("/feed/:id", func(c *gin.Context) {
		c.Header("Content-Type", "application/xml; charset=utf-8")

		feedId, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.Render(404, render.String{Format: ""})
			return
		}

		rssItem, err := s.GetRSSItem(feedId)
		if err != nil {
			c.Render(404, render.String{Format: ""})
		} else {
			c.Render(200, render.String{Format: rssItem})
		}
	})

	return g
}

// Serve runs the dev server until the listener fails.
func (s *Server) Serve() error {
	log.Printf("Starting dev API server on localhost:%d", s.conf.Conf.HttpPort)
	return s.Router().Run(fmt.Sprintf("localhost:%d", s.conf.Conf.HttpPort))
}
