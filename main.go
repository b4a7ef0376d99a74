package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kvisli/glyptodon/api"
	"github.com/kvisli/glyptodon/cache"
	"github.com/kvisli/glyptodon/db"
	"github.com/kvisli/glyptodon/posts"
	"github.com/kvisli/glyptodon/session"
	"github.com/kvisli/glyptodon/ui"
	"github.com/kvisli/glyptodon/util"
	"github.com/kvisli/glyptodon/web"
)

func main() {

	conf, err := util.ReadConf()
	if err != nil {
		log.Fatalln(err)
	}

	fmt.Println("Configuration: ")
	fmt.Println(util.PrettyPrint(conf))

	// The TUI owns stdout, so logs go to a file when debugging and
	// nowhere otherwise.
	if os.Getenv("GLYPTODON_DEBUG") != "" {
		f, err := tea.LogToFile("glyptodon-debug.log", "glyptodon")
		if err != nil {
			log.Fatalln(err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	if conf.Conf.DevServer {
		startDevServer(conf)
	}

	timeout := time.Duration(conf.Conf.HttpTimeout) * time.Second
	client := api.NewClient(conf.Conf.ApiBaseUrl, timeout)

	configDir, err := util.GetConfigDir()
	if err != nil {
		log.Fatalln(err)
	}
	store := session.NewStore(filepath.Join(configDir, session.TokenFileName), client)

	// The client pulls the current token from the store and tears the
	// session down on a 401.
	client.TokenFunc = store.Token
	client.OnUnauthorized = store.Logout

	store.Restore()

	queryCache := cache.New()
	stopJanitor := queryCache.StartJanitor(time.Minute)
	defer stopJanitor()

	queries := posts.NewQueries(queryCache, client)

	model := ui.NewModel(store, queries, queryCache.Updates(), 120, 40)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalln(err)
	}
}

// startDevServer runs the bundled API server in the background so the
// client has something to talk to out of the box.
func startDevServer(conf *util.AppConfig) {
	database, err := db.Open(util.ResolveFilePath(conf.Conf.DbFile))
	if err != nil {
		log.Fatalln(err)
	}

	srv := web.NewServer(conf, database)
	go func() {
		if err := srv.Serve(); err != nil {
			log.Fatalln(err)
		}
	}()
}
