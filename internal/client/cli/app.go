// Package cli implements the interactive TaskDeck command line client.
package cli

import (
	"bufio"
	"os"

	"github.com/dkazakov/taskdeck/internal/client/api"
	"github.com/dkazakov/taskdeck/internal/client/config"
)

type App struct {
	config   *config.Config
	client   *api.Client
	userName string
	reader   *bufio.Reader
}

func NewApp(c *config.Config) *App {
	return &App{
		config: c,
		client: api.NewClient(c.ServerBaseURL, c.RequestTimeout),
		reader: bufio.NewReader(os.Stdin),
	}
}

func (a *App) isLoggedIn() bool {
	return a.client.IsLoggedIn()
}
