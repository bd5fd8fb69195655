package main

import (
	"context"
	"log"
	"os"

	"github.com/dkazakov/taskdeck/internal/buildinfo"
	"github.com/dkazakov/taskdeck/internal/server"
	"github.com/dkazakov/taskdeck/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
