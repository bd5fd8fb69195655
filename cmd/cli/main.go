package main

import (
	"context"
	"os"

	"github.com/dkazakov/taskdeck/internal/buildinfo"
	"github.com/dkazakov/taskdeck/internal/client/cli"
	"github.com/dkazakov/taskdeck/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app := cli.NewApp(cfg)

	app.Run(ctx)

}
