package main

import (
	"context"
	"log"
	"os"

	"github.com/emergqr/emergqr/internal/buildinfo"
	"github.com/emergqr/emergqr/internal/server"
	"github.com/emergqr/emergqr/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}
