// Command server runs the notekeeper REST API together with its gRPC health
// endpoint until it receives SIGINT, SIGTERM or SIGQUIT.
package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/notekeeper/internal/server"
	"github.com/dmitrijs2005/notekeeper/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()

	app, err := server.NewApp(context.Background(), cfg)
	if err != nil {
		log.Fatalf("notekeeper: %v", err)
	}

	app.Run(context.Background())
}
