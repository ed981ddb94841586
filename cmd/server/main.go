// Command server runs the customer database HTTP API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/custdb/internal/server"
	"github.com/dmitrijs2005/custdb/internal/server/config"
)

func main() {
	ctx := context.Background()

	app, err := server.NewApp(ctx, config.LoadConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}
	app.Run(ctx)
}
