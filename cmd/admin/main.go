package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/custdb/internal/admin"
	"github.com/dmitrijs2005/custdb/internal/server/config"
)

func main() {
	cmd := admin.NewRootCommand(config.LoadEnvConfig(), os.Stdout)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
