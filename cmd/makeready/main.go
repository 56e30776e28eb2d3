// Package main provides the entry point for the makeready CLI tool.
package main

import (
	"context"
	"os"

	"github.com/spanline/makeready/cmd/makeready/app"
)

// Version is populated by the release build.
var version = "dev"

func main() {
	application, err := app.New(version)
	if err != nil {
		app.ExitOnError(err)
	}

	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	if err := application.Execute(ctx, os.Args[1:]); err != nil {
		app.ExitOnError(err)
	}
}
