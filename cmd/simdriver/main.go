// Package main provides the entry point for the simdriver CLI.
package main

import (
	"context"
	"os"

	"github.com/mrz1836/simdriver/internal/cli"
)

// Set by the linker at release time.
var (
	version string
	commit  string
	date    string
)

func main() {
	ctx := context.Background()
	err := cli.Execute(ctx, cli.BuildInfo{Version: version, Commit: commit, Date: date})
	if err != nil {
		os.Exit(cli.ExitCodeForError(err))
	}
}
