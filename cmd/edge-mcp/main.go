package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/edge-tools-mcp/internal/cli"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cli.SetVersion(Version, GitCommit, BuildTime)

	// stdout carries the MCP protocol when serving over stdio, so logs go
	// to stderr.
	c := cli.New(os.Stdin, os.Stdout, os.Stderr, cli.LogInfo)
	return c.RootCommand().ExecuteContext(ctx)
}
