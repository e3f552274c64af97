package cli

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/edge-tools-mcp/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over stdin/stdout (the default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.serveStdio(cmd)
		},
	}
}

// serveStdio runs the stdio transport until input ends or the command's
// context is cancelled. A read blocked on stdin does not observe
// cancellation, so the server runs in its own goroutine.
func (c *CLI) serveStdio(cmd *cobra.Command) error {
	ctx := cmd.Context()
	srv := server.New(c.Config.Pipeline, c.Logger)
	c.Logger.Info("serving MCP over stdio", "version", version)
	c.Logger.Debug("pipeline", "params", c.Config.Pipeline)

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, c.in, c.out) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CLI) serveHTTPCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve-http",
		Short: "Serve MCP over HTTP (POST /mcp, GET /healthz)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			srv := server.New(c.Config.Pipeline, c.Logger)
			return srv.ListenAndServe(cmd.Context(), addr, c.Config.Server.ShutdownTimeout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	return cmd
}
