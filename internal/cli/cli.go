// Package cli implements the edge-mcp command-line interface.
//
// Running edge-mcp without a subcommand serves MCP over stdio, which is how
// MCP clients launch it. The other commands are:
//   - serve-http: Serve MCP over HTTP
//   - detect: Run the edge pipeline on one image file
//   - kernel: Print the derivative-of-Gaussian kernels
//
// All commands accept --config for a TOML file and --verbose (-v) for debug
// logging; EDGE_MCP_LOG_LEVEL sets the level otherwise. Logs always go to
// the log writer (stderr), never to the stdio protocol stream.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ironsheep/edge-tools-mcp/internal/config"
	"github.com/ironsheep/edge-tools-mcp/internal/server"
)

const appName = "edge-mcp"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

var (
	version = "dev"     // semantic version (e.g., "v1.2.3")
	commit  = "unknown" // git commit SHA
	date    = "unknown" // build timestamp
)

// SetVersion sets the version information displayed by --version and
// reported in the MCP handshake. It is typically called from main with
// values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
	server.Version = v
}

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	in  io.Reader
	out io.Writer
}

// New creates a CLI reading protocol input from in, writing command output
// to out and logs to logw.
func New(in io.Reader, out, logw io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(logw, level),
		Config: config.Default(),
		in:     in,
		out:    out,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	root := &cobra.Command{
		Use:          appName,
		Short:        "MCP server and CLI for Canny edge detection",
		Long:         `edge-mcp runs a derivative-of-Gaussian Canny edge pipeline on image files and exposes every stage to MCP clients over stdio or HTTP.`,
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			c.Config = cfg

			level := cfg.Level(os.Getenv(config.EnvLogLevel))
			if verbose {
				level = LogDebug
			}
			c.SetLogLevel(level)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.serveStdio(cmd)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("%s %s\ncommit: %s\nbuilt: %s\n", appName, version, commit, date))
	root.SetOut(c.out)
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.serveHTTPCommand())
	root.AddCommand(c.detectCommand())
	root.AddCommand(c.kernelCommand())

	return root
}
