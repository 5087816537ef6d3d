// Command codecortx is CodeCortX-MCP's CLI and MCP transport entrypoint
// (component C11): it indexes a project, serves the seven query operations
// over MCP stdio, or answers a single query from the command line.
//
// Built as a urfave/cli.App: global flags plus subcommands, each Action
// opening its own project.Project, which loads the configuration.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/kensave/CodeCortX-MCP/internal/debug"
	"github.com/kensave/CodeCortX-MCP/internal/mcpserver"
	"github.com/kensave/CodeCortX-MCP/internal/project"
	"github.com/kensave/CodeCortX-MCP/internal/version"
)

func main() {
	app := &cli.App{
		Name:    "codecortx",
		Usage:   "Multi-language source code indexing and lookup engine",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory to index",
				Value:   ".",
			},
		},
		Commands: []*cli.Command{
			indexCommand(),
			serveCommand(),
			searchCommand(),
			symbolCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		debug.CatastrophicError("codecortx: %v\n", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func openProject(c *cli.Context) (*project.Project, error) {
	return project.Open(c.String("root"))
}

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "Index the project root and persist a cache snapshot",
		Action: func(c *cli.Context) error {
			p, err := openProject(c)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			if err := p.IndexAll(ctx); err != nil {
				return err
			}
			fmt.Printf("indexed %d files, %d symbols\n", p.Store.TotalFiles(), p.Store.TotalSymbols())
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the MCP stdio server",
		Action: func(c *cli.Context) error {
			p, err := openProject(c)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			if p.Store.TotalFiles() == 0 {
				if err := p.IndexAll(ctx); err != nil {
					debug.LogIndexing("initial index failed: %v\n", err)
				}
			}

			watcher, err := p.Watch()
			if err != nil {
				debug.Log(debug.ComponentWatch, "watcher disabled: %v\n", err)
			} else {
				defer watcher.Close()
			}

			p.Pipeline.StartEvictionLoop(ctx, 5*time.Second)

			server := mcpserver.NewServer(p.Engine)
			return server.Run(ctx)
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Run a BM25 full-text search against the indexed project",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "max-results", Value: 10},
			&cli.IntFlag{Name: "context-lines", Value: 2},
		},
		Action: func(c *cli.Context) error {
			query := c.Args().First()
			if query == "" {
				return fmt.Errorf("search requires a query argument")
			}
			p, err := openProject(c)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			if p.Store.TotalFiles() == 0 {
				if err := p.IndexAll(ctx); err != nil {
					return err
				}
			}
			hits := p.Engine.CodeSearch(query, c.Int("max-results"), c.Int("context-lines"))
			return printJSON(hits)
		},
	}
}

func symbolCommand() *cli.Command {
	return &cli.Command{
		Name:      "symbol",
		Usage:     "Look up symbols by exact name",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "include-source"},
		},
		Action: func(c *cli.Context) error {
			name := c.Args().First()
			if name == "" {
				return fmt.Errorf("symbol requires a name argument")
			}
			p, err := openProject(c)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			if p.Store.TotalFiles() == 0 {
				if err := p.IndexAll(ctx); err != nil {
					return err
				}
			}
			syms := p.Engine.GetSymbol(name, c.Bool("include-source"))
			return printJSON(syms)
		},
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// signalContext returns a context canceled on SIGINT/SIGTERM, so a long
// index or the MCP server's Run loop unwinds cleanly on Ctrl-C.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
