package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/folio/internal/config"
	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/facade"
	"github.com/hpungsan/folio/internal/genai"
	"github.com/hpungsan/folio/internal/logging"
	"github.com/hpungsan/folio/internal/mcp"
	"github.com/hpungsan/folio/internal/ops"
	"github.com/hpungsan/folio/internal/store"
	"github.com/hpungsan/folio/internal/store/memory"
	"github.com/hpungsan/folio/internal/upload"
	"github.com/hpungsan/folio/internal/web"
)

// appEnv is what every command needs. It is nil when only help or version
// output is requested.
type appEnv struct {
	baseDir string
	cfg     *config.Config
	logger  *logrus.Logger
}

// open connects the configured content stack. Callers must Close the runtime.
func (e *appEnv) open(ctx context.Context) (*facade.Runtime, error) {
	rt, err := facade.Open(ctx, e.cfg, e.baseDir, e.logger)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return rt, nil
}

// service builds the action service over rt. The AI and upload clients are
// attached only when their URLs are configured.
func (e *appEnv) service(rt *facade.Runtime, inval ops.Invalidator) *ops.Service {
	log := logging.Component(e.logger, "cli")
	opts := ops.Options{
		Store:       rt.Store,
		Source:      rt.Source,
		Invalidator: inval,
		Logger:      e.logger,
	}
	httpClient := facade.HTTPClient(e.cfg)

	if e.cfg.AIServiceURL != "" {
		gen, err := genai.New(genai.Options{BaseURL: e.cfg.AIServiceURL, HTTP: httpClient, Logger: e.logger})
		if err != nil {
			log.WithError(err).Warn("generation service disabled")
		} else {
			opts.Generator = gen
		}
	}
	if e.cfg.UploadURL != "" {
		up, err := upload.New(upload.Options{URL: e.cfg.UploadURL, APIKey: e.cfg.UploadAPIKey, HTTP: httpClient, Logger: e.logger})
		if err != nil {
			log.WithError(err).Warn("image upload disabled")
		} else {
			opts.Uploader = up
		}
	}
	return ops.NewService(opts)
}

// runMCP serves the MCP tools over stdio until stdin closes.
func (e *appEnv) runMCP() error {
	if unknown := mcp.ValidateDisabledTools(e.cfg.DisabledTools); len(unknown) > 0 {
		return fmt.Errorf("unknown disabled_tools: %s (valid: %s)",
			strings.Join(unknown, ", "), strings.Join(mcp.AllToolNames(), ", "))
	}

	rt, err := e.open(context.Background())
	if err != nil {
		return err
	}
	defer rt.Close()

	return mcp.Run(mcp.Options{
		Source:  rt.Source,
		Ops:     e.service(rt, nil),
		Config:  e.cfg,
		BaseDir: e.baseDir,
		Version: Version,
	})
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(e *appEnv) *cli.App {
	app := &cli.App{
		Name:    "folio",
		Usage:   "Portfolio content service",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(e),
			mcpCmd(e),
			listCmd(e),
			getCmd(e),
			projectCmd(e),
			seedCmd(e),
			exportCmd(e),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd creates the serve command.
func serveCmd(e *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the portfolio site and admin API over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Usage: "Address to bind (default from config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Port to listen on (default from config)"},
		},
		Action: func(c *cli.Context) error {
			if c.IsSet("bind") {
				e.cfg.Bind = c.String("bind")
			}
			if c.IsSet("port") {
				e.cfg.Port = c.Int("port")
			}

			ctx, cancel := context.WithCancel(c.Context)
			defer cancel()

			rt, err := e.open(ctx)
			if err != nil {
				return outputError(err)
			}
			defer rt.Close()

			cache := web.NewPageCache(e.cfg.PageCacheTTL(), nil)
			svc := e.service(rt, cache)

			if rt.Static != nil {
				rt.Static.OnReload(func() { cache.Invalidate(ops.PathAll) })
				go func() {
					if err := rt.Static.Watch(ctx); err != nil {
						logging.Component(e.logger, "cli").WithError(err).Warn("content file watch stopped")
					}
				}()
			}

			srv, err := web.NewServer(web.Options{
				Source:  rt.Source,
				Ops:     svc,
				Cache:   cache,
				Config:  e.cfg,
				Version: Version,
				Logger:  e.logger,
			})
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(ctx, srv, e.logger)
		},
	}
}

// mcpCmd creates the mcp command. Running folio with piped stdin and no
// arguments does the same.
func mcpCmd(e *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the content tools over MCP stdio",
		Action: func(c *cli.Context) error {
			return e.runMCP()
		},
	}
}

// listCmd creates the list command.
func listCmd(e *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "List one content section as the site renders it",
		ArgsUsage: "<projects|journal|skills|experience|education>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Max items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			kind, err := kindArg(c)
			if err != nil {
				return outputError(err)
			}

			rt, err := e.open(c.Context)
			if err != nil {
				return outputError(err)
			}
			defer rt.Close()

			output, err := ops.List(c.Context, rt.Source, ops.ListInput{
				Kind:   kind,
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// getCmd creates the get command.
func getCmd(e *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Print a single-object section",
		ArgsUsage: "<settings|about|contact>",
		Action: func(c *cli.Context) error {
			kind, err := kindArg(c)
			if err != nil {
				return outputError(err)
			}

			rt, err := e.open(c.Context)
			if err != nil {
				return outputError(err)
			}
			defer rt.Close()

			output, err := ops.Get(c.Context, rt.Source, kind)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// projectCmd creates the project command.
func projectCmd(e *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "project",
		Usage:     "Print one project by slug",
		ArgsUsage: "<slug>",
		Action: func(c *cli.Context) error {
			slug := c.Args().First()
			if slug == "" {
				return outputError(errors.NewInvalidRequest("slug is required"))
			}

			rt, err := e.open(c.Context)
			if err != nil {
				return outputError(err)
			}
			defer rt.Close()

			p, err := ops.ProjectBySlug(c.Context, rt.Source, slug)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(p)
		},
	}
}

// seedCmd creates the seed command.
func seedCmd(e *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "seed",
		Usage:     "Load a YAML content file into the configured store",
		ArgsUsage: "<content.yaml>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "append", Usage: "append|replace"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Validate every entry against an in-memory store; nothing is written"},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return outputError(errors.NewInvalidRequest("content file path is required"))
			}
			input := ops.ImportInput{Path: path, Mode: ops.ImportMode(c.String("mode"))}

			if c.Bool("dry-run") {
				client := store.NewClient(memory.New(), e.logger)
				svc := ops.NewService(ops.Options{
					Store:  client,
					Source: facade.NewStoreSource(client),
					Logger: e.logger,
				})
				output, err := svc.Import(c.Context, input)
				if err != nil {
					return outputError(err)
				}
				return outputJSON(output)
			}

			rt, err := e.open(c.Context)
			if err != nil {
				return outputError(err)
			}
			defer rt.Close()

			output, err := e.service(rt, nil).Import(c.Context, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(e *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write every section to a YAML content file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.folio/exports/<site>-<timestamp>.yaml)"},
		},
		Action: func(c *cli.Context) error {
			rt, err := e.open(c.Context)
			if err != nil {
				return outputError(err)
			}
			defer rt.Close()

			output, err := ops.Export(c.Context, rt.Source, ops.ExportInput{
				Path:    c.String("path"),
				BaseDir: e.baseDir,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// Helper functions

// kindArg parses the section name given as the first argument.
func kindArg(c *cli.Context) (ops.Kind, error) {
	arg := c.Args().First()
	if arg == "" {
		return "", errors.NewInvalidRequest("section is required")
	}
	kind, ok := ops.ParseKind(arg)
	if !ok {
		return "", errors.NewNotFound("section", arg)
	}
	return kind, nil
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if fErr, ok := errors.Find(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", fErr.Code, fErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
