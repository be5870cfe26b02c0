package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vk/pigeon/internal/app"
	"github.com/vk/pigeon/internal/config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// options collects the flags shared by all site commands.
type options struct {
	configPath string
	title      string
	stylesheet string
	include    []string
	workers    int
	recursive  bool
	logLevel   string
	logFormat  string
	addr       string
	watch      bool
}

// appConfig turns flags and the optional [input] [output] arguments into a
// validated app.Config.
func (o *options) appConfig(args []string) (*app.Config, error) {
	overrides := config.Site{
		Title:      o.title,
		Stylesheet: o.stylesheet,
		Include:    o.include,
		Workers:    o.workers,
		Recursive:  o.recursive,
	}
	if len(args) > 0 {
		overrides.Input = args[0]
	}
	if len(args) > 1 {
		overrides.Output = args[1]
	}

	cfg, err := app.NewConfig(app.Config{
		ConfigPath: o.configPath,
		Overrides:  overrides,
		LogFormat:  strings.ToLower(o.logFormat),
		LogLevel:   strings.ToLower(o.logLevel),
	})
	if err != nil {
		return nil, usageError(err)
	}
	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return cfg, nil
}

// NewRootCommand builds the command tree. Command output goes to outW,
// logs and errors to errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "pigeon",
		Short: "A static site generator driven by a dependency-resolving action engine",
		Long: `Pigeon turns a directory of Markdown articles into HTML pages and an index.

Every article runs through a set of actions (markdown, parse_html, title,
date, template, filename, write_out) ordered by the attributes they require
and provide.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "Path to a site.hcl or site.yaml file (default: looked up in the input directory).")
	pf.StringVar(&opts.title, "title", "", "Site title used in page heads (default \"pigeon\").")
	pf.StringVar(&opts.stylesheet, "stylesheet", "", "Stylesheet URL linked from every page.")
	pf.StringArrayVar(&opts.include, "include", nil, "Glob pattern of source files; repeatable (default *.markdown and *.md).")
	pf.IntVar(&opts.workers, "workers", 0, "Number of articles built concurrently (default 4).")
	pf.BoolVarP(&opts.recursive, "recursive", "r", false, "Also read sources from subdirectories.")
	pf.StringVar(&opts.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")

	siteArgs := func(_ *cobra.Command, args []string) error {
		if len(args) > 2 {
			return usageError(fmt.Errorf("accepts at most 2 arg(s), received %d", len(args)))
		}
		return nil
	}

	buildCmd := &cobra.Command{
		Use:   "build [input] [output]",
		Short: "Build the site once",
		Args:  siteArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, args)
			if err != nil {
				return err
			}
			defer a.Close()
			res, err := a.Build(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Built %d article(s) into %s\n", len(res.Articles), a.Site().Output)
			return nil
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch [input] [output]",
		Short: "Build the site and rebuild it whenever a source changes",
		Args:  siteArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, args)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Watch(cmd.Context())
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve [input] [output]",
		Short: "Build the site and serve it with /health and /metrics endpoints",
		Args:  siteArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, args)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Serve(cmd.Context(), opts.addr, opts.watch)
		},
	}
	serveCmd.Flags().StringVar(&opts.addr, "addr", "localhost:8080", "Address of the preview server.")
	serveCmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Rebuild on source changes while serving.")

	freeCmd := &cobra.Command{
		Use:   "free [input] [output]",
		Short: "Print the keys every article must start with",
		Args:  siteArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, args)
			if err != nil {
				return err
			}
			defer a.Close()
			for _, k := range a.Free() {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}

	planCmd := &cobra.Command{
		Use:   "plan [input] [output]",
		Short: "Print the article actions in execution order",
		Args:  siteArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, args)
			if err != nil {
				return err
			}
			defer a.Close()
			order, err := a.Plan()
			if err != nil {
				return err
			}
			for i, act := range order {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s: %s -> %s\n", i+1, act.Name, joinKeys(act.Requires), provideOf(act.Provide))
			}
			return nil
		},
	}

	root.AddCommand(buildCmd, watchCmd, serveCmd, freeCmd, planCmd)
	return root
}

func newApp(cmd *cobra.Command, opts *options, args []string) (*app.App, error) {
	cfg, err := opts.appConfig(args)
	if err != nil {
		return nil, err
	}
	return app.NewApp(cmd.ErrOrStderr(), cfg)
}

// Execute runs the command tree with args. Usage problems are returned as
// *ExitError with code 2.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	if strings.HasPrefix(err.Error(), "unknown command") {
		return usageError(err)
	}
	return err
}
