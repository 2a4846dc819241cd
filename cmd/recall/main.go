package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dkolesni-prog/recall/internal/app"
	"github.com/dkolesni-prog/recall/internal/app/middleware"
	"github.com/dkolesni-prog/recall/internal/config"
	"github.com/dkolesni-prog/recall/internal/output"
	"github.com/dkolesni-prog/recall/internal/workflow"
)

// Set with -ldflags "-X main.buildVersion=...".
var buildVersion = "dev"

// errReported marks failures the printer has already shown to the user.
var errReported = errors.New("reported")

func reported(err error) error {
	return fmt.Errorf("%w: %w", errReported, err)
}

type cli struct {
	cfg     *config.Config
	noColor bool
	printer *output.Printer
	browse  browserRunner
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr, defaultBrowserRunner).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer, browse browserRunner) *cobra.Command {
	c := &cli{cfg: config.Default(), browse: browse}

	root := &cobra.Command{
		Use:   "recall",
		Short: "Save web pages to a Recall server and search them",
		Long: `recall sends pages to a Recall server for archiving, keeps the server
URL and per-page tags in a local or shared store, and can serve a small
control API for the browser extension.

Example usage:
  recall config set http://localhost:8000
  recall test
  recall save https://go.dev -t go -t lang
  recall search "generics" -l 10
  recall open 3
  recall serve`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.cfg.ApplyEnv(); err != nil {
				return err
			}
			if err := c.cfg.Validate(); err != nil {
				return err
			}
			if err := middleware.Initialize(c.cfg.LogLevel); err != nil {
				return fmt.Errorf("log level: %w", err)
			}
			c.printer = output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.UseColors(c.noColor))
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	c.cfg.BindFlags(root.PersistentFlags())
	root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		c.saveCmd(),
		c.testCmd(),
		c.configCmd(),
		c.searchCmd(),
		c.openCmd(),
		c.serveCmd(),
		c.versionCmd(),
	)
	return root
}

// build assembles the app for a one-shot command; statuses persist until exit.
func (c *cli) build(ctx context.Context) (*app.App, error) {
	return app.Build(ctx, c.cfg, c.printer, workflow.Options{})
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.printer.Print("%s", buildVersion)
			return nil
		},
	}
}
