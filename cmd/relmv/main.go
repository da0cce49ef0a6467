// Package main provides the relmv CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/ryotapoi/relmv/internal/core"
)

var version = "dev"

// Exit statuses.
const (
	exitOK            = 0
	exitError         = 1
	exitRewriteFailed = 2
	exitRenameFailed  = 3
)

// globalFlags holds the persistent flags shared by all subcommands.
type globalFlags struct {
	root    string
	config  string
	verbose bool
	quiet   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	stop()
	os.Exit(exitCode(err))
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "relmv",
		Short: "Move a file and rewrite relative path references to it",
		Long: `relmv moves a file inside a project and rewrites every relative path
reference (./x, ../x) to it in the other files of the project.

Runs are dry by default: pass --apply to write files and move the target.`,
		Version:       resolveVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("relmv version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&g.root, "root", ".", "project root directory")
	rootCmd.PersistentFlags().StringVar(&g.config, "config", "", "config file (default is <root>/relmv.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&g.quiet, "quiet", "q", false, "only log errors")

	rootCmd.AddCommand(moveCmd(g))
	rootCmd.AddCommand(refsCmd(g))
	rootCmd.AddCommand(historyCmd(g))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

// load reads the configuration and builds the logger for one command.
func (g *globalFlags) load(stderr io.Writer) (*core.Config, *slog.Logger, error) {
	cfg, err := core.LoadConfig(g.root, g.config)
	if err != nil {
		return nil, nil, err
	}
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	switch {
	case g.quiet:
		level = slog.LevelError
	case g.verbose:
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	return cfg, logger, nil
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var renameErr *core.RenameError
	if errors.As(err, &renameErr) {
		return exitRenameFailed
	}
	var rewriteErr *core.RewriteError
	if errors.As(err, &rewriteErr) {
		return exitRewriteFailed
	}
	return exitError
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func resolveVersion() string {
	v := version
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	return v
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "relmv version %s\n", resolveVersion())
}
