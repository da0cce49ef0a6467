package main

import (
	"errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ryotapoi/relmv/internal/core"
)

type moveFlags struct {
	from     string
	to       string
	apply    bool
	outgoing bool
	prune    bool
	format   string
	diff     bool
	noColor  bool
}

func moveCmd(g *globalFlags) *cobra.Command {
	f := &moveFlags{}

	cmd := &cobra.Command{
		Use:   "move --from OLD --to NEW",
		Short: "Move a file and rewrite references to it",
		Long: `Move a file and rewrite every relative path reference to it.

Without --apply nothing is written: the command prints the edits it would
make. If OLD is already gone and NEW exists, only the references are
rewritten.

Examples:
  relmv move --from docs/guide.md --to docs/guides/guide.md
  relmv move --from lib/util --to lib/utils/util --apply
  relmv move --from a.nix --to b.nix --diff --format text`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMove(cmd, g, f)
		},
	}

	cmd.Flags().StringVar(&f.from, "from", "", "source file path (root-relative)")
	cmd.Flags().StringVar(&f.to, "to", "", "destination file path (root-relative)")
	cmd.Flags().BoolVar(&f.apply, "apply", false, "write the rewritten files and move the target")
	cmd.Flags().BoolVar(&f.outgoing, "outgoing", false, "also rewrite the moved file's own references")
	cmd.Flags().BoolVar(&f.prune, "prune", false, "remove source directories left empty by the move")
	cmd.Flags().StringVarP(&f.format, "format", "f", formatText, "output format (text, json, yaml)")
	cmd.Flags().BoolVar(&f.diff, "diff", false, "show a line diff of each rewritten file (text format)")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "disable colored output")

	return cmd
}

func runMove(cmd *cobra.Command, g *globalFlags, f *moveFlags) error {
	if f.from == "" {
		return errors.New("--from is required")
	}
	if f.to == "" {
		return errors.New("--to is required")
	}
	if err := validateFormat(f.format); err != nil {
		return err
	}
	if f.noColor {
		color.NoColor = true
	}

	cfg, logger, err := g.load(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	p := newMovePrinter(cmd.OutOrStdout(), f.diff, !color.NoColor)
	opts := core.MoveOptions{
		From:           f.from,
		To:             f.to,
		Apply:          f.apply,
		Outgoing:       f.outgoing,
		PruneEmptyDirs: f.prune,
		Config:         cfg,
		Logger:         logger,
	}
	if f.format == formatText {
		opts.Progress = p.file
	} else {
		// stdout carries the encoded report; per-file progress goes to stderr.
		opts.Progress = newMovePrinter(cmd.ErrOrStderr(), false, false).file
	}

	result, err := core.Move(cmd.Context(), g.root, opts)
	if result == nil {
		return err
	}

	if f.format == formatText {
		p.summary(result)
		return err
	}
	if perr := encode(cmd.OutOrStdout(), f.format, buildMoveReport(result)); perr != nil {
		return errors.Join(err, perr)
	}
	return err
}
