package main

import (
	"github.com/spf13/cobra"

	"github.com/ryotapoi/relmv/internal/core"
)

func refsCmd(g *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "refs FILE",
		Short: "List the relative path references in a file",
		Long: `List every relative path reference (./x, ../x) in FILE together with the
root-relative path it resolves to. FILE is relative to --root.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			cfg, _, err := g.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			refs, err := core.FileReferences(cmd.Context(), g.root, args[0], cfg)
			if err != nil {
				return err
			}
			if format == formatText {
				printRefsText(cmd.OutOrStdout(), refs)
				return nil
			}
			return encode(cmd.OutOrStdout(), format, buildRefsReport(refs))
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format (text, json, yaml)")

	return cmd
}
