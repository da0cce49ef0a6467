package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ryotapoi/relmv/internal/core"
)

const defaultHistoryLimit = 20

func historyCmd(g *globalFlags) *cobra.Command {
	var (
		limit  int
		edits  bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show applied moves recorded in the journal",
		Long: `Show the moves applied in this project, newest first, as recorded in
.relmv/journal.sqlite. With --edits every recorded edit is listed too.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative: %d", limit)
			}
			j, err := core.OpenExistingJournal(g.root)
			if err != nil {
				return err
			}
			defer j.Close()

			runs, err := j.Runs(limit)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if format == formatText && len(runs) == 0 {
				fmt.Fprintln(w, "No moves recorded.")
				return nil
			}

			now := time.Now()
			reports := make([]runReport, 0, len(runs))
			for _, r := range runs {
				var list []core.EditRecord
				if edits {
					list, err = j.RunEdits(r.ID)
					if err != nil {
						return err
					}
				}
				if format == formatText {
					printRunText(w, r, now)
					printEditsText(w, list)
					continue
				}
				reports = append(reports, buildRunReport(r, list))
			}
			if format == formatText {
				return nil
			}
			return encode(w, format, reports)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&edits, "edits", false, "list the edits of each run")
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format (text, json, yaml)")

	return cmd
}
