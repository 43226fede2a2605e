package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/chazu/lignin-replay/pkg/journal"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		path  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded runs, or the entity outcomes of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = a.cfg.Journal.Path
			}
			if path == "" {
				return errors.New("no journal configured: pass --journal or set journal.path")
			}

			j, err := journal.Open(path)
			if err != nil {
				return err
			}
			defer j.Close()

			if len(args) == 1 {
				entries, err := j.Entries(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				writeEntries(cmd.OutOrStdout(), entries)
				return nil
			}

			runs, err := j.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			writeRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "journal", "", "Journal database (default: journal.path from config)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list, 0 for all")
	return cmd
}
