package cli

import (
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	var opts replayOptions

	cmd := &cobra.Command{
		Use:   "run <design>",
		Short: "Replay a design timeline",
		Long: "Replays a recorded timeline (.json, .yaml) or an authored design (.lisp)\n" +
			"against a fresh document. The run stops at the first fatal error.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("metrics") {
				opts.metrics = a.cfg.Metrics.Path
			}
			if !cmd.Flags().Changed("journal") {
				opts.journal = a.cfg.Journal.Path
			}
			if !cmd.Flags().Changed("tolerance") {
				opts.tolerance = a.cfg.Match.Tolerance
			}

			rep, err := a.replay(cmd.Context(), args[0], opts)
			if rep != nil {
				writeSummary(cmd.OutOrStdout(), rep)
			}
			if err != nil {
				return err
			}
			return rep.err
		},
	}

	cmd.Flags().StringVar(&opts.stl, "stl", "", "Write the resulting bodies as STL")
	cmd.Flags().StringVar(&opts.meshJSON, "mesh-json", "", "Write per-body triangle meshes as JSON")
	cmd.Flags().StringVar(&opts.metrics, "metrics", "", "Write Prometheus metrics to this textfile")
	cmd.Flags().StringVar(&opts.journal, "journal", "", "Record the run in this SQLite journal")
	cmd.Flags().Float64Var(&opts.tolerance, "tolerance", 0, "Profile matching tolerance")
	return cmd
}
