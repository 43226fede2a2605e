package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/lignin-replay/pkg/design"
)

func newEvalCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "eval <design.lisp>",
		Short: "Evaluate an authored design and print its timeline as JSON",
		Long: "Evaluates a Lisp design, fills in the area properties of profiles written\n" +
			"without them, and prints the recorded timeline. The output can be replayed\n" +
			"with run.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.loadDesign(args[0])
			if err != nil {
				return err
			}

			if output == "" {
				return design.Encode(cmd.OutOrStdout(), d)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := design.Encode(f, d); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the timeline to this file instead of stdout")
	return cmd
}
