package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/lignin-replay/pkg/design"
)

// errCheckFailed is returned when check finds error-level problems.
var errCheckFailed = errors.New("design has errors")

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <design>",
		Short: "Validate a design without replaying it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.loadDesign(args[0])
			if err != nil {
				return err
			}
			if err := d.Validate(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			findings := design.Check(d)
			writeFindings(out, findings)
			if design.HasErrors(findings) {
				return errCheckFailed
			}
			fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("%s: %d entities, %d timeline entries, %d findings",
				args[0], len(d.Entities), len(d.Timeline), len(findings))))
			return nil
		},
	}
}
