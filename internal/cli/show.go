package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newShowCmd prints each project's current version as read through
// ValueStore, without building a plan.
func newShowCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "print each project's current version",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(flags)
			if err != nil {
				return err
			}
			current, err := sess.currentVersions(background())
			if err != nil {
				return err
			}
			for _, p := range sess.cfg.Projects {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d): %s\n", p.Name, p.ID, current[p.ID])
			}
			return nil
		},
	}
}
