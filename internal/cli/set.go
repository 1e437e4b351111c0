package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newSetCmd writes a single project's version directly through ValueStore,
// bypassing the plan engine entirely. Per spec.md §6, `set` defaults to VCS
// level none: it never requires a clean working tree or even a repository,
// since it only touches the file ValueStore points at.
func newSetCmd(flags *globalFlags) *cobra.Command {
	var annotated bool

	cmd := &cobra.Command{
		Use:   "set <project> <version>",
		Short: "write one project's version directly",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.vcsLevel == "smart" {
				flags.vcsLevel = "none"
			}
			sess, err := openSession(flags)
			if err != nil {
				return err
			}
			p, err := findProject(sess.cfg, args[0])
			if err != nil {
				return err
			}
			if err := sess.store.Write(background(), p.Version, args[1], p.TagPrefix, p.TagPrefixSeparator, annotated); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d) set to %s\n", p.Name, p.ID, args[1])
			return nil
		},
	}
	cmd.Flags().BoolVar(&annotated, "annotated", false, "create an annotated tag, for tag-scheme locations")
	return cmd
}
