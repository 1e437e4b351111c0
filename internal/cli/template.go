package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newTemplateCmd prints the changelog template body a project resolves to
// (its own, or the package default), without rendering it against any
// commits.
func newTemplateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "template <project>",
		Short: "print the changelog template a project resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(flags)
			if err != nil {
				return err
			}
			p, err := findProject(sess.cfg, args[0])
			if err != nil {
				return err
			}
			if p.Changelog == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no changelog configured for this project; no changelog is rendered for it")
				return nil
			}
			if p.Changelog.Template == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no custom template configured; the built-in default template would be used")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.Changelog.Template)
			return nil
		},
	}
}
