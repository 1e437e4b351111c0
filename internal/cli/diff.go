package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/versio-release/versio/internal/commitwalk"
	"github.com/versio-release/versio/internal/convcommit"
)

// newDiffCmd lists the commits since the prior-release marker, each
// annotated with its parsed conventional-commit type and which projects it
// touches, without building a Plan.
func newDiffCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "list commits since the prior-release marker",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(flags)
			if err != nil {
				return err
			}
			head, err := sess.gate.Head()
			if err != nil {
				return err
			}
			markerHash, _, err := sess.gate.ResolveTag(sess.cfg.Options.PrevTag)
			if err != nil {
				return err
			}
			commits, err := commitwalk.Walk(sess.gate.Repository(), markerHash, head)
			if err != nil {
				return err
			}
			for _, c := range commits {
				parsed := convcommit.Parse(c.Message)
				var covered []string
				for _, p := range sess.cfg.Projects {
					if sess.projector.CoversAt(c.Hash, p.ID, c.ChangedPaths) {
						covered = append(covered, p.Name)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s [%s] %s -> %v\n", shortHash(c.Hash), parsed.Type, c.Summary(), covered)
			}
			return nil
		},
	}
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}
