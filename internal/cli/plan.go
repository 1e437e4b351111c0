package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/versio-release/versio/internal/verrors"
)

func newPlanCmd(flags *globalFlags) *cobra.Command {
	var showAll bool
	var lockTags bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "build and print the plan without writing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(flags)
			if err != nil {
				return err
			}
			plan, err := sess.buildPlan(background(), lockTags, true)
			if err != nil {
				if _, ok := err.(*verrors.SubdivisionWarning); !ok {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "warning:", err)
				plan, err = sess.buildPlan(background(), lockTags, false)
				if err != nil {
					return err
				}
			}
			if !plan.Changed() {
				fmt.Fprintln(cmd.OutOrStdout(), "no projects advance")
				return nil
			}
			printPlan(plan, showAll)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showAll, "show-all", false, "print every group and commit under each project")
	cmd.Flags().BoolVar(&lockTags, "lock-tags", false, "do not recreate tags that existed at the prior marker")
	return cmd
}
