package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/versio-release/versio/internal/planexec"
	"github.com/versio-release/versio/internal/valuestore"
	"github.com/versio-release/versio/internal/verrors"
)

func newReleaseCmd(flags *globalFlags) *cobra.Command {
	var (
		dryRun        bool
		changelogOnly bool
		lockTags      bool
		showAll       bool
		branch        string
		signTags      bool
		pause         string
		resume        bool
		abort         bool
	)

	cmd := &cobra.Command{
		Use:   "release",
		Short: "build the plan, then write, commit, tag, and push it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if resume || abort {
				return fmt.Errorf("--resume/--abort are not implemented: re-run `release` after resolving the paused phase by hand")
			}
			if pause != "" && pause != "commit" {
				return fmt.Errorf("--pause only accepts \"commit\"")
			}

			sess, err := openSession(flags)
			if err != nil {
				return err
			}
			plan, err := sess.buildPlan(background(), lockTags, true)
			if err != nil {
				return err
			}
			if !plan.Changed() {
				fmt.Fprintln(cmd.OutOrStdout(), "no projects advance; nothing to release")
				return nil
			}
			printPlan(plan, showAll)

			log := newLogger(flags)
			exec := &planexec.Executor{
				Store: valuestore.New(sess.root, sess.gate),
				Gate:  sess.gate,
				Log:   log,
			}
			opts := planexec.ApplyOptions{
				DryRun:        dryRun || pause == "commit",
				ChangelogOnly: changelogOnly,
				LockTags:      lockTags,
				Branch:        branch,
				SignTags:      signTags,
			}
			if err := exec.Apply(background(), sess.cfg, plan, opts); err != nil {
				if pf, ok := err.(*verrors.PolicyFail); ok {
					return fmt.Errorf("release refused: %w", pf)
				}
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute and render everything, but do not commit, tag, or push")
	cmd.Flags().BoolVar(&changelogOnly, "changelog-only", false, "write locations and changelogs, run the post-write hook, but stop before committing")
	cmd.Flags().BoolVar(&lockTags, "lock-tags", false, "do not recreate tags that existed at the prior marker")
	cmd.Flags().BoolVar(&showAll, "show-all", false, "print every group and commit under each project before applying")
	cmd.Flags().StringVar(&branch, "branch", "main", "branch to push")
	cmd.Flags().BoolVar(&signTags, "sign-tags", false, "create annotated per-project tags (the tags are not OpenPGP-signed)")
	cmd.Flags().StringVar(&pause, "pause", "", "pause the release before a named phase (only \"commit\" is supported)")
	cmd.Flags().BoolVar(&resume, "resume", false, "not supported: release returns an error when this is set")
	cmd.Flags().BoolVar(&abort, "abort", false, "not supported: release returns an error when this is set")

	return cmd
}
