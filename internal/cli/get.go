package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/versio-release/versio/internal/model"
	"github.com/versio-release/versio/internal/verrors"
)

// newGetCmd reads a single project's current version through ValueStore,
// independent of the plan engine.
func newGetCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <project>",
		Short: "print one project's current version",
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
			v, err := sess.store.Read(background(), p.Version, p.TagPrefix, p.TagPrefixSeparator)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

// findProject resolves ref by numeric id or exact name.
func findProject(cfg model.Config, ref string) (model.Project, error) {
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		if p, ok := cfg.ProjectByID(uint(id)); ok {
			return p, nil
		}
	}
	for _, p := range cfg.Projects {
		if p.Name == ref {
			return p, nil
		}
	}
	return model.Project{}, verrors.NewConfigError(fmt.Sprintf("no project named or numbered %q", ref), nil)
}
