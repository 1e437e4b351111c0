package cli

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/versio-release/versio/internal/model"
)

type projectInfo struct {
	ID       uint     `json:"id"`
	Name     string   `json:"name"`
	Root     string   `json:"root"`
	Version  string   `json:"version"`
	Tags     string   `json:"tag_prefix,omitempty"`
	Labels   []string `json:"labels,omitempty"`
	Depends  []uint   `json:"depends,omitempty"`
}

// newInfoCmd emits project metadata as JSON, per spec.md §6.
func newInfoCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "emit project metadata as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(flags)
			if err != nil {
				return err
			}
			current, err := sess.currentVersions(context.Background())
			if err != nil {
				return err
			}
			infos := make([]projectInfo, 0, len(sess.cfg.Projects))
			for _, p := range sess.cfg.Projects {
				infos = append(infos, projectInfo{
					ID:      p.ID,
					Name:    p.Name,
					Root:    p.Root,
					Version: current[p.ID],
					Tags:    p.TagPrefix,
					Labels:  p.Labels,
					Depends: dependeeIDs(p),
				})
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(infos); err != nil {
				return err
			}
			return nil
		},
	}
}

func dependeeIDs(p model.Project) []uint {
	if len(p.Depends) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(p.Depends))
	for id := range p.Depends {
		ids = append(ids, id)
	}
	return ids
}
