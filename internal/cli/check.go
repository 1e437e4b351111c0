package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/versio-release/versio/internal/config"
)

// newCheckCmd validates the configuration document and exits non-zero on
// any parse or normalization error, without touching the repository.
func newCheckCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "validate the configuration document",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg, err := config.Load(filepath.Join(root, flags.configPath))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d project(s) configured\n", len(cfg.Projects))
			return nil
		},
	}
}
