package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/versio-release/versio/internal/globset"
)

// newFilesCmd previews which repository-relative paths a project's
// includes/excludes resolve to, independent of any commit history.
func newFilesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "files <project>",
		Short: "list the files a project's globs currently match",
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
			set := globset.New(p.Root, p.Includes, p.Excludes)
			return filepath.Walk(sess.root, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() {
					if info.Name() == ".git" {
						return filepath.SkipDir
					}
					return nil
				}
				rel, err := filepath.Rel(sess.root, path)
				if err != nil {
					return err
				}
				if set.Matches(rel) {
					fmt.Fprintln(cmd.OutOrStdout(), rel)
				}
				return nil
			})
		},
	}
}
