package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// detector recognizes one ecosystem's manifest file and names the
// VersionLocation scaffolded for it. Adapted from golang-dep's own
// init.go, which walks the tree looking for an existing manifest/lock
// pair before offering to create one.
type detector struct {
	manifest string
	format   string // "json" or "toml", matched against rawVersion keys
	selector string
}

var detectors = []detector{
	{manifest: "package.json", format: "json", selector: "version"},
	{manifest: "Cargo.toml", format: "toml", selector: "package.version"},
	{manifest: "go.mod", format: "", selector: ""}, // go.mod carries no version field; noted, not scaffolded
}

// newInitCmd scaffolds a configuration document by detecting recognized
// manifest files at the repository root, per spec.md §6.
func newInitCmd(flags *globalFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "scaffold a configuration document from detected manifest files",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := os.Getwd()
			if err != nil {
				return err
			}
			path := filepath.Join(root, flags.configPath)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; pass --force to overwrite", flags.configPath)
			}

			name := filepath.Base(root)
			var body string
			for _, d := range detectors {
				if d.format == "" || !fileExists(root, d.manifest) {
					continue
				}
				body = scaffoldProject(name, d.manifest, d.format, d.selector)
				break
			}
			if body == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no recognized manifest found; writing an empty document")
				body = "projects: []\n"
			}

			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", flags.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration document")
	return cmd
}

func fileExists(root, name string) bool {
	_, err := os.Stat(filepath.Join(root, name))
	return err == nil
}

func scaffoldProject(name, file, format, selector string) string {
	return fmt.Sprintf(`projects:
  - name: %s
    id: 1
    root: "."
    version:
      file: %s
      %s: %s
`, name, file, format, selector)
}
