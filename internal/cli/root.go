// Package cli wires the command surface from spec.md §6 onto
// spf13/cobra, the way 40-odd release-tooling repos in the retrieved
// pack build their CLIs, replacing golang-dep's own hand-rolled
// flag.FlagSet dispatch in main.go/cmd.go.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/versio-release/versio/internal/config"
	"github.com/versio-release/versio/internal/repogate"
	"github.com/versio-release/versio/internal/verrors"
	"github.com/versio-release/versio/internal/vlog"
)

// globalFlags holds the persistent flags every subcommand shares.
type globalFlags struct {
	configPath string
	prevTag    string
	vcsLevel   string
	dryRun     bool
	verbose    bool
	noCurrent  bool
}

// NewRoot builds the `versio` root command.
func NewRoot() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "versio",
		Short:         "release-orchestration engine for monorepos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", config.DefaultFileName, "path to the project configuration document")
	root.PersistentFlags().StringVar(&flags.prevTag, "prev-tag", "", "override the prior-release marker tag name")
	root.PersistentFlags().StringVar(&flags.vcsLevel, "vcs-level", "smart", "preferred VCS capability level: none|local|remote|smart")
	root.PersistentFlags().BoolVar(&flags.dryRun, "dry-run", false, "forbid writes at any VCS level")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().BoolVar(&flags.noCurrent, "no-current", false, "allow running with an unclean working tree at VCS level local")

	root.AddCommand(
		newCheckCmd(flags),
		newShowCmd(flags),
		newGetCmd(flags),
		newSetCmd(flags),
		newDiffCmd(flags),
		newFilesCmd(flags),
		newPlanCmd(flags),
		newReleaseCmd(flags),
		newInfoCmd(flags),
		newInitCmd(flags),
		newTemplateCmd(flags),
		newSchemaCmd(flags),
	)
	return root
}

// Main is the entry point cmd/versio/main.go calls. It reports errors with
// a one-line summary plus causal chain (spec.md §7) and returns the
// process exit code.
func Main() int {
	if err := NewRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, verrors.Chain(err))
		return 1
	}
	return 0
}

func newLogger(flags *globalFlags) *vlog.Logger {
	level := logrus.InfoLevel
	if flags.verbose {
		level = logrus.DebugLevel
	}
	return vlog.New(os.Stderr, level)
}

func parseLevel(s string) (repogate.Level, error) {
	switch s {
	case "none":
		return repogate.LevelNone, nil
	case "local":
		return repogate.LevelLocal, nil
	case "remote":
		return repogate.LevelRemote, nil
	case "smart":
		return repogate.LevelSmart, nil
	default:
		return 0, fmt.Errorf("unrecognized --vcs-level %q", s)
	}
}

// background is used for commands that have no user-facing cancellation
// (spec.md §5: "There is no user-visible cancellation channel").
func background() context.Context { return context.Background() }
