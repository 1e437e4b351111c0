// Command versio is the release-orchestration engine's CLI entry point.
package main

import (
	"os"

	"github.com/versio-release/versio/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
