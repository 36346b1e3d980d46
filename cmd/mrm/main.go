// Command mrm is the billing command line: entries, reports, exports,
// migrations and data loading.
package main

import (
	"os"

	"github.com/turtacn/MRM-Billing/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	if err := cli.Execute(cli.RuntimeBackend); err != nil {
		os.Exit(1)
	}
}

//Personal.AI order the ending
