// wiretap CLI - diagnostic client for the wiretap HTTP tracking library
package main

import (
	"github.com/getwiretap/wiretap/pkg/cli"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	cli.Version = Version
	cli.Commit = Commit
	cli.BuildDate = BuildDate
	cli.Execute()
}
