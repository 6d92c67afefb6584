package main

import (
	"github.com/marcus/fastly-stats/cmd"
	"github.com/marcus/fastly-stats/internal/version"
)

// Version may be set at build time via -ldflags "-X main.Version=...".
// If left as "dev", it is derived from Go build info.
var Version = "dev"

func main() {
	cmd.SetVersion(version.Resolve(Version))
	cmd.Execute()
}
