// Package version holds build metadata set through ldflags, for example
// go build -ldflags "-X git.home.luguber.info/inful/ssio/internal/version.Version=v0.3.0".
package version

import "fmt"

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String is the one-line form printed by --version.
func String() string {
	if GitCommit == "unknown" && BuildTime == "unknown" {
		return Version
	}
	return fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
