// Package buildinfo reports which build of gdatamvn is running.
//
// Release builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/gdatamvn/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/gdatamvn/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/gdatamvn/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Unstamped builds (go install, go run) fall back to the module version and
// VCS settings embedded by the Go toolchain.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"sync"
)

var (
	// Version is the release version (e.g., "v1.2.3").
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// Info is a resolved snapshot of the build variables.
type Info struct {
	Version string
	Commit  string
	Date    string
}

var (
	resolveOnce sync.Once
	resolved    Info
)

// Get returns the build information, filling unstamped fields from the
// embedded module metadata when available.
func Get() Info {
	resolveOnce.Do(func() {
		resolved = Info{Version: Version, Commit: Commit, Date: Date}
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		if resolved.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			resolved.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && resolved.Commit == "none":
				resolved.Commit = s.Value
			case s.Key == "vcs.time" && resolved.Date == "unknown":
				resolved.Date = s.Value
			}
		}
	})
	return resolved
}

// String returns the formatted build information.
func (i Info) String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", i.Version, i.Commit, i.Date)
}

// Template returns the version template for cobra.
func Template() string {
	i := Get()
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", i.Version, i.Commit, i.Date)
}

// UserAgent returns the User-Agent header sent with archive downloads.
func UserAgent() string {
	return "gdatamvn/" + Get().Version
}
