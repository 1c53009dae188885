// Package version holds build metadata for tessera, injected at link time:
//
//	go build -ldflags "-X github.com/jmylchreest/tessera/internal/version.Version=1.2.0 \
//	  -X github.com/jmylchreest/tessera/internal/version.Commit=$(git rev-parse HEAD) \
//	  -X github.com/jmylchreest/tessera/internal/version.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import (
	"fmt"
	"runtime"
)

// Name is the program name used in version strings and the HTTP User-Agent.
const Name = "tessera"

// Set with -ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info is the build metadata in a form suitable for JSON output.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo returns the build metadata of the running binary.
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// ShortCommit returns at most the first 8 characters of the commit hash.
func (i Info) ShortCommit() string {
	if len(i.Commit) > 8 {
		return i.Commit[:8]
	}
	return i.Commit
}

// String returns a one-line human readable description of the build.
func String() string {
	info := GetInfo()
	if info.Commit == "unknown" || info.Date == "unknown" {
		return fmt.Sprintf("%s %s (%s, %s)", Name, info.Version, info.GoVersion, info.Platform)
	}
	return fmt.Sprintf("%s %s (commit %s, built %s, %s, %s)",
		Name, info.Version, info.ShortCommit(), info.Date, info.GoVersion, info.Platform)
}

// UserAgent returns the value sent in the User-Agent header of outgoing requests.
func UserAgent() string {
	return Name + "/" + Version
}
