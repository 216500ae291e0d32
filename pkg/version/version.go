// Package version reports the build identity of vlanadmin.
package version

import (
	"runtime"
	"runtime/debug"
)

// Version, GitCommit, and BuildDate are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/newtron-network/vlanadmin/pkg/version.Version=v0.3.0 \
//	  -X github.com/newtron-network/vlanadmin/pkg/version.GitCommit=abc1234 \
//	  -X github.com/newtron-network/vlanadmin/pkg/version.BuildDate=2026-01-01T00:00:00Z"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Commit returns GitCommit, falling back to the VCS revision embedded by
// the go tool when ldflags were not set.
func Commit() string {
	if GitCommit != "unknown" {
		return GitCommit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				return s.Value[:7]
			}
		}
	}
	return GitCommit
}

// Info returns a formatted version string for display.
func Info() string {
	return Version + " (" + Commit() + ") built " + BuildDate + " " + runtime.Version()
}
