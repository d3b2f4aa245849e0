package buildinfo

import (
	"fmt"
	"time"
)

// Set via -ldflags at build time
var (
	BuildTime  string // when the binary was compiled
	CommitHash string // short git commit hash
)

// StartTime is recorded when the process starts
var StartTime = time.Now().UTC().Format(time.RFC3339)

// String returns the version line shown by maintctl --version and /health
func String() string {
	commit := CommitHash
	if commit == "" {
		commit = "unknown"
	}
	if len(commit) > 7 {
		commit = commit[:7]
	}
	built := BuildTime
	if built == "" {
		built = "unknown"
	}
	return fmt.Sprintf("maintdesk dev (commit: %s, built: %s)", commit, built)
}
