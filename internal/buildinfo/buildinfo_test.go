package buildinfo

import "testing"

func TestString(t *testing.T) {
	oldCommit, oldBuilt := CommitHash, BuildTime
	defer func() { CommitHash, BuildTime = oldCommit, oldBuilt }()

	CommitHash, BuildTime = "", ""
	if got := String(); got != "maintdesk dev (commit: unknown, built: unknown)" {
		t.Errorf("String() = %q", got)
	}

	CommitHash, BuildTime = "0123456789abcdef", "2026-10-01"
	if got := String(); got != "maintdesk dev (commit: 0123456, built: 2026-10-01)" {
		t.Errorf("String() = %q", got)
	}
}
