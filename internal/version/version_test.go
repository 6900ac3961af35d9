package version

import "testing"

func TestString(t *testing.T) {
	origVersion, origCommit, origTime := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = origVersion, origCommit, origTime })

	Version, GitCommit, BuildTime = "v1.2.3", "unknown", "unknown"
	if got := String(); got != "v1.2.3" {
		t.Fatalf("String() = %q, want bare version", got)
	}

	GitCommit, BuildTime = "abc123", "2026-01-02"
	if got, want := String(), "v1.2.3 (commit abc123, built 2026-01-02)"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
