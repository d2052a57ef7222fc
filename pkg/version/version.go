// Package version exposes build metadata injected at link time.
package version

import "fmt"

// Build metadata, overridden via -ldflags at release time.
var (
	// Version is the semantic version of the binary.
	Version = "dev"

	// Commit is the short git hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// String returns the human-readable version line.
func String() string {
	return fmt.Sprintf("tokbench %s (commit: %s, built: %s)", Version, Commit, Date)
}
