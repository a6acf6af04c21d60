// Package version holds the build identity of the ferrule binary. The
// variables are overridden at build time via -ldflags.
package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders Version with its major, minor and patch parts coloured.
// A version that is not dotted is returned unchanged.
func Colored(enabled bool) string {
	parts := strings.SplitN(Version, ".", 3)
	if !enabled || len(parts) != 3 {
		return Version
	}
	paint := func(c *color.Color, s string) string {
		c.EnableColor()
		return c.Sprint(s)
	}
	patch, suffix := parts[2], ""
	if i := strings.IndexAny(patch, "-+"); i >= 0 {
		patch, suffix = patch[:i], patch[i:]
	}
	return paint(majorColor, parts[0]) + "." + paint(minorColor, parts[1]) + "." + paint(patchColor, patch) + suffix
}

// Line is the single-line summary printed by `ferrule version`.
func Line(colored bool) string {
	var sb strings.Builder
	sb.WriteString("ferrule ")
	sb.WriteString(Colored(colored))
	if GitCommit != "" {
		commit := GitCommit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		sb.WriteString(" (" + commit + ")")
	}
	if BuildDate != "" {
		sb.WriteString(" built " + BuildDate)
	}
	return sb.String()
}
