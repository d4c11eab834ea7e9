package version

import (
	"fmt"
	"runtime"
	"strings"
)

var (
	// Version is the semantic version number
	Version = "0.3.0-dev"

	// GitCommit is the git commit hash (injected at build time)
	GitCommit = "unknown"

	// BuildDate is the build date (injected at build time)
	BuildDate = "unknown"
)

// Info contains version information
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo returns comprehensive version information
func GetInfo() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// GetVersionString returns "evtui <version>", with the short commit when known.
func GetVersionString() string {
	if GitCommit == "unknown" || GitCommit == "" {
		return fmt.Sprintf("evtui %s", Version)
	}
	shortCommit := GitCommit
	if len(shortCommit) > 8 {
		shortCommit = shortCommit[:8]
	}
	return fmt.Sprintf("evtui %s (%s)", Version, shortCommit)
}

// GetDetailedVersionString returns the --version output
func GetDetailedVersionString() string {
	info := GetInfo()
	var b strings.Builder
	fmt.Fprintf(&b, "evtui %s\n", info.Version)
	fmt.Fprintf(&b, "Git commit: %s\n", info.GitCommit)
	fmt.Fprintf(&b, "Build date: %s\n", info.BuildDate)
	fmt.Fprintf(&b, "Go version: %s\n", info.GoVersion)
	fmt.Fprintf(&b, "Platform: %s", info.Platform)
	return b.String()
}

// IsRelease reports whether this binary was stamped by a release build
func IsRelease() bool {
	return Version != "" && GitCommit != "unknown" && !strings.Contains(Version, "dev")
}
