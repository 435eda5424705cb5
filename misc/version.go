package misc

import (
	"runtime/debug"
	"strings"
)

const appName = "pandoc2hwpx"

// Set at build time with -ldflags "-X pandoc2hwpx/misc.version=..."
var (
	version = "dev"
	gitHash = ""
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

// GetGitHash returns the commit the binary was built from, falling back to
// VCS information embedded by the toolchain.
func GetGitHash() string {
	if gitHash != "" {
		return gitHash
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return strings.TrimSpace(s.Value)
		}
	}
	return "unknown"
}
