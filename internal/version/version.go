package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via ldflags at release time
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// BuildInfo describes the running binary
type BuildInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get returns build information. Binaries installed with `go install`
// carry no ldflags, so the module version recorded by the toolchain is
// used instead of "dev".
func Get() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info.Version == "dev" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
	}
	return info
}

// Info returns version information as a formatted string
func Info() string {
	bi := Get()
	return fmt.Sprintf("astdiff %s\nCommit: %s\nBuilt: %s\nGo: %s\nOS/Arch: %s",
		bi.Version, bi.Commit, bi.Date, bi.GoVersion, bi.Platform)
}

// Short returns just the version string
func Short() string {
	return Get().Version
}
