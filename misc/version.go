// Package misc provides build identification helpers shared across commands.
package misc

import (
	"runtime/debug"
	"sync"
)

const appName = "adt"

// GetAppName returns the short program name used for logs, temporary files
// and report archives.
func GetAppName() string {
	return appName
}

var buildInfo = sync.OnceValues(func() (version, hash string) {
	version, hash = "devel", "unknown"
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 8 {
			hash = s.Value[:8]
		}
	}
	return
})

// GetVersion returns module version embedded by the toolchain.
func GetVersion() string {
	v, _ := buildInfo()
	return v
}

// GetGitHash returns short VCS revision embedded by the toolchain.
func GetGitHash() string {
	_, h := buildInfo()
	return h
}
