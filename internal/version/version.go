// Package version reports the vbsym release and a fingerprint of the running
// binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Version is the release of vbsym.
const Version = "0.3.0"

// Set at build time:
//
//	go build -ldflags "-X github.com/standardbeagle/vbsym/internal/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	BuildDate = "development"
	GitCommit = "unknown"
)

// Info returns the release string shown by --version.
func Info() string {
	if GitCommit == "unknown" {
		return Version
	}
	return Version + "+" + GitCommit
}

// FullInfo returns the release with commit, build date and Go runtime.
func FullInfo() string {
	return fmt.Sprintf("vbsym %s (commit: %s, built: %s, %s %s/%s)",
		Version, GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

var (
	buildID     string
	buildIDOnce sync.Once
)

// BuildID fingerprints the binary from its Go version, main module, module
// dependencies and VCS settings. Two binaries with the same BuildID produce
// the same symbol tables.
func BuildID() string {
	buildIDOnce.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			buildID = Version + "-" + GitCommit
			return
		}
		buildID = fingerprint(info)
	})
	return buildID
}

func fingerprint(info *debug.BuildInfo) string {
	var b strings.Builder
	b.WriteString(info.GoVersion)
	b.WriteString(info.Main.Path)
	b.WriteString(info.Main.Version)
	for _, dep := range info.Deps {
		b.WriteString(dep.Path)
		b.WriteString(dep.Version)
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision", "vcs.modified", "vcs.time":
			b.WriteString(s.Key)
			b.WriteString(s.Value)
		}
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(b.String()))
}
