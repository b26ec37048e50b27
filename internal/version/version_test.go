package version

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	defer func(c string) { GitCommit = c }(GitCommit)

	GitCommit = "unknown"
	assert.Equal(t, Version, Info())

	GitCommit = "abc1234"
	assert.Equal(t, Version+"+abc1234", Info())
}

func TestFullInfo(t *testing.T) {
	info := FullInfo()
	assert.True(t, strings.HasPrefix(info, "vbsym "+Version))
	assert.Contains(t, info, GitCommit)
	assert.Contains(t, info, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestBuildIDStable(t *testing.T) {
	id := BuildID()
	assert.NotEmpty(t, id)
	assert.Equal(t, id, BuildID())
}

func TestFingerprint(t *testing.T) {
	base := &debug.BuildInfo{
		GoVersion: "go1.24.2",
		Main:      debug.Module{Path: "github.com/standardbeagle/vbsym"},
		Deps:      []*debug.Module{{Path: "go.lsp.dev/protocol", Version: "v0.12.0"}},
		Settings:  []debug.BuildSetting{{Key: "vcs.revision", Value: "a"}, {Key: "GOOS", Value: "linux"}},
	}
	id := fingerprint(base)
	assert.Len(t, id, 16)

	otherOS := *base
	otherOS.Settings = []debug.BuildSetting{{Key: "vcs.revision", Value: "a"}, {Key: "GOOS", Value: "windows"}}
	assert.Equal(t, id, fingerprint(&otherOS), "only vcs settings count")

	otherRev := *base
	otherRev.Settings = []debug.BuildSetting{{Key: "vcs.revision", Value: "b"}}
	assert.NotEqual(t, id, fingerprint(&otherRev))

	otherDep := *base
	otherDep.Deps = []*debug.Module{{Path: "go.lsp.dev/protocol", Version: "v0.13.0"}}
	assert.NotEqual(t, id, fingerprint(&otherDep))
}
