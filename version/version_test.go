package version

import (
	"runtime/debug"
	"testing"
)

func stubBuild(t *testing.T, bi *debug.BuildInfo) {
	t.Helper()
	origVersion, origCommit, origBuildTime, origRead := Version, GitCommit, BuildTime, readBuildInfo
	t.Cleanup(func() {
		Version, GitCommit, BuildTime, readBuildInfo = origVersion, origCommit, origBuildTime, origRead
	})
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
}

func TestGet_Defaults(t *testing.T) {
	stubBuild(t, nil)
	Version, GitCommit, BuildTime = "dev", "", ""

	info := Get()
	if info.Version != "dev" || info.IsRelease {
		t.Errorf("unexpected info: %+v", info)
	}
	if got := info.String(); got != "graphx dev" {
		t.Errorf("unexpected banner %q", got)
	}
}

func TestGet_FromBuildInfo(t *testing.T) {
	stubBuild(t, &debug.BuildInfo{
		GoVersion: "go1.26.0",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.modified", Value: "true"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	})
	Version, GitCommit, BuildTime = "1.2.0", "", ""

	info := Get()
	if info.GitCommit != "0123456" || !info.IsDirty || info.BuildTime != "2026-01-02T03:04:05Z" {
		t.Errorf("unexpected info: %+v", info)
	}
	if got := info.Short(); got != "1.2.0-0123456-dirty" {
		t.Errorf("unexpected short version %q", got)
	}
	if got := info.String(); got != "graphx 1.2.0-0123456-dirty (built 2026-01-02T03:04:05Z, go1.26.0)" {
		t.Errorf("unexpected banner %q", got)
	}
}

func TestGet_LdflagsWin(t *testing.T) {
	stubBuild(t, &debug.BuildInfo{
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "ffffffffff"}},
	})
	Version, GitCommit, BuildTime = "2.0.0", "abc1234", "yesterday"

	info := Get()
	if info.GitCommit != "abc1234" || info.BuildTime != "yesterday" || !info.IsRelease {
		t.Errorf("unexpected info: %+v", info)
	}
}
