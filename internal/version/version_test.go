package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestInfo_String(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "dev"}, "dev"},
		{Info{Version: "1.2.0", Commit: "3f2a9c1d8e7b"}, "1.2.0 (3f2a9c1)"},
		{Info{Version: "1.2.0", Commit: "3f2a9c1d8e7b", Modified: true}, "1.2.0 (3f2a9c1, modified)"},
		{Info{Version: "1.2.0", Commit: "abc"}, "1.2.0 (abc)"},
	}

	for _, tt := range tests {
		if got := tt.info.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestFillFromBuildInfo_VCSStamp(t *testing.T) {
	info := Info{Version: "dev"}
	fillFromBuildInfo(&info, &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/jmylchreest/truffles", Version: "v0.4.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "3f2a9c1d8e7b"},
			{Key: "vcs.time", Value: "2024-03-09T14:30:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	})

	if info.Version != "0.4.1" {
		t.Errorf("Version = %q, want 0.4.1", info.Version)
	}
	if info.Commit != "3f2a9c1d8e7b" {
		t.Errorf("Commit = %q", info.Commit)
	}
	if info.BuildDate != "2024-03-09T14:30:00Z" {
		t.Errorf("BuildDate = %q", info.BuildDate)
	}
	if !info.Modified {
		t.Error("expected Modified")
	}
}

func TestFillFromBuildInfo_LdflagsWin(t *testing.T) {
	info := Info{Version: "1.0.0", Commit: "release", BuildDate: "2024-01-01"}
	fillFromBuildInfo(&info, &debug.BuildInfo{
		Main: debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "3f2a9c1d8e7b"},
			{Key: "vcs.time", Value: "2024-03-09T14:30:00Z"},
		},
	})

	if info.Version != "1.0.0" || info.Commit != "release" || info.BuildDate != "2024-01-01" {
		t.Errorf("injected values overwritten: %+v", info)
	}
}

func TestGet_StoreFormat(t *testing.T) {
	info := Get()
	if info.StoreFormat != StoreFormat {
		t.Errorf("StoreFormat = %d, want %d", info.StoreFormat, StoreFormat)
	}
	if !strings.Contains(info.Platform, "/") {
		t.Errorf("unexpected platform %q", info.Platform)
	}
}
