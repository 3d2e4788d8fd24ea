// Package version describes a truffles build and the layout of the CSV store
// it reads and writes.
//
// Release builds inject Version, Commit and BuildDate with ldflags:
//
//	go build -ldflags "-X github.com/jmylchreest/truffles/internal/version.Version=1.0.0 ..."
//
// Builds without ldflags fall back to the VCS stamp embedded by the go command.
package version

import (
	"runtime"
	"runtime/debug"
	"strings"
)

var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)

// StoreFormat numbers the column layout of plots.csv and properties.csv.
// It changes whenever a column is added, removed or reordered.
const StoreFormat = 1

// Info is what `truffles version` reports.
type Info struct {
	Version     string `json:"version"`
	Commit      string `json:"commit,omitempty"`
	Modified    bool   `json:"modified,omitempty"`
	BuildDate   string `json:"build_date,omitempty"`
	GoVersion   string `json:"go_version"`
	Platform    string `json:"platform"`
	StoreFormat int    `json:"store_format"`
}

// Get returns the build details of the running binary.
func Get() Info {
	info := Info{
		Version:     Version,
		Commit:      Commit,
		BuildDate:   BuildDate,
		GoVersion:   runtime.Version(),
		Platform:    runtime.GOOS + "/" + runtime.GOARCH,
		StoreFormat: StoreFormat,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		fillFromBuildInfo(&info, bi)
	}
	return info
}

// fillFromBuildInfo completes fields ldflags left unset. Injected values win.
func fillFromBuildInfo(info *Info, bi *debug.BuildInfo) {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = strings.TrimPrefix(bi.Main.Version, "v")
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.BuildDate == "" {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
}

// String returns the version and short commit, e.g. "1.2.0 (3f2a9c1)".
func (i Info) String() string {
	if i.Commit == "" {
		return i.Version
	}
	commit := i.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if i.Modified {
		commit += ", modified"
	}
	return i.Version + " (" + commit + ")"
}
