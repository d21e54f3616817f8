// Package version holds build information injected with -ldflags, e.g.
//
//	-X github.com/mattsolo1/grove-axisregions/pkg/version.Version=v0.3.0
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	Version   = "dev"
	Commit    = ""
	Branch    = ""
	BuildDate = ""
)

// Info is the build information of the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Branch    string `json:"branch"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// GetInfo returns the injected build information, filling the commit from
// the embedded VCS stamp when it was not injected.
func GetInfo() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Branch:    Branch,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info.Commit == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" {
					info.Commit = s.Value
				}
			}
		}
	}
	return info
}

func (i Info) String() string {
	commit := i.Commit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	s := fmt.Sprintf("axr %s", i.Version)
	if commit != "" {
		s += fmt.Sprintf(" (%s", commit)
		if i.Branch != "" {
			s += " on " + i.Branch
		}
		s += ")"
	}
	if i.BuildDate != "" {
		s += " built " + i.BuildDate
	}
	return s + fmt.Sprintf(" %s %s", i.GoVersion, i.Platform)
}
