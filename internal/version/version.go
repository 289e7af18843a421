// Package version reports the tilepipe build.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/example/tilepipe/internal/version.Commit=...".
var (
	Commit    = ""
	BuildTime = ""
)

// String describes the running binary. Values missing from ldflags fall
// back to the VCS stamp the go tool embeds.
func String() string {
	commit, built, dirty := Commit, BuildTime, false
	if info, ok := debug.ReadBuildInfo(); ok {
		commit, built, dirty = fromSettings(info.Settings, commit, built)
	}
	return format(commit, built, dirty)
}

func fromSettings(settings []debug.BuildSetting, commit, built string) (string, string, bool) {
	dirty := false
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if commit == "" {
				commit = s.Value
			}
		case "vcs.time":
			if built == "" {
				built = s.Value
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	return commit, built, dirty
}

func format(commit, built string, dirty bool) string {
	if commit == "" {
		return "tilepipe dev"
	}
	if len(commit) > 12 {
		commit = commit[:12]
	}
	if dirty {
		commit += "-dirty"
	}
	if built == "" {
		return fmt.Sprintf("tilepipe %s", commit)
	}
	return fmt.Sprintf("tilepipe %s (%s)", commit, built)
}
