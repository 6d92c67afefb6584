// Package version derives the version string reported by --version.
package version

import (
	"runtime/debug"
	"strings"
)

// IsDevelopmentVersion returns true for non-release versions.
func IsDevelopmentVersion(v string) bool {
	if v == "" || v == "unknown" || v == "dev" || v == "devel" {
		return true
	}
	return strings.HasPrefix(v, "devel+")
}

// Resolve prefers a version injected at link time, then the module version
// recorded by `go install module@vX.Y.Z`, then the VCS revision.
func Resolve(injected string) string {
	info, _ := debug.ReadBuildInfo()
	return resolve(injected, info)
}

func resolve(injected string, info *debug.BuildInfo) string {
	if !IsDevelopmentVersion(injected) {
		return injected
	}
	if info == nil {
		return injected
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	var rev string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if rev == "" {
		return injected
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	parts := []string{"devel", rev}
	if dirty {
		parts = append(parts, "dirty")
	}
	return strings.Join(parts, "+")
}
