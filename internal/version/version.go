package version

import (
	"runtime/debug"
	"strings"
)

const devel = "(devel)"

// String reports the launcher's module version, or "(devel)" for local,
// dirty and pseudo-versioned builds.
func String() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return devel
	}
	return normalize(info.Main.Version)
}

func normalize(v string) string {
	switch {
	case v == "", v == devel:
		return devel
	case strings.Contains(v, "+dirty"), isPseudoVersion(v):
		return devel
	default:
		return v
	}
}

// isPseudoVersion matches Go pseudo-versions such as
// v0.0.0-20240101120000-abcdef123456.
func isPseudoVersion(v string) bool {
	v, _, _ = strings.Cut(v, "+")
	parts := strings.Split(v, "-")
	if len(parts) < 3 {
		return false
	}
	stamp, rev := parts[len(parts)-2], parts[len(parts)-1]
	return len(stamp) == 14 && only(stamp, "0123456789") &&
		len(rev) >= 12 && only(rev, "0123456789abcdefABCDEF")
}

func only(s, set string) bool {
	return strings.Trim(s, set) == ""
}
