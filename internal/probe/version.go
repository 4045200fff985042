package probe

import (
	"fmt"
	"regexp"
	"strconv"
)

// Version is a parsed major.minor.patch triple.
type Version struct {
	Major, Minor, Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Satisfies reports whether v has exactly the given major version and at
// least the given minor version.
func (v Version) Satisfies(major, minMinor int) bool {
	return v.Major == major && v.Minor >= minMinor
}

// ParseVersion extracts "<name> <major>.<minor>.<patch>" from version query
// output such as "Python 3.11.4".
func ParseVersion(name, output string) (Version, bool) {
	re, err := regexp.Compile(regexp.QuoteMeta(name) + ` (\d+)\.(\d+)\.(\d+)`)
	if err != nil {
		return Version{}, false
	}
	m := re.FindStringSubmatch(output)
	if m == nil {
		return Version{}, false
	}
	var parts [3]int
	for i := range parts {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return Version{}, false
		}
		parts[i] = n
	}
	return Version{Major: parts[0], Minor: parts[1], Patch: parts[2]}, true
}
