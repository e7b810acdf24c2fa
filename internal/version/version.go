// Package version models the tmux versions a template is rendered for and the
// file names each one is written to.
package version

import (
	"sort"
	"strconv"
)

// Version is a decimal tool version such as 2.3.
type Version float64

// String formats v with exactly one decimal place, e.g. 2 -> "2.0".
func (v Version) String() string {
	return strconv.FormatFloat(float64(v), 'f', 1, 64)
}

// FileName is the artifact name for v, e.g. "2.3.conf".
func (v Version) FileName() string {
	return v.String() + ".conf"
}

// FromFloats converts a decoded version list, preserving declaration order.
func FromFloats(fs []float64) []Version {
	out := make([]Version, len(fs))
	for i, f := range fs {
		out[i] = Version(f)
	}
	return out
}

// Collisions groups versions that format to the same file name. Only names
// shared by two or more entries are returned.
func Collisions(versions []Version) map[string][]Version {
	byName := make(map[string][]Version, len(versions))
	for _, v := range versions {
		byName[v.FileName()] = append(byName[v.FileName()], v)
	}
	for name, vs := range byName {
		if len(vs) < 2 {
			delete(byName, name)
		}
	}
	return byName
}

// Names returns the artifact names for versions in declaration order.
func Names(versions []Version) []string {
	names := make([]string, len(versions))
	for i, v := range versions {
		names[i] = v.FileName()
	}
	return names
}

// SortedKeys is a small helper for deterministic logging of collision maps.
func SortedKeys(m map[string][]Version) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
