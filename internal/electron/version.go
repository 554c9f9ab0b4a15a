// Package electron holds the Electron release-line policy for the known
// window-server performance issue.
package electron

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is the numeric major.minor.patch prefix of an Electron version
type Version struct {
	Major int
	Minor int
	Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// floors maps each patched release line to the first fixed version.
// Lines above the newest entry are always fixed, lines below the oldest never are.
var floors = map[int]Version{
	36: {36, 9, 2},
	37: {37, 6, 0},
	38: {38, 2, 0},
	39: {39, 0, 0},
}

const (
	oldestPatchedMajor = 36
	newestPatchedMajor = 39
)

// ParseVersion keeps the numeric dot-separated segments of s, skipping the
// rest, so "36.9.1-beta.2" reads as 36.9.2.
// ok is false when fewer than two numeric segments are present.
func ParseVersion(s string) (Version, bool) {
	var nums []int
	for _, part := range strings.Split(s, ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		nums = append(nums, n)
	}
	if len(nums) < 2 {
		return Version{}, false
	}

	v := Version{Major: nums[0], Minor: nums[1]}
	if len(nums) > 2 {
		v.Patch = nums[2]
	}
	return v, true
}

// Floor returns the first fixed version of a release line
func Floor(major int) (Version, bool) {
	v, ok := floors[major]
	return v, ok
}

// IsVersionFixed reports whether an Electron version carries the fix.
// Unparseable versions are treated as not fixed.
func IsVersionFixed(version string) bool {
	v, ok := ParseVersion(version)
	if !ok {
		return false
	}
	return v.Fixed()
}

// Fixed applies the per-release-line threshold table
func (v Version) Fixed() bool {
	if v.Major > newestPatchedMajor {
		return true
	}
	if v.Major < oldestPatchedMajor {
		return false
	}

	floor := floors[v.Major]
	if v.Minor != floor.Minor {
		return v.Minor > floor.Minor
	}
	return v.Patch >= floor.Patch
}
