package catalog

import (
	"strconv"
	"strings"
)

// ValidSectionNumber reports whether s is a dot-separated sequence of
// decimal components, e.g. "14", "14.2", "16.1.9".
func ValidSectionNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}
		for _, r := range part {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

// CompareSectionNumbers orders section numbers by numeric comparison of
// their dot-separated components, so "14.10" sorts after "14.2".
// Both arguments must be valid section numbers.
func CompareSectionNumbers(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		ai, _ := strconv.Atoi(as[i])
		bi, _ := strconv.Atoi(bs[i])
		if ai != bi {
			if ai < bi {
				return -1
			}
			return 1
		}
	}
	// "14" sorts before "14.1"
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	}
	return 0
}
