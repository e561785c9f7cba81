// Package strings provides utility functions for string slices.
package strings

// Contain return true if the strings includes at least one target string.
func Contain(strings []string, target string) bool {
	for _, str := range strings {
		if str == target {
			return true
		}
	}
	return false
}

// IsUnique return true if the elements of input list are unique.
func IsUnique(list []string) bool {
	seen := make(map[string]struct{}, len(list))
	for _, val := range list {
		if _, exist := seen[val]; exist {
			return false
		}
		seen[val] = struct{}{}
	}
	return true
}
