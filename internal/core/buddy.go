package core

import (
	"sort"
	"strings"
)

// ResolveBuddy looks up the buddy a ride references. A nil or dangling
// reference is a solo ride and reports ok=false.
func ResolveBuddy(buddies []Buddy, id *string) (Buddy, bool) {
	if id == nil {
		return Buddy{}, false
	}
	for _, b := range buddies {
		if b.ID == *id {
			return b, true
		}
	}
	return Buddy{}, false
}

// SortBuddies returns a copy of buddies ordered by name, case-insensitively.
func SortBuddies(buddies []Buddy) []Buddy {
	out := make([]Buddy, len(buddies))
	copy(out, buddies)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}
