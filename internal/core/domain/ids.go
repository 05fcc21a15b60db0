package domain

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a fresh opaque entity identifier.
func NewID() string {
	return uuid.NewString()
}

// Now returns the current UTC time truncated to the precision the document
// store keeps, so values read back compare equal to values written.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// UniqueIDs returns ids with blanks and duplicates removed, keeping first
// occurrence order. The result is never nil.
func UniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Difference returns the ids in a that are not in b, as a set.
func Difference(a, b []string) []string {
	exclude := make(map[string]struct{}, len(b))
	for _, id := range b {
		exclude[id] = struct{}{}
	}
	out := make([]string, 0)
	for _, id := range UniqueIDs(a) {
		if _, ok := exclude[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// SameIDs reports whether a and b hold the same set of ids.
func SameIDs(a, b []string) bool {
	return len(Difference(a, b)) == 0 && len(Difference(b, a)) == 0
}
