package utils

import "strings"

// reservedChars are disallowed in store/machine identifiers and in
// file-system backend keys (SPEC_FULL.md §6 / §4.8).
const reservedChars = "/\\:*?\"<>|"

// ValidateStateID checks a state or event identifier: non-empty, at most
// 100 characters.
func ValidateStateID(id string) bool {
	return id != "" && len(id) <= 100
}

// ValidateEventID is identical to ValidateStateID (same rule, spec.md §6).
func ValidateEventID(id string) bool { return ValidateStateID(id) }

// ValidateStoreID checks a store or machine identifier: at most 255
// characters, no reserved character, no NUL byte.
func ValidateStoreID(id string) bool {
	if id == "" || len(id) > 255 {
		return false
	}
	if strings.ContainsRune(id, 0) {
		return false
	}
	return !strings.ContainsAny(id, reservedChars)
}

// SanitizeFileName replaces every ".." sequence, every reserved character
// and NUL with "_", for use as a file-system-backend key component.
func SanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "..", "_")
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r == 0 || strings.ContainsRune(reservedChars, r) {
			b.WriteByte('_')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DuplicateIDs reports the first id appearing more than once in ids, and
// whether any duplicate was found.
func DuplicateIDs(ids []string) (string, bool) {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return id, true
		}
		seen[id] = struct{}{}
	}
	return "", false
}
