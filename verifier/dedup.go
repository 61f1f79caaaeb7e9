package verifier

// firstDuplicate scans entries in order and returns the position of
// the first entry whose key equals the key of an earlier entry. The
// reported position is always the second occurrence of the first key
// observed to repeat. Single linear pass, O(n) time and space.
func firstDuplicate[T any, K comparable](entries []T, key func(T) K) (int, bool) {
	seen := make(map[K]struct{}, len(entries))
	for i, e := range entries {
		k := key(e)
		if _, dup := seen[k]; dup {
			return i, true
		}
		seen[k] = struct{}{}
	}
	return 0, false
}

// self is the identity projection, for tables whose entries are their
// own uniqueness key.
func self[T comparable](e T) T { return e }
