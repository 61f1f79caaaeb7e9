package verifier

import "testing"

func TestFirstDuplicate(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		wantIdx int
		wantDup bool
	}{
		{"empty", nil, 0, false},
		{"single", []string{"a"}, 0, false},
		{"no duplicate", []string{"a", "b", "c"}, 0, false},
		{"adjacent repeat", []string{"a", "a"}, 1, true},
		{"repeat at end", []string{"a", "b", "a"}, 2, true},
		{"second occurrence wins", []string{"a", "b", "a", "b"}, 2, true},
		{"later value repeats first", []string{"a", "b", "b", "a"}, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, dup := firstDuplicate(tt.entries, self)
			if dup != tt.wantDup {
				t.Fatalf("firstDuplicate(%v): dup = %v, want %v", tt.entries, dup, tt.wantDup)
			}
			if dup && idx != tt.wantIdx {
				t.Errorf("firstDuplicate(%v): idx = %d, want %d", tt.entries, idx, tt.wantIdx)
			}
		})
	}
}

func TestFirstDuplicateProjection(t *testing.T) {
	type entry struct {
		key  int
		meta string
	}
	// Entries equal under the projection are duplicates even when the
	// discarded metadata differs.
	entries := []entry{{1, "x"}, {2, "y"}, {1, "z"}}
	idx, dup := firstDuplicate(entries, func(e entry) int { return e.key })
	if !dup || idx != 2 {
		t.Errorf("got (%d, %v), want (2, true)", idx, dup)
	}
}
