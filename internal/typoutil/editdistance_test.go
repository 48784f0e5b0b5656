package typoutil

import "testing"

func TestBoundedDistance(t *testing.T) {
	tests := []struct {
		name        string
		a, b        string
		maxDistance int
		want        int
	}{
		{"identical strings", "hello", "hello", 2, 0},
		{"both empty", "", "", 2, 0},
		{"one empty within limit", "ab", "", 2, 2},
		{"one empty beyond limit", "abcd", "", 2, 3},
		{"single substitution", "cat", "bat", 2, 1},
		{"single insertion", "cat", "cart", 2, 1},
		{"single deletion", "cart", "cat", 2, 1},
		{"transposition counts as one", "hte", "the", 2, 1},
		{"two edits", "kitten", "mitten", 2, 1},
		{"distance exceeds limit", "kitten", "sitting", 2, 3},
		{"length diff early exit", "a", "abcdef", 2, 3},
		{"unicode runes", "café", "cafe", 2, 1},
		{"zero budget identical", "go", "go", 0, 0},
		{"zero budget different", "go", "gone", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BoundedDistance(tt.a, tt.b, tt.maxDistance); got != tt.want {
				t.Errorf("BoundedDistance(%q, %q, %d) = %d, want %d", tt.a, tt.b, tt.maxDistance, got, tt.want)
			}
		})
	}
}

func TestBoundedDistanceSymmetry(t *testing.T) {
	pairs := [][2]string{
		{"budget", "budgte"},
		{"meeting", "meting"},
		{"report", "reprot"},
	}

	for _, p := range pairs {
		ab := BoundedDistance(p[0], p[1], 2)
		ba := BoundedDistance(p[1], p[0], 2)
		if ab != ba {
			t.Errorf("distance not symmetric for %q/%q: %d vs %d", p[0], p[1], ab, ba)
		}
	}
}

func TestIsMatch(t *testing.T) {
	if !IsMatch("the", "hte", 2) {
		t.Error("expected transposed token to match within distance 2")
	}
	if IsMatch("alpha", "omega", 2) {
		t.Error("expected unrelated tokens not to match within distance 2")
	}
}
