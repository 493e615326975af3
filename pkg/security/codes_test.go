package security

import "testing"

func TestRandIntStaysInRangeAndCoversCharset(t *testing.T) {
	seen := make(map[int]bool)
	for i := 0; i < 2000; i++ {
		n, err := randInt(len(codeCharset))
		if err != nil {
			t.Fatalf("randInt: %v", err)
		}
		if n < 0 || n >= len(codeCharset) {
			t.Fatalf("draw %d out of range", n)
		}
		seen[n] = true
	}
	// 2000 draws over 31 indices reach every one unless the sampling skips
	// part of the range.
	if len(seen) != len(codeCharset) {
		t.Fatalf("expected every index drawn, saw %d of %d", len(seen), len(codeCharset))
	}
}

func TestRandIntRejectsInvalidMax(t *testing.T) {
	for _, max := range []int{0, -1, 257} {
		if _, err := randInt(max); err == nil {
			t.Fatalf("expected error for max %d", max)
		}
	}
}
