package internal

import "testing"

func TestWordSeed(t *testing.T) {
	if WordSeed("Apple") != WordSeed(" apple ") {
		t.Error("Seed should ignore case and surrounding whitespace")
	}
	if WordSeed("apple") == WordSeed("banana") {
		t.Error("Different words should produce different seeds")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"apple", "apple"},
		{"ice cream", "ice_cream"},
		{"a/b:c", "a_b_c"},
		{"ябълка", "ябълка"},
		{"my-deck_1", "my-deck_1"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
