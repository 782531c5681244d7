package shortcode

import "testing"

func TestGenerate(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code := Generate()
		if !Valid(code) {
			t.Fatalf("Generate produced invalid code %q", code)
		}
		seen[code] = true
	}
	// 1000 draws from 62^6 should essentially never collide.
	if len(seen) < 999 {
		t.Errorf("got %d distinct codes out of 1000", len(seen))
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"Ab3xYz", true},
		{"000000", true},
		{"ZZZZZZ", true},
		{"", false},
		{"short", false},
		{"toolong1", false},
		{"ab-cde", false},
		{"ab cde", false},
		{"ab.cde", false},
	}
	for _, tt := range tests {
		if got := Valid(tt.code); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
