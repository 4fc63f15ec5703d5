package utils

import "testing"

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "returns empty when limit non-positive",
			input:  "Here are your cards",
			limit:  0,
			expect: "",
		},
		{
			name:   "shorter than limit",
			input:  "Millennia",
			limit:  10,
			expect: "Millennia",
		},
		{
			name:   "truncates and adds ellipsis",
			input:  "IDFC FIRST Millennia",
			limit:  4,
			expect: "IDFC...",
		},
		{
			name:   "trims surrounding whitespace",
			input:  "  prompt  ",
			limit:  5,
			expect: "promp...",
		},
		{
			name:   "counts runes not bytes",
			input:  "₹₹₹₹ rewards",
			limit:  3,
			expect: "₹₹₹...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
