package style

import (
	"slices"
	"testing"
)

func TestParseStyleName(t *testing.T) {
	tests := []struct {
		name       string
		style      string
		wantWeight int
		wantItalic bool
	}{
		// "SemiBold" contains "bold" - the semi bold check must win.
		{"semibold_italic", "SemiBold Italic", WeightSemiBold, true},
		{"semi_bold_spaced", "Semi Bold", WeightSemiBold, false},
		{"bold", "Bold", WeightBold, false},
		{"bold_italic", "Bold Italic", WeightBold, true},
		{"medium", "Medium", WeightMedium, false},
		{"light", "Light", WeightLight, false},
		{"thin_italic", "Thin Italic", WeightThin, true},
		{"black", "Black", WeightBlack, false},
		{"heavy", "Heavy", WeightBlack, false},
		{"regular", "Regular", WeightRegular, false},
		{"plain_italic", "Italic", WeightRegular, true},
		{"unknown", "Display", WeightRegular, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, it := ParseStyleName(tt.style)
			if w != tt.wantWeight || it != tt.wantItalic {
				t.Errorf("ParseStyleName(%q) = (%d, %v), want (%d, %v)", tt.style, w, it, tt.wantWeight, tt.wantItalic)
			}
		})
	}
}

func TestWeightName(t *testing.T) {
	tests := []struct {
		weight   int
		italic   bool
		expected string
	}{
		{WeightRegular, false, "Regular"},
		{WeightRegular, true, "Italic"},
		{WeightSemiBold, false, "Semi Bold"},
		{WeightSemiBold, true, "Semi Bold Italic"},
		{WeightBold, true, "Bold Italic"},
		{WeightBlack, false, "Black"},
		{450, false, "Regular"}, // snaps to closest entry, lower on ties
	}
	for _, tt := range tests {
		if got := WeightName(tt.weight, tt.italic); got != tt.expected {
			t.Errorf("WeightName(%d, %v) = %q, want %q", tt.weight, tt.italic, got, tt.expected)
		}
	}
}

func TestFallbackNames(t *testing.T) {
	italic := FallbackNames(true)

	// An italic request exhausts all italic candidates before any upright
	// style appears.
	plainItalic := slices.Index(italic, "Italic")
	firstUpright := slices.Index(italic, "Bold")
	if plainItalic == -1 || firstUpright == -1 || plainItalic > firstUpright {
		t.Fatalf("italic ladder out of order: %v", italic)
	}
	for _, name := range italic[:plainItalic+1] {
		if _, it := ParseStyleName(name); !it {
			t.Errorf("upright style %q before plain Italic in italic ladder", name)
		}
	}

	upright := FallbackNames(false)
	for _, name := range upright {
		if _, it := ParseStyleName(name); it {
			t.Errorf("italic style %q in upright ladder", name)
		}
	}
	if upright[len(upright)-1] != "Regular" {
		t.Errorf("upright ladder must end with Regular: %v", upright)
	}
}
