package html

import (
	"testing"
)

func TestParseColor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		expected uint32
		valid    bool
	}{
		{"hex_long", "#1a2b3c", 0x1a2b3cff, true},
		{"hex_shorthand", "#abc", 0xaabbccff, true},
		{"hex_spaces", "  #ff0000  ", 0xff0000ff, true},
		{"rgb_function", "rgb(255, 64, 0)", 0xff4000ff, true},
		{"rgb_no_spaces", "rgb(1,2,3)", 0x010203ff, true},
		{"rgba_integer_alpha", "rgba(10, 20, 30, 128)", 0x0a141e80, true},
		{"rgb_upper", "RGB(255, 0, 255)", 0xff00ffff, true},
		{"named_red", "red", 0xff0000ff, true},
		{"named_navy", "navy", 0x000080ff, true},
		{"invalid_word", "nope-color", 0, false},
		{"empty", "", 0, false},
		{"rgb_garbage", "rgb(x,y,z)", 0, false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var cl Color
			parseColor([]byte(tc.input), &cl)
			if cl.Valid != tc.valid {
				t.Fatalf("parseColor(%q) valid = %v, expected %v", tc.input, cl.Valid, tc.valid)
			}
			if tc.valid && cl.RGBA() != tc.expected {
				t.Fatalf("parseColor(%q) = %#08x, expected %#08x", tc.input, cl.RGBA(), tc.expected)
			}
		})
	}
}

func TestParseColorRGBWhitespaceTolerance(t *testing.T) {
	t.Parallel()
	var cl Color
	parseColor([]byte("rgb( 10,120,7)"), &cl)
	if !cl.Valid {
		t.Fatalf("irregular rgb() did not parse")
	}
	if cl.R != 10 || cl.G != 120 || cl.B != 7 || cl.A != 255 {
		t.Fatalf("irregular rgb() = %d,%d,%d,%d", cl.R, cl.G, cl.B, cl.A)
	}
}

func TestParseColorFractionalAlphaIgnored(t *testing.T) {
	t.Parallel()
	// only integer alpha components are read; a fractional one stops the
	// scan after the blue component
	var cl Color
	parseColor([]byte("rgba(1,2,3,0.5)"), &cl)
	if !cl.Valid {
		t.Fatalf("rgba with fractional alpha did not parse")
	}
	if cl.A != 255 {
		t.Fatalf("alpha = %d, expected 255", cl.A)
	}
}
