package colour

import (
	"image/color"
	"math"
	"testing"
)

func TestToRGB(t *testing.T) {
	tests := []struct {
		name  string
		color color.Color
		want  RGB
	}{
		{name: "red", color: color.RGBA{R: 255, A: 255}, want: RGB{R: 255}},
		{name: "white", color: color.White, want: RGB{R: 255, G: 255, B: 255}},
		{name: "black", color: color.Black, want: RGB{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToRGB(tt.color); got != tt.want {
				t.Errorf("ToRGB() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRGBFormatting(t *testing.T) {
	c := RGB{R: 26, G: 43, B: 60}
	if got := c.Hex(); got != "#1a2b3c" {
		t.Errorf("Hex() = %q, want %q", got, "#1a2b3c")
	}
	if got := c.String(); got != "rgb(26, 43, 60)" {
		t.Errorf("String() = %q", got)
	}
	if got := c.RGBA(); got != (color.RGBA{R: 26, G: 43, B: 60, A: 255}) {
		t.Errorf("RGBA() = %v", got)
	}
}

func TestContrastRatio(t *testing.T) {
	got := ContrastRatio(color.White, color.Black)
	if math.Abs(got-21) > 0.01 {
		t.Errorf("ContrastRatio(white, black) = %f, want 21", got)
	}
	if got := ContrastRatio(color.White, color.White); got != 1 {
		t.Errorf("ContrastRatio(white, white) = %f, want 1", got)
	}
}
