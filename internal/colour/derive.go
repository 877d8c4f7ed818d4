package colour

import (
	"hash/crc32"

	"github.com/lucasb-eyer/go-colorful"
)

// Saturation and lightness buckets picked by the hash. Keeping both away
// from the extremes avoids near-white and near-black backgrounds.
var (
	saturationLevels = [...]float64{0.35, 0.5, 0.65}
	lightnessLevels  = [...]float64{0.35, 0.5, 0.65}
)

// HSL is a colour in hue (0-359), saturation (0-1), lightness (0-1) form.
type HSL struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

// RGB converts the HSL triple to 8-bit RGB, rounding each channel.
func (c HSL) RGB() RGB {
	r, g, b := colorful.Hsl(c.H, c.S, c.L).RGB255()
	return RGB{R: r, G: g, B: b}
}

// DeriveHSL hashes text with CRC-32 (IEEE) and spends the hash on hue first,
// then saturation bucket, then lightness bucket.
func DeriveHSL(text string) HSL {
	h := crc32.ChecksumIEEE([]byte(text))

	hue := float64(h % 359)
	h /= 360
	sat := saturationLevels[h%uint32(len(saturationLevels))]
	h /= uint32(len(saturationLevels))
	light := lightnessLevels[h%uint32(len(lightnessLevels))]

	return HSL{H: hue, S: sat, L: light}
}

// Derive maps any string, including the empty string, to a stable colour.
// Identical input always yields identical output.
func Derive(text string) RGB {
	return DeriveHSL(text).RGB()
}
