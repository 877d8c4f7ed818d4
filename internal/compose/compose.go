// Package compose paints cover rasters: a solid background, opaque plaques
// and white labels. It produces exactly one frame per call.
package compose

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/fogleman/gg"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/covergen/internal/apperr"
	"github.com/jmylchreest/covergen/internal/layout"
)

// DefaultFontSize is the label size in points.
const DefaultFontSize = 60

// Label is a plaque together with the text drawn on it.
type Label struct {
	Plaque layout.Plaque
	Text   string
}

// Style controls plaque and text appearance.
type Style struct {
	FontSize    float64
	PlaqueColor color.Color
	TextColor   color.Color
}

// DefaultStyle is black plaques with white 60pt text.
func DefaultStyle() Style {
	return Style{
		FontSize:    DefaultFontSize,
		PlaqueColor: color.Black,
		TextColor:   color.White,
	}
}

// Composer renders covers using a shared font source.
type Composer struct {
	fonts  *FontSource
	style  Style
	logger hclog.Logger
}

// Options configures a Composer.
type Options struct {
	// FontPath is an optional font file; empty selects the embedded font.
	FontPath string
	Style    Style
	Logger   hclog.Logger
}

// New returns a Composer. Zero-valued style fields take their defaults.
func New(opts Options) *Composer {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	style := opts.Style
	def := DefaultStyle()
	if style.FontSize <= 0 {
		style.FontSize = def.FontSize
	}
	if style.PlaqueColor == nil {
		style.PlaqueColor = def.PlaqueColor
	}
	if style.TextColor == nil {
		style.TextColor = def.TextColor
	}
	return &Composer{
		fonts:  NewFontSource(opts.FontPath, logger),
		style:  style,
		logger: logger,
	}
}

// Render fills canvas with bg and draws each label on its plaque. Labels are
// left-aligned at their text anchor and vertically centred in the plaque.
func (c *Composer) Render(canvas layout.Canvas, bg color.Color, labels []Label) (image.Image, error) {
	if err := canvas.Validate(); err != nil {
		return nil, &apperr.RenderError{Op: "validate canvas", Err: err}
	}
	bounds := canvas.Bounds()
	for i, l := range labels {
		r := l.Plaque.Rect.Rectangle()
		if r.Empty() || !r.In(bounds) {
			return nil, &apperr.RenderError{
				Op:  "validate plaque",
				Err: fmt.Errorf("plaque %d %v does not fit canvas %v", i, r, bounds),
			}
		}
	}

	face, err := c.fonts.Face(c.style.FontSize)
	if err != nil {
		return nil, &apperr.RenderError{Op: "load font", Err: err}
	}
	defer face.Close()

	dc := gg.NewContext(canvas.Width, canvas.Height)
	dc.SetColor(bg)
	dc.Clear()

	for _, l := range labels {
		rect := l.Plaque.Rect
		dc.SetColor(c.style.PlaqueColor)
		dc.DrawRectangle(float64(rect.X), float64(rect.Y), float64(rect.Width), float64(rect.Height))
		dc.Fill()
	}

	// Centre the ascent-to-descent box of the face inside the plaque height.
	metrics := face.Metrics()
	ascent := float64(metrics.Ascent) / 64
	descent := float64(metrics.Descent) / 64

	dc.SetFontFace(face)
	dc.SetColor(c.style.TextColor)
	for _, l := range labels {
		if l.Text == "" {
			continue
		}
		anchor := l.Plaque.TextAnchor
		baseline := float64(anchor.Y) + (float64(l.Plaque.Rect.Height)+ascent-descent)/2
		dc.DrawString(l.Text, float64(anchor.X), baseline)
	}

	c.logger.Trace("rendered cover", "width", canvas.Width, "height", canvas.Height, "labels", len(labels))
	return dc.Image(), nil
}

// WritePNG encodes img to a new file at path. The file is fully written and
// closed on success; on failure nothing is left behind.
func WritePNG(path string, img image.Image) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600) // #nosec G304 -- path is built by the caller inside its output dir
	if err != nil {
		return &apperr.RenderError{Op: "create output", Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &apperr.RenderError{Op: "close output", Err: cerr}
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if err := png.Encode(f, img); err != nil {
		return &apperr.RenderError{Op: "encode png", Err: err}
	}
	return nil
}
