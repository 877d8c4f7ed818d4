// Package layout computes plaque geometry for cover canvases. It performs no
// I/O and every function is deterministic in its inputs.
package layout

import (
	"image"
	"math"

	"github.com/jmylchreest/covergen/internal/apperr"
)

const (
	// DefaultSide is the width and height of the standard square cover.
	DefaultSide = 600

	// MinCanvasSide is the smallest width or height accepted for a canvas.
	MinCanvasSide = 50

	// Margin is the distance between a plaque and the edge it is anchored to,
	// and the horizontal inset of its text.
	Margin = 20

	plaqueWidthRatio  = 0.9
	plaqueHeightRatio = 0.15
)

// Canvas is the pixel size of a cover.
type Canvas struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultCanvas returns the standard 600x600 cover canvas.
func DefaultCanvas() Canvas {
	return Canvas{Width: DefaultSide, Height: DefaultSide}
}

// Bounds returns the canvas as an image rectangle anchored at the origin.
func (c Canvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.Width, c.Height)
}

// Validate rejects canvases too small to hold a plaque.
func (c Canvas) Validate() error {
	if c.Width < MinCanvasSide || c.Height < MinCanvasSide {
		return apperr.NewConfigurationError("canvas %dx%d is below the minimum %dx%d",
			c.Width, c.Height, MinCanvasSide, MinCanvasSide)
	}
	return nil
}

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rectangle converts r to an image.Rectangle.
func (r Rect) Rectangle() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Plaque is an opaque rectangle and the point its label is anchored to.
type Plaque struct {
	Rect       Rect        `json:"rect"`
	TextAnchor image.Point `json:"text_anchor"`
}

// Single lays out one plaque flush with the right edge, lifted from the
// bottom by Margin.
func Single(c Canvas) (Plaque, error) {
	if err := c.Validate(); err != nil {
		return Plaque{}, err
	}
	w, h := plaqueSize(c)
	return newPlaque(c.Width-w, c.Height-h-Margin, w, h), nil
}

// Dual lays out two plaques: the first at the top-left, pushed down by
// Margin, and the second in the same place Single would put it.
func Dual(c Canvas) (Plaque, Plaque, error) {
	if err := c.Validate(); err != nil {
		return Plaque{}, Plaque{}, err
	}
	w, h := plaqueSize(c)
	top := newPlaque(0, Margin, w, h)
	bottom := newPlaque(c.Width-w, c.Height-h-Margin, w, h)
	return top, bottom, nil
}

func plaqueSize(c Canvas) (int, int) {
	w := int(math.Round(float64(c.Width) * plaqueWidthRatio))
	h := int(math.Round(float64(c.Height) * plaqueHeightRatio))
	return max(w, 1), max(h, 1)
}

func newPlaque(x, y, w, h int) Plaque {
	return Plaque{
		Rect:       Rect{X: x, Y: y, Width: w, Height: h},
		TextAnchor: image.Pt(x+Margin, y),
	}
}
