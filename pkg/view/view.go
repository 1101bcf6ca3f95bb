// Package view maps between math coordinates and the pixels of a plotting
// surface.
package view

import (
	"math"

	"src.graf.sh/pkg/analysis"
)

// Zoom limits, in pixels per unit.
const (
	MinScale = 0.2
	MaxScale = 200000.0
	// ZoomBase is the zoom factor of one wheel notch.
	ZoomBase = 1.08
)

// Viewport describes the visible part of the plane. The origin of the screen
// is the top-left corner, with y growing downwards. Offsets are in math units
// and move the plane relative to the center of the screen.
type Viewport struct {
	Width, Height    float64
	Scale            float64
	OffsetX, OffsetY float64
}

// Default returns a viewport of the given size centered on the origin at 50
// pixels per unit.
func Default(width, height float64) *Viewport {
	return &Viewport{Width: width, Height: height, Scale: 50}
}

// Bounds returns the visible range of math coordinates.
func (v *Viewport) Bounds() (left, right, bottom, top float64) {
	left = -v.Width/2/v.Scale - v.OffsetX
	right = v.Width/2/v.Scale - v.OffsetX
	bottom = -v.Height/2/v.Scale - v.OffsetY
	top = v.Height/2/v.Scale - v.OffsetY
	return
}

// Step returns the sampling step of one pixel, in math units.
func (v *Viewport) Step() float64 {
	return 1 / v.Scale
}

// ToScreen implements analysis.Projection.
func (v *Viewport) ToScreen(p analysis.Point) (sx, sy float64) {
	sx = (p.X+v.OffsetX)*v.Scale + v.Width/2
	sy = (-p.Y-v.OffsetY)*v.Scale + v.Height/2
	return
}

// ToWorld is the inverse of ToScreen.
func (v *Viewport) ToWorld(sx, sy float64) analysis.Point {
	return analysis.Point{
		X: (sx-v.Width/2)/v.Scale - v.OffsetX,
		Y: -(sy-v.Height/2)/v.Scale - v.OffsetY,
	}
}

// Zoom scales the view by ZoomBase^-notches, keeping the math point under
// the screen position (sx, sy) in place. The scale is clamped to
// [MinScale, MaxScale]. It returns whether the scale changed.
func (v *Viewport) Zoom(notches, sx, sy float64) bool {
	if notches == 0 {
		return false
	}
	return v.ZoomBy(math.Pow(ZoomBase, -notches), sx, sy)
}

// ZoomBy multiplies the scale by factor around the screen position (sx, sy).
func (v *Viewport) ZoomBy(factor, sx, sy float64) bool {
	old := v.Scale
	scale := math.Min(math.Max(old*factor, MinScale), MaxScale)
	if scale == old || math.IsNaN(scale) {
		return false
	}
	anchor := v.ToWorld(sx, sy)
	v.Scale = scale
	v.OffsetX = (sx-v.Width/2)/scale - anchor.X
	v.OffsetY = -(sy-v.Height/2)/scale - anchor.Y
	return true
}

// Pan moves the view by a screen distance, as when dragging the plane.
func (v *Viewport) Pan(dx, dy float64) {
	v.OffsetX += dx / v.Scale
	v.OffsetY -= dy / v.Scale
}

// GridSpacing returns a spacing of 1, 2 or 5 times a power of ten that puts
// grid lines roughly 100 pixels apart.
func (v *Viewport) GridSpacing() float64 {
	raw := 100 / v.Scale
	base := math.Pow(10, math.Floor(math.Log10(raw)))
	switch f := raw / base; {
	case f < 1.5:
		return base
	case f < 3:
		return 2 * base
	case f < 7:
		return 5 * base
	default:
		return 10 * base
	}
}
