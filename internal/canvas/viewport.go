// Package canvas implements the canvas controller: viewport (pan/zoom),
// selection, the pointer input-mode state machine, clipboard, and
// quadtree-backed element hit testing (spec.md §4.5).
package canvas

import (
	"fmt"
	"strconv"
	"strings"
)

// MinZoom and MaxZoom bound the viewport's zoom factor.
const (
	MinZoom = 0.1
	MaxZoom = 10.0
)

// Viewport holds pan/zoom state and the canvas<->screen coordinate
// transform.
type Viewport struct {
	PanX, PanY float64
	Zoom       float64
}

// NewViewport returns a viewport at zoom 1, no pan.
func NewViewport() Viewport {
	return Viewport{Zoom: 1}
}

// ScreenToCanvas converts a screen-space point to canvas space.
func (v Viewport) ScreenToCanvas(sx, sy float64) (float64, float64) {
	return (sx - v.PanX) / v.Zoom, (sy - v.PanY) / v.Zoom
}

// CanvasToScreen converts a canvas-space point to screen space.
func (v Viewport) CanvasToScreen(cx, cy float64) (float64, float64) {
	return cx*v.Zoom + v.PanX, cy*v.Zoom + v.PanY
}

// ZoomAt changes zoom to newZoom while keeping the canvas-space point under
// (sx,sy) fixed on screen, per spec.md §4.5's scroll-zoom anchor rule.
func (v *Viewport) ZoomAt(sx, sy, newZoom float64) {
	newZoom = clampZoom(newZoom)
	cx, cy := v.ScreenToCanvas(sx, sy)
	v.Zoom = newZoom
	nsx, nsy := v.CanvasToScreen(cx, cy)
	v.PanX += sx - nsx
	v.PanY += sy - nsy
}

func clampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// ParseZoom accepts "150%" or "1.5" and returns the clamped zoom factor, or
// an error if the string parses to neither form — the caller should revert
// to the current zoom on error, per spec.md §4.5.
func ParseZoom(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "%") {
		pct, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid zoom percentage %q: %w", s, err)
		}
		return clampZoom(pct / 100), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid zoom value %q: %w", s, err)
	}
	return clampZoom(f), nil
}

// FormatZoom renders a zoom factor as a percentage string, e.g. "150%".
func FormatZoom(zoom float64) string {
	return fmt.Sprintf("%d%%", int(zoom*100+0.5))
}
