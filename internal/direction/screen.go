// SPDX-License-Identifier: MIT
package direction

// Display maps on-screen positions to steering scalars. A screen is treated
// as a virtual audio display Width degrees wide, whose vertical range starts
// at HeightMin degrees and spans HeightMagnitude degrees.
type Display struct {
	Width           float64
	HeightMin       float64
	HeightMagnitude float64
}

// DefaultDisplay spans the full frontal half plane horizontally and a
// slightly downward-biased vertical band.
var DefaultDisplay = Display{
	Width:           180,
	HeightMin:       -40,
	HeightMagnitude: 50,
}

// maxSteer bounds each scalar to the frontal hemisphere.
const maxSteer = 90.0

// Coordinates maps the centre (cx, cy) of an object on a screenWidth x
// screenHeight desktop to the (x, y) scalars accepted by Resolve. The screen
// centre maps to x = 0; the top edge maps to HeightMin + HeightMagnitude.
// Degenerate screens map everything to the centre.
func (d Display) Coordinates(cx, cy, screenWidth, screenHeight float64) (x, y float32) {
	if screenWidth <= 0 || screenHeight <= 0 {
		cx, cy = 0.5, 0.5
		screenWidth, screenHeight = 1, 1
	}

	ax := ((cx - screenWidth/2) / screenWidth) * d.Width
	percent := (screenHeight - cy) / screenHeight
	ay := d.HeightMagnitude*percent + d.HeightMin

	return float32(clamp(ax, -maxSteer, maxSteer)), float32(clamp(ay, -maxSteer, maxSteer))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
