// Package export renders solver state and run series as standalone SVG.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/verletsim/internal/solver"
	"github.com/san-kum/verletsim/internal/verlet"
	"github.com/san-kum/verletsim/internal/viz"
)

const background = "#0a0a0a"

// ParticlesToSVG draws every particle as a circle in world units, tinted
// from the theme's cold to hot colour by temperature. Constrained sides are
// drawn as walls.
func ParticlesToSVG(cfg solver.Config, ps []verlet.Particle, theme viz.Theme) string {
	w, h := float64(cfg.Width), float64(cfg.Height)

	peak := float32(1)
	for i := range ps {
		if t := ps[i].Temperature; t > peak && !math.IsInf(float64(t), 0) {
			peak = t
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, w, h, w, h, background))

	walls := []struct {
		on             bool
		x1, y1, x2, y2 float64
	}{
		{cfg.Sides.Top.Constrain, 0, 0, w, 0},
		{cfg.Sides.Bottom.Constrain, 0, h, w, h},
		{cfg.Sides.Left.Constrain, 0, 0, 0, h},
		{cfg.Sides.Right.Constrain, w, 0, w, h},
	}
	sb.WriteString(fmt.Sprintf(`<g stroke="%s" stroke-width="2">
`, theme.Frame))
	for _, wl := range walls {
		if wl.on {
			sb.WriteString(fmt.Sprintf(`<line x1="%.0f" y1="%.0f" x2="%.0f" y2="%.0f"/>
`, wl.x1, wl.y1, wl.x2, wl.y2))
		}
	}
	sb.WriteString("</g>\n<g>\n")

	for i := range ps {
		p := &ps[i]
		if !p.IsFinite() {
			continue
		}
		heat := float64(p.Temperature / peak)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>
`, p.Pos.X, p.Pos.Y, p.Radius, viz.Mix(theme.Cold, theme.Hot, heat)))
	}

	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}

// CanvasToSVG converts a Braille canvas to SVG format, one dot per lit
// sub-pixel, coloured by the cell temperature relative to peak.
func CanvasToSVG(canvas *viz.Canvas, scale float64, peak float32, theme viz.Theme) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.DotsX()) * scale
	height := float64(canvas.DotsY()) * scale

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g>
`, width, height, width, height, background))

	// Braille dot-to-bit mapping
	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}

	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			heat := 0.0
			if peak > 0 {
				heat = float64(canvas.Heat[row][col] / peak)
			}
			fill := viz.Mix(theme.Cold, theme.Hot, heat)

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, dotRadius, fill))
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesToSVG plots values against their index as a polyline.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minY, maxY := values[0], values[0]
	for _, v := range values {
		if v < minY {
			minY = v
		}
		if v > maxY {
			maxY = v
		}
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY
	rangeX := float64(len(values) - 1)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, strokeColor))

	for i, v := range values {
		x := float64(i) / rangeX * float64(width)
		y := float64(height) - (v-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
