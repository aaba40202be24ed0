package export

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/spheresim/internal/analysis"
	"github.com/san-kum/spheresim/internal/sim"
)

const (
	ColorE  = "#ffd700"
	ColorMP = "#ff3030"

	eRadiusPx = 1.5
	minMPPx   = 3.0
)

type dot struct {
	x, y, z float64
	r       float64
	color   string
}

// FrameToSVG draws a frame projected onto the XY plane, far particles
// first. extent is the half-width of the visible world square; zero
// fits it to the particles.
func FrameToSVG(f *sim.Frame, size int, extent float64) string {
	if extent <= 0 {
		extent = fitExtent(f)
	}
	scale := float64(size) / (2 * extent)

	dots := make([]dot, 0, len(f.E)+len(f.MP))
	for _, b := range f.E {
		dots = append(dots, dot{
			x: float64(b.Position[0]), y: float64(b.Position[1]), z: float64(b.Position[2]),
			r: eRadiusPx, color: ColorE,
		})
	}
	for _, b := range f.MP {
		dots = append(dots, dot{
			x: float64(b.Position[0]), y: float64(b.Position[1]), z: float64(b.Position[2]),
			r: math.Max(minMPPx, float64(b.Size)*0.5*scale), color: ColorMP,
		})
	}
	sort.SliceStable(dots, func(i, j int) bool { return dots[i].z < dots[j].z })

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, size, size, size, size)

	for _, d := range dots {
		cx := (d.x + extent) * scale
		cy := float64(size) - (d.y+extent)*scale
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, d.r, d.color)
	}

	fmt.Fprintf(&sb, `<text x="8" y="18" fill="#e0e0e0" font-family="monospace" font-size="12">frame %d  %s</text>
</svg>`, f.Number, f.Counts)
	return sb.String()
}

func fitExtent(f *sim.Frame) float64 {
	m := 1.0
	for _, b := range f.E {
		m = math.Max(m, math.Max(math.Abs(float64(b.Position[0])), math.Abs(float64(b.Position[1]))))
	}
	for _, b := range f.MP {
		m = math.Max(m, math.Max(math.Abs(float64(b.Position[0])), math.Abs(float64(b.Position[1]))))
	}
	return m * 1.1
}

// PortraitToSVG draws a phase portrait as a polyline.
func PortraitToSVG(p *analysis.PhasePortrait, width, height int, strokeColor string) string {
	if p == nil || len(p.Points) < 2 {
		return ""
	}
	minX, maxX, minY, maxY := p.Bounds()
	rangeX, rangeY := maxX-minX, maxY-minY

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor)

	for i, pt := range p.Points {
		x := (pt.X - minX) / rangeX * float64(width)
		y := float64(height) - (pt.Y-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	fmt.Fprintf(&sb, `"/>
<text x="8" y="%d" fill="#e0e0e0" font-family="monospace" font-size="12">%s</text>
<text x="8" y="18" fill="#e0e0e0" font-family="monospace" font-size="12">%s</text>
</svg>`, height-8, p.XLabel, p.YLabel)
	return sb.String()
}
