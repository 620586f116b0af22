package export

import (
	"fmt"
	"io"
	"strings"
)

var palette = []string{"#00ff88", "#00aaff", "#ffaa00", "#ff55aa", "#aa88ff", "#ffee55"}

// WriteSVG draws the scene: agent paths as polylines, obstacles as discs and
// the goal as a cross.
func WriteSVG(w io.Writer, s Scene, width, height int) error {
	lo, hi := s.Bounds()

	// Add padding
	rangeX := hi.X - lo.X
	rangeY := hi.Y - lo.Y
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	lo.X -= rangeX * 0.1
	hi.X += rangeX * 0.1
	lo.Y -= rangeY * 0.1
	hi.Y += rangeY * 0.1
	rangeX = hi.X - lo.X
	rangeY = hi.Y - lo.Y

	sx := func(x float64) float64 { return (x - lo.X) / rangeX * float64(width) }
	sy := func(y float64) float64 { return float64(height) - (y-lo.Y)/rangeY*float64(height) }

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))
	if s.Title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="8" y="18" fill="#cccccc" font-family="monospace" font-size="14">%s</text>
`, escape(s.Title)))
	}

	for _, o := range s.Obstacles {
		sb.WriteString(fmt.Sprintf(`<ellipse cx="%.1f" cy="%.1f" rx="%.1f" ry="%.1f" fill="#ff4444" fill-opacity="0.4" stroke="#ff4444"/>
`, sx(o.Position.X), sy(o.Position.Y), o.Radius/rangeX*float64(width), o.Radius/rangeY*float64(height)))
	}

	for i, p := range s.Paths {
		if len(p.Points) < 2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path id="%s" fill="none" stroke="%s" stroke-width="1.5" d="M`, escape(p.ID), palette[i%len(palette)]))
		for j, pt := range p.Points {
			if j == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", sx(pt.X), sy(pt.Y)))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", sx(pt.X), sy(pt.Y)))
			}
		}
		sb.WriteString("\"/>\n")
	}

	if s.HasGoal {
		gx, gy := sx(s.Goal.X), sy(s.Goal.Y)
		sb.WriteString(fmt.Sprintf(`<path stroke="#ffffff" stroke-width="2" d="M%.1f,%.1f L%.1f,%.1f M%.1f,%.1f L%.1f,%.1f"/>
`, gx-6, gy-6, gx+6, gy+6, gx-6, gy+6, gx+6, gy-6))
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return escaper.Replace(s) }
