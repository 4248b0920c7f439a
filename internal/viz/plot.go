package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/attractor/internal/storage"
)

// PlotTrace renders a recorded run's force magnitude over time.
func PlotTrace(rows []storage.Row, height int) string {
	if len(rows) < 2 {
		return "not enough samples to plot"
	}
	if height <= 0 {
		height = 12
	}

	mags := make([]float64, len(rows))
	for i, r := range rows {
		f := r.Force
		mags[i] = math.Sqrt(f[0]*f[0] + f[1]*f[1] + f[2]*f[2])
	}

	var b strings.Builder
	b.WriteString(asciigraph.Plot(mags,
		asciigraph.Height(height),
		asciigraph.Caption("|force| (N) per tick")))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d ticks over %.3f s\n", len(rows), rows[len(rows)-1].T-rows[0].T))
	return b.String()
}

// PlotComponent renders a single force axis (0=x, 1=y, 2=z).
func PlotComponent(rows []storage.Row, axis, height int) string {
	if len(rows) < 2 {
		return "not enough samples to plot"
	}
	if axis < 0 || axis > 2 {
		return fmt.Sprintf("no such axis %d", axis)
	}
	if height <= 0 {
		height = 12
	}

	vals := make([]float64, len(rows))
	for i, r := range rows {
		vals[i] = r.Force[axis]
	}
	caption := fmt.Sprintf("f%c (N) per tick", 'x'+byte(axis))
	return asciigraph.Plot(vals, asciigraph.Height(height), asciigraph.Caption(caption))
}
