package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// GroupedBars renders one group of bars per label, one bar per series.
// Negative values hang below the zero line.
func GroupedBars(width, height int, series []Series, labels []string, opts ChartOpts) (template.HTML, error) {
	if err := validateSeries(series, labels); err != nil {
		return "", err
	}
	f, err := newFrame(width, height, series, opts)
	if err != nil {
		return "", err
	}

	groupWidth := f.chartWidth / float64(len(labels))
	barWidth := groupWidth * 0.8 / float64(len(series))
	inset := groupWidth * 0.1
	zeroY := f.y(0)

	var b strings.Builder
	f.open(&b, opts, "bar", "Bar chart", "Grouped bar comparison")
	f.grid(&b)
	for i, label := range labels {
		baseX := f.padding + float64(i)*groupWidth + inset
		for j, s := range series {
			y, h := barPosition(s.Values[i], f.scale, zeroY, f.padding, f.bottom())
			fmt.Fprintf(&b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\" aria-label=\"%s %s\"></rect>",
				baseX+float64(j)*barWidth, y, barWidth, h, seriesColor(s, j),
				template.HTMLEscapeString(s.Label), template.HTMLEscapeString(label))
		}
		f.label(&b, f.padding+float64(i)*groupWidth+groupWidth/2, label)
	}
	f.legend(&b, series)
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func barPosition(value, scale, zeroY, top, bottom float64) (float64, float64) {
	if value >= 0 {
		height := value * scale
		y := zeroY - height
		if y < top {
			height -= top - y
			y = top
		}
		return y, math.Max(height, 0)
	}
	height := math.Abs(value * scale)
	if zeroY+height > bottom {
		height = bottom - zeroY
	}
	return zeroY, math.Max(height, 0)
}
