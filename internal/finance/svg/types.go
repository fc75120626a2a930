package svg

// Series is one named set of values drawn against shared labels.
type Series struct {
	Label  string
	Values []float64
	Color  string
}

// ChartOpts customises both renderers.
type ChartOpts struct {
	Title       string
	Description string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
	ShowDots    bool
}

// Defaults for the dashboard charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 260
	DefaultPadding = 32.0
	DefaultTicks   = 5
)

var palette = []string{"#16a34a", "#dc2626", "#2563eb", "#f59e0b", "#7c3aed"}

func seriesColor(s Series, i int) string {
	return fallback(s.Color, palette[i%len(palette)])
}
