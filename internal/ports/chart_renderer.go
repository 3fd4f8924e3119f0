package ports

// Named series of (x, y) points.
type Series struct {
	Name string
	X    []float64
	Y    []float64
}

type ScatterChart struct {
	Name   string
	XLabel string
	YLabel string
	Series []Series
}

type HistogramStyle string

const (
	HistogramBar  HistogramStyle = "bar"
	HistogramLine HistogramStyle = "line"
)

// One histogram; len(Edges) == len(Values)+1.
type HistogramSeries struct {
	Name   string
	Edges  []float64
	Values []float64
}

type HistogramChart struct {
	Name   string
	XLabel string
	YLabel string
	Style  HistogramStyle
	Series []HistogramSeries
}

// Values plotted against their rank, labelled on the x axis.
type RankingChart struct {
	Name   string
	XLabel string
	YLabel string
	Labels []string
	Values []float64
}

// Contract for turning prepared chart data into an image or other artifact.
type ChartRenderer interface {
	RenderScatter(c ScatterChart) error
	RenderHistogram(c HistogramChart) error
	RenderRanking(c RankingChart) error
}
