package charts

import (
	"errors"
	"fmt"
	"journey-times/internal/ports"
	"math"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	defaultWidth  = 1024
	defaultHeight = 640
)

// PNGRenderer writes each chart to <Dir>/<chart name>.png.
type PNGRenderer struct {
	Dir    string
	Width  int
	Height int
	logger logrus.FieldLogger
}

func NewPNGRenderer(dir string, logger logrus.FieldLogger) *PNGRenderer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PNGRenderer{Dir: dir, Width: defaultWidth, Height: defaultHeight, logger: logger}
}

// Path returns the file a chart with the given name is written to.
func (r *PNGRenderer) Path(name string) string {
	return filepath.Join(r.Dir, name+".png")
}

// pointStyle renders points only, no connecting line.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col.WithAlpha(110),
	}
}

func lineStyle(col drawing.Color, fill bool) chart.Style {
	st := chart.Style{
		StrokeWidth: 2,
		StrokeColor: col,
	}
	if fill {
		st.FillColor = col.WithAlpha(50)
	}
	return st
}

func (r *PNGRenderer) RenderScatter(c ports.ScatterChart) error {
	if len(c.Series) == 0 {
		return errors.New("render scatter: no series")
	}

	xs := newBounds()
	ys := newBounds()
	series := make([]chart.Series, 0, len(c.Series))
	for i, s := range c.Series {
		if len(s.X) == 0 || len(s.X) != len(s.Y) {
			return fmt.Errorf("render scatter: series %q has %d x and %d y values", s.Name, len(s.X), len(s.Y))
		}
		xs.add(s.X...)
		ys.add(s.Y...)
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: s.X,
			YValues: s.Y,
			Style:   pointStyle(chart.GetDefaultColor(i)),
		})
	}

	ch := r.newChart(c.Name, series)
	ch.XAxis = chart.XAxis{Name: c.XLabel, Range: xs.rangeFrom(0)}
	ch.YAxis = chart.YAxis{Name: c.YLabel, Range: ys.rangeFrom(0)}
	return r.write(c.Name, ch)
}

func (r *PNGRenderer) RenderHistogram(c ports.HistogramChart) error {
	if len(c.Series) == 0 {
		return errors.New("render histogram: no series")
	}

	xs := newBounds()
	ys := newBounds()
	ys.add(0)
	series := make([]chart.Series, 0, len(c.Series))
	for i, s := range c.Series {
		if len(s.Values) == 0 || len(s.Edges) != len(s.Values)+1 {
			return fmt.Errorf("render histogram: series %q has %d edges for %d values", s.Name, len(s.Edges), len(s.Values))
		}
		col := chart.GetDefaultColor(i)

		var x, y []float64
		switch c.Style {
		case ports.HistogramBar:
			x, y = stepOutline(s.Edges, s.Values)
		case ports.HistogramLine:
			x, y = binCentres(s.Edges), s.Values
		default:
			return fmt.Errorf("render histogram: unknown style %q", c.Style)
		}
		// A single bin centre cannot be drawn as a line.
		if len(x) == 1 {
			x = []float64{s.Edges[0], s.Edges[1]}
			y = []float64{y[0], y[0]}
		}

		xs.add(s.Edges...)
		ys.add(s.Values...)
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: x,
			YValues: y,
			Style:   lineStyle(col, true),
		})
	}

	ch := r.newChart(c.Name, series)
	ch.XAxis = chart.XAxis{Name: c.XLabel, Range: xs.rangeFrom(0)}
	ch.YAxis = chart.YAxis{Name: c.YLabel, Range: ys.rangeFrom(0.05)}
	return r.write(c.Name, ch)
}

func (r *PNGRenderer) RenderRanking(c ports.RankingChart) error {
	n := len(c.Values)
	if n == 0 || len(c.Labels) != n {
		return fmt.Errorf("render ranking: %d labels for %d values", len(c.Labels), n)
	}

	xs := make([]float64, n)
	ticks := make([]chart.Tick, 0, n)
	ys := newBounds()
	for i := range c.Values {
		xs[i] = float64(i)
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: c.Labels[i]})
		ys.add(c.Values[i])
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    c.YLabel,
			XValues: xs,
			YValues: c.Values,
			Style:   pointStyle(chart.ColorBlue),
		},
	}
	if n == 1 {
		// Single-point series need a second x value.
		series[0] = chart.ContinuousSeries{
			Name:    c.YLabel,
			XValues: []float64{0, 0},
			YValues: []float64{c.Values[0], c.Values[0]},
			Style:   pointStyle(chart.ColorBlue),
		}
	}

	ch := r.newChart(c.Name, series)
	ch.XAxis = chart.XAxis{
		Name:  c.XLabel,
		Ticks: ticks,
		Range: &chart.ContinuousRange{Min: -0.5, Max: float64(n) - 0.5},
	}
	ch.YAxis = chart.YAxis{Name: c.YLabel, Range: ys.rangeFrom(0.1)}
	return r.write(c.Name, ch)
}

func (r *PNGRenderer) newChart(title string, series []chart.Series) chart.Chart {
	return chart.Chart{
		Title:      title,
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 28}},
		Series:     series,
	}
}

func (r *PNGRenderer) write(name string, ch chart.Chart) (err error) {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return fmt.Errorf("write chart: create plots dir: %w", err)
	}

	path := r.Path(name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("write chart: close %q: %w", path, cerr)
		}
	}()

	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	if err := ch.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("write chart: render %q: %w", path, err)
	}

	r.logger.WithField("path", path).Info("chart written")
	return nil
}

// stepOutline traces the top of the histogram bars, starting and ending on
// the x axis.
func stepOutline(edges, values []float64) (xs, ys []float64) {
	xs = make([]float64, 0, 2*len(values)+2)
	ys = make([]float64, 0, 2*len(values)+2)

	xs = append(xs, edges[0])
	ys = append(ys, 0)
	for i, v := range values {
		xs = append(xs, edges[i], edges[i+1])
		ys = append(ys, v, v)
	}
	xs = append(xs, edges[len(edges)-1])
	ys = append(ys, 0)
	return xs, ys
}

func binCentres(edges []float64) []float64 {
	out := make([]float64, len(edges)-1)
	for i := range out {
		out[i] = 0.5 * (edges[i] + edges[i+1])
	}
	return out
}

type bounds struct{ min, max float64 }

func newBounds() *bounds {
	return &bounds{min: math.Inf(1), max: math.Inf(-1)}
}

func (b *bounds) add(vs ...float64) {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		b.min = math.Min(b.min, v)
		b.max = math.Max(b.max, v)
	}
}

// rangeFrom returns the axis range padded by frac of its span. A zero span
// is widened to one unit so the chart library accepts it.
func (b *bounds) rangeFrom(frac float64) *chart.ContinuousRange {
	lo, hi := b.min, b.max
	if math.IsInf(lo, 1) {
		lo, hi = 0, 1
	}
	if hi <= lo {
		lo, hi = lo-0.5, hi+0.5
	}
	pad := (hi - lo) * frac
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
