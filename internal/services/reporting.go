package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"journey-times/internal/domain"
	"journey-times/internal/ports"
	"os"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"
)

const velocityBins = 75

// Chart names; file renderers use them as base names.
const (
	ChartDistanceTime     = "distance_time"
	ChartVelocities       = "velocities"
	ChartAveragedVelocity = "averaged_velocity"
)

// Mean speed of one country.
type CountrySpeed struct {
	CountryCode string
	SpeedKmph   float64
}

// Reporter reads stored results and prepares charts and text summaries.
type Reporter struct {
	Store    ports.ResultsRepository
	Renderer ports.ChartRenderer
	Out      io.Writer
	Logger   logrus.FieldLogger
}

func NewReporter(store ports.ResultsRepository, renderer ports.ChartRenderer, out io.Writer, logger logrus.FieldLogger) *Reporter {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Reporter{Store: store, Renderer: renderer, Out: out, Logger: logger}
}

// WriteCountryCodes prints the per-country row counts of the reference table.
func WriteCountryCodes(w io.Writer, counts map[string]int) error {
	codes := make([]string, 0, len(counts))
	for cc := range counts {
		codes = append(codes, cc)
	}
	sort.Strings(codes)

	if _, err := fmt.Fprintln(w, "List of Country Codes:\nCountry codes : # entries"); err != nil {
		return err
	}
	for _, cc := range codes {
		if _, err := fmt.Fprintf(w, "%s : %d\n", cc, counts[cc]); err != nil {
			return err
		}
	}
	return nil
}

// ListDownloaded prints every stored country with its number of samples and
// returns the discovered country codes. A country whose results cannot be read
// is logged and left out of the listing.
func (r *Reporter) ListDownloaded(ctx context.Context) ([]string, error) {
	codes, err := r.Store.Countries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list downloaded: %w", err)
	}

	fmt.Fprintln(r.Out, "CC : Number of data points")
	for _, cc := range codes {
		records, err := r.Store.LoadAll(ctx, cc)
		if err != nil && !errors.Is(err, ports.ErrNoResults) {
			r.Logger.WithError(err).WithField("country", cc).Warn("cannot read results, not listing country")
			continue
		}
		fmt.Fprintf(r.Out, "%s : %d\n", cc, len(records))
	}
	return codes, nil
}

// load returns the records of a country, or ok=false when it has none.
func (r *Reporter) load(ctx context.Context, cc string) ([]domain.ResultRecord, bool, error) {
	records, err := r.Store.LoadAll(ctx, cc)
	if errors.Is(err, ports.ErrNoResults) || (err == nil && len(records) == 0) {
		r.Logger.WithField("country", cc).Warn("no results stored, skipping country")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return records, true, nil
}

// PlotDistanceTime renders duration against distance for each country and
// prints the implied average speed, mean distance over mean duration.
func (r *Reporter) PlotDistanceTime(ctx context.Context, codes []string) ([]CountrySpeed, error) {
	chart := ports.ScatterChart{
		Name:   ChartDistanceTime,
		XLabel: "Time [s]",
		YLabel: "Distance [m]",
	}
	speeds := make([]CountrySpeed, 0, len(codes))

	for _, cc := range codes {
		records, ok, err := r.load(ctx, cc)
		if err != nil {
			return nil, fmt.Errorf("plot distance time: %w", err)
		}
		if !ok {
			continue
		}

		s := ports.Series{Name: cc, X: make([]float64, len(records)), Y: make([]float64, len(records))}
		for i, rec := range records {
			s.X[i] = rec.DurationSeconds
			s.Y[i] = rec.DistanceMeters
		}
		chart.Series = append(chart.Series, s)

		meanDur := Mean(s.X)
		if meanDur == 0 {
			r.Logger.WithField("country", cc).Warn("mean duration is zero, no average speed")
			continue
		}
		v := domain.MpsToKmph(Mean(s.Y) / meanDur)
		speeds = append(speeds, CountrySpeed{CountryCode: cc, SpeedKmph: v})
		fmt.Fprintf(r.Out, "Average speed = %s kmph in %s\n", strconv.FormatFloat(v, 'f', -1, 64), cc)
	}

	if len(chart.Series) == 0 {
		r.Logger.Warn("nothing to plot")
		return speeds, nil
	}
	if err := r.Renderer.RenderScatter(chart); err != nil {
		return nil, fmt.Errorf("plot distance time: %w", err)
	}
	return speeds, nil
}

// PlotVelocities renders a density-normalised histogram of the sampled
// average speeds of each country.
func (r *Reporter) PlotVelocities(ctx context.Context, codes []string, style ports.HistogramStyle) error {
	if style != ports.HistogramBar && style != ports.HistogramLine {
		return fmt.Errorf("plot velocities: unknown style %q", style)
	}

	chart := ports.HistogramChart{
		Name:   ChartVelocities,
		XLabel: "Velocity [km/h]",
		YLabel: "Normalised count",
		Style:  style,
	}

	for _, cc := range codes {
		records, ok, err := r.load(ctx, cc)
		if err != nil {
			return fmt.Errorf("plot velocities: %w", err)
		}
		if !ok {
			continue
		}

		speeds := make([]float64, len(records))
		for i, rec := range records {
			speeds[i] = rec.AvgSpeedKmph
		}
		edges, density := Histogram(speeds, velocityBins)
		chart.Series = append(chart.Series, ports.HistogramSeries{Name: cc, Edges: edges, Values: density})
	}

	if len(chart.Series) == 0 {
		r.Logger.Warn("nothing to plot")
		return nil
	}
	if err := r.Renderer.RenderHistogram(chart); err != nil {
		return fmt.Errorf("plot velocities: %w", err)
	}
	return nil
}

// PlotAveragedVelocity ranks countries by their mean sampled speed, slowest
// first, and renders one point per country. With no codes every stored
// country is ranked.
func (r *Reporter) PlotAveragedVelocity(ctx context.Context, codes []string) ([]CountrySpeed, error) {
	if len(codes) == 0 {
		all, err := r.Store.Countries(ctx)
		if err != nil {
			return nil, fmt.Errorf("plot averaged velocity: %w", err)
		}
		codes = all
	}

	ranking := make([]CountrySpeed, 0, len(codes))
	for _, cc := range codes {
		records, ok, err := r.load(ctx, cc)
		if err != nil {
			return nil, fmt.Errorf("plot averaged velocity: %w", err)
		}
		if !ok {
			continue
		}

		speeds := make([]float64, len(records))
		for i, rec := range records {
			speeds[i] = rec.AvgSpeedKmph
		}
		ranking = append(ranking, CountrySpeed{CountryCode: cc, SpeedKmph: Mean(speeds)})
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].SpeedKmph < ranking[j].SpeedKmph
	})

	if len(ranking) == 0 {
		r.Logger.Warn("nothing to plot")
		return ranking, nil
	}

	chart := ports.RankingChart{
		Name:   ChartAveragedVelocity,
		XLabel: "Country",
		YLabel: "Averaged velocity [km/h]",
		Labels: make([]string, len(ranking)),
		Values: make([]float64, len(ranking)),
	}
	for i, cs := range ranking {
		chart.Labels[i] = cs.CountryCode
		chart.Values[i] = cs.SpeedKmph
	}
	if err := r.Renderer.RenderRanking(chart); err != nil {
		return nil, fmt.Errorf("plot averaged velocity: %w", err)
	}
	return ranking, nil
}
