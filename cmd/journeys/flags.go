package main

import (
	"errors"
	"fmt"
	"io"
	"journey-times/internal/ports"
	"strings"

	"github.com/spf13/pflag"
)

type options struct {
	CollectResults       bool
	N                    int
	PlotDistanceTime     bool
	PlotVelocities       bool
	Countries            []string
	GetCountryCodes      bool
	ListDownloadedData   bool
	PlotAveragedVelocity bool
	KeyFile              string
	VelocityStyle        ports.HistogramStyle
}

var errUsage = errors.New("usage")

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	var style string

	fs := pflag.NewFlagSet("journeys", pflag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintln(output, "Tool set to investigate journey times and distances in different countries")
		fmt.Fprintln(output, "using data generated from a distance matrix API.")
		fmt.Fprintln(output)
		fmt.Fprintln(output, "Usage: journeys [flags] [country codes...]")
		fs.PrintDefaults()
	}

	fs.BoolVarP(&opts.CollectResults, "CollectResults", "r", false, "Randomly select N pairs of postcodes from a country and save the results")
	fs.IntVarP(&opts.N, "samples", "N", 100, "Number of points to add to the results file")
	fs.BoolVarP(&opts.PlotDistanceTime, "PlotDistanceTime", "p", false, "Plot the distance against time for each country")
	fs.BoolVarP(&opts.PlotVelocities, "PlotVelocities", "v", false, "Plot the velocity distribution of each country")
	fs.StringSliceVarP(&opts.Countries, "Country", "c", nil, "Country codes to use results from (repeatable or comma-separated)")
	fs.BoolVarP(&opts.GetCountryCodes, "GetCountryCodes", "g", false, "Print a list of usable country codes")
	fs.BoolVarP(&opts.ListDownloadedData, "ListDownloadedData", "l", false, "List the downloaded data and the number of lines in each file")
	fs.BoolVarP(&opts.PlotAveragedVelocity, "PlotAveragedVelocity", "a", false, "Plot the averaged velocity for all countries")
	fs.StringVarP(&opts.KeyFile, "KeyFile", "k", "", "API key file to use in requests")
	fs.StringVar(&style, "VelocityStyle", string(ports.HistogramLine), "Velocity histogram style: bar or line")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	// Codes following -c are positional once pflag has consumed the first one.
	for _, a := range fs.Args() {
		if a = strings.TrimSpace(a); a != "" {
			opts.Countries = append(opts.Countries, a)
		}
	}

	opts.VelocityStyle = ports.HistogramStyle(style)
	if opts.VelocityStyle != ports.HistogramBar && opts.VelocityStyle != ports.HistogramLine {
		return options{}, fmt.Errorf("%w: --VelocityStyle must be bar or line, got %q", errUsage, style)
	}
	if opts.N < 0 {
		return options{}, fmt.Errorf("%w: -N must not be negative, got %d", errUsage, opts.N)
	}
	if opts.CollectResults && len(opts.Countries) == 0 {
		return options{}, fmt.Errorf("%w: -r/--CollectResults needs a country code (-c CC, or -c R for a random country)", errUsage)
	}

	return opts, nil
}
