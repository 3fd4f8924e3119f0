package locations

import (
	"bufio"
	"fmt"
	"io"
	"journey-times/internal/domain"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Column positions in the tab-separated postal-code reference table
// (GeoNames postal code dump layout, no header row).
const (
	colCountryCode = 0
	colPostalCode  = 1
	colLat         = 9
	colLon         = 10
	minColumns     = colLon + 1
)

// TSVLocationStore holds the postal-code reference table in memory,
// partitioned by country code.
type TSVLocationStore struct {
	Path string

	logger    logrus.FieldLogger
	total     int
	byCountry map[string][]domain.Location
}

func NewTSVLocationStore(path string, logger logrus.FieldLogger) *TSVLocationStore {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &TSVLocationStore{
		Path:      path,
		logger:    logger,
		byCountry: map[string][]domain.Location{},
	}
}

// Load reads the reference file. A missing file is returned as an error.
func (s *TSVLocationStore) Load() error {
	f, err := os.Open(s.Path)
	if err != nil {
		return fmt.Errorf("load locations: %w", err)
	}
	defer f.Close()

	if err := s.LoadFrom(f); err != nil {
		return fmt.Errorf("load locations %q: %w", s.Path, err)
	}
	return nil
}

// LoadFrom replaces the in-memory table with the rows read from r.
// Short rows and rows with unparsable coordinates are skipped.
func (s *TSVLocationStore) LoadFrom(r io.Reader) error {
	byCountry := map[string][]domain.Location{}
	total := 0
	skipped := 0

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}

		loc, ok := parseLocation(line)
		if !ok {
			skipped++
			continue
		}
		byCountry[loc.CountryCode] = append(byCountry[loc.CountryCode], loc)
		total++
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scan reference table: %w", err)
	}

	if skipped > 0 {
		s.logger.WithField("skipped", skipped).Warn("skipped malformed reference rows")
	}

	s.byCountry = byCountry
	s.total = total
	return nil
}

func parseLocation(line string) (domain.Location, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) < minColumns {
		return domain.Location{}, false
	}

	cc := strings.TrimSpace(fields[colCountryCode])
	if cc == "" {
		return domain.Location{}, false
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(fields[colLat]), 64)
	if err != nil {
		return domain.Location{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(fields[colLon]), 64)
	if err != nil {
		return domain.Location{}, false
	}

	return domain.Location{
		CountryCode: cc,
		PostalCode:  strings.TrimSpace(fields[colPostalCode]),
		Coordinates: domain.Coordinates{Lat: lat, Lon: lon},
	}, true
}

// Len returns the number of loaded rows.
func (s *TSVLocationStore) Len() int { return s.total }

// CountryCodes returns the distinct country codes, sorted.
func (s *TSVLocationStore) CountryCodes() []string {
	codes := make([]string, 0, len(s.byCountry))
	for cc := range s.byCountry {
		codes = append(codes, cc)
	}
	sort.Strings(codes)
	return codes
}

func (s *TSVLocationStore) CountryCounts() map[string]int {
	out := make(map[string]int, len(s.byCountry))
	for cc, rows := range s.byCountry {
		out[cc] = len(rows)
	}
	return out
}

// Subset returns a copy of the rows for one country, in file order.
func (s *TSVLocationStore) Subset(countryCode string) []domain.Location {
	rows := s.byCountry[countryCode]
	out := make([]domain.Location, len(rows))
	copy(out, rows)
	return out
}
