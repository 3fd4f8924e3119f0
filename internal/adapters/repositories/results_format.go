package repositories

import (
	"bufio"
	"fmt"
	"io"
	"journey-times/internal/domain"
	"strconv"
	"strings"
)

// Column names of a results file. The index column has an empty name, so the
// header line starts with the delimiter.
const (
	colOrigin      = "origin"
	colDestination = "destination"
	colDuration    = "duration_s"
	colDistance    = "distance_m"
	colSpeed       = "v_ave_kmph"
	colDate        = "time"
)

var resultColumns = []string{colOrigin, colDestination, colDuration, colDistance, colSpeed, colDate}

func headerLine() string {
	return " " + strings.Join(resultColumns, " ") + "\n"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatRow renders one data line with fields in the given column order.
// Columns that are not result columns, such as an unnamed index kept from an
// older rewrite of the file, are filled with the row index. Fields must not
// contain whitespace since the file is written without quoting.
func formatRow(index int, r domain.ResultRecord, columns []string) (string, error) {
	values := map[string]string{
		colOrigin:      r.Origin,
		colDestination: r.Destination,
		colDuration:    formatFloat(r.DurationSeconds),
		colDistance:    formatFloat(r.DistanceMeters),
		colSpeed:       formatFloat(r.AvgSpeedKmph),
		colDate:        r.Date,
	}

	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	for _, c := range resultColumns {
		if !present[c] {
			return "", fmt.Errorf("format row: header lacks column %q", c)
		}
	}

	idx := strconv.Itoa(index)
	fields := make([]string, 0, len(columns)+1)
	fields = append(fields, idx)
	for _, c := range columns {
		v, ok := values[c]
		if !ok {
			fields = append(fields, idx)
			continue
		}
		if v == "" || strings.ContainsAny(v, " \t\r\n") {
			return "", fmt.Errorf("format row: %s %q is empty or contains whitespace", c, v)
		}
		fields = append(fields, v)
	}
	return strings.Join(fields, " ") + "\n", nil
}

// splitHeader splits a header line on whitespace. Double-quoted names, as in
// "Unnamed: 0", stay one column.
func splitHeader(line string) []string {
	var names []string
	var b strings.Builder
	quoted := false
	inName := false

	flush := func() {
		if inName {
			names = append(names, b.String())
			b.Reset()
			inName = false
		}
	}

	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			inName = true
		case !quoted && (r == ' ' || r == '\t' || r == '\r' || r == '\n'):
			flush()
		default:
			b.WriteRune(r)
			inName = true
		}
	}
	flush()
	return names
}

type parsedResults struct {
	records []domain.ResultRecord
	// Data lines that were dropped, e.g. rows cut short by an interrupted write.
	skipped []int
}

// parseResults reads a results file. Columns are matched by header name, so
// any column order loads. Rows are aligned on their last field, so leading
// index columns the header does not name, or empty ones that collapsed, are
// tolerated. Rows that are too short or do not parse are skipped and reported
// by line number.
func parseResults(r io.Reader) (parsedResults, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	out := parsedResults{records: make([]domain.ResultRecord, 0, 128)}

	var names []string
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if line := strings.TrimSpace(sc.Text()); line != "" {
			names = splitHeader(line)
			break
		}
	}
	if err := sc.Err(); err != nil {
		return parsedResults{}, fmt.Errorf("parse results: read header: %w", err)
	}
	if names == nil {
		return out, nil
	}

	pos := make(map[string]int, len(names))
	for i, n := range names {
		pos[n] = i
	}
	for _, c := range resultColumns {
		if _, ok := pos[c]; !ok {
			return parsedResults{}, fmt.Errorf("parse results: header lacks column %q", c)
		}
	}

	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		rec, ok := recordFromFields(fields, len(fields)-len(names), pos)
		if !ok {
			out.skipped = append(out.skipped, lineNo)
			continue
		}
		out.records = append(out.records, rec)
	}
	if err := sc.Err(); err != nil {
		return parsedResults{}, fmt.Errorf("parse results: read rows: %w", err)
	}

	return out, nil
}

// recordFromFields reads the result columns at their header position shifted
// by offset.
func recordFromFields(fields []string, offset int, pos map[string]int) (domain.ResultRecord, bool) {
	get := func(col string) (string, bool) {
		i := pos[col] + offset
		if i < 0 || i >= len(fields) {
			return "", false
		}
		return fields[i], true
	}
	num := func(col string) (float64, bool) {
		s, ok := get(col)
		if !ok {
			return 0, false
		}
		v, err := strconv.ParseFloat(s, 64)
		return v, err == nil
	}

	origin, ok1 := get(colOrigin)
	destination, ok2 := get(colDestination)
	date, ok3 := get(colDate)
	dur, ok4 := num(colDuration)
	dist, ok5 := num(colDistance)
	speed, ok6 := num(colSpeed)
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6) {
		return domain.ResultRecord{}, false
	}

	return domain.ResultRecord{
		Origin:          origin,
		Destination:     destination,
		DurationSeconds: dur,
		DistanceMeters:  dist,
		AvgSpeedKmph:    speed,
		Date:            date,
	}, true
}
