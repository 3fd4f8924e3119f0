package repositories

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"journey-times/internal/domain"
	"journey-times/internal/platform/obs"
	"journey-times/internal/ports"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	resultsPrefix = "Results_"
	resultsSuffix = ".txt"
)

// FileResultsStore keeps one space-delimited Results_<CC>.txt file per country
// under Dir. Appends write a single line; the file never gets rewritten.
// There is no locking, so each country file must have a single writer.
type FileResultsStore struct {
	Dir    string
	logger logrus.FieldLogger
}

func NewFileResultsStore(dir string, logger logrus.FieldLogger) *FileResultsStore {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &FileResultsStore{Dir: dir, logger: logger}
}

// Path returns the results file for a country code.
func (s *FileResultsStore) Path(countryCode string) string {
	return filepath.Join(s.Dir, resultsPrefix+countryCode+resultsSuffix)
}

func validCountryCode(cc string) error {
	if strings.TrimSpace(cc) == "" {
		return errors.New("country code must not be empty")
	}
	if strings.ContainsAny(cc, "/\\ \t") {
		return fmt.Errorf("country code %q contains invalid characters", cc)
	}
	return nil
}

func (s *FileResultsStore) Append(ctx context.Context, countryCode string, record domain.ResultRecord) (err error) {
	defer obs.Time(ctx, s.logger, "results.file.Append")(&err)

	if err := validCountryCode(countryCode); err != nil {
		return fmt.Errorf("append result: %w", err)
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("append result: create results dir: %w", err)
	}

	path := s.Path(countryCode)
	st, err := inspectResultsFile(path)
	if err != nil {
		return fmt.Errorf("append result: inspect %q: %w", path, err)
	}

	columns := st.columns
	if columns == nil {
		columns = resultColumns
	}
	line, err := formatRow(st.rows, record, columns)
	if err != nil {
		return fmt.Errorf("append result: %w", err)
	}

	var b strings.Builder
	if st.missingNewline {
		b.WriteByte('\n')
	}
	if st.columns == nil {
		b.WriteString(headerLine())
	}
	b.WriteString(line)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("append result: open %q: %w", path, err)
	}
	if _, err := f.WriteString(b.String()); err != nil {
		_ = f.Close()
		return fmt.Errorf("append result: write %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("append result: close %q: %w", path, err)
	}

	return nil
}

type fileState struct {
	columns        []string
	rows           int
	missingNewline bool
}

// inspectResultsFile reads the header of an existing file, counts its data
// rows and reports whether its last byte is a newline. A missing file is an
// empty state.
func inspectResultsFile(path string) (fileState, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return fileState{}, nil
	}
	if err != nil {
		return fileState{}, err
	}
	defer f.Close()

	var st fileState
	r := bufio.NewReader(f)
	var last byte
	for {
		line, err := r.ReadString('\n')
		if len(line) > 0 {
			last = line[len(line)-1]
			if strings.TrimSpace(line) != "" {
				if st.columns != nil {
					st.rows++
				} else {
					st.columns = splitHeader(line)
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fileState{}, err
		}
	}
	st.missingNewline = last != 0 && last != '\n'

	return st, nil
}

// LoadAll returns the records in file order. A missing file yields
// ports.ErrNoResults; an empty file yields no records.
func (s *FileResultsStore) LoadAll(ctx context.Context, countryCode string) (_ []domain.ResultRecord, err error) {
	defer obs.Time(ctx, s.logger, "results.file.LoadAll")(&err)

	if err := validCountryCode(countryCode); err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}

	path := s.Path(countryCode)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load results %s: %w", countryCode, ports.ErrNoResults)
	}
	if err != nil {
		return nil, fmt.Errorf("load results: open %q: %w", path, err)
	}
	defer f.Close()

	parsed, err := parseResults(f)
	if err != nil {
		return nil, fmt.Errorf("load results %q: %w", path, err)
	}
	if len(parsed.skipped) > 0 {
		s.logger.WithFields(logrus.Fields{
			"path":    path,
			"skipped": len(parsed.skipped),
			"lines":   parsed.skipped,
		}).Warn("skipped unreadable result rows")
	}
	return parsed.records, nil
}

// Countries lists the codes of the Results_<CC>.txt files in Dir, sorted.
// A missing directory has no countries.
func (s *FileResultsStore) Countries(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list results: read dir %q: %w", s.Dir, err)
	}

	codes := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, resultsPrefix) || !strings.HasSuffix(name, resultsSuffix) {
			continue
		}
		cc := strings.TrimSuffix(strings.TrimPrefix(name, resultsPrefix), resultsSuffix)
		if cc == "" {
			continue
		}
		codes = append(codes, cc)
	}
	sort.Strings(codes)

	return codes, nil
}
