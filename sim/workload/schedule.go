package workload

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DurationUnit is the unit of a CSV service-duration column.
type DurationUnit string

const (
	UnitSeconds DurationUnit = "sec"
	UnitMinutes DurationUnit = "min"
)

// Default column names used when a ColumnMapping leaves them empty.
const (
	DefaultArrivalColumn  = "arrival"
	DefaultDurationColumn = "service"
)

// ColumnMapping names the CSV columns holding a schedule. Service time comes
// either from Duration (in DurationUnit) or from the End minus Start
// timestamps; when neither is present every duration is sampled.
type ColumnMapping struct {
	Arrival      string       `yaml:"arrival_column"`
	Duration     string       `yaml:"duration_column"`
	DurationUnit DurationUnit `yaml:"duration_unit"`
	Start        string       `yaml:"start_column"`
	End          string       `yaml:"end_column"`
}

func (m ColumnMapping) withDefaults() ColumnMapping {
	if m.Arrival == "" {
		m.Arrival = DefaultArrivalColumn
	}
	if m.Duration == "" && m.Start == "" && m.End == "" {
		m.Duration = DefaultDurationColumn
	}
	if m.DurationUnit == "" {
		m.DurationUnit = UnitSeconds
	}
	return m
}

// Validate checks the unit and that Start and End are given together.
func (m ColumnMapping) Validate() error {
	switch m.DurationUnit {
	case "", UnitSeconds, UnitMinutes:
	default:
		return fmt.Errorf("unknown duration_unit %q; valid: sec, min", m.DurationUnit)
	}
	if (m.Start == "") != (m.End == "") {
		return fmt.Errorf("start_column and end_column must be given together")
	}
	if m.Start != "" && m.Duration != "" {
		return fmt.Errorf("duration_column and start_column/end_column are mutually exclusive")
	}
	return nil
}

// Schedule is an imported arrival schedule.
type Schedule struct {
	// Arrivals holds absolute arrival times in seconds, non-decreasing.
	// Their origin depends on the source format (clock time of day, Unix
	// time, or plain seconds).
	Arrivals []float64
	// Services is parallel to Arrivals; 0 means the row had no usable
	// duration and the engine samples one.
	Services []float64
	// Skipped counts rows dropped for an unparseable arrival.
	Skipped int
}

// Len returns the number of arrivals.
func (s *Schedule) Len() int { return len(s.Arrivals) }

// Rebased returns arrival times in seconds since the first arrival.
func (s *Schedule) Rebased() []float64 {
	out := make([]float64, len(s.Arrivals))
	if len(s.Arrivals) == 0 {
		return out
	}
	first := s.Arrivals[0]
	for i, a := range s.Arrivals {
		out[i] = max(0, a-first)
	}
	return out
}

// HasServices reports whether any row carried a usable duration.
func (s *Schedule) HasServices() bool {
	for _, d := range s.Services {
		if d > 0 {
			return true
		}
	}
	return false
}

// LoadScheduleCSV reads a schedule from a CSV file with a header row.
func LoadScheduleCSV(path string, cols ColumnMapping) (*Schedule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening schedule: %w", err)
	}
	defer func() { _ = f.Close() }()
	s, err := ReadScheduleCSV(f, cols)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ReadScheduleCSV parses a schedule from CSV with a header row. Column names
// match case-insensitively. Rows whose arrival cannot be parsed are skipped;
// rows are sorted by arrival time with their durations kept aligned.
func ReadScheduleCSV(r io.Reader, cols ColumnMapping) (*Schedule, error) {
	if err := cols.Validate(); err != nil {
		return nil, err
	}
	cols = cols.withDefaults()

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty schedule: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	index := headerIndex(header)

	arrivalIdx, ok := index[strings.ToLower(cols.Arrival)]
	if !ok {
		return nil, fmt.Errorf("arrival column %q not found in header %v", cols.Arrival, header)
	}
	durationIdx, hasDuration := index[strings.ToLower(cols.Duration)]
	startIdx, hasStart := index[strings.ToLower(cols.Start)]
	endIdx, hasEnd := index[strings.ToLower(cols.End)]
	if cols.Start != "" && !(hasStart && hasEnd) {
		return nil, fmt.Errorf("start/end columns %q/%q not found in header %v", cols.Start, cols.End, header)
	}
	if cols.Start == "" && !hasDuration {
		logrus.Infof("[schedule] no %q column; every service duration will be sampled", cols.Duration)
	}

	type row struct{ arrival, service float64 }
	var rows []row
	skipped := 0
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row %d: %w", line, err)
		}
		a, ok := ParseTimestamp(field(rec, arrivalIdx))
		if !ok {
			skipped++
			logrus.Debugf("[schedule] row %d: unparseable arrival %q skipped", line, field(rec, arrivalIdx))
			continue
		}
		var svc float64
		switch {
		case cols.Start != "":
			s, okS := ParseTimestamp(field(rec, startIdx))
			e, okE := ParseTimestamp(field(rec, endIdx))
			if okS && okE {
				svc = max(0, e-s)
			}
		case hasDuration:
			svc = parseDuration(field(rec, durationIdx), cols.DurationUnit)
		}
		rows = append(rows, row{arrival: a, service: svc})
	}
	if skipped > 0 {
		logrus.Warnf("[schedule] skipped %d rows with unparseable arrival times", skipped)
	}

	if !sort.SliceIsSorted(rows, func(i, j int) bool { return rows[i].arrival < rows[j].arrival }) {
		logrus.Warnf("[schedule] arrivals out of order; sorting %d rows", len(rows))
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].arrival < rows[j].arrival })
	}

	s := &Schedule{
		Arrivals: make([]float64, len(rows)),
		Services: make([]float64, len(rows)),
		Skipped:  skipped,
	}
	for i, r := range rows {
		s.Arrivals[i] = r.arrival
		s.Services[i] = r.service
	}
	return s, nil
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	return index
}

func field(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}

// timestampLayouts are the date-time formats accepted for arrival, start
// and end columns, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"02/01/2006 15:04:05",
}

// ParseTimestamp converts a schedule cell to seconds. It accepts plain
// seconds (a comma decimal separator is allowed), H:MM:SS or H:MM clock
// time (seconds since midnight), and full date-times (Unix seconds).
func ParseTimestamp(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if f, ok := parseNumber(v); ok {
		return f, true
	}
	if sec, ok := parseClock(v); ok {
		return sec, true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return float64(t.UnixNano()) / 1e9, true
		}
	}
	return 0, false
}

func parseClock(v string) (float64, bool) {
	parts := strings.Split(v, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	sec := 0.0
	if len(parts) == 3 {
		sec, err = strconv.ParseFloat(parts[2], 64)
		if err != nil || sec < 0 || sec >= 60 {
			return 0, false
		}
	}
	return float64(h*3600+m*60) + sec, true
}

func parseNumber(v string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.Replace(v, ",", ".", 1), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseDuration returns the duration in seconds, or 0 when the cell is
// empty, unparseable or non-positive.
func parseDuration(v string, unit DurationUnit) float64 {
	f, ok := parseNumber(v)
	if !ok || f <= 0 {
		return 0
	}
	if unit == UnitMinutes {
		return f * 60
	}
	return f
}
