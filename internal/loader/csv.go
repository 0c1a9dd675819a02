package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"fleetmon/internal/logger"
	"fleetmon/internal/metrics"
)

// Rejection errors. The loader decides what counts as a malformed row; it
// simply never hands a rejected row to the sink.
var (
	ErrFieldCount    = errors.New("expected 3 or 4 comma-separated fields")
	ErrBadID         = errors.New("id is not an integer")
	ErrBadNumber     = errors.New("field is not a number")
	ErrNegativeValue = errors.New("negative speed or fuel")
)

// Row is one accepted telemetry row.
type Row struct {
	ID          int
	Speed       float64
	Temperature float64
	Fuel        float64
}

// Sink receives each accepted row, typically constructing a record and
// appending it to a store. A sink error counts the row as skipped but does
// not stop the load.
type Sink func(row Row) error

// Stats summarizes one load run.
type Stats struct {
	Loaded  int
	Skipped int
}

// ParseRow parses one CSV line into a Row. Two shapes are accepted:
// "id,speed,temperature,fuel" and the headerless three-field variant
// "speed,temperature,fuel", for which fallbackID is used. Rows with missing
// or extra fields, non-numeric tokens, or negative speed/fuel are rejected.
func ParseRow(line string, fallbackID int) (Row, error) {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	var row Row
	var values []string

	switch len(fields) {
	case 4:
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return Row{}, fmt.Errorf("%w: %q", ErrBadID, fields[0])
		}
		row.ID = id
		values = fields[1:]
	case 3:
		row.ID = fallbackID
		values = fields
	default:
		return Row{}, fmt.Errorf("%w, got %d", ErrFieldCount, len(fields))
	}

	parsed := make([]float64, 3)
	for i, f := range values {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Row{}, fmt.Errorf("%w: %q", ErrBadNumber, f)
		}
		parsed[i] = v
	}
	row.Speed, row.Temperature, row.Fuel = parsed[0], parsed[1], parsed[2]

	if row.Speed < 0 || row.Fuel < 0 {
		return Row{}, ErrNegativeValue
	}
	return row, nil
}

// Load reads delimited telemetry rows from r and forwards accepted ones to
// the sink. Blank lines are ignored and a leading header line is skipped.
// Malformed rows are logged and counted, never fatal: the caller decides what
// an empty result means.
func Load(r io.Reader, sink Sink) (Stats, error) {
	log := logger.WithComponent("loader").With().
		Str("run_id", uuid.New().String()).
		Logger()

	var stats Stats
	scanner := bufio.NewScanner(r)
	lineNum := 0
	nextID := 1

	// The first accepted row locks the file's shape (3 or 4 fields); later
	// rows with a different shape are malformed, not a format switch.
	fieldCount := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if lineNum == 1 && isHeader(line) {
			continue
		}

		if n := strings.Count(line, ",") + 1; fieldCount != 0 && n != fieldCount {
			log.Warn().
				Int("line", lineNum).
				Str("row", line).
				Int("fields", n).
				Int("expected", fieldCount).
				Msg("skipping row with inconsistent shape")
			stats.Skipped++
			metrics.RowsRejected.WithLabelValues("field_count").Inc()
			continue
		}

		row, err := ParseRow(line, nextID)
		if err != nil {
			log.Warn().
				Int("line", lineNum).
				Str("row", line).
				Err(err).
				Msg("skipping malformed row")
			stats.Skipped++
			metrics.RowsRejected.WithLabelValues(rejectReason(err)).Inc()
			continue
		}

		if err := sink(row); err != nil {
			log.Warn().
				Int("line", lineNum).
				Int("vehicle_id", row.ID).
				Err(err).
				Msg("row rejected by sink")
			stats.Skipped++
			metrics.RowsRejected.WithLabelValues("sink").Inc()
			continue
		}

		stats.Loaded++
		nextID = row.ID + 1
		if fieldCount == 0 {
			fieldCount = strings.Count(line, ",") + 1
		}
		metrics.RowsLoaded.Inc()
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("read telemetry: %w", err)
	}

	log.Info().
		Int("loaded", stats.Loaded).
		Int("skipped", stats.Skipped).
		Msg("load complete")
	return stats, nil
}

// LoadFile opens path and loads it via Load.
func LoadFile(path string, sink Sink) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("open telemetry file: %w", err)
	}
	defer f.Close()
	return Load(f, sink)
}

// isHeader reports whether the first line is a column header rather than
// data: its first token is not numeric.
func isHeader(line string) bool {
	first := strings.TrimSpace(strings.SplitN(line, ",", 2)[0])
	if _, err := strconv.ParseFloat(first, 64); err != nil {
		return true
	}
	return false
}

// rejectReason maps a parse error to a metrics label.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrFieldCount):
		return "field_count"
	case errors.Is(err, ErrBadID):
		return "bad_id"
	case errors.Is(err, ErrBadNumber):
		return "bad_number"
	case errors.Is(err, ErrNegativeValue):
		return "negative"
	default:
		return "other"
	}
}
