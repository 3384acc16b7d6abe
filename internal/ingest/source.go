// Package ingest reads trip rows out of a vehicle's on-board database
// export (a SQLite file) and normalizes them for the trip store.
package ingest

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/evdash/evdash-backend-go/pkg/models"
	_ "modernc.org/sqlite"
)

// Timestamps above this are assumed to be milliseconds. Unix seconds
// won't cross it until 2033.
const millisThreshold = 2_000_000_000

// ErrNoData is returned when the source database holds no trip rows.
var ErrNoData = fmt.Errorf("no trip data found in source file")

var requiredColumns = []string{"trip", "electricity", "start_timestamp", "end_timestamp"}

// Reader extracts trips from source database files.
type Reader struct {
	loc *time.Location
}

// NewReader creates a reader that renders trip datetimes in the given
// location.
func NewReader(loc *time.Location) *Reader {
	if loc == nil {
		loc = time.UTC
	}
	return &Reader{loc: loc}
}

// ReadTrips opens the source file read-only, locates the consumption
// table and returns its rows normalized to unix seconds. Rows whose
// end precedes their start are invalid; they are dropped and reported
// in the second return so callers can account for every row in the
// file.
func (r *Reader) ReadTrips(path string) ([]models.SourceTrip, int, error) {
	src, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	table, err := findTripTable(src)
	if err != nil {
		return nil, 0, err
	}

	rows, err := src.Query(fmt.Sprintf("SELECT * FROM %q", table))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read table %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read columns: %w", err)
	}

	colIndex := make(map[string]int, len(cols))
	for i, c := range cols {
		colIndex[strings.ToLower(c)] = i
	}
	for _, required := range requiredColumns {
		if _, ok := colIndex[required]; !ok {
			return nil, 0, fmt.Errorf("column %q not found in source file", required)
		}
	}

	var trips []models.SourceTrip
	var invalid int
	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan source row: %w", err)
		}

		start := asInt64(values[colIndex["start_timestamp"]])
		end := asInt64(values[colIndex["end_timestamp"]])
		// normalize millisecond exports
		if start > millisThreshold {
			start /= 1000
			end /= 1000
		}
		if end < start {
			invalid++
			continue
		}

		t := models.SourceTrip{
			StartTimestamp: start,
			EndTimestamp:   end,
			Duration:       end - start,
			Distance:       asFloat64(values[colIndex["trip"]]),
			Electricity:    asFloat64(values[colIndex["electricity"]]),
		}
		if i, ok := colIndex["duration"]; ok {
			if d := asInt64(values[i]); d > 0 {
				t.Duration = d
			}
		}
		if i, ok := colIndex["_id"]; ok {
			t.OriginalID = asInt64(values[i])
		}
		if t.Electricity > 0 {
			eff := t.Distance / t.Electricity
			t.Efficiency = &eff
		}

		t.StartDatetime = r.localize(start)
		t.EndDatetime = r.localize(end)

		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate source rows: %w", err)
	}

	if len(trips) == 0 {
		return nil, invalid, ErrNoData
	}

	return trips, invalid, nil
}

// findTripTable prefers a table whose name mentions consumption or
// energy, falling back to the first user table.
func findTripTable(src *sql.DB) (string, error) {
	rows, err := src.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'")
	if err != nil {
		return "", fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if len(tables) == 0 {
		return "", fmt.Errorf("source file contains no tables")
	}

	for _, name := range tables {
		lower := strings.ToLower(name)
		if strings.Contains(lower, "consumption") || strings.Contains(lower, "energy") {
			return name, nil
		}
	}

	return tables[0], nil
}

func (r *Reader) localize(unixSeconds int64) string {
	return time.Unix(unixSeconds, 0).In(r.loc).Format("2006-01-02T15:04:05")
}

func asInt64(v interface{}) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case float64:
		return int64(x)
	case []byte:
		n, _ := strconv.ParseInt(string(x), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(x, 10, 64)
		return n
	default:
		return 0
	}
}

func asFloat64(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	case []byte:
		f, _ := strconv.ParseFloat(string(x), 64)
		return f
	case string:
		f, _ := strconv.ParseFloat(x, 64)
		return f
	default:
		return 0
	}
}
