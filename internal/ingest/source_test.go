package ingest

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixtureRow struct {
	id             int64
	distance       float64
	electricity    float64
	startTimestamp int64
	endTimestamp   int64
}

// writeSourceFile builds a minimal on-board export in a temp dir.
func writeSourceFile(t *testing.T, table string, rows []fixtureRow) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "export.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE "` + table + `" (
		_id INTEGER PRIMARY KEY,
		trip REAL,
		electricity REAL,
		start_timestamp INTEGER,
		end_timestamp INTEGER
	)`)
	require.NoError(t, err)

	for _, r := range rows {
		_, err = db.Exec(
			`INSERT INTO "`+table+`" (_id, trip, electricity, start_timestamp, end_timestamp) VALUES (?, ?, ?, ?, ?)`,
			r.id, r.distance, r.electricity, r.startTimestamp, r.endTimestamp,
		)
		require.NoError(t, err)
	}
	return path
}

func TestReadTripsNormalizesMillisecondTimestamps(t *testing.T) {
	path := writeSourceFile(t, "consumption_data", []fixtureRow{
		{id: 1, distance: 12.5, electricity: 2.0, startTimestamp: 1_700_000_000_000, endTimestamp: 1_700_001_200_000},
	})

	trips, invalid, err := NewReader(time.UTC).ReadTrips(path)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, 0, invalid)

	got := trips[0]
	assert.Equal(t, int64(1_700_000_000), got.StartTimestamp)
	assert.Equal(t, int64(1_700_001_200), got.EndTimestamp)
	assert.Equal(t, int64(1200), got.Duration)
	assert.Equal(t, "2023-11-14T22:13:20", got.StartDatetime)
}

func TestReadTripsKeepsSecondTimestamps(t *testing.T) {
	path := writeSourceFile(t, "consumption_data", []fixtureRow{
		{id: 1, distance: 5, electricity: 1, startTimestamp: 1_700_000_000, endTimestamp: 1_700_000_600},
	})

	trips, invalid, err := NewReader(time.UTC).ReadTrips(path)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, 0, invalid)
	assert.Equal(t, int64(1_700_000_000), trips[0].StartTimestamp)
	assert.Equal(t, int64(600), trips[0].Duration)
}

func TestReadTripsEfficiency(t *testing.T) {
	path := writeSourceFile(t, "consumption_data", []fixtureRow{
		{id: 1, distance: 12.5, electricity: 2.0, startTimestamp: 1_700_000_000, endTimestamp: 1_700_000_600},
		{id: 2, distance: 3.0, electricity: 0, startTimestamp: 1_700_001_000, endTimestamp: 1_700_001_300},
	})

	trips, invalid, err := NewReader(time.UTC).ReadTrips(path)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, 0, invalid)

	require.NotNil(t, trips[0].Efficiency)
	assert.InDelta(t, 6.25, *trips[0].Efficiency, 1e-9)
	assert.Nil(t, trips[1].Efficiency, "zero consumption must not yield an efficiency")
}

func TestReadTripsCountsInvertedRows(t *testing.T) {
	path := writeSourceFile(t, "consumption_data", []fixtureRow{
		{id: 1, distance: 5, electricity: 1, startTimestamp: 1_700_000_600, endTimestamp: 1_700_000_000},
		{id: 2, distance: 5, electricity: 1, startTimestamp: 1_700_001_000, endTimestamp: 1_700_001_600},
	})

	trips, invalid, err := NewReader(time.UTC).ReadTrips(path)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, 1, invalid, "the inverted row must be accounted for, not lost")
	assert.Equal(t, int64(1_700_001_000), trips[0].StartTimestamp)
}

func TestReadTripsEmptyTable(t *testing.T) {
	path := writeSourceFile(t, "consumption_data", nil)

	_, _, err := NewReader(time.UTC).ReadTrips(path)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestReadTripsPrefersConsumptionTable(t *testing.T) {
	// A metadata table created first must not shadow the consumption one.
	path := filepath.Join(t.TempDir(), "export.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE android_metadata (locale TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE consumption_data (trip REAL, electricity REAL, start_timestamp INTEGER, end_timestamp INTEGER)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO consumption_data VALUES (5, 1, 1700000000, 1700000600)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	trips, invalid, err := NewReader(time.UTC).ReadTrips(path)
	require.NoError(t, err)
	assert.Len(t, trips, 1)
	assert.Equal(t, 0, invalid)
}

func TestReadTripsMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE consumption_data (trip REAL, start_timestamp INTEGER, end_timestamp INTEGER)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, _, err = NewReader(time.UTC).ReadTrips(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "electricity")
}
