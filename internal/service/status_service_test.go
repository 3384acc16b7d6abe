package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBStatusEmptyStore(t *testing.T) {
	_, trips, files := openTestStore(t)
	svc := NewStatusService(trips, files, "/nonexistent/historical.db", "UTC")

	status, err := svc.DBStatus()
	require.NoError(t, err)

	assert.Equal(t, int64(0), status.TotalTrips)
	assert.Equal(t, "N/A", status.FirstTrip)
	assert.Equal(t, "N/A", status.LastTrip)
	assert.NotEmpty(t, status.ServerTime)
}

func TestSystemStatusCounters(t *testing.T) {
	db, trips, files := openTestStore(t)
	seedTrips(t, trips,
		makeTrip(t, "2024-01-10T08:00:00", 60, 9),
		makeTrip(t, "2024-02-10T08:00:00", 40, 6),
	)
	require.NoError(t, files.Record("jan.db", "h1", 2))

	var dbPath string
	require.NoError(t, db.QueryRow("SELECT file FROM pragma_database_list WHERE name='main'").Scan(&dbPath))

	svc := NewStatusService(trips, files, dbPath, "Europe/Madrid")
	status, err := svc.SystemStatus()
	require.NoError(t, err)

	assert.Equal(t, int64(2), status.Database.TotalTrips)
	assert.Equal(t, int64(1), status.Database.TotalFiles)
	assert.Equal(t, 100.0, status.Database.TotalDistance)
	assert.Equal(t, 15.0, status.Database.TotalConsumption)
	assert.Greater(t, status.Database.SizeBytes, int64(0))
	assert.True(t, status.System.BackupSupported)
	assert.Equal(t, "Europe/Madrid", status.System.Timezone)
}
