package service

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/evdash/evdash-backend-go/internal/config"
	"github.com/evdash/evdash-backend-go/internal/database"
	"github.com/evdash/evdash-backend-go/internal/repository"
	"github.com/evdash/evdash-backend-go/pkg/models"
)

// testDefaults mirrors the shipped configuration defaults.
var testDefaults = config.EnergyDefaults{
	ElectricityPrice:    0.15,
	GasolinePrice:       1.50,
	DieselPrice:         1.40,
	GasolineConsumption: 7.0,
	DieselConsumption:   5.5,
	CO2Gasoline:         120,
	CO2Diesel:           95,
}

func openTestStore(t *testing.T) (*sql.DB, *repository.TripRepository, *repository.FileRepository) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "trips.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))
	return db, repository.NewTripRepository(db), repository.NewFileRepository(db)
}

// makeTrip builds a SourceTrip starting at the given local datetime.
func makeTrip(t *testing.T, start string, distance, electricity float64) models.SourceTrip {
	t.Helper()

	ts, err := time.ParseInLocation("2006-01-02T15:04:05", start, time.UTC)
	require.NoError(t, err)

	trip := models.SourceTrip{
		StartTimestamp: ts.Unix(),
		EndTimestamp:   ts.Unix() + 900,
		Duration:       900,
		Distance:       distance,
		Electricity:    electricity,
		StartDatetime:  start,
		EndDatetime:    ts.Add(900 * time.Second).Format("2006-01-02T15:04:05"),
		FileHash:       "testhash",
	}
	if electricity > 0 {
		eff := distance / electricity
		trip.Efficiency = &eff
	}
	return trip
}

func seedTrips(t *testing.T, trips *repository.TripRepository, rows ...models.SourceTrip) {
	t.Helper()
	added, _, err := trips.InsertSourceTrips(rows)
	require.NoError(t, err)
	require.Equal(t, len(rows), added)
}
