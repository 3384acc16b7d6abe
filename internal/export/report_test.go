package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/evdash/evdash-backend-go/pkg/models"
)

func sampleData() ([]models.Trip, models.GeneralStats) {
	eff := 6.25
	speed := 50.0
	trips := []models.Trip{
		{ID: 1, StartTime: "2024-01-10T08:00:00", EndTime: "2024-01-10T08:15:00", Duration: 900, Distance: 12.5, Electricity: 2, Efficiency: &eff, AvgSpeed: &speed},
		{ID: 2, StartTime: "2024-01-11T08:00:00", EndTime: "2024-01-11T08:10:00", Duration: 600, Distance: 3, Electricity: 0},
	}
	stats := models.GeneralStats{
		TotalTrips:       2,
		TotalDistance:    15.5,
		TotalConsumption: 2,
		AvgEfficiency:    6.25,
		AvgSpeed:         34.0,
	}
	return trips, stats
}

func TestBuildTripsXLSX(t *testing.T) {
	trips, stats := sampleData()

	data, err := BuildTripsXLSX(trips, stats)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "EV Trip Report", title)

	start, err := f.GetCellValue("trips", "A2")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10T08:00:00", start)

	// The zero-consumption trip leaves its efficiency cell empty.
	eff, err := f.GetCellValue("trips", "F3")
	require.NoError(t, err)
	assert.Empty(t, eff)
}

func TestBuildSummaryPDF(t *testing.T) {
	trips, stats := sampleData()

	data, err := BuildSummaryPDF(trips, stats)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestBuildSummaryPDFCapsRows(t *testing.T) {
	var trips []models.Trip
	for i := 0; i < 100; i++ {
		trips = append(trips, models.Trip{StartTime: "2024-01-10T08:00:00", Distance: 5, Electricity: 1})
	}

	data, err := BuildSummaryPDF(trips, models.GeneralStats{TotalTrips: 100})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
