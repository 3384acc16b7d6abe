package models

import (
	"encoding/json"
	"fmt"
)

// GeneralStats holds full-history aggregate figures.
type GeneralStats struct {
	TotalTrips       int64   `json:"total_trips"`
	TotalDistance    float64 `json:"total_distance"`    // km
	TotalConsumption float64 `json:"total_consumption"` // kWh
	AvgEfficiency    float64 `json:"avg_efficiency"`    // km/kWh
	MinEfficiency    float64 `json:"min_efficiency"`
	MaxEfficiency    float64 `json:"max_efficiency"`
	AvgSpeed         float64 `json:"avg_speed"` // km/h
}

// DistanceBucket aggregates trips within one distance category.
// It marshals as the [category, count, avg_efficiency] triple the
// dashboard consumes.
type DistanceBucket struct {
	Category      string
	Count         int64
	AvgEfficiency float64
}

// MarshalJSON encodes the bucket as a three-element array.
func (b DistanceBucket) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{b.Category, b.Count, b.AvgEfficiency})
}

// UnmarshalJSON decodes the three-element array form.
func (b *DistanceBucket) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("distance bucket: expected 3 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &b.Category); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &b.Count); err != nil {
		return err
	}
	return json.Unmarshal(raw[2], &b.AvgEfficiency)
}

// MonthlyStat is one month of rolled-up trip figures.
type MonthlyStat struct {
	Month            string  `json:"month"` // YYYY-MM
	TripCount        int64   `json:"trip_count"`
	TotalDistance    float64 `json:"total_distance"`
	TotalConsumption float64 `json:"total_consumption"`
	AvgEfficiency    float64 `json:"avg_efficiency"`
}

// ConsumptionStats is the payload of GET /api/consumption.
type ConsumptionStats struct {
	General    GeneralStats     `json:"general"`
	ByDistance []DistanceBucket `json:"by_distance"`
	Monthly    []MonthlyStat    `json:"monthly"`
}

// Distance category labels, ordered short to long.
const (
	DistanceCategoryShort  = "short (<5km)"
	DistanceCategoryMedium = "medium (5-20km)"
	DistanceCategoryLong   = "long (>20km)"
)
