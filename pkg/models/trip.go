// Package models holds the JSON shapes shared by the HTTP API and the
// client package. It lives outside internal/ so external consumers of
// pkg/client can name these types.
package models

// Trip represents one completed journey as served by the trips API.
// Times are local wall-clock strings; Distance keeps the "trip" JSON key
// used by the vehicle's on-board export.
type Trip struct {
	ID          int64    `json:"id" db:"id"`
	StartTime   string   `json:"start_time" db:"start_datetime"`
	EndTime     string   `json:"end_time" db:"end_datetime"`
	Duration    int64    `json:"duration" db:"duration"` // seconds
	Distance    float64  `json:"trip" db:"trip"`         // km
	Electricity float64  `json:"electricity" db:"electricity"` // kWh
	Efficiency  *float64 `json:"efficiency" db:"efficiency"`   // km/kWh, nil when consumption is zero
	AvgSpeed    *float64 `json:"avg_speed" db:"avg_speed"`     // km/h, nil when duration is zero
}

// SourceTrip is a raw trip row read from an uploaded source database,
// normalized to unix seconds, before it is persisted.
type SourceTrip struct {
	OriginalID     int64
	StartTimestamp int64
	EndTimestamp   int64
	Duration       int64
	Distance       float64
	Electricity    float64
	Efficiency     *float64
	StartDatetime  string
	EndDatetime    string
	FileHash       string
}

// UploadResult reports the outcome of ingesting one source file.
type UploadResult struct {
	Status       string `json:"status"` // success, skipped or error
	Message      string `json:"message"`
	TripsAdded   int    `json:"trips_added"`
	TripsSkipped int    `json:"trips_skipped"`
	TotalInFile  int    `json:"total_in_file"`
	FileWasNew   bool   `json:"file_was_new"`
}

// Upload status constants
const (
	UploadStatusSuccess = "success"
	UploadStatusSkipped = "skipped"
	UploadStatusError   = "error"
)
