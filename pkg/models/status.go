package models

// DBStatus is the payload of GET /api/db_status.
type DBStatus struct {
	TotalTrips  int64  `json:"total_trips"`
	UniqueFiles int64  `json:"unique_files"`
	TotalFiles  int64  `json:"total_files"`
	FirstTrip   string `json:"first_trip"`
	LastTrip    string `json:"last_trip"`
	ServerTime  string `json:"server_time"`
}

// DatabaseStatus is the database block of GET /api/system/status.
type DatabaseStatus struct {
	TotalTrips       int64   `json:"total_trips"`
	TotalFiles       int64   `json:"total_files"`
	FirstTrip        string  `json:"first_trip"`
	LastTrip         string  `json:"last_trip"`
	TotalDistance    float64 `json:"total_distance"`
	TotalConsumption float64 `json:"total_consumption"`
	SizeBytes        int64   `json:"size_bytes"`
	SizeMB           float64 `json:"size_mb"`
}

// SystemInfo is the system block of GET /api/system/status.
type SystemInfo struct {
	Version         string `json:"version"`
	BackupSupported bool   `json:"backup_supported"`
	ServerTime      string `json:"server_time"`
	Timezone        string `json:"timezone"`
}

// SystemStatus is the payload of GET /api/system/status.
type SystemStatus struct {
	Database DatabaseStatus `json:"database"`
	System   SystemInfo     `json:"system"`
}
