package models

// BackupManifest describes a full-state snapshot. It is stored as
// manifest.json inside the backup archive and echoed by the info and
// import endpoints.
type BackupManifest struct {
	Version    string `json:"version"`
	SnapshotID string `json:"snapshot_id"`
	CreatedAt  string `json:"created_at"`
	AppVersion string `json:"app_version"`
	TotalTrips int64  `json:"total_trips"`
	TotalFiles int64  `json:"total_files"`
	FirstTrip  string `json:"first_trip"`
	LastTrip   string `json:"last_trip"`
	BackupType string `json:"backup_type"`
}

// BackupFileRecord is one uploaded-file entry carried in the archive's
// files_list.json.
type BackupFileRecord struct {
	Filename   string `json:"filename"`
	Hash       string `json:"hash"`
	UploadDate string `json:"upload_date"`
	TripsAdded int64  `json:"trips_added"`
}
