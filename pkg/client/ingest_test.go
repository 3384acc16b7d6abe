package client

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evdash/evdash-backend-go/pkg/models"
)

func TestIngestRejectsWrongExtensionLocally(t *testing.T) {
	cm := newCountingMux()
	c := newTestClient(t, cm)
	ic := NewIngestCoordinator(c, nil)

	_, err := ic.Ingest(context.Background(), "trips.csv", strings.NewReader("x"))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, cm.total(), "rejected input must not reach the network")
}

func TestIngestBusyGuardRejectsSecondCall(t *testing.T) {
	arrived := make(chan struct{})
	release := make(chan struct{})

	cm := newCountingMux()
	cm.handle("/api/upload", func(w http.ResponseWriter, r *http.Request) {
		close(arrived)
		<-release
		writeJSON(t, w, models.UploadResult{Status: models.UploadStatusSuccess, TripsAdded: 3})
	})

	c := newTestClient(t, cm)
	ic := NewIngestCoordinator(c, nil)

	done := make(chan error, 1)
	go func() {
		_, err := ic.Ingest(context.Background(), "a.db", strings.NewReader("x"))
		done <- err
	}()

	<-arrived
	_, err := ic.Ingest(context.Background(), "b.db", strings.NewReader("y"))
	assert.ErrorIs(t, err, ErrIngestBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, cm.count("/api/upload"), "the rejected call must not have been queued")
}

func TestIngestSuccessTriggersOneRefresh(t *testing.T) {
	cm := newCountingMux()
	cm.handle("/api/upload", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, models.UploadResult{Status: models.UploadStatusSuccess, TripsAdded: 5, TotalInFile: 5})
	})
	serveRefreshEndpoints(t, cm)

	c := newTestClient(t, cm)
	sink := &recordingSink{}
	ic := NewIngestCoordinator(c, NewRefresher(c, sink, 0))

	result, err := ic.Ingest(context.Background(), "export.db", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, 5, result.TripsAdded)

	assert.Equal(t, 1, cm.count("/api/consumption"))
	assert.Equal(t, 1, cm.count("/api/trips"))
	assert.Equal(t, 1, cm.count("/api/db_status"))
}

func TestIngestSkippedDoesNotRefresh(t *testing.T) {
	cm := newCountingMux()
	cm.handle("/api/upload", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, models.UploadResult{Status: models.UploadStatusSkipped})
	})
	serveRefreshEndpoints(t, cm)

	c := newTestClient(t, cm)
	sink := &recordingSink{}
	ic := NewIngestCoordinator(c, NewRefresher(c, sink, 0))

	result, err := ic.Ingest(context.Background(), "export.db", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, models.UploadStatusSkipped, result.Status)
	assert.Equal(t, 0, cm.count("/api/consumption"))
}

func TestIngestRefreshFailureDoesNotFailUpload(t *testing.T) {
	cm := newCountingMux()
	cm.handle("/api/upload", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, models.UploadResult{Status: models.UploadStatusSuccess, TripsAdded: 5, TotalInFile: 5})
	})
	cm.handle("/api/consumption", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		writeJSON(t, w, map[string]string{"error": "database unavailable"})
	})
	cm.handle("/api/trips", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []models.Trip{{ID: 1}})
	})
	cm.handle("/api/db_status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, models.DBStatus{TotalTrips: 1})
	})

	c := newTestClient(t, cm)
	sink := &recordingSink{}
	ic := NewIngestCoordinator(c, NewRefresher(c, sink, 0))

	result, err := ic.Ingest(context.Background(), "export.db", strings.NewReader("x"))
	require.NoError(t, err, "a confirmed upload must not read as failed")
	require.NotNil(t, result)
	assert.Equal(t, models.UploadStatusSuccess, result.Status)

	// The remaining fetches still ran and published.
	assert.Equal(t, 1, cm.count("/api/trips"))
	assert.Equal(t, 1, cm.count("/api/db_status"))
}

func TestIngestServerRejectionReleasesGuard(t *testing.T) {
	cm := newCountingMux()
	cm.handle("/api/upload", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(t, w, map[string]string{"error": "unsupported file type"})
	})

	c := newTestClient(t, cm, WithTimeout(5*time.Second))
	ic := NewIngestCoordinator(c, nil)

	_, err := ic.Ingest(context.Background(), "bad.db", strings.NewReader("x"))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)

	// A failed upload must not leave the coordinator stuck busy.
	_, err = ic.Ingest(context.Background(), "next.db", strings.NewReader("y"))
	require.ErrorAs(t, err, &apiErr, "second call reached the server instead of the busy guard")
	assert.Equal(t, 2, cm.count("/api/upload"))
}
