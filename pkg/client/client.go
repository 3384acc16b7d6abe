package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/evdash/evdash-backend-go/pkg/models"
)

// Client is a typed REST client for the dashboard backend.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent on every request. Required only
// when the server runs with auth enabled.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout overrides the default 30s request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// New constructs a client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, validationErrorf("base URL must not be empty")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Trips fetches the trip list, newest first. limit <= 0 fetches all.
func (c *Client) Trips(ctx context.Context, limit int) ([]models.Trip, error) {
	path := "/api/trips"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var trips []models.Trip
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

// Consumption fetches the aggregated consumption statistics.
func (c *Client) Consumption(ctx context.Context) (*models.ConsumptionStats, error) {
	var stats models.ConsumptionStats
	if err := c.doJSON(ctx, http.MethodGet, "/api/consumption", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Monthly fetches the per-month rollup.
func (c *Client) Monthly(ctx context.Context) ([]models.MonthlyStat, error) {
	var months []models.MonthlyStat
	if err := c.doJSON(ctx, http.MethodGet, "/api/monthly", nil, &months); err != nil {
		return nil, err
	}
	return months, nil
}

// DBStatus fetches the trip store counters.
func (c *Client) DBStatus(ctx context.Context) (*models.DBStatus, error) {
	var status models.DBStatus
	if err := c.doJSON(ctx, http.MethodGet, "/api/db_status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// SystemStatus fetches the extended database and system information.
func (c *Client) SystemStatus(ctx context.Context) (*models.SystemStatus, error) {
	var status models.SystemStatus
	if err := c.doJSON(ctx, http.MethodGet, "/api/system/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// EnergyDefault fetches the comparison computed from the server's
// default parameter set over the full history.
func (c *Client) EnergyDefault(ctx context.Context) (*models.EnergyComparison, error) {
	var cmp models.EnergyComparison
	if err := c.doJSON(ctx, http.MethodGet, "/api/energy_costs", nil, &cmp); err != nil {
		return nil, err
	}
	return &cmp, nil
}

// EnergyCustom posts a custom parameter set and optional date range.
func (c *Client) EnergyCustom(ctx context.Context, req models.EnergyRequest) (*models.EnergyComparison, error) {
	var cmp models.EnergyComparison
	if err := c.doJSON(ctx, http.MethodPost, "/api/energy_costs", req, &cmp); err != nil {
		return nil, err
	}
	return &cmp, nil
}

// Upload sends one source .db file and returns the ingestion outcome.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (*models.UploadResult, error) {
	var result models.UploadResult
	if err := c.doMultipart(ctx, "/api/upload", filename, r, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// BackupExport streams a full-state snapshot archive into w and
// returns the filename the server chose for it. A generated default is
// used when the server sends no Content-Disposition.
func (c *Client) BackupExport(ctx context.Context, w io.Writer) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/backup/export", nil)
	if err != nil {
		return "", err
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("export request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp)
	}
	filename := dispositionFilename(resp.Header.Get("Content-Disposition"))
	if filename == "" {
		filename = fmt.Sprintf("EV_Backup_%s.backup", time.Now().Format("20060102_150405"))
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("export download failed: %w", err)
	}
	return filename, nil
}

// BackupInfo uploads a snapshot archive for inspection without
// applying it and returns its manifest.
func (c *Client) BackupInfo(ctx context.Context, filename string, r io.Reader) (*models.BackupManifest, error) {
	var resp struct {
		Status     string                `json:"status"`
		BackupInfo models.BackupManifest `json:"backup_info"`
	}
	if err := c.doMultipart(ctx, "/api/backup/info", filename, r, &resp); err != nil {
		return nil, err
	}
	return &resp.BackupInfo, nil
}

// RestoreResult is the server's acknowledgement of an applied restore.
type RestoreResult struct {
	Status     string                `json:"status"`
	Message    string                `json:"message"`
	BackupInfo models.BackupManifest `json:"backup_info"`
	RestoredAt string                `json:"restored_at"`
}

// BackupImport uploads a snapshot archive and replaces the entire trip
// store with its contents.
func (c *Client) BackupImport(ctx context.Context, filename string, r io.Reader) (*RestoreResult, error) {
	var result RestoreResult
	if err := c.doMultipart(ctx, "/api/backup/import", filename, r, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = strings.NewReader(string(payload))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) doMultipart(ctx context.Context, path, filename string, r io.Reader, out any) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, pr)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// apiError drains the response body looking for the server's error
// message so callers see what the server actually said.
func apiError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil {
		if body.Error != "" {
			apiErr.Message = body.Error
		} else {
			apiErr.Message = body.Message
		}
	}
	return apiErr
}

func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(header); err == nil {
		return params["filename"]
	}
	return ""
}
