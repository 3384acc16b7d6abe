package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/evdash/evdash-backend-go/internal/service"
	"github.com/evdash/evdash-backend-go/pkg/response"
)

// BackupFileExt is the only extension accepted for snapshot uploads.
const BackupFileExt = ".backup"

// BackupHandler handles snapshot export, inspection and restore
type BackupHandler struct {
	service *service.BackupService
}

// NewBackupHandler creates a new backup handler
func NewBackupHandler(service *service.BackupService) *BackupHandler {
	return &BackupHandler{service: service}
}

// Export handles GET /api/backup/export. The archive is streamed
// directly to the response.
func (h *BackupHandler) Export(c *gin.Context) {
	// Filename must be decided before the body starts streaming.
	filename := fmt.Sprintf("EV_Backup_%s.backup", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if _, err := h.service.Export(c.Writer); err != nil {
		// Headers are already out; all we can do is drop the connection.
		c.Abort()
		_ = c.Error(err)
	}
}

// Info handles POST /api/backup/info: validate and preview a snapshot
// without applying it.
func (h *BackupHandler) Info(c *gin.Context) {
	path, cleanup, ok := h.receiveSnapshot(c)
	if !ok {
		return
	}
	defer cleanup()

	manifest, err := h.service.Inspect(path)
	if err != nil {
		h.writeError(c, err, "failed to inspect backup")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"backup_info": manifest,
	})
}

// Import handles POST /api/backup/import: destructive replace-all.
func (h *BackupHandler) Import(c *gin.Context) {
	path, cleanup, ok := h.receiveSnapshot(c)
	if !ok {
		return
	}
	defer cleanup()

	manifest, err := h.service.Restore(path)
	if err != nil {
		h.writeError(c, err, "failed to restore backup")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"message":     "backup restored",
		"backup_info": manifest,
		"restored_at": time.Now().Format(time.RFC3339),
	})
}

// receiveSnapshot stores the uploaded archive in a temp file and
// returns its path with a cleanup func. On failure it writes the error
// response itself.
func (h *BackupHandler) receiveSnapshot(c *gin.Context) (string, func(), bool) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "no file provided")
		return "", nil, false
	}
	if file.Filename == "" {
		response.BadRequest(c, "no file selected")
		return "", nil, false
	}
	if !strings.HasSuffix(strings.ToLower(file.Filename), BackupFileExt) {
		response.BadRequest(c, "only "+BackupFileExt+" files are accepted")
		return "", nil, false
	}

	path := filepath.Join(os.TempDir(), "evdash_upload_"+uuid.NewString()+BackupFileExt)
	if err := c.SaveUploadedFile(file, path); err != nil {
		response.InternalError(c, "failed to store uploaded file", err)
		return "", nil, false
	}

	return path, func() { os.Remove(path) }, true
}

func (h *BackupHandler) writeError(c *gin.Context, err error, message string) {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		response.BadRequest(c, vErr.Msg)
		return
	}
	response.InternalError(c, message, err)
}
