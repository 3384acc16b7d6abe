package handler

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/evdash/evdash-backend-go/internal/service"
	"github.com/evdash/evdash-backend-go/pkg/response"
)

// SourceFileExt is the only extension accepted for trip source uploads.
const SourceFileExt = ".db"

// UploadHandler handles source file ingestion
type UploadHandler struct {
	service   *service.IngestService
	uploadDir string
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(service *service.IngestService, uploadDir string) *UploadHandler {
	return &UploadHandler{service: service, uploadDir: uploadDir}
}

// Upload handles POST /api/upload
func (h *UploadHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "no file provided")
		return
	}
	if file.Filename == "" {
		response.BadRequest(c, "no file selected")
		return
	}
	if !strings.HasSuffix(strings.ToLower(file.Filename), SourceFileExt) {
		response.BadRequest(c, "only "+SourceFileExt+" files are accepted")
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		response.InternalError(c, "failed to prepare upload directory", err)
		return
	}

	tempPath := filepath.Join(h.uploadDir, uuid.NewString()+"_"+filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, tempPath); err != nil {
		response.InternalError(c, "failed to store uploaded file", err)
		return
	}
	defer os.Remove(tempPath)

	result, err := h.service.IngestFile(tempPath, file.Filename)
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			response.BadRequest(c, vErr.Msg)
			return
		}
		response.InternalError(c, "failed to process source file", err)
		return
	}

	// New source files are archived so they can be re-examined later.
	if result.FileWasNew {
		if err := h.archive(tempPath, file.Filename); err != nil {
			response.InternalError(c, "failed to archive source file", err)
			return
		}
	}

	c.JSON(http.StatusOK, result)
}

func (h *UploadHandler) archive(tempPath, originalName string) error {
	dir := filepath.Join(h.uploadDir, "archive")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	src, err := os.Open(tempPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, filepath.Base(originalName)))
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
