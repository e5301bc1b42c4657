package handler

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ippis/backend/internal/application/importer"
	"github.com/ippis/backend/internal/interfaces/http/dto"
	"github.com/ippis/backend/internal/interfaces/http/middleware"
)

// maxImportFileSize caps uploaded CSV files (10MB)
const maxImportFileSize = 10 << 20

// RegistrationImporter is the bulk import service used by ImportHandler
type RegistrationImporter interface {
	Validate(ctx context.Context, r io.Reader) (*importer.ImportResult, error)
	Import(ctx context.Context, r io.Reader) (*importer.ImportResult, error)
}

var _ RegistrationImporter = (*importer.RegistrationImportService)(nil)

// ImportHandler serves the CSV bulk import endpoints
type ImportHandler struct {
	BaseHandler
	importer RegistrationImporter
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(imp RegistrationImporter) *ImportHandler {
	return &ImportHandler{importer: imp}
}

// Validate checks a CSV file without importing it
//
// @ID           validateImport
// @Summary      Validate a registration CSV
// @Tags         import
// @Accept       mpfd
// @Produce      json
// @Param        file formData file true "CSV file"
// @Success      200 {object} dto.Response{data=importer.ImportResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      415 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/import/validate [post]
func (h *ImportHandler) Validate(c *gin.Context) {
	h.run(c, h.importer.Validate)
}

// Import creates pending registrations from a CSV file
//
// @ID           importRegistrations
// @Summary      Import registrations from CSV
// @Tags         import
// @Accept       mpfd
// @Produce      json
// @Param        file formData file true "CSV file"
// @Success      200 {object} dto.Response{data=importer.ImportResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      415 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/import [post]
func (h *ImportHandler) Import(c *gin.Context) {
	h.run(c, h.importer.Import)
}

func (h *ImportHandler) run(c *gin.Context, fn func(context.Context, io.Reader) (*importer.ImportResult, error)) {
	header, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A CSV file is required in the 'file' field")
		return
	}
	if header.Size > maxImportFileSize {
		c.JSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRequestTooLarge, "File size exceeds maximum allowed (10MB)", middleware.GetRequestID(c)))
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		c.JSON(http.StatusUnsupportedMediaType, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeBadRequest, "Only CSV files are supported", middleware.GetRequestID(c)))
		return
	}

	f, err := header.Open()
	if err != nil {
		h.BadRequest(c, "Failed to read uploaded file")
		return
	}
	defer f.Close()

	result, err := fn(c.Request.Context(), f)
	if err != nil {
		if result != nil {
			h.HandleErrorWithData(c, err, result)
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
