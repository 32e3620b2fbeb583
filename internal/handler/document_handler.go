package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opendms/dms-api/internal/dto"
	"github.com/opendms/dms-api/internal/models"
	"github.com/opendms/dms-api/internal/service"
	appErrors "github.com/opendms/dms-api/pkg/errors"
	"github.com/opendms/dms-api/pkg/response"
)

type documentService interface {
	List(ctx context.Context, actor *models.JWTClaims) ([]models.Document, error)
	Get(ctx context.Context, id int64, actor *models.JWTClaims) (*models.Document, error)
	Search(ctx context.Context, query dto.SearchDocumentsQuery, actor *models.JWTClaims) ([]models.Document, error)
	Upload(ctx context.Context, meta dto.UploadDocumentRequest, upload service.DocumentUpload, actor *models.JWTClaims) (*models.Document, error)
	Download(ctx context.Context, fileName string, actor *models.JWTClaims) (*service.DocumentDownload, error)
	BuildArchive(ctx context.Context, req dto.BulkDownloadRequest, actor *models.JWTClaims) (*service.DocumentArchive, error)
	WriteArchive(w io.Writer, archive *service.DocumentArchive) error
	Delete(ctx context.Context, fileName string, actor *models.JWTClaims) error
	Tags(ctx context.Context, actor *models.JWTClaims) ([]models.Tag, error)
	ExportCatalog(ctx context.Context, format string, actor *models.JWTClaims) (*service.CatalogExport, error)
}

// DocumentHandler manages document catalog HTTP endpoints.
type DocumentHandler struct {
	service documentService
	metrics *service.MetricsService
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(svc documentService, metrics *service.MetricsService) *DocumentHandler {
	return &DocumentHandler{service: svc, metrics: metrics}
}

// List godoc
// @Summary List visible documents
// @Tags Documents
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.service.List(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs)
}

// Get godoc
// @Summary Get one document
// @Tags Documents
// @Produce json
// @Param id path int true "Document ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid document id"))
		return
	}
	doc, err := h.service.Get(c.Request.Context(), id, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc)
}

// Search godoc
// @Summary Search documents
// @Tags Documents
// @Produce json
// @Param majorHeadId query int false "Major head filter"
// @Param minorHeadId query int false "Minor head filter"
// @Param from query string false "Uploaded-at lower bound (YYYY-MM-DD)"
// @Param to query string false "Uploaded-at upper bound (YYYY-MM-DD)"
// @Param tags query string false "Comma separated tag names, any match"
// @Success 200 {object} response.Envelope
// @Router /documents/search [get]
func (h *DocumentHandler) Search(c *gin.Context) {
	query, err := parseSearchQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	docs, err := h.service.Search(c.Request.Context(), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs)
}

func parseSearchQuery(c *gin.Context) (dto.SearchDocumentsQuery, error) {
	var query dto.SearchDocumentsQuery

	if raw := c.Query("majorHeadId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return query, appErrors.Clone(appErrors.ErrValidation, "invalid majorHeadId")
		}
		query.MajorHeadID = &id
	}
	if raw := c.Query("minorHeadId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return query, appErrors.Clone(appErrors.ErrValidation, "invalid minorHeadId")
		}
		query.MinorHeadID = &id
	}
	if raw := c.Query("from"); raw != "" {
		ts, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return query, appErrors.Clone(appErrors.ErrValidation, "invalid from date, expected YYYY-MM-DD")
		}
		query.From = &ts
	}
	if raw := c.Query("to"); raw != "" {
		ts, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return query, appErrors.Clone(appErrors.ErrValidation, "invalid to date, expected YYYY-MM-DD")
		}
		// Inclusive upper bound: the whole named day.
		end := ts.Add(24*time.Hour - time.Nanosecond)
		query.To = &end
	}
	if raw := c.Query("tags"); raw != "" {
		query.Tags = strings.Split(raw, ",")
	}
	return query, nil
}

// Upload godoc
// @Summary Upload a document
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param majorHeadId formData int true "Major head"
// @Param minorHeadId formData int true "Minor head"
// @Param remarks formData string false "Remarks"
// @Param documentDate formData string false "Document date (YYYY-MM-DD)"
// @Param tags formData string false "Tag names, repeatable"
// @Param file formData file true "Document"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /documents/upload [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	var req dto.UploadDocumentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid upload payload"))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close() //nolint:errcheck

	upload := service.DocumentUpload{
		Filename:    fileHeader.Filename,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     src,
	}
	doc, err := h.service.Upload(c.Request.Context(), req, upload, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.RecordUpload(doc.Size)
	response.Created(c, dto.UploadDocumentResponse{ID: doc.ID, FileName: doc.FileName})
}

// Download godoc
// @Summary Download a stored document
// @Tags Documents
// @Produce octet-stream
// @Param fileName path string true "Storage key"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents/download/{fileName} [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	result, err := h.service.Download(c.Request.Context(), c.Param("fileName"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, result.SizeBytes, result.MimeType, result.File, nil)
}

// DownloadZip godoc
// @Summary Bundle documents into a zip archive
// @Tags Documents
// @Accept json
// @Produce octet-stream
// @Param payload body dto.BulkDownloadRequest true "Storage keys and optional archive name"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents/download/zip [post]
func (h *DocumentHandler) DownloadZip(c *gin.Context) {
	var req dto.BulkDownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid bulk download payload"))
		return
	}

	archive, err := h.service.BuildArchive(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", archive.Name))
	c.Header("Content-Type", "application/zip")
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)
	if err := h.service.WriteArchive(c.Writer, archive); err != nil {
		// Headers are already out; nothing to send but a log entry.
		_ = c.Error(err)
	}
}

// Delete godoc
// @Summary Delete a document and its stored file
// @Tags Documents
// @Produce json
// @Param fileName path string true "Storage key"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents/{fileName} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("fileName"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Tags godoc
// @Summary List all tags
// @Tags Documents
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /documents/tags [get]
func (h *DocumentHandler) Tags(c *gin.Context) {
	tags, err := h.service.Tags(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tags)
}

// Export godoc
// @Summary Export the catalog as CSV or PDF (admin only)
// @Tags Documents
// @Produce octet-stream
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /documents/export [get]
func (h *DocumentHandler) Export(c *gin.Context) {
	result, err := h.service.ExportCatalog(c.Request.Context(), c.Query("format"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
