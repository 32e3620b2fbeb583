package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opendms/dms-api/internal/dto"
	"github.com/opendms/dms-api/internal/models"
	appErrors "github.com/opendms/dms-api/pkg/errors"
	"github.com/opendms/dms-api/pkg/export"
)

type documentStore interface {
	Create(ctx context.Context, doc *models.Document, tags []string) error
	GetByID(ctx context.Context, id int64) (*models.Document, error)
	GetByFileName(ctx context.Context, fileName string) (*models.Document, error)
	ListByFileNames(ctx context.Context, fileNames []string) ([]models.Document, error)
	List(ctx context.Context) ([]models.Document, error)
	Search(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error)
	Delete(ctx context.Context, id int64) error
	ListTags(ctx context.Context) ([]models.Tag, error)
}

type headResolver interface {
	GetMajorByID(ctx context.Context, id int64) (*models.MajorHead, error)
	GetMinorByID(ctx context.Context, id int64) (*models.MinorHead, error)
}

type documentFileStorage interface {
	SaveStream(key string, r io.Reader) error
	Open(key string) (*os.File, error)
	Exists(key string) bool
	Delete(key string) error
}

type tabularExporter interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfTableExporter interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// DocumentUpload carries the multipart file stream and its metadata.
type DocumentUpload struct {
	Filename    string
	Size        int64
	ContentType string
	Content     io.Reader
}

// DocumentDownload bundles an open file handle with download metadata.
type DocumentDownload struct {
	File      *os.File
	Filename  string
	MimeType  string
	SizeBytes int64
}

// DocumentArchive names a zip export and the entries it will contain.
type DocumentArchive struct {
	Name    string
	Entries []export.ZipEntry
}

// CatalogExport is a rendered catalog listing ready to send.
type CatalogExport struct {
	Filename    string
	ContentType string
	Content     []byte
}

// DocumentServiceConfig bounds uploads.
type DocumentServiceConfig struct {
	MaxFileSize int64
}

// DocumentService owns the catalog: upload, lookup, search, download,
// zip export and deletion, with per-caller visibility applied to every
// read path.
type DocumentService struct {
	repo      documentStore
	heads     headResolver
	users     principalUserResolver
	storage   documentFileStorage
	bundler   *export.ZipBundler
	csv       tabularExporter
	pdf       pdfTableExporter
	validator *validator.Validate
	logger    *zap.Logger
	cfg       DocumentServiceConfig
}

// NewDocumentService constructs the service with defaults.
func NewDocumentService(repo documentStore, heads headResolver, users principalUserResolver, storage documentFileStorage, logger *zap.Logger, cfg DocumentServiceConfig) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 10 * 1024 * 1024
	}
	return &DocumentService{
		repo:      repo,
		heads:     heads,
		users:     users,
		storage:   storage,
		bundler:   export.NewZipBundler(),
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validator.New(),
		logger:    logger,
		cfg:       cfg,
	}
}

// List returns the documents visible to the caller, newest first.
func (s *DocumentService) List(ctx context.Context, actor *models.JWTClaims) ([]models.Document, error) {
	principal, err := resolvePrincipal(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return principal.filterVisible(docs), nil
}

// Get returns one document. An absent row is a not-found; a present row
// the caller may not see is a forbidden, so the two cases stay
// distinguishable to the client.
func (s *DocumentService) Get(ctx context.Context, id int64, actor *models.JWTClaims) (*models.Document, error) {
	principal, err := resolvePrincipal(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	if !principal.Visible(doc) {
		return nil, appErrors.ErrForbidden
	}
	return doc, nil
}

// Search narrows the catalog by the supplied dimensions and then applies
// the caller's visibility, preserving newest-first order.
func (s *DocumentService) Search(ctx context.Context, query dto.SearchDocumentsQuery, actor *models.JWTClaims) ([]models.Document, error) {
	principal, err := resolvePrincipal(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}

	filter := models.DocumentFilter{
		MajorHeadID: query.MajorHeadID,
		MinorHeadID: query.MinorHeadID,
		From:        query.From,
		To:          query.To,
	}
	for _, tag := range query.Tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			filter.Tags = append(filter.Tags, trimmed)
		}
	}

	docs, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search documents")
	}
	return principal.filterVisible(docs), nil
}

// Upload stores the file under a generated opaque key and records the
// catalog entry with its tags in one transaction. The file is removed
// again when the catalog insert fails.
func (s *DocumentService) Upload(ctx context.Context, meta dto.UploadDocumentRequest, upload DocumentUpload, actor *models.JWTClaims) (*models.Document, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !actor.IsAdmin {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(meta); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid upload payload")
	}
	if upload.Content == nil || upload.Size <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if upload.Size > s.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxFileSize))
	}

	if _, err := s.heads.GetMajorByID(ctx, meta.MajorHeadID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "major head does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check major head")
	}
	minor, err := s.heads.GetMinorByID(ctx, meta.MinorHeadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "minor head does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check minor head")
	}
	if minor.MajorHeadID != meta.MajorHeadID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "minor head does not belong to the major head")
	}

	key := generateStorageKey(upload.Filename)
	if err := s.storage.SaveStream(key, upload.Content); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to persist file")
	}

	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	doc := &models.Document{
		FileOriginalName: filepath.Base(upload.Filename),
		FileName:         key,
		ContentType:      contentType,
		Size:             upload.Size,
		MajorHeadID:      meta.MajorHeadID,
		MinorHeadID:      meta.MinorHeadID,
		Remarks:          strings.TrimSpace(meta.Remarks),
		DocumentDate:     meta.DocumentDate,
		UploadedAt:       time.Now().UTC(),
		UploadedBy:       actor.UserID,
	}
	if err := s.repo.Create(ctx, doc, meta.Tags); err != nil {
		if delErr := s.storage.Delete(key); delErr != nil {
			s.logger.Warn("failed to remove orphaned upload", zap.String("key", key), zap.Error(delErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record document")
	}

	s.logger.Info("document uploaded",
		zap.Int64("document_id", doc.ID),
		zap.String("file_name", key),
		zap.Int64("size", upload.Size))
	return doc, nil
}

// Download opens the stored file for a caller permitted to see its
// catalog entry. The original filename is reported for the client; the
// opaque key never leaves the storage layer.
func (s *DocumentService) Download(ctx context.Context, fileName string, actor *models.JWTClaims) (*DocumentDownload, error) {
	principal, err := resolvePrincipal(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}

	doc, err := s.repo.GetByFileName(ctx, fileName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	if !principal.Visible(doc) {
		return nil, appErrors.ErrForbidden
	}

	file, err := s.storage.Open(doc.FileName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to open stored file")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to stat stored file")
	}
	return &DocumentDownload{
		File:      file,
		Filename:  doc.FileOriginalName,
		MimeType:  doc.ContentType,
		SizeBytes: info.Size(),
	}, nil
}

// BuildArchive resolves the requested storage keys to the accessible
// subset and names the resulting archive. Keys are deduplicated case
// insensitively; files missing on disk are skipped. A request whose
// accessible intersection is empty is rejected outright instead of
// producing an empty archive.
func (s *DocumentService) BuildArchive(ctx context.Context, req dto.BulkDownloadRequest, actor *models.JWTClaims) (*DocumentArchive, error) {
	principal, err := resolvePrincipal(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk download payload")
	}

	seen := make(map[string]struct{}, len(req.FileNames))
	keys := make([]string, 0, len(req.FileNames))
	for _, raw := range req.FileNames {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		lower := strings.ToLower(name)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		keys = append(keys, name)
	}
	if len(keys) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no file names supplied")
	}

	docs, err := s.repo.ListByFileNames(ctx, keys)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve documents")
	}
	if len(docs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no matching documents")
	}

	accessible := principal.filterVisible(docs)
	if len(accessible) == 0 {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "none of the requested documents are accessible")
	}

	entries := make([]export.ZipEntry, 0, len(accessible))
	usedNames := make(map[string]int, len(accessible))
	for _, doc := range accessible {
		if !s.storage.Exists(doc.FileName) {
			s.logger.Warn("skipping missing file in archive", zap.String("file_name", doc.FileName))
			continue
		}
		key := doc.FileName
		entryName := doc.FileOriginalName
		if n := usedNames[strings.ToLower(entryName)]; n > 0 {
			ext := filepath.Ext(entryName)
			entryName = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(entryName, ext), n, ext)
		}
		usedNames[strings.ToLower(doc.FileOriginalName)]++
		entries = append(entries, export.ZipEntry{
			Name: entryName,
			Open: func() (io.ReadCloser, error) {
				return s.storage.Open(key)
			},
		})
	}

	return &DocumentArchive{
		Name:    export.ArchiveName(req.ZipName, time.Now()),
		Entries: entries,
	}, nil
}

// WriteArchive streams the archive entries into w.
func (s *DocumentService) WriteArchive(w io.Writer, archive *DocumentArchive) error {
	if archive == nil {
		return appErrors.Clone(appErrors.ErrInternal, "archive not built")
	}
	if err := s.bundler.Write(w, archive.Entries); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stream archive")
	}
	return nil
}

// Delete removes the catalog row and the stored file. The row goes
// first so a crash in between leaves an orphaned file rather than a
// dangling catalog reference.
func (s *DocumentService) Delete(ctx context.Context, fileName string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if !actor.IsAdmin {
		return appErrors.ErrForbidden
	}

	doc, err := s.repo.GetByFileName(ctx, fileName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}

	if err := s.repo.Delete(ctx, doc.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete document")
	}

	if err := s.storage.Delete(doc.FileName); err != nil {
		s.logger.Warn("failed to remove stored file", zap.String("file_name", doc.FileName), zap.Error(err))
	}

	s.logger.Info("document deleted", zap.Int64("document_id", doc.ID), zap.String("file_name", doc.FileName))
	return nil
}

// Tags lists all known tags. Admin only.
func (s *DocumentService) Tags(ctx context.Context, actor *models.JWTClaims) ([]models.Tag, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !actor.IsAdmin {
		return nil, appErrors.ErrForbidden
	}
	tags, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tags")
	}
	return tags, nil
}

// ExportCatalog renders the catalog as CSV or PDF. Admin only.
func (s *DocumentService) ExportCatalog(ctx context.Context, format string, actor *models.JWTClaims) (*CatalogExport, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !actor.IsAdmin {
		return nil, appErrors.ErrForbidden
	}

	docs, err := s.List(ctx, actor)
	if err != nil {
		return nil, err
	}

	headers := []string{"ID", "File", "Major Head", "Minor Head", "Tags", "Size", "Uploaded At"}
	rows := make([]map[string]string, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, map[string]string{
			"ID":          fmt.Sprintf("%d", doc.ID),
			"File":        doc.FileOriginalName,
			"Major Head":  doc.MajorHead.Name,
			"Minor Head":  doc.MinorHead.Name,
			"Tags":        strings.Join(doc.Tags, ", "),
			"Size":        fmt.Sprintf("%d", doc.Size),
			"Uploaded At": doc.UploadedAt.UTC().Format(time.RFC3339),
		})
	}
	data := export.Dataset{Headers: headers, Rows: rows}

	stamp := time.Now().UTC().Format("20060102")
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "csv":
		content, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &CatalogExport{
			Filename:    fmt.Sprintf("catalog_%s.csv", stamp),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case "pdf":
		content, err := s.pdf.Render(data, "Document Catalog")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &CatalogExport{
			Filename:    fmt.Sprintf("catalog_%s.pdf", stamp),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

// generateStorageKey builds an opaque collision-resistant key keeping
// only the original extension.
func generateStorageKey(original string) string {
	return uuid.NewString() + safeExt(original)
}

func safeExt(original string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}
