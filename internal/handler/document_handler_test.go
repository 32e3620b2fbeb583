package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendms/dms-api/internal/dto"
	"github.com/opendms/dms-api/internal/middleware"
	"github.com/opendms/dms-api/internal/models"
	"github.com/opendms/dms-api/internal/service"
	appErrors "github.com/opendms/dms-api/pkg/errors"
	"github.com/opendms/dms-api/pkg/export"
)

type documentServiceMock struct {
	listResp    []models.Document
	listErr     error
	getResp     *models.Document
	getErr      error
	searchResp  []models.Document
	searchErr   error
	archiveResp *service.DocumentArchive
	archiveErr  error
	deleteErr   error
	lastQuery   dto.SearchDocumentsQuery
	lastArchive dto.BulkDownloadRequest
	listCalled  bool
}

func (m *documentServiceMock) List(ctx context.Context, actor *models.JWTClaims) ([]models.Document, error) {
	m.listCalled = true
	return m.listResp, m.listErr
}

func (m *documentServiceMock) Get(ctx context.Context, id int64, actor *models.JWTClaims) (*models.Document, error) {
	return m.getResp, m.getErr
}

func (m *documentServiceMock) Search(ctx context.Context, query dto.SearchDocumentsQuery, actor *models.JWTClaims) ([]models.Document, error) {
	m.lastQuery = query
	return m.searchResp, m.searchErr
}

func (m *documentServiceMock) Upload(ctx context.Context, meta dto.UploadDocumentRequest, upload service.DocumentUpload, actor *models.JWTClaims) (*models.Document, error) {
	return &models.Document{ID: 1, FileName: "key.pdf", Size: upload.Size}, nil
}

func (m *documentServiceMock) Download(ctx context.Context, fileName string, actor *models.JWTClaims) (*service.DocumentDownload, error) {
	return nil, appErrors.ErrNotFound
}

func (m *documentServiceMock) BuildArchive(ctx context.Context, req dto.BulkDownloadRequest, actor *models.JWTClaims) (*service.DocumentArchive, error) {
	m.lastArchive = req
	return m.archiveResp, m.archiveErr
}

func (m *documentServiceMock) WriteArchive(w io.Writer, archive *service.DocumentArchive) error {
	_, err := w.Write([]byte("PK"))
	return err
}

func (m *documentServiceMock) Delete(ctx context.Context, fileName string, actor *models.JWTClaims) error {
	return m.deleteErr
}

func (m *documentServiceMock) Tags(ctx context.Context, actor *models.JWTClaims) ([]models.Tag, error) {
	return nil, appErrors.ErrForbidden
}

func (m *documentServiceMock) ExportCatalog(ctx context.Context, format string, actor *models.JWTClaims) (*service.CatalogExport, error) {
	return &service.CatalogExport{Filename: "catalog.csv", ContentType: "text/csv", Content: []byte("ID\n")}, nil
}

func testContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 1, Username: "boss", IsAdmin: true})
	return c, w
}

func TestDocumentHandlerList(t *testing.T) {
	mockSvc := &documentServiceMock{listResp: []models.Document{{ID: 1, FileName: "a.pdf"}}}
	h := NewDocumentHandler(mockSvc, nil)

	c, w := testContext(t, http.MethodGet, "/documents", nil)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.listCalled)
}

func TestDocumentHandlerGetInvalidID(t *testing.T) {
	h := NewDocumentHandler(&documentServiceMock{}, nil)

	c, w := testContext(t, http.MethodGet, "/documents/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	h.Get(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandlerGetForbidden(t *testing.T) {
	h := NewDocumentHandler(&documentServiceMock{getErr: appErrors.ErrForbidden}, nil)

	c, w := testContext(t, http.MethodGet, "/documents/5", nil)
	c.Params = gin.Params{{Key: "id", Value: "5"}}
	h.Get(c)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestDocumentHandlerSearchParsesQuery(t *testing.T) {
	mockSvc := &documentServiceMock{}
	h := NewDocumentHandler(mockSvc, nil)

	c, w := testContext(t, http.MethodGet, "/documents/search?majorHeadId=2&from=2024-01-01&to=2024-02-01&tags=finance,q3", nil)
	h.Search(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.lastQuery.MajorHeadID)
	assert.Equal(t, int64(2), *mockSvc.lastQuery.MajorHeadID)
	assert.Nil(t, mockSvc.lastQuery.MinorHeadID)
	require.NotNil(t, mockSvc.lastQuery.From)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *mockSvc.lastQuery.From)
	require.NotNil(t, mockSvc.lastQuery.To)
	assert.True(t, mockSvc.lastQuery.To.After(time.Date(2024, 2, 1, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, []string{"finance", "q3"}, mockSvc.lastQuery.Tags)
}

func TestDocumentHandlerSearchBadDate(t *testing.T) {
	h := NewDocumentHandler(&documentServiceMock{}, nil)

	c, w := testContext(t, http.MethodGet, "/documents/search?from=January", nil)
	h.Search(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandlerDownloadZip(t *testing.T) {
	mockSvc := &documentServiceMock{
		archiveResp: &service.DocumentArchive{Name: "bundle.zip", Entries: []export.ZipEntry{}},
	}
	h := NewDocumentHandler(mockSvc, nil)

	payload, _ := json.Marshal(dto.BulkDownloadRequest{FileNames: []string{"a.pdf"}, ZipName: "bundle"})
	c, w := testContext(t, http.MethodPost, "/documents/download/zip", payload)
	h.DownloadZip(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="bundle.zip"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, []string{"a.pdf"}, mockSvc.lastArchive.FileNames)
}

func TestDocumentHandlerDownloadZipEmptyIntersection(t *testing.T) {
	mockSvc := &documentServiceMock{archiveErr: appErrors.ErrForbidden}
	h := NewDocumentHandler(mockSvc, nil)

	payload, _ := json.Marshal(dto.BulkDownloadRequest{FileNames: []string{"a.pdf"}})
	c, w := testContext(t, http.MethodPost, "/documents/download/zip", payload)
	h.DownloadZip(c)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestDocumentHandlerDeleteNotFound(t *testing.T) {
	h := NewDocumentHandler(&documentServiceMock{deleteErr: appErrors.ErrNotFound}, nil)

	c, w := testContext(t, http.MethodDelete, "/documents/ghost.pdf", nil)
	c.Params = gin.Params{{Key: "fileName", Value: "ghost.pdf"}}
	h.Delete(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocumentHandlerExport(t *testing.T) {
	h := NewDocumentHandler(&documentServiceMock{}, nil)

	c, w := testContext(t, http.MethodGet, "/documents/export?format=csv", nil)
	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
}
