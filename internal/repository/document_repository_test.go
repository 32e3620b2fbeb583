package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendms/dms-api/internal/models"
)

var documentColumns = []string{
	"id", "file_original_name", "file_name", "content_type", "size",
	"major_head_id", "minor_head_id", "remarks", "document_date", "uploaded_at",
	"uploaded_by", "major_head_name", "minor_head_name", "tag_id", "tag_name",
}

func TestGetDocumentByIDFoldsTags(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(documentColumns).
		AddRow(int64(1), "report.pdf", "a1b2.pdf", "application/pdf", int64(1024),
			int64(2), int64(5), "quarterly", nil, now, int64(9), "Company", "Accounts", int64(1), "finance").
		AddRow(int64(1), "report.pdf", "a1b2.pdf", "application/pdf", int64(1024),
			int64(2), int64(5), "quarterly", nil, now, int64(9), "Company", "Accounts", int64(2), "q3")
	mock.ExpectQuery("SELECT d.id, .+ FROM documents d").
		WithArgs(int64(1)).
		WillReturnRows(rows)

	doc, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", doc.FileOriginalName)
	assert.Equal(t, "Company", doc.MajorHead.Name)
	assert.Equal(t, "Accounts", doc.MinorHead.Name)
	assert.Equal(t, []string{"finance", "q3"}, doc.Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDocumentByIDMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectQuery("SELECT d.id, .+ FROM documents d").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(documentColumns))

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListDocumentsUntagged(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(documentColumns).
		AddRow(int64(3), "memo.txt", "c3d4.txt", "text/plain", int64(12),
			int64(1), int64(4), "", nil, now, int64(0), "Personal", "John", nil, nil)
	mock.ExpectQuery("SELECT d.id, .+ FROM documents d").
		WillReturnRows(rows)

	docs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Empty(t, docs[0].Tags)
	assert.NotNil(t, docs[0].Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchDocumentsBuildsConditions(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	major := int64(2)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT d.id, .+ WHERE d.major_head_id = \$1 AND d.uploaded_at >= \$2 AND EXISTS .+ ORDER BY d.uploaded_at DESC, d.id DESC`).
		WillReturnRows(sqlmock.NewRows(documentColumns))

	docs, err := repo.Search(context.Background(), models.DocumentFilter{
		MajorHeadID: &major,
		From:        &from,
		Tags:        []string{"finance", "q3"},
	})
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDocumentWithTags(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO documents").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(21)))
	mock.ExpectQuery("SELECT id FROM tags WHERE name").
		WithArgs("finance").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(8)))
	mock.ExpectExec("INSERT INTO document_tags").
		WithArgs(int64(21), int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id FROM tags WHERE name").
		WithArgs("q3").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO tags").
		WithArgs("q3").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectExec("INSERT INTO document_tags").
		WithArgs(int64(21), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	doc := &models.Document{
		FileOriginalName: "report.pdf",
		FileName:         "a1b2.pdf",
		ContentType:      "application/pdf",
		Size:             1024,
		MajorHeadID:      2,
		MinorHeadID:      5,
		UploadedAt:       now,
		UploadedBy:       9,
	}
	err := repo.Create(context.Background(), doc, []string{"finance", " q3 ", ""})
	require.NoError(t, err)
	assert.Equal(t, int64(21), doc.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDocumentRollsBackOnTagFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO documents").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(22)))
	mock.ExpectQuery("SELECT id FROM tags WHERE name").
		WithArgs("finance").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	doc := &models.Document{FileName: "x.pdf", MajorHeadID: 1, MinorHeadID: 1, UploadedAt: time.Now()}
	err := repo.Create(context.Background(), doc, []string{"finance"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteDocumentMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectExec("DELETE FROM documents").
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
