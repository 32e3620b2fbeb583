package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/opendms/dms-api/internal/models"
)

// DocumentRepository provides catalog persistence. Reads join the heads
// and tags in one query and fold the flattened rows back into documents
// keyed by id, accumulating distinct tags per document.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs the repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentSelect = `SELECT d.id, d.file_original_name, d.file_name, d.content_type, d.size,
       d.major_head_id, d.minor_head_id, d.remarks, d.document_date, d.uploaded_at,
       COALESCE(d.uploaded_by, 0) AS uploaded_by,
       mh.name AS major_head_name,
       mi.name AS minor_head_name,
       t.id AS tag_id, t.name AS tag_name
FROM documents d
JOIN major_heads mh ON d.major_head_id = mh.id
JOIN minor_heads mi ON d.minor_head_id = mi.id
LEFT JOIN document_tags dt ON d.id = dt.document_id
LEFT JOIN tags t ON dt.tag_id = t.id`

type documentRow struct {
	ID               int64          `db:"id"`
	FileOriginalName string         `db:"file_original_name"`
	FileName         string         `db:"file_name"`
	ContentType      string         `db:"content_type"`
	Size             int64          `db:"size"`
	MajorHeadID      int64          `db:"major_head_id"`
	MinorHeadID      int64          `db:"minor_head_id"`
	Remarks          string         `db:"remarks"`
	DocumentDate     sql.NullTime   `db:"document_date"`
	UploadedAt       sql.NullTime   `db:"uploaded_at"`
	UploadedBy       int64          `db:"uploaded_by"`
	MajorHeadName    string         `db:"major_head_name"`
	MinorHeadName    string         `db:"minor_head_name"`
	TagID            sql.NullInt64  `db:"tag_id"`
	TagName          sql.NullString `db:"tag_name"`
}

// foldDocumentRows reduces flattened join rows into documents, preserving
// the row order for first appearance of each id.
func foldDocumentRows(rows []documentRow) []models.Document {
	order := make([]int64, 0, len(rows))
	lookup := make(map[int64]*models.Document, len(rows))
	seenTags := make(map[int64]map[int64]struct{}, len(rows))

	for _, row := range rows {
		doc, ok := lookup[row.ID]
		if !ok {
			doc = &models.Document{
				ID:               row.ID,
				FileOriginalName: row.FileOriginalName,
				FileName:         row.FileName,
				ContentType:      row.ContentType,
				Size:             row.Size,
				MajorHeadID:      row.MajorHeadID,
				MinorHeadID:      row.MinorHeadID,
				Remarks:          row.Remarks,
				UploadedBy:       row.UploadedBy,
				MajorHead:        models.MajorHead{ID: row.MajorHeadID, Name: row.MajorHeadName},
				MinorHead:        models.MinorHead{ID: row.MinorHeadID, MajorHeadID: row.MajorHeadID, Name: row.MinorHeadName},
				Tags:             []string{},
			}
			if row.DocumentDate.Valid {
				d := row.DocumentDate.Time
				doc.DocumentDate = &d
			}
			if row.UploadedAt.Valid {
				doc.UploadedAt = row.UploadedAt.Time
			}
			lookup[row.ID] = doc
			seenTags[row.ID] = make(map[int64]struct{})
			order = append(order, row.ID)
		}
		if row.TagID.Valid {
			if _, dup := seenTags[row.ID][row.TagID.Int64]; !dup {
				seenTags[row.ID][row.TagID.Int64] = struct{}{}
				doc.Tags = append(doc.Tags, row.TagName.String)
			}
		}
	}

	result := make([]models.Document, 0, len(order))
	for _, id := range order {
		result = append(result, *lookup[id])
	}
	return result
}

// Create inserts the document, resolves or creates each tag, and links
// them, all inside one transaction. Any failure rolls the whole insert
// back so no partial document or orphaned tag link survives.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document, tags []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin document tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertDoc = `INSERT INTO documents
		(file_original_name, file_name, content_type, size, major_head_id, minor_head_id, remarks, document_date, uploaded_at, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	if err := tx.GetContext(ctx, &doc.ID, insertDoc,
		doc.FileOriginalName, doc.FileName, doc.ContentType, doc.Size,
		doc.MajorHeadID, doc.MinorHeadID, doc.Remarks, doc.DocumentDate,
		doc.UploadedAt, doc.UploadedBy); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	for _, raw := range tags {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}

		var tagID int64
		err := tx.GetContext(ctx, &tagID, `SELECT id FROM tags WHERE name = $1`, name)
		if err == sql.ErrNoRows {
			err = tx.GetContext(ctx, &tagID, `INSERT INTO tags (name) VALUES ($1) RETURNING id`, name)
		}
		if err != nil {
			return fmt.Errorf("resolve tag %q: %w", name, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO document_tags (document_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			doc.ID, tagID); err != nil {
			return fmt.Errorf("link tag %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit document tx: %w", err)
	}
	return nil
}

// GetByID returns one document with heads and tags, or sql.ErrNoRows.
func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	query := documentSelect + ` WHERE d.id = $1`
	var rows []documentRow
	if err := r.db.SelectContext(ctx, &rows, query, id); err != nil {
		return nil, fmt.Errorf("get document by id: %w", err)
	}
	docs := foldDocumentRows(rows)
	if len(docs) == 0 {
		return nil, sql.ErrNoRows
	}
	return &docs[0], nil
}

// GetByFileName returns one document by its storage key, or sql.ErrNoRows.
func (r *DocumentRepository) GetByFileName(ctx context.Context, fileName string) (*models.Document, error) {
	query := documentSelect + ` WHERE d.file_name = $1`
	var rows []documentRow
	if err := r.db.SelectContext(ctx, &rows, query, fileName); err != nil {
		return nil, fmt.Errorf("get document by file name: %w", err)
	}
	docs := foldDocumentRows(rows)
	if len(docs) == 0 {
		return nil, sql.ErrNoRows
	}
	return &docs[0], nil
}

// ListByFileNames resolves a batch of storage keys.
func (r *DocumentRepository) ListByFileNames(ctx context.Context, fileNames []string) ([]models.Document, error) {
	if len(fileNames) == 0 {
		return nil, nil
	}
	query := documentSelect + ` WHERE d.file_name = ANY($1) ORDER BY d.uploaded_at DESC, d.id DESC`
	var rows []documentRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(fileNames)); err != nil {
		return nil, fmt.Errorf("list documents by file names: %w", err)
	}
	return foldDocumentRows(rows), nil
}

// List returns the whole catalog, newest upload first.
func (r *DocumentRepository) List(ctx context.Context) ([]models.Document, error) {
	query := documentSelect + ` ORDER BY d.uploaded_at DESC, d.id DESC`
	var rows []documentRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return foldDocumentRows(rows), nil
}

// Search narrows the catalog by the supplied dimensions; each present
// dimension ANDs with the rest while tag names OR among themselves. The
// tag condition uses an EXISTS subquery so matched documents still carry
// their full tag set.
func (r *DocumentRepository) Search(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	conditions := make([]string, 0, 5)
	args := make([]interface{}, 0, 5)

	if filter.MajorHeadID != nil {
		args = append(args, *filter.MajorHeadID)
		conditions = append(conditions, fmt.Sprintf("d.major_head_id = $%d", len(args)))
	}
	if filter.MinorHeadID != nil {
		args = append(args, *filter.MinorHeadID)
		conditions = append(conditions, fmt.Sprintf("d.minor_head_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("d.uploaded_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("d.uploaded_at <= $%d", len(args)))
	}
	if len(filter.Tags) > 0 {
		args = append(args, pq.Array(filter.Tags))
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM document_tags dt2 JOIN tags t2 ON dt2.tag_id = t2.id WHERE dt2.document_id = d.id AND t2.name = ANY($%d))",
			len(args)))
	}

	query := documentSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY d.uploaded_at DESC, d.id DESC"

	var rows []documentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	return foldDocumentRows(rows), nil
}

// Delete removes the catalog row; tag links cascade. Returns
// sql.ErrNoRows when the row is absent.
func (r *DocumentRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check document delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListTags returns every tag row.
func (r *DocumentRepository) ListTags(ctx context.Context) ([]models.Tag, error) {
	const query = `SELECT id, name FROM tags ORDER BY name`
	var tags []models.Tag
	if err := r.db.SelectContext(ctx, &tags, query); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}
