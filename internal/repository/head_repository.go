package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/opendms/dms-api/internal/models"
)

// HeadRepository manages the two-level classification taxonomy.
type HeadRepository struct {
	db *sqlx.DB
}

// NewHeadRepository constructs the repository.
func NewHeadRepository(db *sqlx.DB) *HeadRepository {
	return &HeadRepository{db: db}
}

// ListMajor returns all major heads.
func (r *HeadRepository) ListMajor(ctx context.Context) ([]models.MajorHead, error) {
	const query = `SELECT id, name FROM major_heads ORDER BY id`
	var heads []models.MajorHead
	if err := r.db.SelectContext(ctx, &heads, query); err != nil {
		return nil, fmt.Errorf("list major heads: %w", err)
	}
	return heads, nil
}

// GetMajorByID returns a single major head.
func (r *HeadRepository) GetMajorByID(ctx context.Context, id int64) (*models.MajorHead, error) {
	const query = `SELECT id, name FROM major_heads WHERE id = $1`
	var head models.MajorHead
	if err := r.db.GetContext(ctx, &head, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get major head: %w", err)
	}
	return &head, nil
}

// CreateMajor inserts a new major head and returns its id.
func (r *HeadRepository) CreateMajor(ctx context.Context, name string) (int64, error) {
	const query = `INSERT INTO major_heads (name) VALUES ($1) RETURNING id`
	var id int64
	if err := r.db.GetContext(ctx, &id, query, name); err != nil {
		return 0, fmt.Errorf("create major head: %w", err)
	}
	return id, nil
}

// ListMinorByMajor returns the children of one major head.
func (r *HeadRepository) ListMinorByMajor(ctx context.Context, majorHeadID int64) ([]models.MinorHead, error) {
	const query = `SELECT id, major_head_id, name FROM minor_heads WHERE major_head_id = $1 ORDER BY id`
	var heads []models.MinorHead
	if err := r.db.SelectContext(ctx, &heads, query, majorHeadID); err != nil {
		return nil, fmt.Errorf("list minor heads: %w", err)
	}
	return heads, nil
}

// GetMinorByID returns a single minor head.
func (r *HeadRepository) GetMinorByID(ctx context.Context, id int64) (*models.MinorHead, error) {
	const query = `SELECT id, major_head_id, name FROM minor_heads WHERE id = $1`
	var head models.MinorHead
	if err := r.db.GetContext(ctx, &head, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get minor head: %w", err)
	}
	return &head, nil
}

// CreateMinor inserts a new minor head under a major head.
func (r *HeadRepository) CreateMinor(ctx context.Context, majorHeadID int64, name string) (int64, error) {
	const query = `INSERT INTO minor_heads (major_head_id, name) VALUES ($1, $2) RETURNING id`
	var id int64
	if err := r.db.GetContext(ctx, &id, query, majorHeadID, name); err != nil {
		return 0, fmt.Errorf("create minor head: %w", err)
	}
	return id, nil
}

// DeleteMinor removes a minor head. Returns sql.ErrNoRows when absent.
func (r *HeadRepository) DeleteMinor(ctx context.Context, id int64) error {
	const query = `DELETE FROM minor_heads WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete minor head: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check minor head delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
