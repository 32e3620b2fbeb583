package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/opendms/dms-api/pkg/config"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		department_id BIGINT NOT NULL DEFAULT 0,
		username VARCHAR(100) UNIQUE NOT NULL,
		mobile VARCHAR(20) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL DEFAULT '',
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS major_heads (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS minor_heads (
		id BIGSERIAL PRIMARY KEY,
		major_head_id BIGINT NOT NULL REFERENCES major_heads(id) ON DELETE CASCADE,
		name VARCHAR(100) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tags (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) UNIQUE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id BIGSERIAL PRIMARY KEY,
		file_original_name VARCHAR(255) NOT NULL,
		file_name VARCHAR(500) NOT NULL,
		content_type VARCHAR(100) NOT NULL,
		size BIGINT NOT NULL,
		major_head_id BIGINT NOT NULL REFERENCES major_heads(id),
		minor_head_id BIGINT NOT NULL REFERENCES minor_heads(id),
		remarks TEXT NOT NULL DEFAULT '',
		document_date TIMESTAMPTZ,
		uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		uploaded_by BIGINT REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS document_tags (
		document_id BIGINT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		tag_id BIGINT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		PRIMARY KEY (document_id, tag_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_uploaded_at ON documents (uploaded_at DESC, id DESC)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_file_name ON documents (file_name)`,
}

// Bootstrap creates the schema when absent.
func Bootstrap(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}

// Seed loads configured taxonomy and admin accounts idempotently.
// Everything runs inside one transaction so a half-applied seed never
// survives a crash.
func Seed(ctx context.Context, db *sqlx.DB, seed config.SeedConfig) error {
	if len(seed.Majors) == 0 && len(seed.Admins) == 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, major := range seed.Majors {
		name := strings.TrimSpace(major.Name)
		if name == "" {
			continue
		}

		var majorID int64
		err := tx.GetContext(ctx, &majorID, `SELECT id FROM major_heads WHERE name = $1 LIMIT 1`, name)
		if err != nil {
			if err := tx.GetContext(ctx, &majorID,
				`INSERT INTO major_heads (name) VALUES ($1) RETURNING id`, name); err != nil {
				return fmt.Errorf("seed major head %q: %w", name, err)
			}
		}

		for _, minor := range major.Minors {
			minorName := strings.TrimSpace(minor)
			if minorName == "" {
				continue
			}
			var count int
			if err := tx.GetContext(ctx, &count,
				`SELECT COUNT(*) FROM minor_heads WHERE major_head_id = $1 AND name = $2`,
				majorID, minorName); err != nil {
				return fmt.Errorf("check minor head %q: %w", minorName, err)
			}
			if count == 0 {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO minor_heads (major_head_id, name) VALUES ($1, $2)`,
					majorID, minorName); err != nil {
					return fmt.Errorf("seed minor head %q: %w", minorName, err)
				}
			}
		}
	}

	for _, admin := range seed.Admins {
		if strings.TrimSpace(admin.Mobile) == "" ||
			strings.TrimSpace(admin.Username) == "" ||
			strings.TrimSpace(admin.Password) == "" {
			continue
		}

		var count int
		if err := tx.GetContext(ctx, &count,
			`SELECT COUNT(*) FROM users WHERE mobile = $1 OR username = $2`,
			admin.Mobile, admin.Username); err != nil {
			return fmt.Errorf("check seed admin %q: %w", admin.Username, err)
		}
		if count > 0 {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash seed admin password: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (username, mobile, password_hash, is_admin) VALUES ($1, $2, $3, TRUE)`,
			admin.Username, admin.Mobile, string(hash)); err != nil {
			return fmt.Errorf("seed admin %q: %w", admin.Username, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
