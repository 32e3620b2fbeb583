package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/opendms/dms-api/internal/models"
)

// UserRepository provides database access for the user directory.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, department_id, username, mobile, password_hash, is_admin, created_at`

// FindByMobile returns a user by mobile number.
func (r *UserRepository) FindByMobile(ctx context.Context, mobile string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE mobile = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, mobile); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by mobile: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// CountByUsername reports how many accounts already use the given name.
func (r *UserRepository) CountByUsername(ctx context.Context, username string) (int, error) {
	const query = `SELECT COUNT(*) FROM users WHERE username = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, username); err != nil {
		return 0, fmt.Errorf("count users by username: %w", err)
	}
	return count, nil
}

// Create inserts a new user and fills in the generated identifier.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	const query = `INSERT INTO users (department_id, username, mobile, password_hash, is_admin)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query,
		user.DepartmentID, user.Username, user.Mobile, user.PasswordHash, user.IsAdmin)
	if err := row.Scan(&user.ID, &user.CreatedAt); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateProfile persists the mutable profile fields.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	const query = `UPDATE users SET username = $2, password_hash = $3, department_id = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.PasswordHash, user.DepartmentID); err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	return nil
}
