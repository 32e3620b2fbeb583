package models

import "time"

// User represents an account stored in the users table. Accounts are
// created as placeholders on the first OTP request for an unseen mobile
// number (username = mobile, empty password hash) and completed later;
// they are never hard-deleted.
type User struct {
	ID           int64     `db:"id" json:"id"`
	DepartmentID int64     `db:"department_id" json:"department_id"`
	Username     string    `db:"username" json:"username"`
	Mobile       string    `db:"mobile" json:"mobile"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ProfileComplete reports whether the account has been upgraded from the
// OTP placeholder: a completed profile carries a password hash.
func (u *User) ProfileComplete() bool {
	return u != nil && u.PasswordHash != ""
}

// UserInfo is the public projection of a user returned by auth endpoints.
type UserInfo struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Mobile       string `json:"mobile"`
	DepartmentID int64  `json:"department_id"`
	IsAdmin      bool   `json:"is_admin"`
}

// Info builds the response projection.
func (u *User) Info() UserInfo {
	return UserInfo{
		ID:           u.ID,
		Username:     u.Username,
		Mobile:       u.Mobile,
		DepartmentID: u.DepartmentID,
		IsAdmin:      u.IsAdmin,
	}
}
