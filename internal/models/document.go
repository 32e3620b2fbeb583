package models

import "time"

// Document is a catalog entry for one stored file. FileName is the opaque
// storage key on disk; FileOriginalName is kept for display and download
// naming only and never touches the filesystem.
type Document struct {
	ID               int64      `db:"id" json:"id"`
	FileOriginalName string     `db:"file_original_name" json:"file_original_name"`
	FileName         string     `db:"file_name" json:"file_name"`
	ContentType      string     `db:"content_type" json:"content_type"`
	Size             int64      `db:"size" json:"size"`
	MajorHeadID      int64      `db:"major_head_id" json:"major_head_id"`
	MinorHeadID      int64      `db:"minor_head_id" json:"minor_head_id"`
	Remarks          string     `db:"remarks" json:"remarks"`
	DocumentDate     *time.Time `db:"document_date" json:"document_date,omitempty"`
	UploadedAt       time.Time  `db:"uploaded_at" json:"uploaded_at"`
	UploadedBy       int64      `db:"uploaded_by" json:"uploaded_by"`

	MajorHead MajorHead `db:"-" json:"major_head"`
	MinorHead MinorHead `db:"-" json:"minor_head"`
	Tags      []string  `db:"-" json:"tags"`
}

// DocumentFilter captures the search dimensions. A nil dimension matches
// everything; tag names combine with OR while the dimensions combine with
// AND.
type DocumentFilter struct {
	MajorHeadID *int64
	MinorHeadID *int64
	From        *time.Time
	To          *time.Time
	Tags        []string
}
