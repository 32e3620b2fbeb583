package models

// MajorHead is a top-level classification node.
type MajorHead struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// MinorHead is a child classification node under exactly one MajorHead.
// Its name doubles as a department marker in the access model: a document
// filed under a minor head whose name matches a username is visible to
// that user.
type MinorHead struct {
	ID          int64  `db:"id" json:"id"`
	MajorHeadID int64  `db:"major_head_id" json:"major_head_id"`
	Name        string `db:"name" json:"name"`
}

// Tag is a freeform label attached to documents many-to-many.
type Tag struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
