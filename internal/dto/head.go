package dto

// CreateMajorHeadRequest creates a top-level classification node.
type CreateMajorHeadRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateMinorHeadRequest creates a child node under a major head.
type CreateMinorHeadRequest struct {
	MajorHeadID int64  `json:"majorHeadId" validate:"required,gt=0"`
	Name        string `json:"name" validate:"required"`
}
