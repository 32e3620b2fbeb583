package dto

import "time"

// UploadDocumentRequest carries the multipart upload metadata.
type UploadDocumentRequest struct {
	MajorHeadID  int64      `form:"majorHeadId" validate:"required,gt=0"`
	MinorHeadID  int64      `form:"minorHeadId" validate:"required,gt=0"`
	Remarks      string     `form:"remarks"`
	DocumentDate *time.Time `form:"documentDate" time_format:"2006-01-02"`
	Tags         []string   `form:"tags"`
}

// UploadDocumentResponse identifies the stored document.
type UploadDocumentResponse struct {
	ID       int64  `json:"id"`
	FileName string `json:"file_name"`
}

// SearchDocumentsQuery mirrors the /documents/search query string.
type SearchDocumentsQuery struct {
	MajorHeadID *int64
	MinorHeadID *int64
	From        *time.Time
	To          *time.Time
	Tags        []string
}

// BulkDownloadRequest names the storage keys to bundle into one archive.
type BulkDownloadRequest struct {
	FileNames []string `json:"fileNames" validate:"required,min=1"`
	ZipName   string   `json:"zipName"`
}
