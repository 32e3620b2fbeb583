package models

import "time"

// SystemMetrics is an aggregate snapshot exposed on the stats endpoint.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	OTPIssued                uint64    `json:"otp_issued"`
	OTPValidated             uint64    `json:"otp_validated"`
	DocumentsUploaded        uint64    `json:"documents_uploaded"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
