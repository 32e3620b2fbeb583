package dto

// RequestOTPRequest asks for a one-time code for a mobile number.
type RequestOTPRequest struct {
	Mobile string `json:"mobile" validate:"required"`
}

// RequestOTPResponse echoes the issued code. There is no SMS gateway;
// the caller is expected to relay the code out of band.
type RequestOTPResponse struct {
	Mobile string `json:"mobile"`
	OTP    string `json:"otp"`
}

// ValidateOTPRequest validates a pending code and optionally completes
// the caller's profile in the same round trip.
type ValidateOTPRequest struct {
	Mobile     string  `json:"mobile" validate:"required"`
	OTP        string  `json:"otp" validate:"required"`
	Username   *string `json:"username,omitempty"`
	Password   *string `json:"password,omitempty"`
	Department *int64  `json:"department,omitempty"`
}

// CreateAdminRequest provisions a new administrator account.
type CreateAdminRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Mobile   string `json:"mobile" validate:"required"`
}
