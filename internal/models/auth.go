package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims is the session credential payload. IsAdmin is a native
// boolean; the legacy string-typed claim was dropped together with the
// legacy client.
type JWTClaims struct {
	UserID   int64  `json:"user_id"`
	Mobile   string `json:"mobile"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// SessionResponse is returned after successful OTP validation with a
// complete profile.
type SessionResponse struct {
	User      UserInfo  `json:"user"`
	Token     string    `json:"token"`
	ExpiresIn int64     `json:"expires_in"`
	IssuedAt  time.Time `json:"issued_at"`
}
