package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/opendms/dms-api/internal/dto"
	"github.com/opendms/dms-api/internal/models"
	"github.com/opendms/dms-api/internal/repository"
	appErrors "github.com/opendms/dms-api/pkg/errors"
)

type authUserRepository interface {
	FindByMobile(ctx context.Context, mobile string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	CountByUsername(ctx context.Context, username string) (int, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, user *models.User) error
}

type otpStore interface {
	Put(ctx context.Context, mobile, code string) error
	Get(ctx context.Context, mobile string) (string, error)
	Delete(ctx context.Context, mobile string) error
}

// AuthConfig defines configuration for the OTP and token flows.
type AuthConfig struct {
	TokenSecret string
	TokenExpiry time.Duration
	Issuer      string
	Audience    string
}

// ValidateOTPResult carries the outcome of an OTP validation. Session is
// nil when the account profile is still the placeholder created on the
// first OTP request; the handler maps that to a partial response.
type ValidateOTPResult struct {
	User    models.UserInfo
	Session *models.SessionResponse
}

// AuthService implements the OTP login lifecycle and admin provisioning.
type AuthService struct {
	users     authUserRepository
	otps      otpStore
	validator *validator.Validate
	config    AuthConfig
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, otps otpStore, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{users: users, otps: otps, validator: validate, logger: logger, config: config}
}

// RequestOTP issues a six digit code for the mobile number, creating a
// placeholder account on first contact. A repeated request overwrites the
// pending code.
func (s *AuthService) RequestOTP(ctx context.Context, req dto.RequestOTPRequest) (*dto.RequestOTPResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid otp request payload")
	}

	mobile := strings.TrimSpace(req.Mobile)
	if mobile == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "mobile number is required")
	}

	if _, err := s.users.FindByMobile(ctx, mobile); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up account")
		}
		placeholder := &models.User{Username: mobile, Mobile: mobile}
		if err := s.users.Create(ctx, placeholder); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create account")
		}
		s.logger.Info("placeholder account created", zap.String("mobile", mobile))
	}

	code, err := generateOTPCode()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate otp")
	}

	if err := s.otps.Put(ctx, mobile, code); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store otp")
	}

	s.logger.Info("otp issued", zap.String("mobile", mobile))
	return &dto.RequestOTPResponse{Mobile: mobile, OTP: code}, nil
}

// ValidateOTP checks the pending code for the mobile number and consumes
// it on success. When the request also carries profile fields the account
// is completed in the same round trip; a session token is issued only for
// complete profiles.
func (s *AuthService) ValidateOTP(ctx context.Context, req dto.ValidateOTPRequest) (*ValidateOTPResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid otp validation payload")
	}

	mobile := strings.TrimSpace(req.Mobile)

	pending, err := s.otps.Get(ctx, mobile)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return nil, appErrors.Clone(appErrors.ErrInvalidOTP, "no pending otp for this mobile number")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load otp")
	}
	if pending != strings.TrimSpace(req.OTP) {
		return nil, appErrors.Clone(appErrors.ErrInvalidOTP, "otp does not match")
	}

	if err := s.otps.Delete(ctx, mobile); err != nil {
		s.logger.Warn("failed to consume otp", zap.String("mobile", mobile), zap.Error(err))
	}

	user, err := s.users.FindByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}

	if req.Username != nil || req.Password != nil {
		if err := s.completeProfile(ctx, user, req); err != nil {
			return nil, err
		}
	}

	result := &ValidateOTPResult{User: user.Info()}
	if !user.ProfileComplete() {
		return result, nil
	}

	token, issuedAt, err := s.generateToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}
	result.Session = &models.SessionResponse{
		User:      user.Info(),
		Token:     token,
		ExpiresIn: int64(s.config.TokenExpiry.Seconds()),
		IssuedAt:  issuedAt,
	}

	s.logger.Info("otp validated", zap.String("mobile", mobile), zap.Int64("user_id", user.ID))
	return result, nil
}

// completeProfile upgrades a placeholder account with the chosen
// username, password and department. A complete account may rename or
// change its password independently; a placeholder must set a password
// before a session can be issued.
func (s *AuthService) completeProfile(ctx context.Context, user *models.User, req dto.ValidateOTPRequest) error {
	username := user.Username
	if req.Username != nil {
		username = strings.TrimSpace(*req.Username)
	}
	if username == "" {
		return appErrors.Clone(appErrors.ErrValidation, "username must not be empty")
	}

	password := ""
	if req.Password != nil {
		password = strings.TrimSpace(*req.Password)
	}
	if password == "" && !user.ProfileComplete() {
		return appErrors.Clone(appErrors.ErrValidation, "password must be at least 6 characters")
	}
	if password != "" && len(password) < 6 {
		return appErrors.Clone(appErrors.ErrValidation, "password must be at least 6 characters")
	}

	if username != user.Username {
		count, err := s.users.CountByUsername(ctx, username)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
		}
		if count > 0 {
			return appErrors.Clone(appErrors.ErrConflict, "username already taken")
		}
	}

	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		user.PasswordHash = string(hash)
	}

	user.Username = username
	if req.Department != nil {
		user.DepartmentID = *req.Department
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}

	s.logger.Info("profile completed", zap.Int64("user_id", user.ID), zap.String("username", username))
	return nil
}

// CreateAdmin provisions a new administrator account. A taken username or
// mobile number yields a conflict.
func (s *AuthService) CreateAdmin(ctx context.Context, req dto.CreateAdminRequest) (*models.UserInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid admin payload")
	}

	username := strings.TrimSpace(req.Username)
	mobile := strings.TrimSpace(req.Mobile)
	if username == "" || mobile == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "username and mobile are required")
	}

	count, err := s.users.CountByUsername(ctx, username)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}
	if count > 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already exists")
	}

	if _, err := s.users.FindByMobile(ctx, mobile); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "mobile number already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check mobile")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	admin := &models.User{
		Username:     username,
		Mobile:       mobile,
		PasswordHash: string(hash),
		IsAdmin:      true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create admin")
	}

	s.logger.Info("admin account created", zap.Int64("user_id", admin.ID), zap.String("username", username))
	info := admin.Info()
	return &info, nil
}

// ValidateToken parses and validates a session token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) generateToken(user *models.User) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.TokenExpiry)
	claims := &models.JWTClaims{
		UserID:   user.ID,
		Mobile:   user.Mobile,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   fmt.Sprintf("%d", user.ID),
			Audience:  jwt.ClaimStrings{s.config.Audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.TokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, issuedAt, nil
}

// generateOTPCode draws six digits from crypto/rand, zero padded.
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
