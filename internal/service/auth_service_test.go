package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/opendms/dms-api/internal/dto"
	"github.com/opendms/dms-api/internal/models"
	"github.com/opendms/dms-api/internal/repository"
	appErrors "github.com/opendms/dms-api/pkg/errors"
)

type stubUserRepo struct {
	byMobile map[string]*models.User
	byID     map[int64]*models.User
	nextID   int64
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byMobile: map[string]*models.User{},
		byID:     map[int64]*models.User{},
		nextID:   1,
	}
}

func (r *stubUserRepo) FindByMobile(_ context.Context, mobile string) (*models.User, error) {
	user, ok := r.byMobile[mobile]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*models.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *stubUserRepo) CountByUsername(_ context.Context, username string) (int, error) {
	count := 0
	for _, user := range r.byID {
		if user.Username == username {
			count++
		}
	}
	return count, nil
}

func (r *stubUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.nextID++
	stored := *user
	r.byMobile[user.Mobile] = &stored
	r.byID[user.ID] = &stored
	return nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, user *models.User) error {
	stored, ok := r.byID[user.ID]
	if !ok {
		return sql.ErrNoRows
	}
	stored.Username = user.Username
	stored.PasswordHash = user.PasswordHash
	stored.DepartmentID = user.DepartmentID
	return nil
}

type stubOTPStore struct {
	codes map[string]string
}

func newStubOTPStore() *stubOTPStore {
	return &stubOTPStore{codes: map[string]string{}}
}

func (s *stubOTPStore) Put(_ context.Context, mobile, code string) error {
	s.codes[mobile] = code
	return nil
}

func (s *stubOTPStore) Get(_ context.Context, mobile string) (string, error) {
	code, ok := s.codes[mobile]
	if !ok {
		return "", repository.ErrOTPNotFound
	}
	return code, nil
}

func (s *stubOTPStore) Delete(_ context.Context, mobile string) error {
	delete(s.codes, mobile)
	return nil
}

func newAuthService(users *stubUserRepo, otps *stubOTPStore) *AuthService {
	return NewAuthService(users, otps, nil, nil, AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "dms-test",
		Audience:    "dms-clients",
	})
}

func TestRequestOTPCreatesPlaceholder(t *testing.T) {
	users := newStubUserRepo()
	otps := newStubOTPStore()
	svc := newAuthService(users, otps)

	resp, err := svc.RequestOTP(context.Background(), dto.RequestOTPRequest{Mobile: "9876543210"})
	require.NoError(t, err)
	assert.Equal(t, "9876543210", resp.Mobile)
	assert.Len(t, resp.OTP, 6)

	user, err := users.FindByMobile(context.Background(), "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "9876543210", user.Username)
	assert.False(t, user.ProfileComplete())
}

func TestRequestOTPOverwritesPendingCode(t *testing.T) {
	users := newStubUserRepo()
	otps := newStubOTPStore()
	svc := newAuthService(users, otps)

	first, err := svc.RequestOTP(context.Background(), dto.RequestOTPRequest{Mobile: "9876543210"})
	require.NoError(t, err)
	second, err := svc.RequestOTP(context.Background(), dto.RequestOTPRequest{Mobile: "9876543210"})
	require.NoError(t, err)

	_, err = svc.ValidateOTP(context.Background(), dto.ValidateOTPRequest{Mobile: "9876543210", OTP: first.OTP})
	if first.OTP != second.OTP {
		var appErr *appErrors.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, appErrors.ErrInvalidOTP.Code, appErr.Code)
	}

	result, err := svc.ValidateOTP(context.Background(), dto.ValidateOTPRequest{Mobile: "9876543210", OTP: second.OTP})
	if first.OTP != second.OTP {
		require.NoError(t, err)
		assert.Nil(t, result.Session)
	}
}

func TestValidateOTPWrongCode(t *testing.T) {
	users := newStubUserRepo()
	otps := newStubOTPStore()
	svc := newAuthService(users, otps)

	_, err := svc.RequestOTP(context.Background(), dto.RequestOTPRequest{Mobile: "9876543210"})
	require.NoError(t, err)

	_, err = svc.ValidateOTP(context.Background(), dto.ValidateOTPRequest{Mobile: "9876543210", OTP: "000000x"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidOTP.Code, appErr.Code)
}

func TestValidateOTPConsumedOnce(t *testing.T) {
	users := newStubUserRepo()
	otps := newStubOTPStore()
	svc := newAuthService(users, otps)

	resp, err := svc.RequestOTP(context.Background(), dto.RequestOTPRequest{Mobile: "9876543210"})
	require.NoError(t, err)

	_, err = svc.ValidateOTP(context.Background(), dto.ValidateOTPRequest{Mobile: "9876543210", OTP: resp.OTP})
	require.NoError(t, err)

	_, err = svc.ValidateOTP(context.Background(), dto.ValidateOTPRequest{Mobile: "9876543210", OTP: resp.OTP})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidOTP.Code, appErr.Code)
}

func TestValidateOTPIncompleteProfileHasNoSession(t *testing.T) {
	users := newStubUserRepo()
	otps := newStubOTPStore()
	svc := newAuthService(users, otps)

	resp, err := svc.RequestOTP(context.Background(), dto.RequestOTPRequest{Mobile: "9876543210"})
	require.NoError(t, err)

	result, err := svc.ValidateOTP(context.Background(), dto.ValidateOTPRequest{Mobile: "9876543210", OTP: resp.OTP})
	require.NoError(t, err)
	assert.Nil(t, result.Session)
	assert.Equal(t, "9876543210", result.User.Username)
}

func TestValidateOTPCompletesProfileAndIssuesToken(t *testing.T) {
	users := newStubUserRepo()
	otps := newStubOTPStore()
	svc := newAuthService(users, otps)

	resp, err := svc.RequestOTP(context.Background(), dto.RequestOTPRequest{Mobile: "9876543210"})
	require.NoError(t, err)

	username := "alice"
	password := "secret123"
	department := int64(5)
	result, err := svc.ValidateOTP(context.Background(), dto.ValidateOTPRequest{
		Mobile:     "9876543210",
		OTP:        resp.OTP,
		Username:   &username,
		Password:   &password,
		Department: &department,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Session)
	assert.Equal(t, "alice", result.User.Username)
	assert.Equal(t, int64(5), result.User.DepartmentID)
	assert.NotEmpty(t, result.Session.Token)

	claims, err := svc.ValidateToken(result.Session.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "9876543210", claims.Mobile)
	assert.False(t, claims.IsAdmin)

	stored, err := users.FindByMobile(context.Background(), "9876543210")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(password)))
}

func TestValidateOTPShortPasswordRejected(t *testing.T) {
	users := newStubUserRepo()
	otps := newStubOTPStore()
	svc := newAuthService(users, otps)

	resp, err := svc.RequestOTP(context.Background(), dto.RequestOTPRequest{Mobile: "9876543210"})
	require.NoError(t, err)

	username := "alice"
	password := "short"
	_, err = svc.ValidateOTP(context.Background(), dto.ValidateOTPRequest{
		Mobile:   "9876543210",
		OTP:      resp.OTP,
		Username: &username,
		Password: &password,
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestValidateOTPRenameOnlyKeepsPassword(t *testing.T) {
	users := newStubUserRepo()
	otps := newStubOTPStore()
	svc := newAuthService(users, otps)

	resp, err := svc.RequestOTP(context.Background(), dto.RequestOTPRequest{Mobile: "9876543210"})
	require.NoError(t, err)

	username := "alice"
	password := "secret123"
	_, err = svc.ValidateOTP(context.Background(), dto.ValidateOTPRequest{
		Mobile: "9876543210", OTP: resp.OTP, Username: &username, Password: &password,
	})
	require.NoError(t, err)

	resp, err = svc.RequestOTP(context.Background(), dto.RequestOTPRequest{Mobile: "9876543210"})
	require.NoError(t, err)

	renamed := "alice2"
	result, err := svc.ValidateOTP(context.Background(), dto.ValidateOTPRequest{
		Mobile: "9876543210", OTP: resp.OTP, Username: &renamed,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Session)
	assert.Equal(t, "alice2", result.User.Username)

	stored, err := users.FindByMobile(context.Background(), "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "alice2", stored.Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(password)))
}

func TestValidateOTPPlaceholderStillNeedsPassword(t *testing.T) {
	users := newStubUserRepo()
	otps := newStubOTPStore()
	svc := newAuthService(users, otps)

	resp, err := svc.RequestOTP(context.Background(), dto.RequestOTPRequest{Mobile: "9876543210"})
	require.NoError(t, err)

	username := "alice"
	_, err = svc.ValidateOTP(context.Background(), dto.ValidateOTPRequest{
		Mobile: "9876543210", OTP: resp.OTP, Username: &username,
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestCreateAdminDuplicateUsername(t *testing.T) {
	users := newStubUserRepo()
	otps := newStubOTPStore()
	svc := newAuthService(users, otps)

	_, err := svc.CreateAdmin(context.Background(), dto.CreateAdminRequest{
		Username: "boss", Password: "secret123", Mobile: "1111111111",
	})
	require.NoError(t, err)

	_, err = svc.CreateAdmin(context.Background(), dto.CreateAdminRequest{
		Username: "boss", Password: "secret123", Mobile: "2222222222",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestCreateAdminIssuesAdminClaims(t *testing.T) {
	users := newStubUserRepo()
	otps := newStubOTPStore()
	svc := newAuthService(users, otps)

	info, err := svc.CreateAdmin(context.Background(), dto.CreateAdminRequest{
		Username: "boss", Password: "secret123", Mobile: "1111111111",
	})
	require.NoError(t, err)
	assert.True(t, info.IsAdmin)

	stored, err := users.FindByMobile(context.Background(), "1111111111")
	require.NoError(t, err)
	assert.True(t, stored.IsAdmin)
	assert.True(t, stored.ProfileComplete())
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	users := newStubUserRepo()
	otps := newStubOTPStore()
	svc := newAuthService(users, otps)

	_, err := svc.ValidateToken("not-a-token")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}
