package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendms/dms-api/internal/service"
)

func TestAuthHandlerRequestOTPInvalidBody(t *testing.T) {
	h := NewAuthHandler(service.NewAuthService(nil, nil, nil, nil, service.AuthConfig{}), nil)

	c, w := testContext(t, http.MethodPost, "/auth/request-otp", []byte(`{"mobile":`))
	h.RequestOTP(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerValidateOTPInvalidBody(t *testing.T) {
	h := NewAuthHandler(service.NewAuthService(nil, nil, nil, nil, service.AuthConfig{}), nil)

	c, w := testContext(t, http.MethodPost, "/auth/validate-otp", []byte(`not-json`))
	h.ValidateOTP(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	h := NewAuthHandler(service.NewAuthService(nil, nil, nil, nil, service.AuthConfig{}), nil)

	c, w := testContext(t, http.MethodGet, "/auth/me", nil)
	h.Me(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"boss"`)
}
