package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opendms/dms-api/internal/dto"
	"github.com/opendms/dms-api/internal/service"
	appErrors "github.com/opendms/dms-api/pkg/errors"
	"github.com/opendms/dms-api/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service *service.AuthService
	metrics *service.MetricsService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService, metrics *service.MetricsService) *AuthHandler {
	return &AuthHandler{service: svc, metrics: metrics}
}

// RequestOTP godoc
// @Summary Request a one-time login code
// @Description Issues a 6-digit code for the mobile number, creating a placeholder account on first contact
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.RequestOTPRequest true "OTP request"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/request-otp [post]
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req dto.RequestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid otp request payload"))
		return
	}

	res, err := h.service.RequestOTP(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.RecordOTPIssued()
	response.JSON(c, http.StatusOK, res)
}

// ValidateOTP godoc
// @Summary Validate a one-time code
// @Description Validates the pending code, optionally completing the caller's profile; returns 206 when the profile is still incomplete
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.ValidateOTPRequest true "OTP validation"
// @Success 200 {object} response.Envelope
// @Success 206 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/validate-otp [post]
func (h *AuthHandler) ValidateOTP(c *gin.Context) {
	var req dto.ValidateOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid otp validation payload"))
		return
	}

	result, err := h.service.ValidateOTP(c.Request.Context(), req)
	if err != nil {
		h.metrics.RecordOTPValidation(false)
		response.Error(c, err)
		return
	}
	h.metrics.RecordOTPValidation(true)

	if result.Session == nil {
		response.JSON(c, http.StatusPartialContent, gin.H{
			"user":    result.User,
			"message": "profile incomplete, supply username and password to finish registration",
		})
		return
	}

	response.JSON(c, http.StatusOK, result.Session)
}

// Me godoc
// @Summary Get current user
// @Description Returns the authenticated user's claims projection
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"id":       claims.UserID,
		"username": claims.Username,
		"mobile":   claims.Mobile,
		"is_admin": claims.IsAdmin,
	})
}
