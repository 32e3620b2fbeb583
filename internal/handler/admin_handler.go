package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opendms/dms-api/internal/dto"
	"github.com/opendms/dms-api/internal/service"
	appErrors "github.com/opendms/dms-api/pkg/errors"
	"github.com/opendms/dms-api/pkg/response"
)

// AdminHandler exposes administrator provisioning and system stats.
type AdminHandler struct {
	auth    *service.AuthService
	metrics *service.MetricsService
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(auth *service.AuthService, metrics *service.MetricsService) *AdminHandler {
	return &AdminHandler{auth: auth, metrics: metrics}
}

// CreateAdmin godoc
// @Summary Provision an administrator account
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body dto.CreateAdminRequest true "Admin account"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/create-user [post]
func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	var req dto.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid admin payload"))
		return
	}
	info, err := h.auth.CreateAdmin(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, info)
}

// Stats godoc
// @Summary System metrics snapshot
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot())
}
