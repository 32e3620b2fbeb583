package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/opendms/dms-api/internal/dto"
	"github.com/opendms/dms-api/internal/models"
	appErrors "github.com/opendms/dms-api/pkg/errors"
	"github.com/opendms/dms-api/pkg/response"
)

type headService interface {
	ListMajor(ctx context.Context) ([]models.MajorHead, error)
	ListMinor(ctx context.Context, majorHeadID int64) ([]models.MinorHead, error)
	CreateMajor(ctx context.Context, req dto.CreateMajorHeadRequest, actor *models.JWTClaims) (*models.MajorHead, error)
	CreateMinor(ctx context.Context, req dto.CreateMinorHeadRequest, actor *models.JWTClaims) (*models.MinorHead, error)
	DeleteMinor(ctx context.Context, id int64, actor *models.JWTClaims) error
}

// HeadHandler manages taxonomy HTTP endpoints.
type HeadHandler struct {
	service headService
}

// NewHeadHandler constructs the handler.
func NewHeadHandler(svc headService) *HeadHandler {
	return &HeadHandler{service: svc}
}

// ListMajor godoc
// @Summary List major heads
// @Tags Heads
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /heads/major [get]
func (h *HeadHandler) ListMajor(c *gin.Context) {
	heads, err := h.service.ListMajor(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, heads)
}

// CreateMajor godoc
// @Summary Create a major head
// @Tags Heads
// @Accept json
// @Produce json
// @Param payload body dto.CreateMajorHeadRequest true "Major head"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /heads/major [post]
func (h *HeadHandler) CreateMajor(c *gin.Context) {
	var req dto.CreateMajorHeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid major head payload"))
		return
	}
	head, err := h.service.CreateMajor(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, head)
}

// ListMinor godoc
// @Summary List minor heads under a major head
// @Tags Heads
// @Produce json
// @Param majorHeadId path int true "Major head ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /heads/minor/{majorHeadId} [get]
func (h *HeadHandler) ListMinor(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("majorHeadId"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid major head id"))
		return
	}
	heads, err := h.service.ListMinor(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, heads)
}

// CreateMinor godoc
// @Summary Create a minor head
// @Tags Heads
// @Accept json
// @Produce json
// @Param payload body dto.CreateMinorHeadRequest true "Minor head"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /heads/minor [post]
func (h *HeadHandler) CreateMinor(c *gin.Context) {
	var req dto.CreateMinorHeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid minor head payload"))
		return
	}
	head, err := h.service.CreateMinor(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, head)
}

// DeleteMinor godoc
// @Summary Delete a minor head
// @Tags Heads
// @Produce json
// @Param id path int true "Minor head ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /heads/minor/{id} [delete]
func (h *HeadHandler) DeleteMinor(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid minor head id"))
		return
	}
	if err := h.service.DeleteMinor(c.Request.Context(), id, claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
