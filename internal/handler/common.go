package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/opendms/dms-api/internal/middleware"
	"github.com/opendms/dms-api/internal/models"
)

// claimsFromContext extracts JWT claims set by the auth middleware.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
