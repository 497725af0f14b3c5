package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/labstock/backend/internal/domain/identity"
	"github.com/labstock/backend/internal/interfaces/http/dto"
)

// RequireCapability gates a route on a capability from the token claims.
// This is a fast pre-check; services re-resolve capabilities from the
// stored user on every write, so a stale token cannot widen access.
func RequireCapability(capability identity.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, cap := range GetJWTCapabilities(c) {
			if cap == string(capability) || cap == string(identity.CapabilityAll) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.NewErrorResponse(dto.ErrCodeForbidden, "Missing required capability: "+string(capability)))
	}
}

// RequireRole gates a route on the role claim
func RequireRole(role identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetJWTRole(c) == string(role) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.NewErrorResponse(dto.ErrCodeForbidden, "Requires role: "+string(role)))
	}
}
