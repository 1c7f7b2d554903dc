package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Transporegistros/carga-colombia-track/internal/models"
	"github.com/Transporegistros/carga-colombia-track/internal/services"
)

// RequirePermission gates a route on the role/module/action matrix. The
// verdict comes from PermissionService, so admin passes without a lookup
// and any uncertainty denies.
func RequirePermission(permisos *services.PermissionService, moduloRuta string, accion models.Accion) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := SessionFrom(c)
		if session == nil || session.State != models.AuthStateAuthenticated {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		if !permisos.HasPermission(c.Request.Context(), session.Rol, moduloRuta, accion) {
			c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			c.Abort()
			return
		}

		c.Next()
	}
}
