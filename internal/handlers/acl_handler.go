package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Transporegistros/carga-colombia-track/internal/middleware"
	"github.com/Transporegistros/carga-colombia-track/internal/models"
	"github.com/Transporegistros/carga-colombia-track/internal/services"
)

// ACLHandler serves navigation and the permission remote procedures.
type ACLHandler struct {
	permisos *services.PermissionService
	menu     *services.MenuService
}

func NewACLHandler(permisos *services.PermissionService, menu *services.MenuService) *ACLHandler {
	return &ACLHandler{permisos: permisos, menu: menu}
}

// Menu returns the navigation entries for the current session's role. The
// optional ?actual= query flags the currently visited route.
func (h *ACLHandler) Menu(c *gin.Context) {
	session := middleware.SessionFrom(c)

	items := h.menu.Build(c.Request.Context(), session.Rol, c.Query("actual"))

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// TienePermiso answers one role/module/action question for the current
// session.
func (h *ACLHandler) TienePermiso(c *gin.Context) {
	var req models.TienePermisoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := middleware.SessionFrom(c)
	permitido := h.permisos.HasPermission(c.Request.Context(), session.Rol, req.ModuloRuta, models.Accion(req.Accion))

	c.JSON(http.StatusOK, gin.H{"permitido": permitido})
}

// ModulosPorRol lists the modules visible to an arbitrary role. Only admin
// may ask about roles other than its own.
func (h *ACLHandler) ModulosPorRol(c *gin.Context) {
	var req models.ModulosPorRolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := middleware.SessionFrom(c)
	if !session.IsAdmin() && req.RolUsuario != session.Rol {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot inspect another role"})
		return
	}

	modulos := h.permisos.ListModules(c.Request.Context(), req.RolUsuario)

	c.JSON(http.StatusOK, gin.H{"modulos": modulos})
}
