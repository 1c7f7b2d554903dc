package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/Transporegistros/carga-colombia-track/internal/middleware"
	"github.com/Transporegistros/carga-colombia-track/internal/models"
	"github.com/Transporegistros/carga-colombia-track/internal/repository"
	"github.com/Transporegistros/carga-colombia-track/internal/services"
)

// AdminHandler serves the admin-only surfaces: module catalog, permission
// matrix and the audit trail.
type AdminHandler struct {
	modulos   *repository.ModuloRepository
	permisos  *repository.PermisoRepository
	permSvc   *services.PermissionService
	auditoria *services.AuditoriaService
}

func NewAdminHandler(modulos *repository.ModuloRepository, permisos *repository.PermisoRepository, permSvc *services.PermissionService, auditoria *services.AuditoriaService) *AdminHandler {
	return &AdminHandler{
		modulos:   modulos,
		permisos:  permisos,
		permSvc:   permSvc,
		auditoria: auditoria,
	}
}

// ListModulos returns every module, inactive ones included.
func (h *AdminHandler) ListModulos(c *gin.Context) {
	modulos, err := h.modulos.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list modules"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"modulos": modulos})
}

func (h *AdminHandler) CreateModulo(c *gin.Context) {
	session := middleware.SessionFrom(c)

	var req models.CreateModuloRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	modulo, err := h.modulos.Create(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create module"})
		return
	}

	h.auditoria.Record(c.Request.Context(), session, "modulos", "crear", &modulo.ID, req, c.ClientIP())

	c.JSON(http.StatusCreated, modulo)
}

func (h *AdminHandler) UpdateModulo(c *gin.Context) {
	session := middleware.SessionFrom(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req models.UpdateModuloRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	modulo, err := h.modulos.Update(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "module not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update module"})
		return
	}

	// Route or activo changes affect cached verdicts for every role.
	h.permSvc.InvalidateAll(c.Request.Context())

	h.auditoria.Record(c.Request.Context(), session, "modulos", "editar", &id, req, c.ClientIP())

	c.JSON(http.StatusOK, modulo)
}

func (h *AdminHandler) DeleteModulo(c *gin.Context) {
	session := middleware.SessionFrom(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.modulos.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "module not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete module"})
		return
	}

	h.permSvc.InvalidateAll(c.Request.Context())

	h.auditoria.Record(c.Request.Context(), session, "modulos", "eliminar", &id, nil, c.ClientIP())

	c.JSON(http.StatusOK, gin.H{"message": "module deleted"})
}

// ListPermisos returns the matrix rows for the role in ?rol=.
func (h *AdminHandler) ListPermisos(c *gin.Context) {
	rol := c.Query("rol")
	if rol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rol is required"})
		return
	}

	permisos, err := h.permisos.ListByRol(c.Request.Context(), rol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list permissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"permisos": permisos})
}

// UpsertPermiso writes one matrix row and drops the role's cached verdicts.
func (h *AdminHandler) UpsertPermiso(c *gin.Context) {
	session := middleware.SessionFrom(c)

	var req models.UpsertPermisoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	permiso, err := h.permisos.Upsert(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save permission"})
		return
	}

	h.permSvc.InvalidateRole(c.Request.Context(), req.Rol)

	h.auditoria.Record(c.Request.Context(), session, "permisos_rol", "editar", &permiso.ID, req, c.ClientIP())

	c.JSON(http.StatusOK, permiso)
}

// DeletePermiso removes one matrix row. The role is passed in ?rol= so its
// cache can be dropped too.
func (h *AdminHandler) DeletePermiso(c *gin.Context) {
	session := middleware.SessionFrom(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.permisos.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "permission not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete permission"})
		return
	}

	if rol := c.Query("rol"); rol != "" {
		h.permSvc.InvalidateRole(c.Request.Context(), rol)
	}

	h.auditoria.Record(c.Request.Context(), session, "permisos_rol", "eliminar", &id, nil, c.ClientIP())

	c.JSON(http.StatusOK, gin.H{"message": "permission deleted"})
}

// ListAuditoria returns filtered audit entries.
func (h *AdminHandler) ListAuditoria(c *gin.Context) {
	filter := repository.AuditoriaFilter{}

	desde := c.Query("desde")
	hasta := c.Query("hasta")
	var err error
	if filter.Desde, err = parseFechaPtr(&desde); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if filter.Hasta, err = parseFechaPtr(&hasta); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if value := c.Query("tabla"); value != "" {
		filter.Tabla = &value
	}
	if value := c.Query("accion"); value != "" {
		filter.Accion = &value
	}
	if value := c.Query("limite"); value != "" {
		limite, err := strconv.Atoi(value)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limite"})
			return
		}
		filter.Limite = limite
	}

	registros, err := h.auditoria.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list audit entries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"auditoria": registros})
}
