package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Transporegistros/carga-colombia-track/internal/middleware"
	"github.com/Transporegistros/carga-colombia-track/internal/models"
	"github.com/Transporegistros/carga-colombia-track/internal/repository"
	"github.com/Transporegistros/carga-colombia-track/internal/services"
)

type EmpresaHandler struct {
	empresas        *repository.EmpresaRepository
	configuraciones *repository.ConfiguracionRepository
	comprobantes    *services.ComprobanteService
	auditoria       *services.AuditoriaService
}

func NewEmpresaHandler(empresas *repository.EmpresaRepository, configuraciones *repository.ConfiguracionRepository, comprobantes *services.ComprobanteService, auditoria *services.AuditoriaService) *EmpresaHandler {
	return &EmpresaHandler{
		empresas:        empresas,
		configuraciones: configuraciones,
		comprobantes:    comprobantes,
		auditoria:       auditoria,
	}
}

// Get returns the caller's company.
func (h *EmpresaHandler) Get(c *gin.Context) {
	session := middleware.SessionFrom(c)

	empresa, err := h.empresas.GetByID(c.Request.Context(), *session.EmpresaID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "company not found"})
		return
	}

	c.JSON(http.StatusOK, empresa)
}

// Update patches the caller's company.
func (h *EmpresaHandler) Update(c *gin.Context) {
	session := middleware.SessionFrom(c)

	var req models.UpdateEmpresaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	empresa, err := h.empresas.Update(c.Request.Context(), *session.EmpresaID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update company"})
		return
	}

	h.auditoria.Record(c.Request.Context(), session, "empresas", "editar", session.EmpresaID, req, c.ClientIP())

	c.JSON(http.StatusOK, empresa)
}

// UploadLogo attaches a logo image to the caller's company.
func (h *EmpresaHandler) UploadLogo(c *gin.Context) {
	session := middleware.SessionFrom(c)

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	url, err := h.comprobantes.UploadLogo(c.Request.Context(), file, *session.EmpresaID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.auditoria.Record(c.Request.Context(), session, "empresas", "editar", session.EmpresaID, gin.H{"logo_url": url}, c.ClientIP())

	c.JSON(http.StatusOK, gin.H{"logo_url": url})
}

// Resumen returns the dashboard aggregates for the caller's company.
func (h *EmpresaHandler) Resumen(c *gin.Context) {
	session := middleware.SessionFrom(c)

	resumen, err := h.empresas.GetResumen(c.Request.Context(), *session.EmpresaID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get summary"})
		return
	}

	c.JSON(http.StatusOK, resumen)
}

// ListConfiguraciones returns the company's settings merged with the global
// system settings.
func (h *EmpresaHandler) ListConfiguraciones(c *gin.Context) {
	session := middleware.SessionFrom(c)

	configs, err := h.configuraciones.ListForEmpresa(c.Request.Context(), *session.EmpresaID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"configuraciones": configs})
}

// UpsertConfiguracion writes one company-scoped setting.
func (h *EmpresaHandler) UpsertConfiguracion(c *gin.Context) {
	session := middleware.SessionFrom(c)

	var req models.UpsertConfiguracionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	config, err := h.configuraciones.Upsert(c.Request.Context(), *session.EmpresaID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save setting"})
		return
	}

	h.auditoria.Record(c.Request.Context(), session, "configuraciones", "editar", &config.ID, req, c.ClientIP())

	c.JSON(http.StatusOK, config)
}
