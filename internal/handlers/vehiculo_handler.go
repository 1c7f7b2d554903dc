package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/Transporegistros/carga-colombia-track/internal/middleware"
	"github.com/Transporegistros/carga-colombia-track/internal/models"
	"github.com/Transporegistros/carga-colombia-track/internal/repository"
	"github.com/Transporegistros/carga-colombia-track/internal/services"
	"github.com/Transporegistros/carga-colombia-track/internal/utils"
)

type VehiculoHandler struct {
	vehiculos *repository.VehiculoRepository
	auditoria *services.AuditoriaService
}

func NewVehiculoHandler(vehiculos *repository.VehiculoRepository, auditoria *services.AuditoriaService) *VehiculoHandler {
	return &VehiculoHandler{vehiculos: vehiculos, auditoria: auditoria}
}

func (h *VehiculoHandler) List(c *gin.Context) {
	session := middleware.SessionFrom(c)

	vehiculos, err := h.vehiculos.List(c.Request.Context(), *session.EmpresaID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list vehicles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"vehiculos": vehiculos})
}

func (h *VehiculoHandler) Get(c *gin.Context) {
	session := middleware.SessionFrom(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vehiculo, err := h.vehiculos.GetByID(c.Request.Context(), *session.EmpresaID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
		return
	}

	c.JSON(http.StatusOK, vehiculo)
}

func (h *VehiculoHandler) Create(c *gin.Context) {
	session := middleware.SessionFrom(c)

	var req models.CreateVehiculoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Placa = utils.NormalizePlaca(req.Placa)

	vehiculo, err := h.vehiculos.Create(c.Request.Context(), *session.EmpresaID, session.UserID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create vehicle"})
		return
	}

	h.auditoria.Record(c.Request.Context(), session, "vehiculos", "crear", &vehiculo.ID, req, c.ClientIP())

	c.JSON(http.StatusCreated, vehiculo)
}

func (h *VehiculoHandler) Update(c *gin.Context) {
	session := middleware.SessionFrom(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req models.UpdateVehiculoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Placa != nil {
		placa := utils.NormalizePlaca(*req.Placa)
		req.Placa = &placa
	}

	vehiculo, err := h.vehiculos.Update(c.Request.Context(), *session.EmpresaID, id, &req)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update vehicle"})
		return
	}

	h.auditoria.Record(c.Request.Context(), session, "vehiculos", "editar", &id, req, c.ClientIP())

	c.JSON(http.StatusOK, vehiculo)
}

func (h *VehiculoHandler) Delete(c *gin.Context) {
	session := middleware.SessionFrom(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.vehiculos.Delete(c.Request.Context(), *session.EmpresaID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete vehicle"})
		return
	}

	h.auditoria.Record(c.Request.Context(), session, "vehiculos", "eliminar", &id, nil, c.ClientIP())

	c.JSON(http.StatusOK, gin.H{"message": "vehicle deleted"})
}
