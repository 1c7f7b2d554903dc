package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Transporegistros/carga-colombia-track/internal/middleware"
	"github.com/Transporegistros/carga-colombia-track/internal/models"
	"github.com/Transporegistros/carga-colombia-track/internal/repository"
	"github.com/Transporegistros/carga-colombia-track/internal/services"
)

type ViajeHandler struct {
	viajes    *repository.ViajeRepository
	vehiculos *repository.VehiculoRepository
	auditoria *services.AuditoriaService
}

func NewViajeHandler(viajes *repository.ViajeRepository, vehiculos *repository.VehiculoRepository, auditoria *services.AuditoriaService) *ViajeHandler {
	return &ViajeHandler{viajes: viajes, vehiculos: vehiculos, auditoria: auditoria}
}

func (h *ViajeHandler) List(c *gin.Context) {
	session := middleware.SessionFrom(c)

	var estado *models.ViajeEstado
	if value := c.Query("estado"); value != "" {
		e := models.ViajeEstado(value)
		if !e.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid estado"})
			return
		}
		estado = &e
	}

	var vehiculoID *uuid.UUID
	if value := c.Query("vehiculo_id"); value != "" {
		id, err := uuid.Parse(value)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehiculo_id"})
			return
		}
		vehiculoID = &id
	}

	viajes, err := h.viajes.List(c.Request.Context(), *session.EmpresaID, estado, vehiculoID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list trips"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"viajes": viajes})
}

func (h *ViajeHandler) Get(c *gin.Context) {
	session := middleware.SessionFrom(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	viaje, err := h.viajes.GetByID(c.Request.Context(), *session.EmpresaID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
		return
	}

	c.JSON(http.StatusOK, viaje)
}

func (h *ViajeHandler) Create(c *gin.Context) {
	session := middleware.SessionFrom(c)

	var req models.CreateViajeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The vehicle must belong to the caller's company.
	if _, err := h.vehiculos.GetByID(c.Request.Context(), *session.EmpresaID, req.VehiculoID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown vehicle"})
		return
	}

	fechaSalida, err := parseFecha(req.FechaSalida)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fechaLlegada, err := parseFechaPtr(req.FechaLlegada)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	estado := models.ViajeEstado(req.Estado)
	if req.Estado == "" {
		estado = models.ViajePendiente
	}
	if !estado.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid estado"})
		return
	}

	userID := session.UserID
	viaje := &models.Viaje{
		EmpresaID:    *session.EmpresaID,
		VehiculoID:   req.VehiculoID,
		Origen:       req.Origen,
		Destino:      req.Destino,
		FechaSalida:  fechaSalida,
		FechaLlegada: fechaLlegada,
		Carga:        req.Carga,
		Conductor:    req.Conductor,
		Distancia:    req.Distancia,
		Estado:       estado,
		CreatedBy:    &userID,
	}

	created, err := h.viajes.Create(c.Request.Context(), viaje)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create trip"})
		return
	}

	h.auditoria.Record(c.Request.Context(), session, "viajes", "crear", &created.ID, req, c.ClientIP())

	c.JSON(http.StatusCreated, created)
}

func (h *ViajeHandler) Update(c *gin.Context) {
	session := middleware.SessionFrom(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req models.UpdateViajeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := &models.Viaje{}
	if req.Origen != nil {
		patch.Origen = *req.Origen
	}
	if req.Destino != nil {
		patch.Destino = *req.Destino
	}
	if req.FechaSalida != nil {
		fecha, err := parseFecha(*req.FechaSalida)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		patch.FechaSalida = fecha
	}
	fechaLlegada, err := parseFechaPtr(req.FechaLlegada)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	patch.FechaLlegada = fechaLlegada
	patch.Carga = req.Carga
	patch.Conductor = req.Conductor
	patch.Distancia = req.Distancia
	if req.Estado != nil {
		estado := models.ViajeEstado(*req.Estado)
		if !estado.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid estado"})
			return
		}
		patch.Estado = estado
	}

	viaje, err := h.viajes.Update(c.Request.Context(), *session.EmpresaID, id, patch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update trip"})
		return
	}

	h.auditoria.Record(c.Request.Context(), session, "viajes", "editar", &id, req, c.ClientIP())

	c.JSON(http.StatusOK, viaje)
}

func (h *ViajeHandler) Delete(c *gin.Context) {
	session := middleware.SessionFrom(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.viajes.Delete(c.Request.Context(), *session.EmpresaID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete trip"})
		return
	}

	h.auditoria.Record(c.Request.Context(), session, "viajes", "eliminar", &id, nil, c.ClientIP())

	c.JSON(http.StatusOK, gin.H{"message": "trip deleted"})
}
