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

type GastoHandler struct {
	gastos       *repository.GastoRepository
	vehiculos    *repository.VehiculoRepository
	comprobantes *services.ComprobanteService
	auditoria    *services.AuditoriaService
}

func NewGastoHandler(gastos *repository.GastoRepository, vehiculos *repository.VehiculoRepository, comprobantes *services.ComprobanteService, auditoria *services.AuditoriaService) *GastoHandler {
	return &GastoHandler{
		gastos:       gastos,
		vehiculos:    vehiculos,
		comprobantes: comprobantes,
		auditoria:    auditoria,
	}
}

func (h *GastoHandler) List(c *gin.Context) {
	session := middleware.SessionFrom(c)

	filter := repository.GastoFilter{}

	if value := c.Query("tipo"); value != "" {
		tipo := models.GastoTipo(value)
		if !tipo.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tipo"})
			return
		}
		filter.Tipo = &tipo
	}
	if value := c.Query("vehiculo_id"); value != "" {
		id, err := uuid.Parse(value)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehiculo_id"})
			return
		}
		filter.VehiculoID = &id
	}
	if value := c.Query("viaje_id"); value != "" {
		id, err := uuid.Parse(value)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid viaje_id"})
			return
		}
		filter.ViajeID = &id
	}

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

	gastos, err := h.gastos.List(c.Request.Context(), *session.EmpresaID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list expenses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"gastos": gastos})
}

func (h *GastoHandler) Get(c *gin.Context) {
	session := middleware.SessionFrom(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gasto, err := h.gastos.GetByID(c.Request.Context(), *session.EmpresaID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "expense not found"})
		return
	}

	c.JSON(http.StatusOK, gasto)
}

func (h *GastoHandler) Create(c *gin.Context) {
	session := middleware.SessionFrom(c)

	var req models.CreateGastoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tipo := models.GastoTipo(req.Tipo)
	if !tipo.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tipo"})
		return
	}

	if _, err := h.vehiculos.GetByID(c.Request.Context(), *session.EmpresaID, req.VehiculoID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown vehicle"})
		return
	}

	fecha, err := parseFecha(req.Fecha)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := session.UserID
	gasto := &models.Gasto{
		EmpresaID:   *session.EmpresaID,
		VehiculoID:  req.VehiculoID,
		ViajeID:     req.ViajeID,
		Tipo:        tipo,
		Fecha:       fecha,
		Monto:       req.Monto,
		Descripcion: req.Descripcion,
		Ubicacion:   req.Ubicacion,
		Kilometraje: req.Kilometraje,
		CreatedBy:   &userID,
	}

	created, err := h.gastos.Create(c.Request.Context(), gasto)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create expense"})
		return
	}

	h.auditoria.Record(c.Request.Context(), session, "gastos", "crear", &created.ID, req, c.ClientIP())

	c.JSON(http.StatusCreated, created)
}

func (h *GastoHandler) Update(c *gin.Context) {
	session := middleware.SessionFrom(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req models.UpdateGastoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Tipo != nil && !models.GastoTipo(*req.Tipo).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tipo"})
		return
	}

	fecha, err := parseFechaPtr(req.Fecha)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gasto, err := h.gastos.Update(c.Request.Context(), *session.EmpresaID, id, &req, fecha)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "expense not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update expense"})
		return
	}

	h.auditoria.Record(c.Request.Context(), session, "gastos", "editar", &id, req, c.ClientIP())

	c.JSON(http.StatusOK, gasto)
}

func (h *GastoHandler) Delete(c *gin.Context) {
	session := middleware.SessionFrom(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.gastos.Delete(c.Request.Context(), *session.EmpresaID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "expense not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete expense"})
		return
	}

	h.auditoria.Record(c.Request.Context(), session, "gastos", "eliminar", &id, nil, c.ClientIP())

	c.JSON(http.StatusOK, gin.H{"message": "expense deleted"})
}

// UploadComprobante attaches a receipt to an expense.
func (h *GastoHandler) UploadComprobante(c *gin.Context) {
	session := middleware.SessionFrom(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.gastos.GetByID(c.Request.Context(), *session.EmpresaID, id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "expense not found"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	url, err := h.comprobantes.UploadComprobante(c.Request.Context(), file, *session.EmpresaID, id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.auditoria.Record(c.Request.Context(), session, "gastos", "editar", &id, gin.H{"comprobante_url": url}, c.ClientIP())

	c.JSON(http.StatusOK, gin.H{"comprobante_url": url})
}
