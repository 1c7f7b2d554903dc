package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Transporegistros/carga-colombia-track/internal/models"
	"github.com/Transporegistros/carga-colombia-track/internal/repository"
)

// AuditoriaService records who did what to which row. Recording is
// log-not-throw: an audit failure must never break the mutation it
// describes.
type AuditoriaService struct {
	auditoria *repository.AuditoriaRepository
}

func NewAuditoriaService(auditoria *repository.AuditoriaRepository) *AuditoriaService {
	return &AuditoriaService{auditoria: auditoria}
}

// Record writes one audit entry for the acting session.
func (s *AuditoriaService) Record(ctx context.Context, session *models.Session, tabla, accion string, registroID *uuid.UUID, detalles interface{}, ip string) {
	var usuarioID *uuid.UUID
	if session != nil {
		id := session.UserID
		usuarioID = &id
	}

	var payload json.RawMessage
	if detalles != nil {
		data, err := json.Marshal(detalles)
		if err != nil {
			logrus.WithError(err).Warn("audit detalles marshal failed")
		} else {
			payload = data
		}
	}

	if err := s.auditoria.Insert(ctx, usuarioID, tabla, accion, registroID, payload, ip); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"tabla": tabla, "accion": accion,
		}).Error("audit insert failed")
	}
}

// List returns filtered audit entries, newest first.
func (s *AuditoriaService) List(ctx context.Context, filter repository.AuditoriaFilter) ([]models.RegistroAuditoria, error) {
	return s.auditoria.List(ctx, filter)
}
