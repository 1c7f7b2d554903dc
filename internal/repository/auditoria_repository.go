package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Transporegistros/carga-colombia-track/internal/models"
)

type AuditoriaRepository struct {
	pool *pgxpool.Pool
}

func NewAuditoriaRepository(pool *pgxpool.Pool) *AuditoriaRepository {
	return &AuditoriaRepository{pool: pool}
}

// Insert records one audit entry.
func (r *AuditoriaRepository) Insert(ctx context.Context, usuarioID *uuid.UUID, tabla, accion string, registroID *uuid.UUID, detalles json.RawMessage, ipAddress string) error {
	query := `
		INSERT INTO auditoria (usuario_id, tabla, accion, registro_id, detalles, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var ip *string
	if ipAddress != "" {
		ip = &ipAddress
	}

	_, err := r.pool.Exec(ctx, query, usuarioID, tabla, accion, registroID, detalles, ip)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	return nil
}

// AuditoriaFilter narrows an audit listing. Nil fields are ignored.
type AuditoriaFilter struct {
	Desde  *time.Time
	Hasta  *time.Time
	Tabla  *string
	Accion *string
	Limite int
}

// List returns audit entries newest first, joined with the acting user's
// email.
func (r *AuditoriaRepository) List(ctx context.Context, filter AuditoriaFilter) ([]models.RegistroAuditoria, error) {
	query := `
		SELECT a.id, a.usuario_id, a.tabla, a.accion, a.registro_id,
		       a.detalles, a.ip_address, a.timestamp, u.email
		FROM auditoria a
		LEFT JOIN usuarios u ON u.id = a.usuario_id
		WHERE 1=1
	`
	args := []interface{}{}
	argIndex := 1

	if filter.Desde != nil {
		query += fmt.Sprintf(" AND a.timestamp >= $%d", argIndex)
		args = append(args, *filter.Desde)
		argIndex++
	}
	if filter.Hasta != nil {
		query += fmt.Sprintf(" AND a.timestamp <= $%d", argIndex)
		args = append(args, *filter.Hasta)
		argIndex++
	}
	if filter.Tabla != nil {
		query += fmt.Sprintf(" AND a.tabla = $%d", argIndex)
		args = append(args, *filter.Tabla)
		argIndex++
	}
	if filter.Accion != nil {
		query += fmt.Sprintf(" AND a.accion = $%d", argIndex)
		args = append(args, *filter.Accion)
		argIndex++
	}

	limite := filter.Limite
	if limite <= 0 || limite > 500 {
		limite = 100
	}
	query += fmt.Sprintf(" ORDER BY a.timestamp DESC LIMIT $%d", argIndex)
	args = append(args, limite)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	registros := []models.RegistroAuditoria{}
	for rows.Next() {
		reg := models.RegistroAuditoria{}
		err := rows.Scan(
			&reg.ID, &reg.UsuarioID, &reg.Tabla, &reg.Accion, &reg.RegistroID,
			&reg.Detalles, &reg.IPAddress, &reg.Timestamp, &reg.UsuarioEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		registros = append(registros, reg)
	}

	return registros, rows.Err()
}
