package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Transporegistros/carga-colombia-track/internal/models"
)

type PermisoRepository struct {
	pool *pgxpool.Pool
}

func NewPermisoRepository(pool *pgxpool.Pool) *PermisoRepository {
	return &PermisoRepository{pool: pool}
}

// TienePermiso implements the tiene_permiso lookup: the recorded value for
// (rol, modulo ruta, accion), false when no row exists. The module must also
// be active. This is the server-side equivalent of the original remote
// procedure.
func (r *PermisoRepository) TienePermiso(ctx context.Context, rol, moduloRuta string, accion models.Accion) (bool, error) {
	var column string
	switch accion {
	case models.AccionCrear:
		column = "crear"
	case models.AccionEditar:
		column = "editar"
	case models.AccionEliminar:
		column = "eliminar"
	case models.AccionVer:
		column = "ver"
	default:
		return false, fmt.Errorf("unknown accion: %s", accion)
	}

	query := fmt.Sprintf(`
		SELECT p.%s
		FROM permisos_rol p
		JOIN modulos m ON m.id = p.modulo_id
		WHERE p.rol = $1 AND m.ruta = $2 AND m.activo = true
	`, column)

	var permitido bool
	err := r.pool.QueryRow(ctx, query, rol, moduloRuta).Scan(&permitido)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check permiso: %w", err)
	}

	return permitido, nil
}

// ListByRol returns the full matrix rows for one role.
func (r *PermisoRepository) ListByRol(ctx context.Context, rol string) ([]models.PermisoRol, error) {
	query := `
		SELECT id, rol, modulo_id, crear, editar, eliminar, ver
		FROM permisos_rol
		WHERE rol = $1
	`

	rows, err := r.pool.Query(ctx, query, rol)
	if err != nil {
		return nil, fmt.Errorf("failed to list permisos: %w", err)
	}
	defer rows.Close()

	permisos := []models.PermisoRol{}
	for rows.Next() {
		p := models.PermisoRol{}
		if err := rows.Scan(&p.ID, &p.Rol, &p.ModuloID, &p.Crear, &p.Editar, &p.Eliminar, &p.Ver); err != nil {
			return nil, fmt.Errorf("failed to scan permiso: %w", err)
		}
		permisos = append(permisos, p)
	}

	return permisos, rows.Err()
}

// Upsert writes one matrix row, keyed by (rol, modulo_id).
func (r *PermisoRepository) Upsert(ctx context.Context, req *models.UpsertPermisoRequest) (*models.PermisoRol, error) {
	permiso := &models.PermisoRol{}

	query := `
		INSERT INTO permisos_rol (rol, modulo_id, crear, editar, eliminar, ver)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (rol, modulo_id) DO UPDATE SET
			crear = EXCLUDED.crear,
			editar = EXCLUDED.editar,
			eliminar = EXCLUDED.eliminar,
			ver = EXCLUDED.ver
		RETURNING id, rol, modulo_id, crear, editar, eliminar, ver
	`

	err := r.pool.QueryRow(ctx, query,
		req.Rol, req.ModuloID, req.Crear, req.Editar, req.Eliminar, req.Ver,
	).Scan(
		&permiso.ID, &permiso.Rol, &permiso.ModuloID,
		&permiso.Crear, &permiso.Editar, &permiso.Eliminar, &permiso.Ver,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to upsert permiso: %w", err)
	}

	return permiso, nil
}

// Delete removes one matrix row.
func (r *PermisoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM permisos_rol WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete permiso: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
