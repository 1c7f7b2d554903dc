package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Transporegistros/carga-colombia-track/internal/models"
)

type PerfilRepository struct {
	pool *pgxpool.Pool
}

func NewPerfilRepository(pool *pgxpool.Pool) *PerfilRepository {
	return &PerfilRepository{pool: pool}
}

// Get retrieves a profile by user id.
func (r *PerfilRepository) Get(ctx context.Context, userID uuid.UUID) (*models.Perfil, error) {
	perfil := &models.Perfil{}

	query := `
		SELECT id, nombre, apellido, cargo, telefono, empresa_id,
		       ultima_conexion, created_at, updated_at
		FROM perfiles
		WHERE id = $1
	`

	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&perfil.ID,
		&perfil.Nombre,
		&perfil.Apellido,
		&perfil.Cargo,
		&perfil.Telefono,
		&perfil.EmpresaID,
		&perfil.UltimaConexion,
		&perfil.CreatedAt,
		&perfil.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return perfil, nil
}

// Insert creates the profile row for a freshly registered user.
func (r *PerfilRepository) Insert(ctx context.Context, perfil *models.Perfil) error {
	query := `
		INSERT INTO perfiles (id, nombre, apellido, cargo, telefono, empresa_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		perfil.ID,
		perfil.Nombre,
		perfil.Apellido,
		perfil.Cargo,
		perfil.Telefono,
		perfil.EmpresaID,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// Upsert writes profile fields keyed by user id, creating the row when it
// does not exist yet. Only non-nil fields overwrite existing values.
func (r *PerfilRepository) Upsert(ctx context.Context, userID uuid.UUID, req *models.UpdateProfileRequest) (*models.Perfil, error) {
	perfil := &models.Perfil{}

	query := `
		INSERT INTO perfiles (id, nombre, apellido, cargo, telefono, empresa_id, ultima_conexion)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (id) DO UPDATE SET
			nombre          = COALESCE(EXCLUDED.nombre, perfiles.nombre),
			apellido        = COALESCE(EXCLUDED.apellido, perfiles.apellido),
			cargo           = COALESCE(EXCLUDED.cargo, perfiles.cargo),
			telefono        = COALESCE(EXCLUDED.telefono, perfiles.telefono),
			empresa_id      = COALESCE(EXCLUDED.empresa_id, perfiles.empresa_id),
			ultima_conexion = now(),
			updated_at      = now()
		RETURNING id, nombre, apellido, cargo, telefono, empresa_id,
		          ultima_conexion, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		userID,
		req.Nombre,
		req.Apellido,
		req.Cargo,
		req.Telefono,
		req.EmpresaID,
	).Scan(
		&perfil.ID,
		&perfil.Nombre,
		&perfil.Apellido,
		&perfil.Cargo,
		&perfil.Telefono,
		&perfil.EmpresaID,
		&perfil.UltimaConexion,
		&perfil.CreatedAt,
		&perfil.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}

	return perfil, nil
}

// TouchUltimaConexion records a successful login.
func (r *PerfilRepository) TouchUltimaConexion(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE perfiles SET ultima_conexion = now(), updated_at = now() WHERE id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch ultima_conexion: %w", err)
	}
	return nil
}
