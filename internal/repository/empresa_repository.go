package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Transporegistros/carga-colombia-track/internal/models"
)

type EmpresaRepository struct {
	pool *pgxpool.Pool
}

func NewEmpresaRepository(pool *pgxpool.Pool) *EmpresaRepository {
	return &EmpresaRepository{pool: pool}
}

// Create inserts a company. The registering user's email is always recorded
// on the company row.
func (r *EmpresaRepository) Create(ctx context.Context, nombre, email string) (*models.Empresa, error) {
	empresa := &models.Empresa{}

	query := `
		INSERT INTO empresas (nombre, email, activa)
		VALUES ($1, $2, true)
		RETURNING id, nombre, nit, direccion, telefono, email, logo_url, activa,
		          created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, nombre, email).Scan(
		&empresa.ID,
		&empresa.Nombre,
		&empresa.NIT,
		&empresa.Direccion,
		&empresa.Telefono,
		&empresa.Email,
		&empresa.LogoURL,
		&empresa.Activa,
		&empresa.CreatedAt,
		&empresa.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create empresa: %w", err)
	}

	return empresa, nil
}

// GetByID retrieves a company by id.
func (r *EmpresaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Empresa, error) {
	empresa := &models.Empresa{}

	query := `
		SELECT id, nombre, nit, direccion, telefono, email, logo_url, activa,
		       created_at, updated_at
		FROM empresas
		WHERE id = $1
	`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&empresa.ID,
		&empresa.Nombre,
		&empresa.NIT,
		&empresa.Direccion,
		&empresa.Telefono,
		&empresa.Email,
		&empresa.LogoURL,
		&empresa.Activa,
		&empresa.CreatedAt,
		&empresa.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get empresa: %w", err)
	}

	return empresa, nil
}

// Update patches non-nil fields of a company.
func (r *EmpresaRepository) Update(ctx context.Context, id uuid.UUID, req *models.UpdateEmpresaRequest) (*models.Empresa, error) {
	empresa := &models.Empresa{}

	query := `
		UPDATE empresas SET
			nombre     = COALESCE($2, nombre),
			nit        = COALESCE($3, nit),
			direccion  = COALESCE($4, direccion),
			telefono   = COALESCE($5, telefono),
			email      = COALESCE($6, email),
			updated_at = now()
		WHERE id = $1
		RETURNING id, nombre, nit, direccion, telefono, email, logo_url, activa,
		          created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, id,
		req.Nombre, req.NIT, req.Direccion, req.Telefono, req.Email,
	).Scan(
		&empresa.ID,
		&empresa.Nombre,
		&empresa.NIT,
		&empresa.Direccion,
		&empresa.Telefono,
		&empresa.Email,
		&empresa.LogoURL,
		&empresa.Activa,
		&empresa.CreatedAt,
		&empresa.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to update empresa: %w", err)
	}

	return empresa, nil
}

// SetLogoURL stores the public URL of an uploaded company logo.
func (r *EmpresaRepository) SetLogoURL(ctx context.Context, id uuid.UUID, logoURL string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE empresas SET logo_url = $2, updated_at = now() WHERE id = $1`,
		id, logoURL,
	)
	if err != nil {
		return fmt.Errorf("failed to set logo url: %w", err)
	}
	return nil
}

// GetResumen computes the dashboard aggregates for a company: vehicle count,
// trips currently en route, and current-month expense totals.
func (r *EmpresaRepository) GetResumen(ctx context.Context, empresaID uuid.UUID) (*models.ResumenEmpresa, error) {
	resumen := &models.ResumenEmpresa{}

	query := `
		SELECT
			(SELECT COUNT(*) FROM vehiculos WHERE empresa_id = $1),
			(SELECT COUNT(*) FROM viajes WHERE empresa_id = $1 AND estado = 'en-curso'),
			(SELECT COALESCE(SUM(monto), 0) FROM gastos
			   WHERE empresa_id = $1 AND date_trunc('month', fecha) = date_trunc('month', now())),
			(SELECT COALESCE(SUM(monto), 0) FROM gastos
			   WHERE empresa_id = $1 AND tipo = 'combustible'
			   AND date_trunc('month', fecha) = date_trunc('month', now()))
	`

	err := r.pool.QueryRow(ctx, query, empresaID).Scan(
		&resumen.TotalVehiculos,
		&resumen.ViajesActivos,
		&resumen.GastosMes,
		&resumen.CombustibleMes,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get resumen: %w", err)
	}

	return resumen, nil
}
