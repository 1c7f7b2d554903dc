package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Transporegistros/carga-colombia-track/internal/models"
)

type GastoRepository struct {
	pool *pgxpool.Pool
}

func NewGastoRepository(pool *pgxpool.Pool) *GastoRepository {
	return &GastoRepository{pool: pool}
}

// GastoFilter narrows a listing. Nil fields are ignored.
type GastoFilter struct {
	Tipo       *models.GastoTipo
	VehiculoID *uuid.UUID
	ViajeID    *uuid.UUID
	Desde      *time.Time
	Hasta      *time.Time
}

const gastoColumns = `id, empresa_id, vehiculo_id, viaje_id, tipo, fecha, monto,
	descripcion, ubicacion, kilometraje, comprobante_url, created_by, created_at, updated_at`

func scanGasto(row pgx.Row) (*models.Gasto, error) {
	g := &models.Gasto{}
	err := row.Scan(
		&g.ID, &g.EmpresaID, &g.VehiculoID, &g.ViajeID, &g.Tipo, &g.Fecha,
		&g.Monto, &g.Descripcion, &g.Ubicacion, &g.Kilometraje,
		&g.ComprobanteURL, &g.CreatedBy, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Create inserts an expense.
func (r *GastoRepository) Create(ctx context.Context, gasto *models.Gasto) (*models.Gasto, error) {
	query := fmt.Sprintf(`
		INSERT INTO gastos (empresa_id, vehiculo_id, viaje_id, tipo, fecha, monto,
			descripcion, ubicacion, kilometraje, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING %s
	`, gastoColumns)

	created, err := scanGasto(r.pool.QueryRow(ctx, query,
		gasto.EmpresaID, gasto.VehiculoID, gasto.ViajeID, gasto.Tipo,
		gasto.Fecha, gasto.Monto, gasto.Descripcion, gasto.Ubicacion,
		gasto.Kilometraje, gasto.CreatedBy,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create gasto: %w", err)
	}

	return created, nil
}

// GetByID retrieves an expense scoped by company.
func (r *GastoRepository) GetByID(ctx context.Context, empresaID, id uuid.UUID) (*models.Gasto, error) {
	query := fmt.Sprintf(`SELECT %s FROM gastos WHERE id = $1 AND empresa_id = $2`, gastoColumns)

	gasto, err := scanGasto(r.pool.QueryRow(ctx, query, id, empresaID))
	if err != nil {
		return nil, fmt.Errorf("failed to get gasto: %w", err)
	}

	return gasto, nil
}

// List returns the company's expenses, newest first, with optional filters.
func (r *GastoRepository) List(ctx context.Context, empresaID uuid.UUID, filter GastoFilter) ([]models.Gasto, error) {
	query := fmt.Sprintf(`SELECT %s FROM gastos WHERE empresa_id = $1`, gastoColumns)
	args := []interface{}{empresaID}
	argIndex := 2

	if filter.Tipo != nil {
		query += fmt.Sprintf(" AND tipo = $%d", argIndex)
		args = append(args, *filter.Tipo)
		argIndex++
	}
	if filter.VehiculoID != nil {
		query += fmt.Sprintf(" AND vehiculo_id = $%d", argIndex)
		args = append(args, *filter.VehiculoID)
		argIndex++
	}
	if filter.ViajeID != nil {
		query += fmt.Sprintf(" AND viaje_id = $%d", argIndex)
		args = append(args, *filter.ViajeID)
		argIndex++
	}
	if filter.Desde != nil {
		query += fmt.Sprintf(" AND fecha >= $%d", argIndex)
		args = append(args, *filter.Desde)
		argIndex++
	}
	if filter.Hasta != nil {
		query += fmt.Sprintf(" AND fecha <= $%d", argIndex)
		args = append(args, *filter.Hasta)
		argIndex++
	}

	query += " ORDER BY fecha DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list gastos: %w", err)
	}
	defer rows.Close()

	gastos := []models.Gasto{}
	for rows.Next() {
		g, err := scanGasto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gasto: %w", err)
		}
		gastos = append(gastos, *g)
	}

	return gastos, rows.Err()
}

// Update patches non-nil fields of an expense.
func (r *GastoRepository) Update(ctx context.Context, empresaID, id uuid.UUID, req *models.UpdateGastoRequest, fecha *time.Time) (*models.Gasto, error) {
	query := fmt.Sprintf(`
		UPDATE gastos SET
			tipo        = COALESCE($3, tipo),
			fecha       = COALESCE($4, fecha),
			monto       = COALESCE($5, monto),
			descripcion = COALESCE($6, descripcion),
			ubicacion   = COALESCE($7, ubicacion),
			kilometraje = COALESCE($8, kilometraje),
			updated_at  = now()
		WHERE id = $1 AND empresa_id = $2
		RETURNING %s
	`, gastoColumns)

	updated, err := scanGasto(r.pool.QueryRow(ctx, query, id, empresaID,
		req.Tipo, fecha, req.Monto, req.Descripcion, req.Ubicacion, req.Kilometraje,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update gasto: %w", err)
	}

	return updated, nil
}

// SetComprobanteURL stores the receipt URL after a successful upload.
func (r *GastoRepository) SetComprobanteURL(ctx context.Context, empresaID, id uuid.UUID, url string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE gastos SET comprobante_url = $3, updated_at = now()
		 WHERE id = $1 AND empresa_id = $2`,
		id, empresaID, url,
	)
	if err != nil {
		return fmt.Errorf("failed to set comprobante url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes an expense.
func (r *GastoRepository) Delete(ctx context.Context, empresaID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM gastos WHERE id = $1 AND empresa_id = $2`, id, empresaID)
	if err != nil {
		return fmt.Errorf("failed to delete gasto: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
