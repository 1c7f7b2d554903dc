package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Transporegistros/carga-colombia-track/internal/models"
)

type VehiculoRepository struct {
	pool *pgxpool.Pool
}

func NewVehiculoRepository(pool *pgxpool.Pool) *VehiculoRepository {
	return &VehiculoRepository{pool: pool}
}

const vehiculoColumns = `id, empresa_id, placa, marca, modelo, tipo, capacidad,
	propietario, telefono, imagen, created_by, created_at, updated_at`

func scanVehiculo(row pgx.Row) (*models.Vehiculo, error) {
	v := &models.Vehiculo{}
	err := row.Scan(
		&v.ID, &v.EmpresaID, &v.Placa, &v.Marca, &v.Modelo, &v.Tipo,
		&v.Capacidad, &v.Propietario, &v.Telefono, &v.Imagen,
		&v.CreatedBy, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Create inserts a vehicle scoped to the caller's company.
func (r *VehiculoRepository) Create(ctx context.Context, empresaID, createdBy uuid.UUID, req *models.CreateVehiculoRequest) (*models.Vehiculo, error) {
	query := fmt.Sprintf(`
		INSERT INTO vehiculos (empresa_id, placa, marca, modelo, tipo, capacidad, propietario, telefono, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s
	`, vehiculoColumns)

	vehiculo, err := scanVehiculo(r.pool.QueryRow(ctx, query,
		empresaID, req.Placa, req.Marca, req.Modelo, req.Tipo,
		req.Capacidad, req.Propietario, req.Telefono, createdBy,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create vehiculo: %w", err)
	}

	return vehiculo, nil
}

// GetByID retrieves a vehicle, always scoped by company so one company can
// never read another's rows.
func (r *VehiculoRepository) GetByID(ctx context.Context, empresaID, id uuid.UUID) (*models.Vehiculo, error) {
	query := fmt.Sprintf(`SELECT %s FROM vehiculos WHERE id = $1 AND empresa_id = $2`, vehiculoColumns)

	vehiculo, err := scanVehiculo(r.pool.QueryRow(ctx, query, id, empresaID))
	if err != nil {
		return nil, fmt.Errorf("failed to get vehiculo: %w", err)
	}

	return vehiculo, nil
}

// List returns the company's vehicles, newest first.
func (r *VehiculoRepository) List(ctx context.Context, empresaID uuid.UUID) ([]models.Vehiculo, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM vehiculos
		WHERE empresa_id = $1
		ORDER BY created_at DESC
	`, vehiculoColumns)

	rows, err := r.pool.Query(ctx, query, empresaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehiculos: %w", err)
	}
	defer rows.Close()

	vehiculos := []models.Vehiculo{}
	for rows.Next() {
		v, err := scanVehiculo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehiculo: %w", err)
		}
		vehiculos = append(vehiculos, *v)
	}

	return vehiculos, rows.Err()
}

// Update patches non-nil fields of a vehicle.
func (r *VehiculoRepository) Update(ctx context.Context, empresaID, id uuid.UUID, req *models.UpdateVehiculoRequest) (*models.Vehiculo, error) {
	query := fmt.Sprintf(`
		UPDATE vehiculos SET
			placa       = COALESCE($3, placa),
			marca       = COALESCE($4, marca),
			modelo      = COALESCE($5, modelo),
			tipo        = COALESCE($6, tipo),
			capacidad   = COALESCE($7, capacidad),
			propietario = COALESCE($8, propietario),
			telefono    = COALESCE($9, telefono),
			updated_at  = now()
		WHERE id = $1 AND empresa_id = $2
		RETURNING %s
	`, vehiculoColumns)

	vehiculo, err := scanVehiculo(r.pool.QueryRow(ctx, query, id, empresaID,
		req.Placa, req.Marca, req.Modelo, req.Tipo,
		req.Capacidad, req.Propietario, req.Telefono,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update vehiculo: %w", err)
	}

	return vehiculo, nil
}

// Delete removes a vehicle.
func (r *VehiculoRepository) Delete(ctx context.Context, empresaID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM vehiculos WHERE id = $1 AND empresa_id = $2`, id, empresaID)
	if err != nil {
		return fmt.Errorf("failed to delete vehiculo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
