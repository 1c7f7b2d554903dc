package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Transporegistros/carga-colombia-track/internal/models"
)

type ViajeRepository struct {
	pool *pgxpool.Pool
}

func NewViajeRepository(pool *pgxpool.Pool) *ViajeRepository {
	return &ViajeRepository{pool: pool}
}

const viajeColumns = `id, empresa_id, vehiculo_id, origen, destino, fecha_salida,
	fecha_llegada, carga, conductor, distancia, estado, created_by, created_at, updated_at`

func scanViaje(row pgx.Row) (*models.Viaje, error) {
	v := &models.Viaje{}
	err := row.Scan(
		&v.ID, &v.EmpresaID, &v.VehiculoID, &v.Origen, &v.Destino,
		&v.FechaSalida, &v.FechaLlegada, &v.Carga, &v.Conductor,
		&v.Distancia, &v.Estado, &v.CreatedBy, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Create inserts a trip. Estado defaults to pendiente.
func (r *ViajeRepository) Create(ctx context.Context, viaje *models.Viaje) (*models.Viaje, error) {
	query := fmt.Sprintf(`
		INSERT INTO viajes (empresa_id, vehiculo_id, origen, destino, fecha_salida,
			fecha_llegada, carga, conductor, distancia, estado, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING %s
	`, viajeColumns)

	created, err := scanViaje(r.pool.QueryRow(ctx, query,
		viaje.EmpresaID, viaje.VehiculoID, viaje.Origen, viaje.Destino,
		viaje.FechaSalida, viaje.FechaLlegada, viaje.Carga, viaje.Conductor,
		viaje.Distancia, viaje.Estado, viaje.CreatedBy,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create viaje: %w", err)
	}

	return created, nil
}

// GetByID retrieves a trip scoped by company.
func (r *ViajeRepository) GetByID(ctx context.Context, empresaID, id uuid.UUID) (*models.Viaje, error) {
	query := fmt.Sprintf(`SELECT %s FROM viajes WHERE id = $1 AND empresa_id = $2`, viajeColumns)

	viaje, err := scanViaje(r.pool.QueryRow(ctx, query, id, empresaID))
	if err != nil {
		return nil, fmt.Errorf("failed to get viaje: %w", err)
	}

	return viaje, nil
}

// List returns the company's trips ordered by departure date descending,
// optionally filtered by estado and vehicle.
func (r *ViajeRepository) List(ctx context.Context, empresaID uuid.UUID, estado *models.ViajeEstado, vehiculoID *uuid.UUID) ([]models.Viaje, error) {
	query := fmt.Sprintf(`SELECT %s FROM viajes WHERE empresa_id = $1`, viajeColumns)
	args := []interface{}{empresaID}
	argIndex := 2

	if estado != nil {
		query += fmt.Sprintf(" AND estado = $%d", argIndex)
		args = append(args, *estado)
		argIndex++
	}
	if vehiculoID != nil {
		query += fmt.Sprintf(" AND vehiculo_id = $%d", argIndex)
		args = append(args, *vehiculoID)
		argIndex++
	}

	query += " ORDER BY fecha_salida DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list viajes: %w", err)
	}
	defer rows.Close()

	viajes := []models.Viaje{}
	for rows.Next() {
		v, err := scanViaje(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan viaje: %w", err)
		}
		viajes = append(viajes, *v)
	}

	return viajes, rows.Err()
}

// Update patches non-nil fields of a trip.
func (r *ViajeRepository) Update(ctx context.Context, empresaID, id uuid.UUID, viaje *models.Viaje) (*models.Viaje, error) {
	query := fmt.Sprintf(`
		UPDATE viajes SET
			origen        = COALESCE(NULLIF($3, ''), origen),
			destino       = COALESCE(NULLIF($4, ''), destino),
			fecha_salida  = COALESCE($5, fecha_salida),
			fecha_llegada = COALESCE($6, fecha_llegada),
			carga         = COALESCE($7, carga),
			conductor     = COALESCE($8, conductor),
			distancia     = COALESCE($9, distancia),
			estado        = COALESCE(NULLIF($10, ''), estado),
			updated_at    = now()
		WHERE id = $1 AND empresa_id = $2
		RETURNING %s
	`, viajeColumns)

	var fechaSalida interface{}
	if !viaje.FechaSalida.IsZero() {
		fechaSalida = viaje.FechaSalida
	}

	updated, err := scanViaje(r.pool.QueryRow(ctx, query, id, empresaID,
		viaje.Origen, viaje.Destino, fechaSalida, viaje.FechaLlegada,
		viaje.Carga, viaje.Conductor, viaje.Distancia, string(viaje.Estado),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update viaje: %w", err)
	}

	return updated, nil
}

// Delete removes a trip.
func (r *ViajeRepository) Delete(ctx context.Context, empresaID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM viajes WHERE id = $1 AND empresa_id = $2`, id, empresaID)
	if err != nil {
		return fmt.Errorf("failed to delete viaje: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
