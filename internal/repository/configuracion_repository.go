package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Transporegistros/carga-colombia-track/internal/models"
)

type ConfiguracionRepository struct {
	pool *pgxpool.Pool
}

func NewConfiguracionRepository(pool *pgxpool.Pool) *ConfiguracionRepository {
	return &ConfiguracionRepository{pool: pool}
}

const configuracionColumns = `id, clave, valor, descripcion, empresa_id, es_sistema, created_at, updated_at`

// ListForEmpresa returns the company's settings plus the global system
// settings (empresa_id IS NULL).
func (r *ConfiguracionRepository) ListForEmpresa(ctx context.Context, empresaID uuid.UUID) ([]models.Configuracion, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM configuraciones
		WHERE empresa_id = $1 OR empresa_id IS NULL
		ORDER BY clave ASC
	`, configuracionColumns)

	rows, err := r.pool.Query(ctx, query, empresaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list configuraciones: %w", err)
	}
	defer rows.Close()

	configs := []models.Configuracion{}
	for rows.Next() {
		c := models.Configuracion{}
		err := rows.Scan(
			&c.ID, &c.Clave, &c.Valor, &c.Descripcion,
			&c.EmpresaID, &c.EsSistema, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan configuracion: %w", err)
		}
		configs = append(configs, c)
	}

	return configs, rows.Err()
}

// Upsert writes one company-scoped setting keyed by (empresa_id, clave).
// System settings are never written through this path.
func (r *ConfiguracionRepository) Upsert(ctx context.Context, empresaID uuid.UUID, req *models.UpsertConfiguracionRequest) (*models.Configuracion, error) {
	config := &models.Configuracion{}

	query := fmt.Sprintf(`
		INSERT INTO configuraciones (clave, valor, descripcion, empresa_id, es_sistema)
		VALUES ($1, $2, $3, $4, false)
		ON CONFLICT (empresa_id, clave) DO UPDATE SET
			valor       = EXCLUDED.valor,
			descripcion = COALESCE(EXCLUDED.descripcion, configuraciones.descripcion),
			updated_at  = now()
		WHERE configuraciones.es_sistema = false
		RETURNING %s
	`, configuracionColumns)

	err := r.pool.QueryRow(ctx, query,
		req.Clave, req.Valor, req.Descripcion, empresaID,
	).Scan(
		&config.ID, &config.Clave, &config.Valor, &config.Descripcion,
		&config.EmpresaID, &config.EsSistema, &config.CreatedAt, &config.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to upsert configuracion: %w", err)
	}

	return config, nil
}
