package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Transporegistros/carga-colombia-track/internal/models"
)

type ModuloRepository struct {
	pool *pgxpool.Pool
}

func NewModuloRepository(pool *pgxpool.Pool) *ModuloRepository {
	return &ModuloRepository{pool: pool}
}

const moduloColumns = `id, nombre, descripcion, ruta, icono, activo, orden, created_at, updated_at`

func scanModulo(row pgx.Row) (*models.Modulo, error) {
	m := &models.Modulo{}
	err := row.Scan(
		&m.ID, &m.Nombre, &m.Descripcion, &m.Ruta, &m.Icono,
		&m.Activo, &m.Orden, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListActivos returns every active module ordered by orden ascending. This
// is the admin view of navigation.
func (r *ModuloRepository) ListActivos(ctx context.Context) ([]models.Modulo, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM modulos
		WHERE activo = true
		ORDER BY orden ASC
	`, moduloColumns)

	return r.queryModulos(ctx, query)
}

// ListAll returns every module regardless of activo, for matrix
// administration screens.
func (r *ModuloRepository) ListAll(ctx context.Context) ([]models.Modulo, error) {
	query := fmt.Sprintf(`SELECT %s FROM modulos ORDER BY orden ASC`, moduloColumns)
	return r.queryModulos(ctx, query)
}

// ListForRol resolves the modules a non-admin role may see: active modules
// joined to a matrix row with ver = true. This is the server-side equivalent
// of the obtener_modulos_por_rol procedure.
func (r *ModuloRepository) ListForRol(ctx context.Context, rol string) ([]models.Modulo, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM modulos m
		WHERE m.activo = true
		  AND EXISTS (
			SELECT 1 FROM permisos_rol p
			WHERE p.modulo_id = m.id AND p.rol = $1 AND p.ver = true
		  )
		ORDER BY m.orden ASC
	`, prefixColumns("m"))

	rows, err := r.pool.Query(ctx, query, rol)
	if err != nil {
		return nil, fmt.Errorf("failed to list modulos for rol: %w", err)
	}
	defer rows.Close()

	return collectModulos(rows)
}

// GetByRuta retrieves a module by its route path.
func (r *ModuloRepository) GetByRuta(ctx context.Context, ruta string) (*models.Modulo, error) {
	query := fmt.Sprintf(`SELECT %s FROM modulos WHERE ruta = $1`, moduloColumns)

	modulo, err := scanModulo(r.pool.QueryRow(ctx, query, ruta))
	if err != nil {
		return nil, fmt.Errorf("failed to get modulo: %w", err)
	}

	return modulo, nil
}

// Create inserts a module.
func (r *ModuloRepository) Create(ctx context.Context, req *models.CreateModuloRequest) (*models.Modulo, error) {
	activo := true
	if req.Activo != nil {
		activo = *req.Activo
	}

	query := fmt.Sprintf(`
		INSERT INTO modulos (nombre, descripcion, ruta, icono, activo, orden)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s
	`, moduloColumns)

	modulo, err := scanModulo(r.pool.QueryRow(ctx, query,
		req.Nombre, req.Descripcion, req.Ruta, req.Icono, activo, req.Orden,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create modulo: %w", err)
	}

	return modulo, nil
}

// Update patches non-nil fields of a module.
func (r *ModuloRepository) Update(ctx context.Context, id uuid.UUID, req *models.UpdateModuloRequest) (*models.Modulo, error) {
	query := fmt.Sprintf(`
		UPDATE modulos SET
			nombre      = COALESCE($2, nombre),
			descripcion = COALESCE($3, descripcion),
			ruta        = COALESCE($4, ruta),
			icono       = COALESCE($5, icono),
			activo      = COALESCE($6, activo),
			orden       = COALESCE($7, orden),
			updated_at  = now()
		WHERE id = $1
		RETURNING %s
	`, moduloColumns)

	modulo, err := scanModulo(r.pool.QueryRow(ctx, query, id,
		req.Nombre, req.Descripcion, req.Ruta, req.Icono, req.Activo, req.Orden,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update modulo: %w", err)
	}

	return modulo, nil
}

// Delete removes a module and, through the FK cascade, its matrix rows.
func (r *ModuloRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM modulos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete modulo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ModuloRepository) queryModulos(ctx context.Context, query string, args ...interface{}) ([]models.Modulo, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list modulos: %w", err)
	}
	defer rows.Close()

	return collectModulos(rows)
}

func collectModulos(rows pgx.Rows) ([]models.Modulo, error) {
	modulos := []models.Modulo{}
	for rows.Next() {
		m, err := scanModulo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan modulo: %w", err)
		}
		modulos = append(modulos, *m)
	}
	return modulos, rows.Err()
}

func prefixColumns(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.nombre, %[1]s.descripcion, %[1]s.ruta, %[1]s.icono,
		%[1]s.activo, %[1]s.orden, %[1]s.created_at, %[1]s.updated_at`, alias)
}
