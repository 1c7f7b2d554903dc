package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Transporegistros/carga-colombia-track/internal/models"
)

// ErrEmailEnUso is returned when registration hits the unique index on
// usuarios.email.
var ErrEmailEnUso = errors.New("email already registered")

type UsuarioRepository struct {
	pool *pgxpool.Pool
}

func NewUsuarioRepository(pool *pgxpool.Pool) *UsuarioRepository {
	return &UsuarioRepository{pool: pool}
}

// Create inserts a new user with a hashed password.
func (r *UsuarioRepository) Create(ctx context.Context, email, passwordHash string) (*models.Usuario, error) {
	usuario := &models.Usuario{}

	query := `
		INSERT INTO usuarios (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, email, password_hash, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, email, passwordHash).Scan(
		&usuario.ID,
		&usuario.Email,
		&usuario.PasswordHash,
		&usuario.CreatedAt,
		&usuario.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailEnUso
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return usuario, nil
}

// GetByEmail retrieves a user by normalized email.
func (r *UsuarioRepository) GetByEmail(ctx context.Context, email string) (*models.Usuario, error) {
	usuario := &models.Usuario{}

	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM usuarios
		WHERE email = $1
	`

	err := r.pool.QueryRow(ctx, query, email).Scan(
		&usuario.ID,
		&usuario.Email,
		&usuario.PasswordHash,
		&usuario.CreatedAt,
		&usuario.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return usuario, nil
}

// GetByID retrieves a user by id.
func (r *UsuarioRepository) GetByID(ctx context.Context, userID uuid.UUID) (*models.Usuario, error) {
	usuario := &models.Usuario{}

	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM usuarios
		WHERE id = $1
	`

	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&usuario.ID,
		&usuario.Email,
		&usuario.PasswordHash,
		&usuario.CreatedAt,
		&usuario.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return usuario, nil
}

// UpdatePassword replaces the stored password hash.
func (r *UsuarioRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE usuarios SET password_hash = $1, updated_at = now() WHERE id = $2`,
		passwordHash, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
