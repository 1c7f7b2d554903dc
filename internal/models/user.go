package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AuthState is the tri-state lifecycle of a session: unknown while hydration
// is in flight, then authenticated or unauthenticated once resolved.
type AuthState string

const (
	AuthStateUnknown         AuthState = "unknown"
	AuthStateAuthenticated   AuthState = "authenticated"
	AuthStateUnauthenticated AuthState = "unauthenticated"
)

// Roles are stored as free text; these three are the ones the application
// ships with. RolAdmin bypasses the permission matrix entirely.
const (
	RolAdmin      = "admin"
	RolSupervisor = "supervisor"
	RolUsuario    = "usuario"
)

type Usuario struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Perfil is the profile row keyed by the usuario id, mirroring the
// `perfiles` table.
type Perfil struct {
	ID             uuid.UUID  `json:"id"`
	Nombre         *string    `json:"nombre,omitempty"`
	Apellido       *string    `json:"apellido,omitempty"`
	Cargo          *string    `json:"cargo,omitempty"`
	Telefono       *string    `json:"telefono,omitempty"`
	EmpresaID      *uuid.UUID `json:"empresa_id,omitempty"`
	UltimaConexion *time.Time `json:"ultima_conexion,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Session is the hydrated identity handed to handlers and middleware.
// Rol and EmpresaID carry meaning only while State is authenticated; a
// partial session (profile fetch failed) has them empty.
type Session struct {
	UserID    uuid.UUID  `json:"user_id"`
	Email     string     `json:"email"`
	Nombre    string     `json:"nombre"`
	Rol       string     `json:"rol,omitempty"`
	EmpresaID *uuid.UUID `json:"empresa_id,omitempty"`
	State     AuthState  `json:"state"`
}

// IsAdmin reports whether the session carries the admin role.
func (s *Session) IsAdmin() bool {
	return s != nil && s.State == AuthStateAuthenticated && s.Rol == RolAdmin
}

// DisplayName falls back to the local part of the email when the profile
// never provided a name.
func DisplayName(nombre, email string) string {
	if nombre != "" {
		return nombre
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
