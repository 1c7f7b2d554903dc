package models

import (
	"time"

	"github.com/google/uuid"
)

// Accion is one of the four grantable actions on a module.
type Accion string

const (
	AccionCrear    Accion = "crear"
	AccionEditar   Accion = "editar"
	AccionEliminar Accion = "eliminar"
	AccionVer      Accion = "ver"
)

// Valid reports whether the action is one of the four known values.
func (a Accion) Valid() bool {
	switch a {
	case AccionCrear, AccionEditar, AccionEliminar, AccionVer:
		return true
	}
	return false
}

// Modulo is a routed feature area shown in navigation, mirroring the
// `modulos` table.
type Modulo struct {
	ID          uuid.UUID `json:"id"`
	Nombre      string    `json:"nombre"`
	Descripcion *string   `json:"descripcion,omitempty"`
	Ruta        string    `json:"ruta"`
	Icono       *string   `json:"icono,omitempty"`
	Activo      bool      `json:"activo"`
	Orden       int       `json:"orden"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PermisoRol is one row of the role -> module -> action grant matrix.
type PermisoRol struct {
	ID       uuid.UUID `json:"id"`
	Rol      string    `json:"rol"`
	ModuloID uuid.UUID `json:"modulo_id"`
	Crear    bool      `json:"crear"`
	Editar   bool      `json:"editar"`
	Eliminar bool      `json:"eliminar"`
	Ver      bool      `json:"ver"`
}

// Allows returns the recorded grant for one action.
func (p *PermisoRol) Allows(accion Accion) bool {
	switch accion {
	case AccionCrear:
		return p.Crear
	case AccionEditar:
		return p.Editar
	case AccionEliminar:
		return p.Eliminar
	case AccionVer:
		return p.Ver
	}
	return false
}

// MenuItem is a render-ready navigation entry: the module with its icon key
// resolved and a flag for the currently visited route.
type MenuItem struct {
	ID          uuid.UUID `json:"id"`
	Nombre      string    `json:"nombre"`
	Descripcion string    `json:"descripcion,omitempty"`
	Ruta        string    `json:"ruta"`
	Icono       Icon      `json:"icono"`
	Orden       int       `json:"orden"`
	Actual      bool      `json:"actual"`
}
