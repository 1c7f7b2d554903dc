package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type RegistroAuditoria struct {
	ID         uuid.UUID       `json:"id"`
	UsuarioID  *uuid.UUID      `json:"usuario_id,omitempty"`
	Tabla      string          `json:"tabla"`
	Accion     string          `json:"accion"`
	RegistroID *uuid.UUID      `json:"registro_id,omitempty"`
	Detalles   json.RawMessage `json:"detalles,omitempty"`
	IPAddress  *string         `json:"ip_address,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	// Email of the acting user, joined when listing.
	UsuarioEmail *string `json:"usuario_email,omitempty"`
}

type Configuracion struct {
	ID          uuid.UUID  `json:"id"`
	Clave       string     `json:"clave"`
	Valor       *string    `json:"valor,omitempty"`
	Descripcion *string    `json:"descripcion,omitempty"`
	EmpresaID   *uuid.UUID `json:"empresa_id,omitempty"`
	EsSistema   bool       `json:"es_sistema"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
