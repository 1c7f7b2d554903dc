package models

import (
	"github.com/google/uuid"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Rol      string `json:"rol"`
	// Either an existing company id or a new company name. When both are
	// absent the profile is created without a company link.
	EmpresaID     *uuid.UUID `json:"empresa_id"`
	EmpresaNombre string     `json:"empresa_nombre"`
}

type LoginResponse struct {
	Token   string   `json:"token"`
	Session *Session `json:"session"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ConfirmResetRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type UpdateProfileRequest struct {
	Nombre    *string    `json:"nombre"`
	Apellido  *string    `json:"apellido"`
	Cargo     *string    `json:"cargo"`
	Telefono  *string    `json:"telefono"`
	EmpresaID *uuid.UUID `json:"empresa_id"`
}

type CreateVehiculoRequest struct {
	Placa       string   `json:"placa" binding:"required"`
	Marca       *string  `json:"marca"`
	Modelo      *string  `json:"modelo"`
	Tipo        *string  `json:"tipo"`
	Capacidad   *float64 `json:"capacidad"`
	Propietario *string  `json:"propietario"`
	Telefono    *string  `json:"telefono"`
}

type UpdateVehiculoRequest struct {
	Placa       *string  `json:"placa"`
	Marca       *string  `json:"marca"`
	Modelo      *string  `json:"modelo"`
	Tipo        *string  `json:"tipo"`
	Capacidad   *float64 `json:"capacidad"`
	Propietario *string  `json:"propietario"`
	Telefono    *string  `json:"telefono"`
}

type CreateViajeRequest struct {
	VehiculoID   uuid.UUID `json:"vehiculo_id" binding:"required"`
	Origen       string    `json:"origen" binding:"required"`
	Destino      string    `json:"destino" binding:"required"`
	FechaSalida  string    `json:"fecha_salida" binding:"required"`
	FechaLlegada *string   `json:"fecha_llegada"`
	Carga        *string   `json:"carga"`
	Conductor    *string   `json:"conductor"`
	Distancia    *float64  `json:"distancia"`
	Estado       string    `json:"estado"`
}

type UpdateViajeRequest struct {
	Origen       *string  `json:"origen"`
	Destino      *string  `json:"destino"`
	FechaSalida  *string  `json:"fecha_salida"`
	FechaLlegada *string  `json:"fecha_llegada"`
	Carga        *string  `json:"carga"`
	Conductor    *string  `json:"conductor"`
	Distancia    *float64 `json:"distancia"`
	Estado       *string  `json:"estado"`
}

type CreateGastoRequest struct {
	VehiculoID  uuid.UUID  `json:"vehiculo_id" binding:"required"`
	ViajeID     *uuid.UUID `json:"viaje_id"`
	Tipo        string     `json:"tipo" binding:"required"`
	Fecha       string     `json:"fecha" binding:"required"`
	Monto       float64    `json:"monto" binding:"required,gt=0"`
	Descripcion *string    `json:"descripcion"`
	Ubicacion   *string    `json:"ubicacion"`
	Kilometraje *float64   `json:"kilometraje"`
}

type UpdateGastoRequest struct {
	Tipo        *string  `json:"tipo"`
	Fecha       *string  `json:"fecha"`
	Monto       *float64 `json:"monto"`
	Descripcion *string  `json:"descripcion"`
	Ubicacion   *string  `json:"ubicacion"`
	Kilometraje *float64 `json:"kilometraje"`
}

type UpdateEmpresaRequest struct {
	Nombre    *string `json:"nombre"`
	NIT       *string `json:"nit"`
	Direccion *string `json:"direccion"`
	Telefono  *string `json:"telefono"`
	Email     *string `json:"email"`
}

type CreateModuloRequest struct {
	Nombre      string  `json:"nombre" binding:"required"`
	Descripcion *string `json:"descripcion"`
	Ruta        string  `json:"ruta" binding:"required"`
	Icono       *string `json:"icono"`
	Activo      *bool   `json:"activo"`
	Orden       int     `json:"orden"`
}

type UpdateModuloRequest struct {
	Nombre      *string `json:"nombre"`
	Descripcion *string `json:"descripcion"`
	Ruta        *string `json:"ruta"`
	Icono       *string `json:"icono"`
	Activo      *bool   `json:"activo"`
	Orden       *int    `json:"orden"`
}

type UpsertPermisoRequest struct {
	Rol      string    `json:"rol" binding:"required"`
	ModuloID uuid.UUID `json:"modulo_id" binding:"required"`
	Crear    bool      `json:"crear"`
	Editar   bool      `json:"editar"`
	Eliminar bool      `json:"eliminar"`
	Ver      bool      `json:"ver"`
}

type UpsertConfiguracionRequest struct {
	Clave       string  `json:"clave" binding:"required"`
	Valor       *string `json:"valor"`
	Descripcion *string `json:"descripcion"`
}

// RPC request bodies mirroring the remote procedures the original front end
// called.
type TienePermisoRequest struct {
	ModuloRuta string `json:"modulo_ruta" binding:"required"`
	Accion     string `json:"accion" binding:"required"`
}

type ModulosPorRolRequest struct {
	RolUsuario string `json:"rol_usuario" binding:"required"`
}
