package models

import (
	"time"

	"github.com/google/uuid"
)

type Empresa struct {
	ID        uuid.UUID `json:"id"`
	Nombre    string    `json:"nombre"`
	NIT       *string   `json:"nit,omitempty"`
	Direccion *string   `json:"direccion,omitempty"`
	Telefono  *string   `json:"telefono,omitempty"`
	Email     *string   `json:"email,omitempty"`
	LogoURL   *string   `json:"logo_url,omitempty"`
	Activa    bool      `json:"activa"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Vehiculo struct {
	ID          uuid.UUID  `json:"id"`
	EmpresaID   uuid.UUID  `json:"empresa_id"`
	Placa       string     `json:"placa"`
	Marca       *string    `json:"marca,omitempty"`
	Modelo      *string    `json:"modelo,omitempty"`
	Tipo        *string    `json:"tipo,omitempty"`
	Capacidad   *float64   `json:"capacidad,omitempty"`
	Propietario *string    `json:"propietario,omitempty"`
	Telefono    *string    `json:"telefono,omitempty"`
	Imagen      *string    `json:"imagen,omitempty"`
	CreatedBy   *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ViajeEstado is the trip lifecycle state.
type ViajeEstado string

const (
	ViajePendiente  ViajeEstado = "pendiente"
	ViajeEnCurso    ViajeEstado = "en-curso"
	ViajeCompletado ViajeEstado = "completado"
	ViajeCancelado  ViajeEstado = "cancelado"
)

func (e ViajeEstado) Valid() bool {
	switch e {
	case ViajePendiente, ViajeEnCurso, ViajeCompletado, ViajeCancelado:
		return true
	}
	return false
}

type Viaje struct {
	ID           uuid.UUID   `json:"id"`
	EmpresaID    uuid.UUID   `json:"empresa_id"`
	VehiculoID   uuid.UUID   `json:"vehiculo_id"`
	Origen       string      `json:"origen"`
	Destino      string      `json:"destino"`
	FechaSalida  time.Time   `json:"fecha_salida"`
	FechaLlegada *time.Time  `json:"fecha_llegada,omitempty"`
	Carga        *string     `json:"carga,omitempty"`
	Conductor    *string     `json:"conductor,omitempty"`
	Distancia    *float64    `json:"distancia,omitempty"`
	Estado       ViajeEstado `json:"estado"`
	CreatedBy    *uuid.UUID  `json:"created_by,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// GastoTipo classifies a trip expense.
type GastoTipo string

const (
	GastoCombustible   GastoTipo = "combustible"
	GastoPeaje         GastoTipo = "peaje"
	GastoAlimentacion  GastoTipo = "alimentacion"
	GastoHospedaje     GastoTipo = "hospedaje"
	GastoMantenimiento GastoTipo = "mantenimiento"
	GastoOtro          GastoTipo = "otro"
)

func (t GastoTipo) Valid() bool {
	switch t {
	case GastoCombustible, GastoPeaje, GastoAlimentacion,
		GastoHospedaje, GastoMantenimiento, GastoOtro:
		return true
	}
	return false
}

type Gasto struct {
	ID             uuid.UUID  `json:"id"`
	EmpresaID      uuid.UUID  `json:"empresa_id"`
	VehiculoID     uuid.UUID  `json:"vehiculo_id"`
	ViajeID        *uuid.UUID `json:"viaje_id,omitempty"`
	Tipo           GastoTipo  `json:"tipo"`
	Fecha          time.Time  `json:"fecha"`
	Monto          float64    `json:"monto"`
	Descripcion    *string    `json:"descripcion,omitempty"`
	Ubicacion      *string    `json:"ubicacion,omitempty"`
	Kilometraje    *float64   `json:"kilometraje,omitempty"`
	ComprobanteURL *string    `json:"comprobante_url,omitempty"`
	CreatedBy      *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ResumenEmpresa is the dashboard aggregate for one company.
type ResumenEmpresa struct {
	TotalVehiculos int     `json:"total_vehiculos"`
	ViajesActivos  int     `json:"viajes_activos"`
	GastosMes      float64 `json:"gastos_mes"`
	CombustibleMes float64 `json:"combustible_mes"`
}
