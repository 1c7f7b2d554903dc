package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveIcon(t *testing.T) {
	truck := "Truck"
	unknown := "Sparkles"
	empty := ""

	assert.Equal(t, IconTruck, ResolveIcon(&truck))
	assert.Equal(t, IconDefault, ResolveIcon(&unknown))
	assert.Equal(t, IconDefault, ResolveIcon(&empty))
	assert.Equal(t, IconDefault, ResolveIcon(nil))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Ana", DisplayName("Ana", "ana@flota.co"))
	assert.Equal(t, "ana", DisplayName("", "ana@flota.co"))
	assert.Equal(t, "sin-arroba", DisplayName("", "sin-arroba"))
	assert.Equal(t, "@flota.co", DisplayName("", "@flota.co"))
}

func TestSessionIsAdmin(t *testing.T) {
	admin := &Session{Rol: RolAdmin, State: AuthStateAuthenticated}
	assert.True(t, admin.IsAdmin())

	notHydrated := &Session{Rol: RolAdmin, State: AuthStateUnknown}
	assert.False(t, notHydrated.IsAdmin(), "an unresolved session never carries admin power")

	var nilSession *Session
	assert.False(t, nilSession.IsAdmin())
}

func TestPermisoRolAllows(t *testing.T) {
	p := &PermisoRol{Ver: true, Editar: true}

	assert.True(t, p.Allows(AccionVer))
	assert.True(t, p.Allows(AccionEditar))
	assert.False(t, p.Allows(AccionCrear))
	assert.False(t, p.Allows(AccionEliminar))
	assert.False(t, p.Allows(Accion("destruir")))
}

func TestAccionValid(t *testing.T) {
	for _, a := range []Accion{AccionCrear, AccionEditar, AccionEliminar, AccionVer} {
		assert.True(t, a.Valid())
	}
	assert.False(t, Accion("").Valid())
	assert.False(t, Accion("admin").Valid())
}

func TestViajeEstadoValid(t *testing.T) {
	assert.True(t, ViajeEnCurso.Valid())
	assert.False(t, ViajeEstado("terminado").Valid())
}

func TestGastoTipoValid(t *testing.T) {
	assert.True(t, GastoCombustible.Valid())
	assert.False(t, GastoTipo("gasolina").Valid())
}
