package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Transporegistros/carga-colombia-track/internal/models"
)

func menuServiceWith(modulos []models.Modulo) *MenuService {
	store := &fakeModuloStore{activos: modulos}
	return NewMenuService(newPermissionService(store, &fakePermisoStore{}, nil))
}

func TestMenuBuildSortsByOrden(t *testing.T) {
	m1 := modulo("Gastos", "/gastos", 30)
	m2 := modulo("Dashboard", "/", 10)
	m3 := modulo("Viajes", "/viajes", 20)

	menu := menuServiceWith([]models.Modulo{m1, m2, m3})

	items := menu.Build(context.Background(), models.RolAdmin, "/")

	require.Len(t, items, 3)
	assert.Equal(t, "/", items[0].Ruta)
	assert.Equal(t, "/viajes", items[1].Ruta)
	assert.Equal(t, "/gastos", items[2].Ruta)
}

func TestMenuBuildFlagsCurrentRoute(t *testing.T) {
	menu := menuServiceWith([]models.Modulo{
		modulo("Dashboard", "/", 1),
		modulo("Viajes", "/viajes", 2),
	})

	items := menu.Build(context.Background(), models.RolAdmin, "/viajes")

	require.Len(t, items, 2)
	assert.False(t, items[0].Actual)
	assert.True(t, items[1].Actual)
}

func TestMenuBuildResolvesIcons(t *testing.T) {
	truck := "Truck"
	unknown := "NoSuchIcon"

	m1 := modulo("Vehículos", "/vehiculos", 1)
	m1.Icono = &truck
	m2 := modulo("Gastos", "/gastos", 2)
	m2.Icono = &unknown
	m3 := modulo("Viajes", "/viajes", 3) // no icon at all

	menu := menuServiceWith([]models.Modulo{m1, m2, m3})

	items := menu.Build(context.Background(), models.RolAdmin, "")

	require.Len(t, items, 3)
	assert.Equal(t, models.IconTruck, items[0].Icono)
	assert.Equal(t, models.IconDefault, items[1].Icono, "unknown icon keys fall back to the default")
	assert.Equal(t, models.IconDefault, items[2].Icono, "missing icon keys fall back to the default")
}

func TestMenuBuildEmptyRol(t *testing.T) {
	menu := menuServiceWith([]models.Modulo{modulo("Dashboard", "/", 1)})

	items := menu.Build(context.Background(), "", "/")

	assert.NotNil(t, items)
	assert.Empty(t, items)
}
