package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Transporegistros/carga-colombia-track/internal/models"
)

type fakeModuloStore struct {
	activos    []models.Modulo
	porRol     map[string][]models.Modulo
	err        error
	listCalls  int
	rolesAsked []string
}

func (f *fakeModuloStore) ListActivos(ctx context.Context) ([]models.Modulo, error) {
	f.listCalls++
	return f.activos, f.err
}

func (f *fakeModuloStore) ListForRol(ctx context.Context, rol string) ([]models.Modulo, error) {
	f.listCalls++
	f.rolesAsked = append(f.rolesAsked, rol)
	return f.porRol[rol], f.err
}

type fakePermisoStore struct {
	grants map[string]bool // "rol|ruta|accion" -> permitido
	err    error
	calls  int
}

func (f *fakePermisoStore) TienePermiso(ctx context.Context, rol, moduloRuta string, accion models.Accion) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.grants[rol+"|"+moduloRuta+"|"+string(accion)], nil
}

func modulo(nombre, ruta string, orden int) models.Modulo {
	return models.Modulo{ID: uuid.New(), Nombre: nombre, Ruta: ruta, Activo: true, Orden: orden}
}

func TestHasPermissionAdminBypassesBackend(t *testing.T) {
	permisos := &fakePermisoStore{}
	svc := newPermissionService(&fakeModuloStore{}, permisos, nil)

	assert.True(t, svc.HasPermission(context.Background(), models.RolAdmin, "/vehiculos", models.AccionEliminar))
	assert.Equal(t, 0, permisos.calls, "admin verdicts must not touch the store")
}

func TestHasPermissionEmptyRolDenied(t *testing.T) {
	permisos := &fakePermisoStore{}
	svc := newPermissionService(&fakeModuloStore{}, permisos, nil)

	assert.False(t, svc.HasPermission(context.Background(), "", "/vehiculos", models.AccionVer))
	assert.Equal(t, 0, permisos.calls)
}

func TestHasPermissionInvalidAccionDenied(t *testing.T) {
	permisos := &fakePermisoStore{grants: map[string]bool{"usuario|/vehiculos|destruir": true}}
	svc := newPermissionService(&fakeModuloStore{}, permisos, nil)

	assert.False(t, svc.HasPermission(context.Background(), "usuario", "/vehiculos", models.Accion("destruir")))
	assert.Equal(t, 0, permisos.calls)
}

func TestHasPermissionFailsClosedOnStoreError(t *testing.T) {
	permisos := &fakePermisoStore{err: errors.New("connection refused")}
	svc := newPermissionService(&fakeModuloStore{}, permisos, nil)

	assert.False(t, svc.HasPermission(context.Background(), "usuario", "/vehiculos", models.AccionVer))
}

func TestHasPermissionActionsIndependent(t *testing.T) {
	permisos := &fakePermisoStore{grants: map[string]bool{
		"supervisor|/vehiculos|ver":    true,
		"supervisor|/vehiculos|editar": true,
	}}
	svc := newPermissionService(&fakeModuloStore{}, permisos, nil)

	ctx := context.Background()
	assert.True(t, svc.HasPermission(ctx, "supervisor", "/vehiculos", models.AccionVer))
	assert.True(t, svc.HasPermission(ctx, "supervisor", "/vehiculos", models.AccionEditar))
	assert.False(t, svc.HasPermission(ctx, "supervisor", "/vehiculos", models.AccionCrear))
	assert.False(t, svc.HasPermission(ctx, "supervisor", "/vehiculos", models.AccionEliminar))
}

func TestListModulesAdminSeesAllActive(t *testing.T) {
	modulos := &fakeModuloStore{activos: []models.Modulo{
		modulo("Dashboard", "/", 1),
		modulo("Vehículos", "/vehiculos", 2),
	}}
	svc := newPermissionService(modulos, &fakePermisoStore{}, nil)

	result := svc.ListModules(context.Background(), models.RolAdmin)

	assert.Len(t, result, 2)
	assert.Empty(t, modulos.rolesAsked, "admin listing must not filter by role")
}

func TestListModulesFiltersByRol(t *testing.T) {
	modulos := &fakeModuloStore{porRol: map[string][]models.Modulo{
		"usuario": {modulo("Viajes", "/viajes", 3)},
	}}
	svc := newPermissionService(modulos, &fakePermisoStore{}, nil)

	result := svc.ListModules(context.Background(), "usuario")

	assert.Len(t, result, 1)
	assert.Equal(t, "/viajes", result[0].Ruta)
	assert.Equal(t, []string{"usuario"}, modulos.rolesAsked)
}

func TestListModulesFailsOpenToEmpty(t *testing.T) {
	modulos := &fakeModuloStore{err: errors.New("timeout")}
	svc := newPermissionService(modulos, &fakePermisoStore{}, nil)

	result := svc.ListModules(context.Background(), "usuario")

	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestListModulesEmptyRol(t *testing.T) {
	modulos := &fakeModuloStore{}
	svc := newPermissionService(modulos, &fakePermisoStore{}, nil)

	assert.Empty(t, svc.ListModules(context.Background(), ""))
	assert.Equal(t, 0, modulos.listCalls)
}
