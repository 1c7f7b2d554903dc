package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Transporegistros/carga-colombia-track/internal/cache"
	"github.com/Transporegistros/carga-colombia-track/internal/models"
	"github.com/Transporegistros/carga-colombia-track/internal/repository"
)

const permisoCacheTTL = 5 * time.Minute

type moduloStore interface {
	ListActivos(ctx context.Context) ([]models.Modulo, error)
	ListForRol(ctx context.Context, rol string) ([]models.Modulo, error)
}

type permisoStore interface {
	TienePermiso(ctx context.Context, rol, moduloRuta string, accion models.Accion) (bool, error)
}

// PermissionService answers two questions: what can this role see, and can
// this role do X to Y. Visibility listing fails open to an empty list (a
// broken matrix must not crash navigation); action checks fail closed to
// false (uncertainty denies, never grants).
type PermissionService struct {
	modulos  moduloStore
	permisos permisoStore
	redis    *cache.Client
}

func NewPermissionService(modulos *repository.ModuloRepository, permisos *repository.PermisoRepository, redisClient *cache.Client) *PermissionService {
	return newPermissionService(modulos, permisos, redisClient)
}

func newPermissionService(modulos moduloStore, permisos permisoStore, redisClient *cache.Client) *PermissionService {
	return &PermissionService{
		modulos:  modulos,
		permisos: permisos,
		redis:    redisClient,
	}
}

// HasPermission reports whether the role may perform the action on the
// module identified by its route. Admin is granted everything without a
// single backend call.
func (s *PermissionService) HasPermission(ctx context.Context, rol, moduloRuta string, accion models.Accion) bool {
	if rol == models.RolAdmin {
		return true
	}
	if rol == "" || !accion.Valid() {
		return false
	}

	if s.redis != nil {
		value, err := s.redis.GetPermiso(ctx, rol, moduloRuta, string(accion))
		if err == nil {
			return value == "1"
		}
		if err != redis.Nil {
			logrus.WithError(err).Warn("permiso cache read failed")
		}
	}

	permitido, err := s.permisos.TienePermiso(ctx, rol, moduloRuta, accion)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"rol": rol, "ruta": moduloRuta, "accion": accion,
		}).Error("permission check failed, denying")
		return false
	}

	if s.redis != nil {
		if err := s.redis.SetPermiso(ctx, rol, moduloRuta, string(accion), permitido, permisoCacheTTL); err != nil {
			logrus.WithError(err).Warn("permiso cache write failed")
		}
	}

	return permitido
}

// ListModules returns the modules visible to a role, active only, ordered
// by orden ascending. Admin sees every active module. Failures are logged
// and produce an empty list, never an error.
func (s *PermissionService) ListModules(ctx context.Context, rol string) []models.Modulo {
	if rol == "" {
		return []models.Modulo{}
	}

	var (
		modulos []models.Modulo
		err     error
	)
	if rol == models.RolAdmin {
		modulos, err = s.modulos.ListActivos(ctx)
	} else {
		modulos, err = s.modulos.ListForRol(ctx, rol)
	}

	if err != nil {
		logrus.WithError(err).WithField("rol", rol).Error("module listing failed")
		return []models.Modulo{}
	}
	if modulos == nil {
		modulos = []models.Modulo{}
	}

	return modulos
}

// InvalidateRole drops cached verdicts for a role after the matrix changed.
func (s *PermissionService) InvalidateRole(ctx context.Context, rol string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.InvalidatePermisos(ctx, rol); err != nil {
		logrus.WithError(err).WithField("rol", rol).Warn("permiso cache invalidation failed")
	}
}

// InvalidateAll drops cached verdicts for every role. Module edits touch the
// whole matrix and the role set is open, so there is no list to walk.
func (s *PermissionService) InvalidateAll(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.InvalidateAllPermisos(ctx); err != nil {
		logrus.WithError(err).Warn("permiso cache invalidation failed")
	}
}
