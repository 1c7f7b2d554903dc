package services

import (
	"context"
	"sort"

	"github.com/Transporegistros/carga-colombia-track/internal/models"
)

// MenuService turns the resolved module list into a render-ready menu:
// icon keys mapped through the known-icon table with a guaranteed default,
// entries sorted by orden, and the item matching the current route flagged.
type MenuService struct {
	permisos *PermissionService
}

func NewMenuService(permisos *PermissionService) *MenuService {
	return &MenuService{permisos: permisos}
}

// Build assembles the navigation menu for a role. An unresolvable icon
// never drops the item; it renders with the default icon instead.
func (s *MenuService) Build(ctx context.Context, rol, rutaActual string) []models.MenuItem {
	modulos := s.permisos.ListModules(ctx, rol)

	items := make([]models.MenuItem, 0, len(modulos))
	for _, m := range modulos {
		item := models.MenuItem{
			ID:     m.ID,
			Nombre: m.Nombre,
			Ruta:   m.Ruta,
			Icono:  models.ResolveIcon(m.Icono),
			Orden:  m.Orden,
			Actual: m.Ruta == rutaActual,
		}
		if m.Descripcion != nil {
			item.Descripcion = *m.Descripcion
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Orden < items[j].Orden
	})

	return items
}
