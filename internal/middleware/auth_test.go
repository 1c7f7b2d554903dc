package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Transporegistros/carga-colombia-track/internal/models"
	"github.com/Transporegistros/carga-colombia-track/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext(t *testing.T, method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, w
}

func authedSession(rol string, empresaID *uuid.UUID) *models.Session {
	return &models.Session{
		UserID:    uuid.New(),
		Email:     "test@flota.co",
		Nombre:    "test",
		Rol:       rol,
		EmpresaID: empresaID,
		State:     models.AuthStateAuthenticated,
	}
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	c, w := testContext(t, http.MethodGet, "/api/v1/vehiculos?estado=activo")

	AuthMiddleware(&services.SessionService{})(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "login_url")
	assert.Contains(t, w.Body.String(), "%2Fapi%2Fv1%2Fvehiculos%3Festado%3Dactivo",
		"the requested path must survive the redirect round trip")
}

func TestAuthMiddlewareBadFormat(t *testing.T) {
	c, w := testContext(t, http.MethodGet, "/api/v1/menu")
	c.Request.Header.Set("Authorization", "Token abc")

	AuthMiddleware(&services.SessionService{})(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionFromWithoutMiddleware(t *testing.T) {
	c, _ := testContext(t, http.MethodGet, "/")

	assert.Nil(t, SessionFrom(c))
	assert.Empty(t, TokenFrom(c))
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	c, w := testContext(t, http.MethodGet, "/api/v1/auditoria")
	c.Set(sessionKey, authedSession(models.RolAdmin, nil))

	RequireAdmin()(c)

	assert.False(t, c.IsAborted())
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdminRejectsOthers(t *testing.T) {
	for _, rol := range []string{models.RolSupervisor, models.RolUsuario, ""} {
		c, w := testContext(t, http.MethodGet, "/api/v1/auditoria")
		c.Set(sessionKey, authedSession(rol, nil))

		RequireAdmin()(c)

		assert.True(t, c.IsAborted(), "rol %q must be rejected", rol)
		assert.Equal(t, http.StatusForbidden, w.Code)
	}
}

func TestRequireAdminRejectsMissingSession(t *testing.T) {
	c, w := testContext(t, http.MethodGet, "/api/v1/auditoria")

	RequireAdmin()(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireEmpresaRejectsPartialSession(t *testing.T) {
	c, w := testContext(t, http.MethodGet, "/api/v1/vehiculos")
	c.Set(sessionKey, authedSession(models.RolUsuario, nil))

	RequireEmpresa()(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireEmpresaAllowsLinkedSession(t *testing.T) {
	empresaID := uuid.New()
	c, _ := testContext(t, http.MethodGet, "/api/v1/vehiculos")
	c.Set(sessionKey, authedSession(models.RolUsuario, &empresaID))

	RequireEmpresa()(c)

	assert.False(t, c.IsAborted())
}

func TestRequirePermissionAdminBypass(t *testing.T) {
	c, _ := testContext(t, http.MethodDelete, "/api/v1/vehiculos/x")
	c.Set(sessionKey, authedSession(models.RolAdmin, nil))

	// Admin never reaches the stores, so empty service wiring is safe here.
	perms := services.NewPermissionService(nil, nil, nil)
	RequirePermission(perms, "/vehiculos", models.AccionEliminar)(c)

	assert.False(t, c.IsAborted())
}

func TestRequirePermissionUnauthenticated(t *testing.T) {
	c, w := testContext(t, http.MethodGet, "/api/v1/vehiculos")

	perms := services.NewPermissionService(nil, nil, nil)
	RequirePermission(perms, "/vehiculos", models.AccionVer)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
