package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Transporegistros/carga-colombia-track/internal/config"
	"github.com/Transporegistros/carga-colombia-track/internal/models"
	"github.com/Transporegistros/carga-colombia-track/internal/notifier"
	"github.com/Transporegistros/carga-colombia-track/internal/repository"
	"github.com/Transporegistros/carga-colombia-track/internal/utils"
)

type fakeUsuarioStore struct {
	byEmail   map[string]*models.Usuario
	byID      map[uuid.UUID]*models.Usuario
	createErr error
	passwords map[uuid.UUID]string
}

func newFakeUsuarioStore() *fakeUsuarioStore {
	return &fakeUsuarioStore{
		byEmail:   map[string]*models.Usuario{},
		byID:      map[uuid.UUID]*models.Usuario{},
		passwords: map[uuid.UUID]string{},
	}
}

func (f *fakeUsuarioStore) Create(ctx context.Context, email, passwordHash string) (*models.Usuario, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[email]; ok {
		return nil, repository.ErrEmailEnUso
	}
	u := &models.Usuario{ID: uuid.New(), Email: email, PasswordHash: passwordHash}
	f.byEmail[email] = u
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsuarioStore) GetByEmail(ctx context.Context, email string) (*models.Usuario, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, errors.New("no rows")
	}
	return u, nil
}

func (f *fakeUsuarioStore) GetByID(ctx context.Context, userID uuid.UUID) (*models.Usuario, error) {
	u, ok := f.byID[userID]
	if !ok {
		return nil, errors.New("no rows")
	}
	return u, nil
}

func (f *fakeUsuarioStore) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	f.passwords[userID] = passwordHash
	return nil
}

type fakePerfilStore struct {
	perfiles  map[uuid.UUID]*models.Perfil
	getErr    error
	insertErr error
	getCalls  int
}

func newFakePerfilStore() *fakePerfilStore {
	return &fakePerfilStore{perfiles: map[uuid.UUID]*models.Perfil{}}
}

func (f *fakePerfilStore) Get(ctx context.Context, userID uuid.UUID) (*models.Perfil, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.perfiles[userID]
	if !ok {
		return nil, errors.New("no rows")
	}
	return p, nil
}

func (f *fakePerfilStore) Insert(ctx context.Context, perfil *models.Perfil) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.perfiles[perfil.ID] = perfil
	return nil
}

func (f *fakePerfilStore) Upsert(ctx context.Context, userID uuid.UUID, req *models.UpdateProfileRequest) (*models.Perfil, error) {
	p, ok := f.perfiles[userID]
	if !ok {
		p = &models.Perfil{ID: userID}
		f.perfiles[userID] = p
	}
	if req.Nombre != nil {
		p.Nombre = req.Nombre
	}
	if req.Cargo != nil {
		p.Cargo = req.Cargo
	}
	if req.EmpresaID != nil {
		p.EmpresaID = req.EmpresaID
	}
	return p, nil
}

func (f *fakePerfilStore) TouchUltimaConexion(ctx context.Context, userID uuid.UUID) error {
	return nil
}

type fakeEmpresaStore struct {
	createErr error
	created   []string
}

func (f *fakeEmpresaStore) Create(ctx context.Context, nombre, email string) (*models.Empresa, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, nombre)
	return &models.Empresa{ID: uuid.New(), Nombre: nombre, Activa: true}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpirationHours: 1},
	}
}

func testSessionService(usuarios *fakeUsuarioStore, perfiles *fakePerfilStore, empresas *fakeEmpresaStore) *SessionService {
	return newSessionService(usuarios, perfiles, empresas, nil, notifier.NewLogNotifier(), testConfig())
}

func seedUser(t *testing.T, usuarios *fakeUsuarioStore, email, password string) *models.Usuario {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	u, err := usuarios.Create(context.Background(), email, hash)
	require.NoError(t, err)
	return u
}

func TestLoginSuccess(t *testing.T) {
	usuarios := newFakeUsuarioStore()
	perfiles := newFakePerfilStore()
	u := seedUser(t, usuarios, "maria@flota.co", "secreto123")

	cargo := models.RolSupervisor
	nombre := "María"
	empresaID := uuid.New()
	perfiles.perfiles[u.ID] = &models.Perfil{ID: u.ID, Nombre: &nombre, Cargo: &cargo, EmpresaID: &empresaID}

	svc := testSessionService(usuarios, perfiles, &fakeEmpresaStore{})

	token, session, err := svc.Login(context.Background(), "Maria@Flota.co ", "secreto123")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, u.ID, session.UserID)
	assert.Equal(t, "María", session.Nombre)
	assert.Equal(t, models.RolSupervisor, session.Rol)
	assert.Equal(t, &empresaID, session.EmpresaID)
	assert.Equal(t, models.AuthStateAuthenticated, session.State)
}

func TestLoginWrongPassword(t *testing.T) {
	usuarios := newFakeUsuarioStore()
	seedUser(t, usuarios, "maria@flota.co", "secreto123")

	svc := testSessionService(usuarios, newFakePerfilStore(), &fakeEmpresaStore{})

	_, _, err := svc.Login(context.Background(), "maria@flota.co", "incorrecto")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := testSessionService(newFakeUsuarioStore(), newFakePerfilStore(), &fakeEmpresaStore{})

	_, _, err := svc.Login(context.Background(), "nadie@flota.co", "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHydrateInvalidToken(t *testing.T) {
	svc := testSessionService(newFakeUsuarioStore(), newFakePerfilStore(), &fakeEmpresaStore{})

	_, err := svc.Hydrate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestHydratePartialSessionOnProfileFailure(t *testing.T) {
	usuarios := newFakeUsuarioStore()
	perfiles := newFakePerfilStore()
	perfiles.getErr = errors.New("profile backend down")
	u := seedUser(t, usuarios, "carlos@flota.co", "secreto123")

	svc := testSessionService(usuarios, perfiles, &fakeEmpresaStore{})

	token, err := utils.GenerateJWT(u.ID, u.Email, testConfig())
	require.NoError(t, err)

	session, err := svc.Hydrate(context.Background(), token)

	require.NoError(t, err, "a broken profile read must not log the user out")
	assert.Equal(t, u.ID, session.UserID)
	assert.Equal(t, "carlos", session.Nombre, "name falls back to the email local part")
	assert.Empty(t, session.Rol)
	assert.Nil(t, session.EmpresaID)
	assert.Equal(t, models.AuthStateAuthenticated, session.State)
}

func TestHydrateDefaultsRolUsuario(t *testing.T) {
	usuarios := newFakeUsuarioStore()
	perfiles := newFakePerfilStore()
	u := seedUser(t, usuarios, "ana@flota.co", "secreto123")
	perfiles.perfiles[u.ID] = &models.Perfil{ID: u.ID}

	svc := testSessionService(usuarios, perfiles, &fakeEmpresaStore{})

	token, err := utils.GenerateJWT(u.ID, u.Email, testConfig())
	require.NoError(t, err)

	session, err := svc.Hydrate(context.Background(), token)

	require.NoError(t, err)
	assert.Equal(t, models.RolUsuario, session.Rol)
}

func TestHydrateCachesUntilInvalidated(t *testing.T) {
	usuarios := newFakeUsuarioStore()
	perfiles := newFakePerfilStore()
	u := seedUser(t, usuarios, "ana@flota.co", "secreto123")
	perfiles.perfiles[u.ID] = &models.Perfil{ID: u.ID}

	svc := testSessionService(usuarios, perfiles, &fakeEmpresaStore{})

	token, err := utils.GenerateJWT(u.ID, u.Email, testConfig())
	require.NoError(t, err)

	ctx := context.Background()
	_, err = svc.Hydrate(ctx, token)
	require.NoError(t, err)
	_, err = svc.Hydrate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 1, perfiles.getCalls, "second hydration must hit the cache")

	svc.invalidateUser(u.ID)

	_, err = svc.Hydrate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 2, perfiles.getCalls, "invalidation must force a re-hydration")
}

func TestHydrateSweepsAbandonedTokens(t *testing.T) {
	usuarios := newFakeUsuarioStore()
	perfiles := newFakePerfilStore()
	u := seedUser(t, usuarios, "ana@flota.co", "secreto123")
	perfiles.perfiles[u.ID] = &models.Perfil{ID: u.ID}

	svc := testSessionService(usuarios, perfiles, &fakeEmpresaStore{})

	// Simulate a long-running instance that hydrated many tokens whose
	// expiry has since passed.
	svc.mu.Lock()
	for i := 0; i < 50; i++ {
		svc.sessions[fmt.Sprintf("stale-token-%d", i)] = cachedSession{
			session:   models.Session{UserID: u.ID, State: models.AuthStateAuthenticated},
			expiresAt: time.Now().Add(-time.Minute),
		}
	}
	svc.mu.Unlock()

	token, err := utils.GenerateJWT(u.ID, u.Email, testConfig())
	require.NoError(t, err)

	_, err = svc.Hydrate(context.Background(), token)
	require.NoError(t, err)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Len(t, svc.sessions, 1, "expired entries must not outlive their tokens")
}

func TestLogoutClearsUnconditionally(t *testing.T) {
	usuarios := newFakeUsuarioStore()
	perfiles := newFakePerfilStore()
	u := seedUser(t, usuarios, "ana@flota.co", "secreto123")
	perfiles.perfiles[u.ID] = &models.Perfil{ID: u.ID}

	svc := testSessionService(usuarios, perfiles, &fakeEmpresaStore{})

	token, err := utils.GenerateJWT(u.ID, u.Email, testConfig())
	require.NoError(t, err)

	ctx := context.Background()
	_, err = svc.Hydrate(ctx, token)
	require.NoError(t, err)

	svc.Logout(ctx, token)

	_, err = svc.Hydrate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 2, perfiles.getCalls, "logout must drop the cached session")
}

func TestLogoutWithGarbageTokenDoesNotPanic(t *testing.T) {
	svc := testSessionService(newFakeUsuarioStore(), newFakePerfilStore(), &fakeEmpresaStore{})

	svc.Logout(context.Background(), "garbage")
}

func TestSignUpCreatesCompanyAndProfile(t *testing.T) {
	usuarios := newFakeUsuarioStore()
	perfiles := newFakePerfilStore()
	empresas := &fakeEmpresaStore{}

	svc := testSessionService(usuarios, perfiles, empresas)

	token, session, err := svc.SignUp(context.Background(), &models.RegisterRequest{
		Email:         "Nueva@Flota.co",
		Password:      "secreto123",
		Nombre:        "Laura",
		EmpresaNombre: "Transportes Andinos",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, []string{"Transportes Andinos"}, empresas.created)
	assert.NotNil(t, session.EmpresaID)
	assert.Equal(t, models.RolUsuario, session.Rol)
	assert.Equal(t, "Laura", session.Nombre)

	perfil, ok := perfiles.perfiles[session.UserID]
	require.True(t, ok)
	assert.Equal(t, session.EmpresaID, perfil.EmpresaID)

	_, ok = usuarios.byEmail["nueva@flota.co"]
	assert.True(t, ok, "email must be normalized before the insert")
}

func TestSignUpDuplicateEmail(t *testing.T) {
	usuarios := newFakeUsuarioStore()
	seedUser(t, usuarios, "laura@flota.co", "secreto123")

	svc := testSessionService(usuarios, newFakePerfilStore(), &fakeEmpresaStore{})

	_, _, err := svc.SignUp(context.Background(), &models.RegisterRequest{
		Email:    "laura@flota.co",
		Password: "secreto123",
	})

	assert.ErrorIs(t, err, ErrEmailRegistered)
}

func TestSignUpPartialFailureAtEmpresa(t *testing.T) {
	usuarios := newFakeUsuarioStore()
	empresas := &fakeEmpresaStore{createErr: errors.New("insert failed")}

	svc := testSessionService(usuarios, newFakePerfilStore(), empresas)

	_, _, err := svc.SignUp(context.Background(), &models.RegisterRequest{
		Email:         "laura@flota.co",
		Password:      "secreto123",
		EmpresaNombre: "Transportes Andinos",
	})

	var partial *PartialSignupError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, "empresa", partial.Step)
	assert.NotEqual(t, uuid.Nil, partial.UserID)

	// No rollback: the identity survives the failed step.
	_, ok := usuarios.byEmail["laura@flota.co"]
	assert.True(t, ok)
}

func TestSignUpPartialFailureAtPerfil(t *testing.T) {
	usuarios := newFakeUsuarioStore()
	perfiles := newFakePerfilStore()
	perfiles.insertErr = errors.New("insert failed")

	svc := testSessionService(usuarios, perfiles, &fakeEmpresaStore{})

	_, _, err := svc.SignUp(context.Background(), &models.RegisterRequest{
		Email:         "laura@flota.co",
		Password:      "secreto123",
		EmpresaNombre: "Transportes Andinos",
	})

	var partial *PartialSignupError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, "perfil", partial.Step)
	assert.NotNil(t, partial.EmpresaID, "the created company travels with the error")
}

func TestUpdateProfileRequiresSession(t *testing.T) {
	svc := testSessionService(newFakeUsuarioStore(), newFakePerfilStore(), &fakeEmpresaStore{})

	_, err := svc.UpdateProfile(context.Background(), nil, &models.UpdateProfileRequest{})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestUpdateProfileMergesOptimistically(t *testing.T) {
	usuarios := newFakeUsuarioStore()
	perfiles := newFakePerfilStore()
	u := seedUser(t, usuarios, "ana@flota.co", "secreto123")
	perfiles.perfiles[u.ID] = &models.Perfil{ID: u.ID}

	svc := testSessionService(usuarios, perfiles, &fakeEmpresaStore{})

	session := &models.Session{
		UserID: u.ID,
		Email:  u.Email,
		Nombre: "ana",
		Rol:    models.RolUsuario,
		State:  models.AuthStateAuthenticated,
	}

	nombre := "Ana María"
	cargo := models.RolSupervisor
	updated, err := svc.UpdateProfile(context.Background(), session, &models.UpdateProfileRequest{
		Nombre: &nombre,
		Cargo:  &cargo,
	})

	require.NoError(t, err)
	assert.Equal(t, "Ana María", updated.Nombre)
	assert.Equal(t, models.RolSupervisor, updated.Rol)
	assert.Equal(t, "ana", session.Nombre, "the original session is not mutated")
}

func TestConfirmResetWithoutRedis(t *testing.T) {
	svc := testSessionService(newFakeUsuarioStore(), newFakePerfilStore(), &fakeEmpresaStore{})

	err := svc.ConfirmReset(context.Background(), "whatever", "nuevaclave123")
	assert.ErrorIs(t, err, ErrResetCodeInvalid)
}

func TestResetPasswordUnknownEmailIsSilent(t *testing.T) {
	svc := testSessionService(newFakeUsuarioStore(), newFakePerfilStore(), &fakeEmpresaStore{})

	// Must not error or panic; the caller reports success either way.
	svc.ResetPassword(context.Background(), "nadie@flota.co")
}
