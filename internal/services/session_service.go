package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Transporegistros/carga-colombia-track/internal/cache"
	"github.com/Transporegistros/carga-colombia-track/internal/config"
	"github.com/Transporegistros/carga-colombia-track/internal/models"
	"github.com/Transporegistros/carga-colombia-track/internal/notifier"
	"github.com/Transporegistros/carga-colombia-track/internal/repository"
	"github.com/Transporegistros/carga-colombia-track/internal/utils"
)

const resetCodeTTL = 30 * time.Minute

type usuarioStore interface {
	Create(ctx context.Context, email, passwordHash string) (*models.Usuario, error)
	GetByEmail(ctx context.Context, email string) (*models.Usuario, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*models.Usuario, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

type perfilStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Perfil, error)
	Insert(ctx context.Context, perfil *models.Perfil) error
	Upsert(ctx context.Context, userID uuid.UUID, req *models.UpdateProfileRequest) (*models.Perfil, error)
	TouchUltimaConexion(ctx context.Context, userID uuid.UUID) error
}

type empresaStore interface {
	Create(ctx context.Context, nombre, email string) (*models.Empresa, error)
}

type cachedSession struct {
	session   models.Session
	gen       uint64
	expiresAt time.Time
}

// SessionService is the single source of truth for "who is logged in and
// what do they look like". It hydrates sessions from bearer tokens, caches
// them per token, and listens for invalidation events so a session revoked
// on one instance dies on all of them.
type SessionService struct {
	usuarios usuarioStore
	perfiles perfilStore
	empresas empresaStore
	redis    *cache.Client
	notifier notifier.Notifier
	cfg      *config.Config

	mu       sync.Mutex
	sessions map[string]cachedSession // token -> hydrated session
	gens     map[uuid.UUID]uint64     // user -> invalidation generation
}

func NewSessionService(
	usuarios *repository.UsuarioRepository,
	perfiles *repository.PerfilRepository,
	empresas *repository.EmpresaRepository,
	redisClient *cache.Client,
	n notifier.Notifier,
	cfg *config.Config,
) *SessionService {
	return newSessionService(usuarios, perfiles, empresas, redisClient, n, cfg)
}

func newSessionService(
	usuarios usuarioStore,
	perfiles perfilStore,
	empresas empresaStore,
	redisClient *cache.Client,
	n notifier.Notifier,
	cfg *config.Config,
) *SessionService {
	return &SessionService{
		usuarios: usuarios,
		perfiles: perfiles,
		empresas: empresas,
		redis:    redisClient,
		notifier: n,
		cfg:      cfg,
		sessions: map[string]cachedSession{},
		gens:     map[uuid.UUID]uint64{},
	}
}

// Hydrate resolves a bearer token into a Session. A valid token whose
// profile cannot be read still yields a partial session (user id and email
// from the token, no role or company) so the caller can at least log out.
// Stale in-flight hydrations never overwrite state set after a newer
// invalidation event.
func (s *SessionService) Hydrate(ctx context.Context, token string) (*models.Session, error) {
	claims, err := utils.ValidateJWT(token, s.cfg)
	if err != nil {
		return nil, ErrNotAuthenticated
	}

	if s.redis != nil {
		revoked, err := s.redis.IsTokenRevoked(ctx, claims.ID)
		if err != nil {
			// Redis being down must not lock every user out; the token
			// signature already proved identity.
			logrus.WithError(err).Warn("revocation check failed")
		} else if revoked {
			return nil, ErrNotAuthenticated
		}
	}

	now := time.Now()

	s.mu.Lock()
	gen := s.gens[claims.UserID]
	if cached, ok := s.sessions[token]; ok && cached.gen == gen && now.Before(cached.expiresAt) {
		session := cached.session
		s.mu.Unlock()
		return &session, nil
	}
	s.mu.Unlock()

	session := s.hydrateClaims(ctx, claims)

	expiresAt := now.Add(time.Duration(s.cfg.JWT.ExpirationHours) * time.Hour)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	s.mu.Lock()
	if s.gens[claims.UserID] == gen {
		// Abandoned tokens age out with their expiry; sweeping on insert
		// keeps the cache bounded by the number of live tokens.
		s.sweepExpiredLocked(now)
		s.sessions[token] = cachedSession{session: *session, gen: gen, expiresAt: expiresAt}
	}
	s.mu.Unlock()

	return session, nil
}

// sweepExpiredLocked drops cache entries whose token has expired. Callers
// hold s.mu.
func (s *SessionService) sweepExpiredLocked(now time.Time) {
	for token, cached := range s.sessions {
		if now.After(cached.expiresAt) {
			delete(s.sessions, token)
		}
	}
}

func (s *SessionService) hydrateClaims(ctx context.Context, claims *utils.Claims) *models.Session {
	session := &models.Session{
		UserID: claims.UserID,
		Email:  claims.Email,
		Nombre: models.DisplayName("", claims.Email),
		State:  models.AuthStateAuthenticated,
	}

	perfil, err := s.perfiles.Get(ctx, claims.UserID)
	if err != nil {
		// Partial identity: the UI can still render a logout button even
		// when the profile read breaks.
		logrus.WithError(err).WithField("user_id", claims.UserID).
			Warn("profile fetch failed, hydrating partial session")
		return session
	}

	if perfil.Nombre != nil {
		session.Nombre = models.DisplayName(*perfil.Nombre, claims.Email)
	}
	if perfil.Cargo != nil && *perfil.Cargo != "" {
		session.Rol = *perfil.Cargo
	} else {
		session.Rol = models.RolUsuario
	}
	session.EmpresaID = perfil.EmpresaID

	return session
}

// Login performs the password grant and returns a fresh token plus the
// hydrated session.
func (s *SessionService) Login(ctx context.Context, email, password string) (string, *models.Session, error) {
	email = utils.NormalizeEmail(email)

	usuario, err := s.usuarios.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, usuario.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(usuario.ID, usuario.Email, s.cfg)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	if err := s.perfiles.TouchUltimaConexion(ctx, usuario.ID); err != nil {
		logrus.WithError(err).Warn("failed to record ultima_conexion")
	}

	claims, err := utils.ValidateJWT(token, s.cfg)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	session := s.hydrateClaims(ctx, claims)

	return token, session, nil
}

// Logout revokes the token and drops every cached session for the user.
// Local state clears unconditionally: a failing backend call must never
// leave a stuck "logged in but broken" session behind.
func (s *SessionService) Logout(ctx context.Context, token string) {
	claims, err := utils.ValidateJWT(token, s.cfg)

	s.mu.Lock()
	delete(s.sessions, token)
	if err == nil {
		s.gens[claims.UserID]++
	}
	s.mu.Unlock()

	if err != nil {
		// Nothing to revoke server-side; the local clear above is all the
		// caller needs.
		return
	}

	if s.redis != nil {
		ttl := time.Duration(s.cfg.JWT.ExpirationHours) * time.Hour
		if err := s.redis.RevokeToken(ctx, claims.ID, ttl); err != nil {
			logrus.WithError(err).Warn("token revocation failed during logout")
		}
		if err := s.redis.PublishSessionInvalidation(ctx, claims.UserID.String()); err != nil {
			logrus.WithError(err).Warn("session invalidation publish failed during logout")
		}
	}
}

// ResetPassword requests reset instructions for an email. It reports
// success whether or not the email is registered so accounts cannot be
// enumerated.
func (s *SessionService) ResetPassword(ctx context.Context, email string) {
	email = utils.NormalizeEmail(email)

	usuario, err := s.usuarios.GetByEmail(ctx, email)
	if err != nil {
		logrus.WithField("email", email).Info("password reset requested for unknown email")
		return
	}

	code := utils.GenerateResetCode()
	if s.redis != nil {
		if err := s.redis.SetResetCode(ctx, code, usuario.ID.String(), resetCodeTTL); err != nil {
			logrus.WithError(err).Error("failed to store reset code")
			return
		}
	}

	cuerpo := fmt.Sprintf("Use este código para restablecer su contraseña: %s", code)
	if err := s.notifier.Send(ctx, email, "Restablecer contraseña", cuerpo); err != nil {
		logrus.WithError(err).Error("failed to send reset instructions")
	}
}

// ConfirmReset consumes a reset code and sets the new password, then
// invalidates every session of the user.
func (s *SessionService) ConfirmReset(ctx context.Context, code, newPassword string) error {
	if s.redis == nil {
		return ErrResetCodeInvalid
	}

	userIDStr, err := s.redis.TakeResetCode(ctx, code)
	if err != nil {
		return ErrResetCodeInvalid
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return ErrResetCodeInvalid
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	if err := s.usuarios.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	s.invalidateUser(userID)
	if err := s.redis.PublishSessionInvalidation(ctx, userID.String()); err != nil {
		logrus.WithError(err).Warn("session invalidation publish failed after password reset")
	}

	return nil
}

// UpdateProfile upserts profile fields for the current session and merges
// the result into it optimistically.
func (s *SessionService) UpdateProfile(ctx context.Context, session *models.Session, req *models.UpdateProfileRequest) (*models.Session, error) {
	if session == nil || session.State != models.AuthStateAuthenticated {
		return nil, ErrNotAuthenticated
	}

	perfil, err := s.perfiles.Upsert(ctx, session.UserID, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	updated := *session
	if req.Nombre != nil {
		updated.Nombre = models.DisplayName(*req.Nombre, session.Email)
	}
	if req.Cargo != nil && *req.Cargo != "" {
		updated.Rol = *req.Cargo
	}
	if perfil.EmpresaID != nil {
		updated.EmpresaID = perfil.EmpresaID
	}

	// A role or company change must reach every cached copy of this user.
	s.invalidateUser(session.UserID)
	if s.redis != nil {
		if err := s.redis.PublishSessionInvalidation(ctx, session.UserID.String()); err != nil {
			logrus.WithError(err).Warn("session invalidation publish failed after profile update")
		}
	}

	return &updated, nil
}

// SignUp registers a new identity, creating and linking a company when a
// new-company name was supplied. The sequence is identity -> empresa ->
// perfil with no rollback; failures after the first step surface as
// PartialSignupError so the caller can distinguish them from a plain
// registration failure.
func (s *SessionService) SignUp(ctx context.Context, req *models.RegisterRequest) (string, *models.Session, error) {
	email := utils.NormalizeEmail(req.Email)

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	usuario, err := s.usuarios.Create(ctx, email, hash)
	if err != nil {
		if err == repository.ErrEmailEnUso {
			return "", nil, ErrEmailRegistered
		}
		return "", nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	empresaID := req.EmpresaID
	if req.EmpresaNombre != "" && empresaID == nil {
		empresa, err := s.empresas.Create(ctx, req.EmpresaNombre, email)
		if err != nil {
			return "", nil, &PartialSignupError{Step: "empresa", UserID: usuario.ID, Err: err}
		}
		empresaID = &empresa.ID
	}

	rol := req.Rol
	if rol == "" {
		rol = models.RolUsuario
	}

	perfil := &models.Perfil{
		ID:        usuario.ID,
		EmpresaID: empresaID,
		Cargo:     &rol,
	}
	if req.Nombre != "" {
		perfil.Nombre = &req.Nombre
	}
	if req.Apellido != "" {
		perfil.Apellido = &req.Apellido
	}

	if err := s.perfiles.Insert(ctx, perfil); err != nil {
		return "", nil, &PartialSignupError{Step: "perfil", UserID: usuario.ID, EmpresaID: empresaID, Err: err}
	}

	token, err := utils.GenerateJWT(usuario.ID, usuario.Email, s.cfg)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	session := &models.Session{
		UserID:    usuario.ID,
		Email:     usuario.Email,
		Nombre:    models.DisplayName(req.Nombre, usuario.Email),
		Rol:       rol,
		EmpresaID: empresaID,
		State:     models.AuthStateAuthenticated,
	}

	return token, session, nil
}

// StartInvalidationWatcher subscribes to session invalidation events and
// drops cached sessions as they arrive. The returned stop function tears
// the subscription down; it is best-effort and never panics, so it is safe
// on every exit path.
func (s *SessionService) StartInvalidationWatcher(ctx context.Context) func() {
	if s.redis == nil {
		return func() {}
	}

	pubsub := s.redis.SubscribeSessionInvalidations(ctx)
	ch := pubsub.Channel()

	go func() {
		for msg := range ch {
			userID, err := uuid.Parse(msg.Payload)
			if err != nil {
				logrus.WithField("payload", msg.Payload).Warn("ignoring malformed invalidation event")
				continue
			}
			s.invalidateUser(userID)
		}
	}()

	return func() {
		defer func() {
			_ = recover()
		}()
		if err := pubsub.Close(); err != nil {
			logrus.WithError(err).Debug("invalidation watcher close failed")
		}
	}
}

// invalidateUser bumps the user's generation so any cached or in-flight
// hydration for an older generation is discarded.
func (s *SessionService) invalidateUser(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gens[userID]++
	for token, cached := range s.sessions {
		if cached.session.UserID == userID {
			delete(s.sessions, token)
		}
	}
}
