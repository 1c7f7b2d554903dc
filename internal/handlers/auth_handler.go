package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Transporegistros/carga-colombia-track/internal/middleware"
	"github.com/Transporegistros/carga-colombia-track/internal/models"
	"github.com/Transporegistros/carga-colombia-track/internal/services"
)

type AuthHandler struct {
	sessions  *services.SessionService
	auditoria *services.AuditoriaService
}

func NewAuthHandler(sessions *services.SessionService, auditoria *services.AuditoriaService) *AuthHandler {
	return &AuthHandler{sessions: sessions, auditoria: auditoria}
}

// Register handles sign-up. A failure after the identity was created is
// reported as 207 with the step that broke, so the client knows the email
// is taken but the account is incomplete.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, session, err := h.sessions.SignUp(c.Request.Context(), &req)
	if err != nil {
		var partial *services.PartialSignupError
		switch {
		case errors.Is(err, services.ErrEmailRegistered):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		case errors.As(err, &partial):
			c.JSON(http.StatusMultiStatus, gin.H{
				"error":   "registration incomplete",
				"step":    partial.Step,
				"user_id": partial.UserID,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
		}
		return
	}

	h.auditoria.Record(c.Request.Context(), session, "usuarios", "crear", &session.UserID, nil, c.ClientIP())

	c.JSON(http.StatusCreated, models.LoginResponse{Token: token, Session: session})
}

// Login handles the password grant.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, session, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to login"})
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{Token: token, Session: session})
}

// Logout clears the session. It always succeeds and always points the
// client back to the login page.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.Logout(c.Request.Context(), middleware.TokenFrom(c))

	c.JSON(http.StatusOK, gin.H{"redirect": "/login"})
}

// Me returns the hydrated session for the current token.
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.SessionFrom(c))
}

// UpdateProfile patches the profile of the current user.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := middleware.SessionFrom(c)
	updated, err := h.sessions.UpdateProfile(c.Request.Context(), session, &req)
	if err != nil {
		if errors.Is(err, services.ErrNotAuthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	h.auditoria.Record(c.Request.Context(), session, "perfiles", "editar", &session.UserID, req, c.ClientIP())

	c.JSON(http.StatusOK, updated)
}

// ResetPassword requests reset instructions. The answer is the same whether
// or not the email exists.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.sessions.ResetPassword(c.Request.Context(), req.Email)

	c.JSON(http.StatusOK, gin.H{"message": "if the email is registered, reset instructions were sent"})
}

// ConfirmReset consumes a reset code and sets the new password.
func (h *AuthHandler) ConfirmReset(c *gin.Context) {
	var req models.ConfirmResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessions.ConfirmReset(c.Request.Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, services.ErrResetCodeInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reset code invalid or expired"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
