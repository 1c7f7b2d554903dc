package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials covers a wrong email/password pair. It is the
	// one login failure that gets its own user-facing message.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotAuthenticated means the operation requires a session that is
	// absent or not resolved to authenticated.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrPermissionDenied is an action check that resolved to false. It is
	// normally handled by hiding UI, not by surfacing the error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrBackendUnavailable classifies transport or configuration failures
	// reaching Postgres/Redis; callers get this instead of raw driver
	// errors.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrEmailRegistered is returned by sign-up when the email already has
	// an account.
	ErrEmailRegistered = errors.New("email already registered")

	// ErrResetCodeInvalid means the password reset code is unknown, spent
	// or expired.
	ErrResetCodeInvalid = errors.New("reset code invalid or expired")
)

// PartialSignupError reports a sign-up that failed after the identity (and
// possibly the company) was already created. There is no rollback; the
// caller learns exactly how far the sequence got.
type PartialSignupError struct {
	// Step that failed: "empresa" or "perfil".
	Step      string
	UserID    uuid.UUID
	EmpresaID *uuid.UUID
	Err       error
}

func (e *PartialSignupError) Error() string {
	return fmt.Sprintf("signup incomplete at step %q (user %s created): %v", e.Step, e.UserID, e.Err)
}

func (e *PartialSignupError) Unwrap() error {
	return e.Err
}
