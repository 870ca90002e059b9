package shared

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique constraint violation.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when the CSRF token is missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

type userError struct {
	msg string
}

func (e userError) Error() string {
	return e.msg
}

// NewUserError wraps a message written for the person filling in the form.
// UserSafeMessage renders it verbatim; every other unrecognized error is
// masked so infrastructure detail never reaches a page.
func NewUserError(msg string) error {
	return userError{msg: msg}
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// TranslatePgError converts low-level Postgres constraint failures into the
// sentinel errors the services and forms understand. Uniqueness of lot codes,
// period months, and (lot, period) receipt pairs is enforced by the database,
// so duplicates surface here rather than in application checks.
func TranslatePgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrAlreadyExists
		case pgForeignKeyViolation:
			return ErrNotFound
		}
	}
	return err
}

// UserSafeMessage returns a message suitable for rendering in a form. Only
// the known sentinels, validation failures, and messages wrapped with
// NewUserError pass through; anything else (driver, network, context errors)
// is masked behind a generic line.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAlreadyExists):
		return "Ya existe un registro con esos datos."
	case errors.Is(err, ErrNotFound):
		return "El registro no existe."
	case errors.Is(err, ErrInvalidCredentials):
		return "Usuario o contraseña incorrectos."
	}
	var uerr userError
	if errors.As(err, &uerr) {
		return uerr.msg
	}
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		return "Revisa los campos del formulario."
	}
	return "No se pudo completar la operación."
}
