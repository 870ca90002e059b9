package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestUserSafeMessageSentinels(t *testing.T) {
	require.Equal(t, "", UserSafeMessage(nil))
	require.Equal(t, "Ya existe un registro con esos datos.", UserSafeMessage(ErrAlreadyExists))
	require.Equal(t, "El registro no existe.", UserSafeMessage(ErrNotFound))
	require.Equal(t, "Usuario o contraseña incorrectos.", UserSafeMessage(ErrInvalidCredentials))

	// Wrapped sentinels still resolve.
	wrapped := fmt.Errorf("lots: %w", ErrAlreadyExists)
	require.Equal(t, "Ya existe un registro con esos datos.", UserSafeMessage(wrapped))
}

func TestUserSafeMessagePassesUserErrors(t *testing.T) {
	err := NewUserError("El celular solo puede contener dígitos.")
	require.Equal(t, "El celular solo puede contener dígitos.", UserSafeMessage(err))
}

func TestUserSafeMessageMapsValidationErrors(t *testing.T) {
	type form struct {
		Block string `validate:"required,len=1"`
	}
	err := validator.New().Struct(form{Block: "AB"})
	require.Error(t, err)
	require.Equal(t, "Revisa los campos del formulario.", UserSafeMessage(err))
}

func TestUserSafeMessageMasksInfrastructureErrors(t *testing.T) {
	for _, err := range []error{
		errors.New("dial tcp 127.0.0.1:6379: connect: connection refused"),
		fmt.Errorf("platform/db: begin tx: %w", errors.New("context deadline exceeded")),
	} {
		require.Equal(t, "No se pudo completar la operación.", UserSafeMessage(err))
	}
}
