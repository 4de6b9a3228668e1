// Package auth verifica los tokens del proveedor de identidad externo.
package auth

import (
	"context"
	"errors"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Identity es lo que el proveedor garantiza del portador del token
type Identity struct {
	UID   string
	Email string
	Name  string
}

//go:generate mockgen -destination=mocks/mock_verifier.go -package=mocks grocery-mart/internal/auth Verifier

type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}
