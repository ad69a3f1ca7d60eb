package api

import (
	"context"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
)

// AuthClient login contra el backend.
type AuthClient struct {
	gw *Gateway
}

// NewAuthClient construye el cliente.
func NewAuthClient(gw *Gateway) *AuthClient {
	return &AuthClient{gw: gw}
}

// Login POST /api/auth/login. Credenciales rechazadas no cierran la sesión vigente.
func (c *AuthClient) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	var out dto.LoginResponse
	if err := c.gw.Post(anonymous(ctx), "/api/auth/login", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
