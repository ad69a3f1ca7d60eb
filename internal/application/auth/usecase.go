package auth

import (
	"context"
	"fmt"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
)

// LoginAPI puerto hacia el endpoint de login del backend.
type LoginAPI interface {
	Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error)
}

// SessionStore puerto del estado de sesión.
type SessionStore interface {
	Set(ctx context.Context, token string, user entity.User) error
	Clear(ctx context.Context) error
	User() *entity.User
	IsAuthenticated() bool
}

// AuthUseCase casos de uso de autenticación: login y logout contra el backend remoto.
type AuthUseCase struct {
	api      LoginAPI
	session  SessionStore
	onLogout []func(ctx context.Context)
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(api LoginAPI, session SessionStore) *AuthUseCase {
	return &AuthUseCase{api: api, session: session}
}

// Login valida credenciales en el cliente, las envía al backend y persiste token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*entity.User, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	resp, err := uc.api.Login(ctx, in)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login: el backend no devolvió token")
	}
	if err := uc.session.Set(ctx, resp.Token, resp.User); err != nil {
		return nil, err
	}
	u := resp.User
	return &u, nil
}

// OnLogout registra una acción a ejecutar en cada cierre de sesión, sea pedido por el
// operador o forzado por un 401 del backend. Se registran al armar el servicio.
func (uc *AuthUseCase) OnLogout(fn func(ctx context.Context)) {
	uc.onLogout = append(uc.onLogout, fn)
}

// Logout limpia ambas claves de sesión y el estado de vista que dependía de ella.
// Las acciones de OnLogout corren aunque falle el borrado.
func (uc *AuthUseCase) Logout(ctx context.Context) error {
	err := uc.session.Clear(ctx)
	for _, fn := range uc.onLogout {
		fn(ctx)
	}
	return err
}

// Current devuelve el estado de la sesión.
func (uc *AuthUseCase) Current() dto.SessionResponse {
	if !uc.session.IsAuthenticated() {
		return dto.SessionResponse{}
	}
	return dto.SessionResponse{Authenticated: true, User: uc.session.User()}
}
