package dto

import "github.com/jhoicas/backoffice-pos/internal/domain/entity"

// LoginRequest entrada de login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// LoginResponse respuesta de login del backend: token bearer y usuario.
type LoginResponse struct {
	Token string      `json:"token"`
	User  entity.User `json:"user"`
}

// SessionResponse estado de la sesión del back-office.
type SessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *entity.User `json:"user,omitempty"`
}
