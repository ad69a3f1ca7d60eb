package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
)

// LocalUser key de c.Locals con el *entity.User de la sesión.
const LocalUser = "user"

// SessionChecker lo que el middleware necesita del store de sesión.
type SessionChecker interface {
	IsAuthenticated() bool
	User() *entity.User
}

// RequireSession corta con 401 si el back-office no tiene sesión vigente.
// El token nunca viaja desde el navegador: lo guarda el store y lo usa el gateway.
func RequireSession(s SessionChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.IsAuthenticated() {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "NO_SESSION", Message: "iniciar sesión para continuar"})
		}
		if u := s.User(); u != nil {
			c.Locals(LocalUser, u)
		}
		return c.Next()
	}
}

// RequireRole deja pasar solo a los roles indicados. Debe usarse después de RequireSession.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "la sesión no informa rol"})
		}
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el rol " + role + " no puede realizar esta operación"})
	}
}

// GetUser devuelve el usuario de la sesión (después de RequireSession).
func GetUser(c *fiber.Ctx) *entity.User {
	u, _ := c.Locals(LocalUser).(*entity.User)
	return u
}

// GetRole rol del usuario de la sesión; "" si no hay.
func GetRole(c *fiber.Ctx) string {
	if u := GetUser(c); u != nil {
		return u.Role
	}
	return ""
}
