package auth

import (
	"net/url"
	"strings"

	"inmobiliaria-backend/internal/identity"
	"inmobiliaria-backend/internal/logger"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxUserKey  = "admin_user"
	CtxTokenKey = "admin_token"

	TokenCookie = "admin_token"
	LoginPath   = "/admin/login"
)

// TokenFromRequest önce Authorization header'ına, yoksa cookie'ye bakar.
func TokenFromRequest(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Cookies(TokenCookie)
}

// Guard admin route'larını korur. Tarayıcı gezintisi login sayfasına yönlendirilir,
// API çağrıları 401 alır.
func Guard(p identity.Provider, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := TokenFromRequest(c)

		user, err := p.CurrentUser(c.UserContext(), token)
		if err != nil {
			log.WithError(err).Error("Kimlik doğrulanamadı", map[string]interface{}{
				"path": c.Path(),
			})
			return fiber.NewError(fiber.StatusServiceUnavailable, "El servicio de identidad no está disponible")
		}

		if user == nil {
			if wantsHTML(c) {
				return c.Redirect(LoginPath+"?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusFound)
			}
			return fiber.NewError(fiber.StatusUnauthorized, "Debe iniciar sesión")
		}

		c.Locals(CtxUserKey, user)
		c.Locals(CtxTokenKey, token)
		return c.Next()
	}
}

func CurrentUser(c *fiber.Ctx) *identity.User {
	u, _ := c.Locals(CtxUserKey).(*identity.User)
	return u
}

func wantsHTML(c *fiber.Ctx) bool {
	return c.Accepts(fiber.MIMEApplicationJSON, fiber.MIMETextHTML) == fiber.MIMETextHTML
}
