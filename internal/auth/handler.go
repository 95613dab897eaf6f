package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"inmobiliaria-backend/internal/identity"
	"inmobiliaria-backend/internal/logger"
	"inmobiliaria-backend/internal/metrics"
	"inmobiliaria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type RegisterAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AdminUsers interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, u *models.AdminUser) error
}

func RegisterAdminHandler(users AdminUsers, allow identity.AllowList) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterAdminRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de solicitud inválido")
		}

		body.Email = identity.NormalizeEmail(body.Email)
		body.Name = strings.TrimSpace(body.Name)

		if body.Email == "" || body.Password == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nombre, email y contraseña son obligatorios")
		}
		if len(body.Password) < 8 {
			return fiber.NewError(fiber.StatusBadRequest, "La contraseña debe tener al menos 8 caracteres")
		}
		if !allow.Allows(body.Email) {
			return fiber.NewError(fiber.StatusForbidden, "Este email no puede registrarse como administrador")
		}

		// Sadece ilk admin bu endpoint ile oluşturulabilir
		count, err := users.Count(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "No se pudo obtener la información del usuario")
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "Ya existe un administrador")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo procesar la contraseña")
		}

		user := models.AdminUser{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
		}
		if err := users.Create(c.UserContext(), &user); err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "No se pudo crear el usuario")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		})
	}
}

func LoginHandler(p identity.Provider, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de solicitud inválido")
		}

		sess, err := p.SignIn(c.UserContext(), body.Email, body.Password)
		if err != nil {
			metrics.AuthEventsTotal.WithLabelValues("rejected").Inc()
			return identityError(err, log)
		}

		metrics.AuthEventsTotal.WithLabelValues(string(identity.EventSignedIn)).Inc()
		setTokenCookie(c, sess)
		return c.JSON(sessionResponse(sess))
	}
}

func LogoutHandler(p identity.Provider, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := TokenFromRequest(c)
		if err := p.SignOut(c.UserContext(), token); err != nil {
			return identityError(err, log)
		}

		metrics.AuthEventsTotal.WithLabelValues(string(identity.EventSignedOut)).Inc()
		c.ClearCookie(TokenCookie)
		return c.JSON(fiber.Map{"signed_out": true})
	}
}

func RefreshHandler(p identity.Provider, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := p.Refresh(c.UserContext(), TokenFromRequest(c))
		if err != nil {
			return identityError(err, log)
		}

		metrics.AuthEventsTotal.WithLabelValues(string(identity.EventRefreshed)).Inc()
		setTokenCookie(c, sess)
		return c.JSON(sessionResponse(sess))
	}
}

// MeHandler Guard arkasında çalışır.
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := CurrentUser(c)
		if u == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Debe iniciar sesión")
		}
		return c.JSON(fiber.Map{"user": u})
	}
}

func identityError(err error, log logger.Logger) error {
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		return fiber.NewError(fiber.StatusUnauthorized, "Email o contraseña incorrectos")
	case errors.Is(err, identity.ErrNotAuthorized):
		return fiber.NewError(fiber.StatusForbidden, "Esta cuenta no tiene acceso al panel de administración")
	case errors.Is(err, identity.ErrUnsupported):
		return fiber.NewError(fiber.StatusNotImplemented, "Esta operación debe realizarse en el proveedor de identidad")
	default:
		log.WithError(err).Error("Kimlik servisi hatası", nil)
		return fiber.NewError(fiber.StatusServiceUnavailable, "El servicio de identidad no está disponible")
	}
}

func setTokenCookie(c *fiber.Ctx, sess *identity.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     TokenCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func sessionResponse(sess *identity.Session) fiber.Map {
	return fiber.Map{
		"token":      sess.Token,
		"expires_at": sess.ExpiresAt.UTC().Format(time.RFC3339),
		"user":       sess.User,
	}
}
