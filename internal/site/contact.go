package site

import (
	"context"
	"strings"

	"inmobiliaria-backend/internal/format"
	"inmobiliaria-backend/internal/logger"
	"inmobiliaria-backend/internal/metrics"
	"inmobiliaria-backend/internal/models"
	"inmobiliaria-backend/internal/notify"

	"github.com/gofiber/fiber/v2"
)

type InquiryStore interface {
	Create(ctx context.Context, in *models.ContactInquiry) error
}

type ContactRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Message          string `json:"message"`
	PropertyInterest string `json:"property_interest"`
	PropertyType     string `json:"property_type"`
	Location         string `json:"location"`
	PriceRange       string `json:"price_range"`
}

// POST /api/contact
func ContactHandler(inquiries InquiryStore, notifier notify.Notifier, settings SettingsReader, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ContactRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		in := models.ContactInquiry{
			Name:             strings.TrimSpace(body.Name),
			Email:            strings.ToLower(strings.TrimSpace(body.Email)),
			Phone:            strings.TrimSpace(body.Phone),
			Message:          strings.TrimSpace(body.Message),
			PropertyInterest: strings.TrimSpace(body.PropertyInterest),
			PropertyType:     strings.TrimSpace(body.PropertyType),
			Location:         strings.TrimSpace(body.Location),
			PriceRange:       strings.TrimSpace(body.PriceRange),
		}

		if errs := in.Validate(); len(errs) > 0 {
			metrics.ContactInquiriesTotal.WithLabelValues("invalid").Inc()
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":  "Por favor corrija los campos marcados",
				"fields": errs,
			})
		}

		if err := inquiries.Create(c.UserContext(), &in); err != nil {
			metrics.ContactInquiriesTotal.WithLabelValues("error").Inc()
			log.WithError(err).Error("İletişim talebi kaydedilemedi", nil)
			return fiber.NewError(fiber.StatusBadGateway, "No pudimos enviar su mensaje, intente nuevamente")
		}
		metrics.ContactInquiriesTotal.WithLabelValues("stored").Inc()

		// Bildirim hatası talebi geçersiz kılmaz
		if err := notifier.NotifyInquiry(c.UserContext(), in); err != nil {
			log.WithError(err).Warn("İletişim bildirimi gönderilemedi", map[string]interface{}{"inquiry": in.ID})
		}

		s := loadSettings(c.UserContext(), settings, log)
		text := "Hola Laura, soy " + in.Name + ". " + in.Message
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":            in.ID,
			"message":       "¡Gracias por contactarnos! Le responderemos pronto.",
			"whatsapp_link": format.WhatsAppLink(s.WhatsAppNumber, format.Truncate(text, 300)),
		})
	}
}
