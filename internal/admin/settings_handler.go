package admin

import (
	"context"
	"strings"
	"time"

	"inmobiliaria-backend/internal/audit"
	"inmobiliaria-backend/internal/auth"
	"inmobiliaria-backend/internal/catalog"
	"inmobiliaria-backend/internal/format"
	"inmobiliaria-backend/internal/logger"
	"inmobiliaria-backend/internal/metrics"
	"inmobiliaria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const entitySettings = "settings"

type SettingsStore interface {
	Get(ctx context.Context) (models.SiteSettings, error)
	Save(ctx context.Context, s models.SiteSettings) (models.SiteSettings, error)
}

type InquiryLister interface {
	List(ctx context.Context, limit int) ([]models.ContactInquiry, error)
}

// GET /api/admin/settings
func GetSettingsHandler(settings SettingsStore, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := settings.Get(c.UserContext())
		if err != nil {
			log.WithError(err).Error("Site ayarları okunamadı", nil)
			return fiber.NewError(fiber.StatusBadGateway, "No se pudieron leer los ajustes")
		}
		return c.JSON(s)
	}
}

// PUT /api/admin/settings
func UpdateSettingsHandler(settings SettingsStore, auditLog AuditWriter, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body models.SiteSettings
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}
		body.SiteName = strings.TrimSpace(body.SiteName)
		body.ContactEmail = strings.ToLower(strings.TrimSpace(body.ContactEmail))
		body.WhatsAppNumber = strings.TrimSpace(body.WhatsAppNumber)

		if errs := body.Validate(); len(errs) > 0 {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":  "Ajustes inválidos",
				"fields": errs,
			})
		}

		before, err := settings.Get(c.UserContext())
		if err != nil {
			log.WithError(err).Error("Site ayarları okunamadı", nil)
			return fiber.NewError(fiber.StatusBadGateway, "No se pudieron leer los ajustes")
		}

		body.UpdatedAt = time.Now()
		saved, err := settings.Save(c.UserContext(), body)
		metrics.RecordMutation("settings", err)
		if err != nil {
			log.WithError(err).Error("Site ayarları kaydedilemedi", nil)
			return fiber.NewError(fiber.StatusBadGateway, "No se pudieron guardar los ajustes")
		}

		opts := audit.LogOptions{
			EntityType:  entitySettings,
			EntityID:    "1",
			Action:      models.AuditActionUpdate,
			Description: "Ajustes del sitio actualizados",
			Before:      before,
			After:       saved,
		}
		if user := auth.CurrentUser(c); user != nil {
			opts.UserID, opts.UserName = user.ID, user.Name
		}
		if err := auditLog.Write(c.UserContext(), opts); err != nil {
			log.WithError(err).Warn("Audit log yazılamadı", map[string]interface{}{"entity_type": entitySettings})
		}
		return c.JSON(saved)
	}
}

// GET /api/admin/inquiries?limit=50
func ListInquiriesHandler(inquiries InquiryLister, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 100)
		if limit <= 0 || limit > 500 {
			limit = 100
		}
		list, err := inquiries.List(c.UserContext(), limit)
		if err != nil {
			log.WithError(err).Error("No se pudieron listar los mensajes", nil)
			return fiber.NewError(fiber.StatusBadGateway, "No se pudieron listar los mensajes")
		}
		if list == nil {
			list = []models.ContactInquiry{}
		}
		return c.JSON(fiber.Map{
			"inquiries": list,
			"count":     len(list),
		})
	}
}

type LocationOption struct {
	Value         string `json:"value"`
	Label         string `json:"label"`
	Region        string `json:"region"`
	PropertyCount int    `json:"property_count"`
}

type TypeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// GET /api/admin/locations
// İlan formundaki lokasyon, bölge ve tip seçenekleri.
func LocationOptionsHandler(src catalog.Source, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := src.Snapshot(c.UserContext())
		if err != nil {
			log.WithError(err).Error("No se pudo leer el catálogo", nil)
			return fiber.NewError(fiber.StatusServiceUnavailable, "No se pudo leer el catálogo")
		}

		locs := snap.LocationsWithCounts()
		options := make([]LocationOption, 0, len(locs))
		regions := make([]string, 0)
		seen := map[string]bool{}
		for _, l := range locs {
			options = append(options, LocationOption{
				Value:         l.Name,
				Label:         l.Name,
				Region:        l.Region,
				PropertyCount: l.PropertyCount,
			})
			if l.Region != "" && !seen[l.Region] {
				seen[l.Region] = true
				regions = append(regions, l.Region)
			}
		}

		types := make([]TypeOption, 0, len(models.PropertyTypes))
		for _, t := range models.PropertyTypes {
			types = append(types, TypeOption{Value: string(t), Label: format.PropertyTypeLabel(t)})
		}

		return c.JSON(fiber.Map{
			"locations": options,
			"regions":   regions,
			"types":     types,
		})
	}
}
