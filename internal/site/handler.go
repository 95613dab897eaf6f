package site

import (
	"net/url"

	"inmobiliaria-backend/internal/catalog"
	"inmobiliaria-backend/internal/filter"
	"inmobiliaria-backend/internal/format"
	"inmobiliaria-backend/internal/logger"
	"inmobiliaria-backend/internal/metrics"
	"inmobiliaria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	homeLocations   = 3
	similarCount    = 3
	listingsBackURL = "/propiedades"
)

func snapshot(c *fiber.Ctx, src catalog.Source, log logger.Logger) (catalog.Snapshot, error) {
	snap, err := src.Snapshot(c.UserContext())
	if err != nil {
		// Son sağlam snapshot da yok
		log.WithError(err).Error("Katalog okunamadı", nil)
		return catalog.Snapshot{}, fiber.NewError(fiber.StatusServiceUnavailable, "Catálogo no disponible")
	}
	return snap, nil
}

// queryGetter c.Query varsayılan parametre alır; filter.Getter'a uyarlanır.
func queryGetter(c *fiber.Ctx) filter.Getter {
	return func(key string) string { return c.Query(key) }
}

// GET /api/home
func HomeHandler(src catalog.Source, settings SettingsReader, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := snapshot(c, src, log)
		if err != nil {
			return err
		}

		locs := snap.LocationsWithCounts()
		if len(locs) > homeLocations {
			locs = locs[:homeLocations]
		}

		return c.JSON(fiber.Map{
			"featured":     Cards(snap.Featured()),
			"locations":    locs,
			"testimonials": snap.Testimonials,
			"settings":     loadSettings(c.UserContext(), settings, log),
		})
	}
}

// GET /api/properties?search=&location=&type=&minPrice=&maxPrice=&bedrooms=
func ListPropertiesHandler(src catalog.Source, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := snapshot(c, src, log)
		if err != nil {
			return err
		}

		criteria := filter.FromQuery(queryGetter(c))
		results := filter.Apply(snap.Properties, criteria)
		metrics.CatalogFilterResults.Observe(float64(len(results)))

		countLabel := format.PluralizeCount(len(results), "propiedad encontrada", "propiedades encontradas")

		return c.JSON(fiber.Map{
			"criteria":    criteria,
			"properties":  Cards(results),
			"count":       len(results),
			"count_label": countLabel,
			"empty":       len(results) == 0,
			"options":     filterOptions(snap.LocationNames()),
		})
	}
}

type PropertyDetail struct {
	PropertyCard
	Description  string             `json:"description"`
	Region       string             `json:"region"`
	Images       []string           `json:"images"`
	Amenities    []string           `json:"amenities"`
	Coordinates  models.Coordinates `json:"coordinates"`
	LocationInfo *models.Location   `json:"location_info,omitempty"`
	CreatedLabel string             `json:"created_label,omitempty"`
	SEO          SEO                `json:"seo"`
	WhatsAppLink string             `json:"whatsapp_link"`
	Similar      []PropertyCard     `json:"similar"`
}

type SEO struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Keywords         string `json:"keywords"`
	LocationKeywords string `json:"location_keywords"`
	Image            string `json:"image"`
}

// GET /api/properties/:id
func PropertyDetailHandler(src catalog.Source, settings SettingsReader, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := snapshot(c, src, log)
		if err != nil {
			return err
		}

		p, ok := snap.Property(c.Params("id"))
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":     "Propiedad no encontrada",
				"back_link": listingsBackURL,
			})
		}

		images := make([]string, len(p.Images))
		for i, img := range p.Images {
			images[i] = format.OptimizedImageURL(img, 1200, 800)
		}

		detail := PropertyDetail{
			PropertyCard: NewCard(p),
			Description:  p.Description,
			Region:       p.Region,
			Images:       images,
			Amenities:    append([]string{}, p.Amenities...),
			Coordinates:  p.Coordinates(),
			CreatedLabel: format.ShortDate(p.CreatedAt),
			SEO: SEO{
				Title:            format.PropertyTitle(p),
				Description:      format.PropertyDescription(p),
				Keywords:         format.PropertyKeywords(p),
				LocationKeywords: format.LocationKeywords(p.Location),
				Image:            format.OptimizedImageURL(p.PrimaryImage(), 1200, 630),
			},
			Similar: Cards(snap.Similar(p, similarCount)),
		}
		if loc, ok := snap.LocationByName(p.Location); ok {
			detail.LocationInfo = &loc
		}

		s := loadSettings(c.UserContext(), settings, log)
		detail.WhatsAppLink = format.WhatsAppLink(s.WhatsAppNumber, format.PropertyInquiryMessage(p))

		return c.JSON(detail)
	}
}

// GET /api/locations
func LocationsHandler(src catalog.Source, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := snapshot(c, src, log)
		if err != nil {
			return err
		}

		type locationView struct {
			models.Location
			CountLabel string `json:"count_label"`
			Keywords   string `json:"keywords"`
			Link       string `json:"link"`
		}

		locs := snap.LocationsWithCounts()
		out := make([]locationView, len(locs))
		for i, l := range locs {
			out[i] = locationView{
				Location:   l,
				CountLabel: format.PluralizeCount(l.PropertyCount, "propiedad", "propiedades"),
				Keywords:   format.LocationKeywords(l.Name),
				Link:       listingsBackURL + "?location=" + url.QueryEscape(l.Name),
			}
		}
		return c.JSON(out)
	}
}

// GET /api/testimonials
func TestimonialsHandler(src catalog.Source, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := snapshot(c, src, log)
		if err != nil {
			return err
		}
		out := snap.Testimonials
		if out == nil {
			out = []models.Testimonial{}
		}
		return c.JSON(out)
	}
}

// GET /api/settings
func SettingsHandler(settings SettingsReader, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := loadSettings(c.UserContext(), settings, log)
		return c.JSON(fiber.Map{
			"settings":      s,
			"whatsapp_link": format.WhatsAppLink(s.WhatsAppNumber, ""),
		})
	}
}
