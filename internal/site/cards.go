// Package site herkese açık sayfaların JSON API'sidir.
package site

import (
	"context"
	"fmt"

	"inmobiliaria-backend/internal/filter"
	"inmobiliaria-backend/internal/format"
	"inmobiliaria-backend/internal/logger"
	"inmobiliaria-backend/internal/models"
)

type PropertyCard struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	Type        string `json:"type"`
	TypeLabel   string `json:"type_label"`
	Price       int64  `json:"price"`
	PriceLabel  string `json:"price_label"`
	Bedrooms    int    `json:"bedrooms"`
	Bathrooms   int    `json:"bathrooms"`
	Area        int    `json:"area"`
	AreaLabel   string `json:"area_label"`
	Image       string `json:"image"`
	Featured    bool   `json:"featured"`
	Sold        bool   `json:"is_sold"`
	StatusLabel string `json:"status_label"`
	Link        string `json:"link"`
}

func NewCard(p models.Property) PropertyCard {
	return PropertyCard{
		ID:          p.ID,
		Title:       p.Title,
		Location:    p.Location,
		Type:        string(p.PropertyType),
		TypeLabel:   format.PropertyTypeLabel(p.PropertyType),
		Price:       p.Price,
		PriceLabel:  format.Price(p.Price),
		Bedrooms:    p.Bedrooms,
		Bathrooms:   p.Bathrooms,
		Area:        p.Area,
		AreaLabel:   fmt.Sprintf("%s m²", format.Number(int64(p.Area))),
		Image:       format.OptimizedImageURL(p.PrimaryImage(), 800, 600),
		Featured:    p.Featured,
		Sold:        p.Sold,
		StatusLabel: format.StatusLabel(p.Sold),
		Link:        "/propiedad/" + p.ID,
	}
}

func Cards(props []models.Property) []PropertyCard {
	out := make([]PropertyCard, len(props))
	for i, p := range props {
		out[i] = NewCard(p)
	}
	return out
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type FilterOptions struct {
	Locations   []Option                  `json:"locations"`
	Types       []Option                  `json:"types"`
	Bedrooms    []Option                  `json:"bedrooms"`
	PriceRanges []filter.PriceRangeOption `json:"price_ranges"`
}

func filterOptions(locationNames []string) FilterOptions {
	locs := make([]Option, 0, len(locationNames)+1)
	locs = append(locs, Option{Value: "", Label: "Todas las ubicaciones"})
	for _, n := range locationNames {
		locs = append(locs, Option{Value: n, Label: n})
	}

	types := []Option{{Value: "", Label: "Todos los tipos"}}
	for _, t := range models.PropertyTypes {
		types = append(types, Option{Value: string(t), Label: format.PropertyTypeLabel(t)})
	}

	bedrooms := []Option{{Value: "", Label: "Todos"}}
	for _, b := range []string{"1", "2", "3", "4", "5+"} {
		bedrooms = append(bedrooms, Option{Value: b, Label: b})
	}

	return FilterOptions{
		Locations:   locs,
		Types:       types,
		Bedrooms:    bedrooms,
		PriceRanges: filter.PriceRanges(),
	}
}

type SettingsReader interface {
	Get(ctx context.Context) (models.SiteSettings, error)
}

// StaticSettings veritabanı olmadan çalışan kurulumlar için.
type StaticSettings struct{}

func (StaticSettings) Get(context.Context) (models.SiteSettings, error) {
	return models.DefaultSiteSettings(), nil
}

// loadSettings herkese açık sayfalar ayar hatası yüzünden düşmez, varsayılana döner.
func loadSettings(ctx context.Context, r SettingsReader, log logger.Logger) models.SiteSettings {
	s, err := r.Get(ctx)
	if err != nil {
		log.WithError(err).Warn("Site ayarları okunamadı, varsayılanlar kullanılıyor", nil)
		return models.DefaultSiteSettings()
	}
	return s
}
