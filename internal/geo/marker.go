// Package geo katalog kayıtlarını harita marker'larına dönüştürür,
// yakın marker'ları kümeler ve görünüm alanını (viewport) yönetir.
package geo

import (
	"unicode"
	"unicode/utf8"

	"inmobiliaria-backend/internal/format"
	"inmobiliaria-backend/internal/models"
)

const (
	MarkerSize         = 30
	SelectedMarkerSize = 40
	DefaultColor       = "#A87449"
)

var typeColors = map[models.PropertyType]string{
	models.PropertyTypeVilla:     "#A87449",
	models.PropertyTypeApartment: "#8B956D",
	models.PropertyTypePenthouse: "#B8A082",
	models.PropertyTypeHouse:     "#9CAF88",
}

type Style struct {
	Color       string `json:"color"`
	Size        int    `json:"size"`
	Label       string `json:"label"`
	Highlighted bool   `json:"highlighted"`
}

type Popup struct {
	Title     string `json:"title"`
	Location  string `json:"location"`
	Price     string `json:"price"`
	Image     string `json:"image"`
	Bedrooms  int    `json:"bedrooms"`
	Bathrooms int    `json:"bathrooms"`
	Area      int    `json:"area"`
	Link      string `json:"link"`
}

type Marker struct {
	ID    string  `json:"id"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Style Style   `json:"style"`
	Popup Popup   `json:"popup"`
}

func (m Marker) Coordinates() models.Coordinates {
	return models.Coordinates{Lat: m.Lat, Lng: m.Lng}
}

func StyleFor(t models.PropertyType, selected bool) Style {
	color, ok := typeColors[t]
	if !ok {
		color = DefaultColor
	}
	size := MarkerSize
	if selected {
		size = SelectedMarkerSize
	}
	label := ""
	if r, _ := utf8.DecodeRuneInString(string(t)); r != utf8.RuneError {
		label = string(unicode.ToUpper(r))
	}
	return Style{Color: color, Size: size, Label: label, Highlighted: selected}
}

// Project sırayı korur; koordinatı geçersiz kayıtlar atlanır.
func Project(records []models.Property, selectedID string) []Marker {
	out := make([]Marker, 0, len(records))
	for _, p := range records {
		if !p.Coordinates().Valid() {
			continue
		}
		out = append(out, Marker{
			ID:    p.ID,
			Lat:   p.Latitude,
			Lng:   p.Longitude,
			Style: StyleFor(p.PropertyType, p.ID == selectedID),
			Popup: Popup{
				Title:     p.Title,
				Location:  p.Location,
				Price:     format.Price(p.Price),
				Image:     format.OptimizedImageURL(p.PrimaryImage(), 400, 300),
				Bedrooms:  p.Bedrooms,
				Bathrooms: p.Bathrooms,
				Area:      p.Area,
				Link:      "/propiedad/" + p.ID,
			},
		})
	}
	return out
}
