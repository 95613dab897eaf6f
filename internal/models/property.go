package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type PropertyType string

const (
	PropertyTypeVilla     PropertyType = "villa"
	PropertyTypeApartment PropertyType = "apartment"
	PropertyTypePenthouse PropertyType = "penthouse"
	PropertyTypeHouse     PropertyType = "house"
)

// PropertyTypes listeleme sırası (filtre seçenekleri için)
var PropertyTypes = []PropertyType{
	PropertyTypeVilla,
	PropertyTypeApartment,
	PropertyTypePenthouse,
	PropertyTypeHouse,
}

func (t PropertyType) Valid() bool {
	switch t {
	case PropertyTypeVilla, PropertyTypeApartment, PropertyTypePenthouse, PropertyTypeHouse:
		return true
	}
	return false
}

type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// DefaultCoordinates - Dominik Cumhuriyeti merkezi (koordinat girilmezse)
var DefaultCoordinates = Coordinates{Lat: 18.7357, Lng: -70.1627}

var ErrInvalidProperty = errors.New("invalid property")

type Property struct {
	ID           string                      `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Title        string                      `gorm:"size:200;not null" json:"title" yaml:"title"`
	Description  string                      `gorm:"type:text" json:"description" yaml:"description"`
	Location     string                      `gorm:"size:100;index;not null" json:"location" yaml:"location"`
	Region       string                      `gorm:"size:100" json:"region" yaml:"region"`
	PropertyType PropertyType                `gorm:"column:property_type;size:20;index;not null" json:"property_type" yaml:"type"`
	Price        int64                       `gorm:"not null" json:"price" yaml:"price"`
	Bedrooms     int                         `gorm:"not null" json:"bedrooms" yaml:"bedrooms"`
	Bathrooms    int                         `gorm:"not null" json:"bathrooms" yaml:"bathrooms"`
	Area         int                         `gorm:"not null" json:"area" yaml:"area"` // m²
	Images       datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"images" yaml:"images"`
	Amenities    datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"amenities" yaml:"amenities"`
	Featured     bool                        `gorm:"default:false" json:"featured" yaml:"featured"`
	Latitude     float64                     `json:"latitude" yaml:"lat"`
	Longitude    float64                     `json:"longitude" yaml:"lng"`
	Sold         bool                        `gorm:"column:is_sold;default:false;index" json:"is_sold" yaml:"sold"`
	CreatedAt    time.Time                   `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at" yaml:"updated_at"`
}

func (p Property) Coordinates() Coordinates {
	return Coordinates{Lat: p.Latitude, Lng: p.Longitude}
}

// PrimaryImage ilk görsel; liste boşsa "".
func (p Property) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

func (p Property) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: id vacío", ErrInvalidProperty)
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: título vacío", ErrInvalidProperty)
	}
	if strings.TrimSpace(p.Location) == "" {
		return fmt.Errorf("%w: ubicación vacía", ErrInvalidProperty)
	}
	if !p.PropertyType.Valid() {
		return fmt.Errorf("%w: tipo desconocido %q", ErrInvalidProperty, p.PropertyType)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: precio negativo", ErrInvalidProperty)
	}
	if p.Bedrooms < 0 || p.Bathrooms < 0 {
		return fmt.Errorf("%w: habitaciones o baños negativos", ErrInvalidProperty)
	}
	if p.Area <= 0 {
		return fmt.Errorf("%w: el área debe ser mayor que 0", ErrInvalidProperty)
	}
	if len(p.Images) == 0 {
		return fmt.Errorf("%w: se requiere al menos una imagen", ErrInvalidProperty)
	}
	if !p.Coordinates().Valid() {
		return fmt.Errorf("%w: coordenadas fuera de rango", ErrInvalidProperty)
	}
	return nil
}
