// Package store ilanların uzak (Postgres) deposudur.
package store

import (
	"context"
	"errors"

	"inmobiliaria-backend/internal/models"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrOperationFailed = errors.New("store operation failed")
)

// Repository admin tarafının kullandığı uzak depo.
// Toplu işlem veya transaction semantiği yok.
type Repository interface {
	List(ctx context.Context) ([]models.Property, error)
	Get(ctx context.Context, id string) (*models.Property, error)
	Insert(ctx context.Context, p models.Property) (*models.Property, error)
	Update(ctx context.Context, id string, patch Patch) (*models.Property, error)
	Delete(ctx context.Context, id string) error
}

// Patch nil alanlar değişmez.
type Patch struct {
	Title        *string              `json:"title"`
	Description  *string              `json:"description"`
	Location     *string              `json:"location"`
	Region       *string              `json:"region"`
	PropertyType *models.PropertyType `json:"property_type"`
	Price        *int64               `json:"price"`
	Bedrooms     *int                 `json:"bedrooms"`
	Bathrooms    *int                 `json:"bathrooms"`
	Area         *int                 `json:"area"`
	Images       *[]string            `json:"images"`
	Amenities    *[]string            `json:"amenities"`
	Featured     *bool                `json:"featured"`
	Latitude     *float64             `json:"latitude"`
	Longitude    *float64             `json:"longitude"`
	Sold         *bool                `json:"is_sold"`
}

func (p Patch) Empty() bool {
	return p == Patch{}
}

// Apply kopyaya uygular, orijinali değiştirmez.
func (p Patch) Apply(in models.Property) models.Property {
	out := in
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Location != nil {
		out.Location = *p.Location
	}
	if p.Region != nil {
		out.Region = *p.Region
	}
	if p.PropertyType != nil {
		out.PropertyType = *p.PropertyType
	}
	if p.Price != nil {
		out.Price = *p.Price
	}
	if p.Bedrooms != nil {
		out.Bedrooms = *p.Bedrooms
	}
	if p.Bathrooms != nil {
		out.Bathrooms = *p.Bathrooms
	}
	if p.Area != nil {
		out.Area = *p.Area
	}
	if p.Images != nil {
		out.Images = append([]string(nil), (*p.Images)...)
	}
	if p.Amenities != nil {
		out.Amenities = append([]string(nil), (*p.Amenities)...)
	}
	if p.Featured != nil {
		out.Featured = *p.Featured
	}
	if p.Latitude != nil {
		out.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		out.Longitude = *p.Longitude
	}
	if p.Sold != nil {
		out.Sold = *p.Sold
	}
	return out
}
