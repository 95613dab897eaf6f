package filter

import (
	"strings"

	"inmobiliaria-backend/internal/models"
)

const (
	StatusAvailable = "available"
	StatusSold      = "sold"
)

// BedroomFacet "3" -> {3,false}, "5+" -> {5,true}
type BedroomFacet struct {
	Count   int  `json:"count"`
	AtLeast bool `json:"at_least"`
}

func (b BedroomFacet) Matches(n int) bool {
	if b.AtLeast {
		return n >= b.Count
	}
	return n == b.Count
}

// Criteria boş alan = o facet için kısıt yok.
type Criteria struct {
	Search       string        `json:"search,omitempty"`
	Location     string        `json:"location,omitempty"`
	PropertyType string        `json:"property_type,omitempty"`
	MinPrice     *int64        `json:"min_price,omitempty"`
	MaxPrice     *int64        `json:"max_price,omitempty"`
	Bedrooms     *BedroomFacet `json:"bedrooms,omitempty"`
	Status       string        `json:"status,omitempty"`
}

func (c Criteria) IsEmpty() bool {
	return strings.TrimSpace(c.Search) == "" &&
		c.Location == "" &&
		c.PropertyType == "" &&
		c.MinPrice == nil &&
		c.MaxPrice == nil &&
		c.Bedrooms == nil &&
		c.Status == ""
}

// Matches tüm aktif facet'ler AND ile birleşir.
func (c Criteria) Matches(p models.Property) bool {
	if q := strings.ToLower(strings.TrimSpace(c.Search)); q != "" {
		if !strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) &&
			!strings.Contains(strings.ToLower(p.Location), q) {
			return false
		}
	}
	if c.Location != "" && p.Location != c.Location {
		return false
	}
	if c.PropertyType != "" && string(p.PropertyType) != c.PropertyType {
		return false
	}
	if c.MinPrice != nil && p.Price < *c.MinPrice {
		return false
	}
	if c.MaxPrice != nil && p.Price > *c.MaxPrice {
		return false
	}
	if c.Bedrooms != nil && !c.Bedrooms.Matches(p.Bedrooms) {
		return false
	}
	switch c.Status {
	case StatusAvailable:
		if p.Sold {
			return false
		}
	case StatusSold:
		if !p.Sold {
			return false
		}
	}
	return true
}
