package filter

import (
	"strconv"
	"strings"

	"inmobiliaria-backend/internal/models"
)

// Getter fiber'ın c.Query'si ile uyumlu
type Getter func(key string) string

// FromQuery hatalı sayıları sessizce yok sayar (facet pasif).
func FromQuery(get Getter) Criteria {
	c := Criteria{
		Search:   strings.TrimSpace(get("search")),
		Location: facetValue(get("location")),
	}

	pt := facetValue(get("type"))
	if pt == "" {
		pt = facetValue(get("propertyType"))
	}
	if pt != "" && models.PropertyType(strings.ToLower(pt)).Valid() {
		c.PropertyType = strings.ToLower(pt)
	}

	if r := facetValue(get("priceRange")); r != "" {
		c.MinPrice, c.MaxPrice = ParsePriceRange(r)
	}
	if v, ok := parseAmount(get("minPrice")); ok {
		c.MinPrice = &v
	}
	if v, ok := parseAmount(get("maxPrice")); ok {
		c.MaxPrice = &v
	}

	c.Bedrooms = ParseBedrooms(get("bedrooms"))

	switch strings.ToLower(strings.TrimSpace(get("status"))) {
	case StatusAvailable:
		c.Status = StatusAvailable
	case StatusSold:
		c.Status = StatusSold
	}

	return c
}

// ParseBedrooms "3" veya "5+" kabul eder, diğer her şey nil.
func ParseBedrooms(raw string) *BedroomFacet {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	atLeast := strings.HasSuffix(raw, "+")
	n, err := strconv.Atoi(strings.TrimSuffix(raw, "+"))
	if err != nil || n < 0 {
		return nil
	}
	return &BedroomFacet{Count: n, AtLeast: atLeast}
}

// ParsePriceRange "min-max" veya "min" (üst sınırsız). Üst sınır 0 ise sınırsız.
// Her sınır ayrı okunur; okunamayan sınır yalnızca kendisini pasif yapar.
func ParsePriceRange(raw string) (min, max *int64) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.SplitN(raw, "-", 2)
	if lo, ok := parseAmount(parts[0]); ok {
		min = &lo
	}
	if len(parts) == 2 {
		if hi, ok := parseAmount(parts[1]); ok && hi > 0 {
			max = &hi
		}
	}
	return min, max
}

func parseAmount(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func facetValue(raw string) string {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "", "all", "any", "todos", "todas":
		return ""
	}
	return raw
}

type PriceRangeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// PriceRanges harita görünümündeki sabit fiyat aralıkları
func PriceRanges() []PriceRangeOption {
	return []PriceRangeOption{
		{Value: "0-500000", Label: "Hasta $500,000"},
		{Value: "500000-1000000", Label: "$500,000 - $1,000,000"},
		{Value: "1000000-2000000", Label: "$1,000,000 - $2,000,000"},
		{Value: "2000000", Label: "Más de $2,000,000"},
	}
}
