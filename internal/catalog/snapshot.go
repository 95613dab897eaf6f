// Package catalog ilan ve lokasyon kayıtlarının okunan, sıralı görüntüsünü (snapshot) tutar.
package catalog

import (
	"errors"
	"fmt"
	"time"

	"inmobiliaria-backend/internal/models"
)

var ErrUnknownLocation = errors.New("property references an unknown location")

// Snapshot salt okunur kabul edilir; değiştirmek yerine yenisi üretilir.
type Snapshot struct {
	Properties   []models.Property
	Locations    []models.Location
	Testimonials []models.Testimonial
	LoadedAt     time.Time
}

func (s Snapshot) Property(id string) (models.Property, bool) {
	for _, p := range s.Properties {
		if p.ID == id {
			return p, true
		}
	}
	return models.Property{}, false
}

func (s Snapshot) Featured() []models.Property {
	out := make([]models.Property, 0)
	for _, p := range s.Properties {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// Similar aynı lokasyon VEYA aynı tip, kendisi hariç, en fazla n kayıt.
func (s Snapshot) Similar(target models.Property, n int) []models.Property {
	out := make([]models.Property, 0, n)
	for _, p := range s.Properties {
		if len(out) >= n {
			break
		}
		if p.ID == target.ID {
			continue
		}
		if p.Location == target.Location || p.PropertyType == target.PropertyType {
			out = append(out, p)
		}
	}
	return out
}

func (s Snapshot) LocationByName(name string) (models.Location, bool) {
	for _, l := range s.Locations {
		if l.Name == name {
			l.PropertyCount = s.countAt(name)
			return l, true
		}
	}
	return models.Location{}, false
}

// LocationsWithCounts property_count her çağrıda katalogdan hesaplanır.
func (s Snapshot) LocationsWithCounts() []models.Location {
	counts := make(map[string]int, len(s.Locations))
	for _, p := range s.Properties {
		counts[p.Location]++
	}
	out := make([]models.Location, len(s.Locations))
	for i, l := range s.Locations {
		l.PropertyCount = counts[l.Name]
		out[i] = l
	}
	return out
}

func (s Snapshot) LocationNames() []string {
	names := make([]string, len(s.Locations))
	for i, l := range s.Locations {
		names[i] = l.Name
	}
	return names
}

func (s Snapshot) countAt(name string) int {
	n := 0
	for _, p := range s.Properties {
		if p.Location == name {
			n++
		}
	}
	return n
}

// CheckLocations her ilanın bilinen bir lokasyona bağlı olduğunu doğrular.
func CheckLocations(props []models.Property, locs []models.Location) error {
	known := make(map[string]struct{}, len(locs))
	for _, l := range locs {
		known[l.Name] = struct{}{}
	}
	var errs []error
	for _, p := range props {
		if _, ok := known[p.Location]; !ok {
			errs = append(errs, fmt.Errorf("%w: %s -> %q", ErrUnknownLocation, p.ID, p.Location))
		}
	}
	return errors.Join(errs...)
}

func HasLocation(locs []models.Location, name string) bool {
	for _, l := range locs {
		if l.Name == name {
			return true
		}
	}
	return false
}
