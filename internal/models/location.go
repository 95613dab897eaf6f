package models

// Location statik konfigürasyondan gelir. PropertyCount hesaplanır, saklanmaz.
type Location struct {
	ID            string       `json:"id" yaml:"id"`
	Name          string       `json:"name" yaml:"name"`
	Region        string       `json:"region" yaml:"region"`
	Description   string       `json:"description" yaml:"description"`
	Image         string       `json:"image" yaml:"image"`
	Coordinates   *Coordinates `json:"coordinates,omitempty" yaml:"coordinates"`
	PropertyCount int          `json:"property_count" yaml:"-"`
}

type Testimonial struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Location string `json:"location" yaml:"location"`
	Text     string `json:"text" yaml:"text"`
	Rating   int    `json:"rating" yaml:"rating"`
}
