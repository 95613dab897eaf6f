package geo

import "inmobiliaria-backend/internal/models"

const (
	DefaultZoom  = 8
	FocusZoom    = 14
	FocusSeconds = 1.0
)

type Viewport struct {
	Center   models.Coordinates `json:"center"`
	Zoom     int                `json:"zoom"`
	Animate  bool               `json:"animate"`
	Duration float64            `json:"duration"`
	FocusID  string             `json:"focus_id,omitempty"`
}

func DefaultViewport() Viewport {
	return Viewport{Center: models.DefaultCoordinates, Zoom: DefaultZoom}
}

// Focus seçilen kaydın üzerine animasyonlu zoom yapar.
func (v Viewport) Focus(id string, at models.Coordinates) Viewport {
	return Viewport{
		Center:   at,
		Zoom:     FocusZoom,
		Animate:  true,
		Duration: FocusSeconds,
		FocusID:  id,
	}
}

// Release odağı bırakır; merkez ve zoom olduğu gibi kalır.
func (v Viewport) Release() Viewport {
	v.FocusID = ""
	v.Animate = false
	v.Duration = 0
	return v
}
