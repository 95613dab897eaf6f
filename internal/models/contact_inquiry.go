package models

import (
	"regexp"
	"strings"
	"time"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

type ContactInquiry struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"size:200;not null" json:"name"`
	Email            string    `gorm:"size:200;not null" json:"email"`
	Phone            string    `gorm:"size:50;not null" json:"phone"`
	Message          string    `gorm:"type:text;not null" json:"message"`
	PropertyInterest string    `gorm:"size:200" json:"property_interest"`
	PropertyType     string    `gorm:"size:20" json:"property_type"`
	Location         string    `gorm:"size:100" json:"location"`
	PriceRange       string    `gorm:"size:50" json:"price_range"`
	CreatedAt        time.Time `json:"created_at"`
}

// Validate alan -> mesaj eşlemesi döner; boşsa geçerli.
func (i ContactInquiry) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(i.Name) == "" {
		errs["name"] = "El nombre es requerido"
	}
	if strings.TrimSpace(i.Email) == "" {
		errs["email"] = "El email es requerido"
	} else if !ValidEmail(i.Email) {
		errs["email"] = "El email no es válido"
	}
	if strings.TrimSpace(i.Phone) == "" {
		errs["phone"] = "El teléfono es requerido"
	}
	if strings.TrimSpace(i.Message) == "" {
		errs["message"] = "El mensaje es requerido"
	}
	return errs
}
