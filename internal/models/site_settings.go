package models

import (
	"strings"
	"time"
	"unicode"
)

// SiteSettings - tek satır (ID=1)
type SiteSettings struct {
	ID              uint      `gorm:"primaryKey" json:"-"`
	SiteName        string    `gorm:"size:200" json:"site_name"`
	SiteDescription string    `gorm:"size:500" json:"site_description"`
	ContactEmail    string    `gorm:"size:200" json:"contact_email"`
	ContactPhone    string    `gorm:"size:50" json:"contact_phone"`
	WhatsAppNumber  string    `gorm:"column:whatsapp_number;size:30" json:"whatsapp_number"`
	OfficeAddress   string    `gorm:"size:300" json:"office_address"`
	Facebook        string    `gorm:"size:300" json:"facebook"`
	Instagram       string    `gorm:"size:300" json:"instagram"`
	LinkedIn        string    `gorm:"column:linkedin;size:300" json:"linkedin"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		ID:              1,
		SiteName:        "Laura Alba Real Estate",
		SiteDescription: "Propiedades de lujo en República Dominicana",
		ContactEmail:    "laura@lauraalba.com",
		ContactPhone:    "+1 (809) 555-1234",
		WhatsAppNumber:  "18095551234",
		OfficeAddress:   "Av. Winston Churchill, Santo Domingo",
		Facebook:        "https://facebook.com/lauraalbarealestate",
		Instagram:       "https://instagram.com/lauraalbarealestate",
		LinkedIn:        "https://linkedin.com/in/lauraalba",
	}
}

// Validate alan -> mesaj; boşsa geçerli.
func (s SiteSettings) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(s.SiteName) == "" {
		errs["site_name"] = "El nombre del sitio es requerido"
	}
	if strings.TrimSpace(s.ContactEmail) != "" && !ValidEmail(s.ContactEmail) {
		errs["contact_email"] = "El email no es válido"
	}
	if s.WhatsAppNumber != "" {
		digits := 0
		for _, r := range s.WhatsAppNumber {
			if unicode.IsDigit(r) {
				digits++
			}
		}
		if digits < 8 {
			errs["whatsapp_number"] = "El número de WhatsApp no es válido"
		}
	}
	return errs
}
